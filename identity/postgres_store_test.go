// Copyright 2025 ParaDoc
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	trialEnd := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "email", "subscription_tier", "subscription_status", "trial_ends_at"}).
		AddRow("user-1", "lawyer@example.com", "trial", "trial", trialEnd)
	mock.ExpectQuery("SELECT id, email, subscription_tier").
		WithArgs("user-1").
		WillReturnRows(rows)

	store := NewPostgresStore(db)
	user, err := store.Fetch(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if user.Tier != TierTrial || user.Status != StatusTrial {
		t.Errorf("unexpected subscription state: %+v", user)
	}
	if user.TrialEndsAt == nil || !user.TrialEndsAt.Equal(trialEnd) {
		t.Errorf("expected trial end %v, got %v", trialEnd, user.TrialEndsAt)
	}
}

func TestFetchNullTrialEnd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email", "subscription_tier", "subscription_status", "trial_ends_at"}).
		AddRow("user-1", "lawyer@example.com", "pro", "active", nil)
	mock.ExpectQuery("SELECT id, email, subscription_tier").
		WithArgs("user-1").
		WillReturnRows(rows)

	store := NewPostgresStore(db)
	user, err := store.Fetch(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if user.TrialEndsAt != nil {
		t.Errorf("expected nil trial end, got %v", user.TrialEndsAt)
	}
}

func TestFetchNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, email, subscription_tier").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "subscription_tier", "subscription_status", "trial_ends_at"}))

	store := NewPostgresStore(db)
	if _, err := store.Fetch(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTrialExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		endsAt  *time.Time
		expired bool
	}{
		{"no trial end", nil, false},
		{"trial still running", &future, false},
		{"trial lapsed", &past, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{TrialEndsAt: tt.endsAt}
			if got := u.TrialExpired(now); got != tt.expired {
				t.Errorf("expected %v, got %v", tt.expired, got)
			}
		})
	}
}
