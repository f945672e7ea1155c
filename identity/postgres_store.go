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
	"database/sql"
	"fmt"
)

// Store fetches user subscription state. Implementations must be safe for
// concurrent use.
type Store interface {
	Fetch(ctx context.Context, userID string) (*User, error)
}

// PostgresStore implements Store against the users table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Fetch retrieves one user's subscription snapshot.
func (s *PostgresStore) Fetch(ctx context.Context, userID string) (*User, error) {
	query := `
		SELECT id, email, subscription_tier, subscription_status, trial_ends_at
		FROM users
		WHERE id = $1
	`

	var user User
	var trialEndsAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID, &user.Email, &user.Tier, &user.Status, &trialEndsAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}

	if trialEndsAt.Valid {
		t := trialEndsAt.Time
		user.TrialEndsAt = &t
	}

	return &user, nil
}
