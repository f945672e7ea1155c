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

package ledger

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence interface for usage events.
// Implementations must be safe for concurrent use.
type Store interface {
	// Insert appends one event. Events are never updated or deleted.
	Insert(ctx context.Context, event *UsageEvent) error

	// CountSince returns the number of events for (userID, tag) with
	// created_at >= since.
	CountSince(ctx context.Context, userID string, tag ActionTag, since time.Time) (int, error)

	// AggregateSince returns per-tag totals for events with created_at >= since,
	// split by the todayStart boundary.
	AggregateSince(ctx context.Context, userID string, tags []ActionTag, since, todayStart time.Time) (map[ActionTag]TagStats, error)
}

// Recorder writes usage events and serves aggregate reads.
type Recorder struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder backed by the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store:  store,
		logger: log.Default(),
		now:    time.Now,
	}
}

// Record appends one usage event. It is called after the billable action has
// already succeeded, so failures here are logged and swallowed: the caller's
// response was delivered and must not be retracted over a bookkeeping error.
func (r *Recorder) Record(ctx context.Context, event UsageEvent) {
	if event.UserID == "" || !event.ActionTag.Known() {
		r.logger.Printf("[Ledger] Dropping malformed usage event: user=%q tag=%q",
			event.UserID, event.ActionTag)
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now().UTC()
	}
	event.Metadata.InputExcerpt = TruncateExcerpt(event.Metadata.InputExcerpt)

	if err := r.store.Insert(ctx, &event); err != nil {
		r.logger.Printf("[Ledger] Failed to record usage event: user=%s tag=%s: %v",
			event.UserID, event.ActionTag, err)
	}
}

// Aggregate returns per-tag usage counts for the trailing window, with a
// "today" sub-count bounded by start-of-day UTC. Reporting failures are
// non-fatal: on any store error the result is zeroed counts for every
// requested tag, and the error is only logged.
func (r *Recorder) Aggregate(ctx context.Context, userID string, tags []ActionTag, window time.Duration) map[ActionTag]TagStats {
	stats := make(map[ActionTag]TagStats, len(tags))
	for _, tag := range tags {
		stats[tag] = TagStats{}
	}

	if userID == "" || len(tags) == 0 {
		return stats
	}

	now := r.now().UTC()
	since := now.Add(-window)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	found, err := r.store.AggregateSince(ctx, userID, tags, since, todayStart)
	if err != nil {
		r.logger.Printf("[Ledger] Usage aggregation failed for user=%s: %v (returning zero counts)",
			userID, err)
		return stats
	}

	for tag, s := range found {
		if _, requested := stats[tag]; requested {
			stats[tag] = s
		}
	}
	return stats
}

// CountSince exposes the window count used by the access gate.
func (r *Recorder) CountSince(ctx context.Context, userID string, tag ActionTag, since time.Time) (int, error) {
	return r.store.CountSince(ctx, userID, tag, since)
}
