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
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore implements Store against the usage_events table.
//
// The table is append-only and indexed on (user_id, action_tag, created_at)
// so window counts are a single index range scan.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the usage_events table and its window-scan index if
// they don't exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS usage_events (
		id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		action_tag VARCHAR(50) NOT NULL,
		description TEXT,
		provider VARCHAR(50),
		model VARCHAR(100),
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		estimated_cost_cents DECIMAL(10, 4) NOT NULL DEFAULT 0,
		input_excerpt TEXT,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_usage_events_window
		ON usage_events(user_id, action_tag, created_at);
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create usage_events schema: %w", err)
	}
	return nil
}

// Insert appends one usage event.
func (s *PostgresStore) Insert(ctx context.Context, event *UsageEvent) error {
	query := `
		INSERT INTO usage_events (
			id, user_id, action_tag, description, provider, model,
			prompt_tokens, completion_tokens, estimated_cost_cents,
			input_excerpt, latency_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.UserID, string(event.ActionTag), event.Description,
		nullString(event.Metadata.Provider), nullString(event.Metadata.Model),
		event.Metadata.PromptTokens, event.Metadata.CompletionTokens,
		event.Metadata.EstimatedCostCents,
		nullString(event.Metadata.InputExcerpt), event.Metadata.LatencyMs,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}
	return nil
}

// CountSince counts events for (userID, tag) within the trailing window.
func (s *PostgresStore) CountSince(ctx context.Context, userID string, tag ActionTag, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM usage_events
		WHERE user_id = $1 AND action_tag = $2 AND created_at >= $3
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, string(tag), since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count usage events: %w", err)
	}
	return count, nil
}

// AggregateSince returns per-tag totals within the window, with a second
// count restricted to created_at >= todayStart. Tags with no events are
// simply absent from the result.
func (s *PostgresStore) AggregateSince(ctx context.Context, userID string, tags []ActionTag, since, todayStart time.Time) (map[ActionTag]TagStats, error) {
	query := `
		SELECT action_tag,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE created_at >= $4)
		FROM usage_events
		WHERE user_id = $1 AND action_tag = ANY($2) AND created_at >= $3
		GROUP BY action_tag
	`

	tagStrings := make([]string, len(tags))
	for i, tag := range tags {
		tagStrings[i] = string(tag)
	}

	rows, err := s.db.QueryContext(ctx, query, userID, pq.Array(tagStrings), since, todayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage events: %w", err)
	}
	defer rows.Close()

	stats := make(map[ActionTag]TagStats)
	for rows.Next() {
		var tag string
		var s TagStats
		if err := rows.Scan(&tag, &s.Total, &s.Today); err != nil {
			return nil, fmt.Errorf("failed to scan usage aggregate: %w", err)
		}
		stats[ActionTag(tag)] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage aggregates: %w", err)
	}

	return stats, nil
}

// nullString converts an empty string to NULL for database insertion.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
