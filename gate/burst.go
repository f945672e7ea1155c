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

package gate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// BurstLimiter enforces a hard short-window request ceiling per user using a
// Redis sorted set. Unlike CheckQuota it removes, counts, and records the
// request in one pipelined round trip, so concurrent requests cannot slip
// past the ceiling the way they can past the database window count.
//
// It is an optional layer: when Redis is not configured the limiter is nil
// and callers skip it. On Redis errors it fails open, same policy as the
// database gate.
type BurstLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *log.Logger
}

// NewBurstLimiter connects to Redis and returns a limiter allowing limit
// requests per window per key.
func NewBurstLimiter(redisURL string, limit int, window time.Duration) (*BurstLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &BurstLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: log.Default(),
	}, nil
}

// Allow records the request and reports whether it is within the burst
// ceiling. A nil limiter always allows.
func (l *BurstLimiter) Allow(ctx context.Context, userID string) bool {
	if l == nil || l.client == nil {
		return true
	}

	now := time.Now()
	key := fmt.Sprintf("burst:%s", userID)

	pipe := l.client.Pipeline()

	// Drop entries older than the window, count what remains, then record
	// this request. Running all four in one pipeline keeps the
	// check-and-record atomic enough that a burst cannot overshoot.
	minScore := now.Add(-l.window).UnixNano()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", minScore))
	pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, key, 2*l.window)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		l.logger.Printf("[Gate] Burst limit check failed for user=%s: %v (failing open)", userID, err)
		return true
	}

	count := cmds[1].(*redis.IntCmd).Val()
	return count < int64(l.limit)
}

// Status returns the current in-window request count for a key.
func (l *BurstLimiter) Status(ctx context.Context, userID string) (int, error) {
	if l == nil || l.client == nil {
		return 0, fmt.Errorf("burst limiter not initialized")
	}

	key := fmt.Sprintf("burst:%s", userID)
	minScore := time.Now().Add(-l.window).UnixNano()
	count, err := l.client.ZCount(ctx, key, fmt.Sprintf("%d", minScore), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get burst limit status: %w", err)
	}
	return int(count), nil
}

// Flush removes all burst tracking for a user (admin operation).
func (l *BurstLimiter) Flush(ctx context.Context, userID string) error {
	if l == nil || l.client == nil {
		return fmt.Errorf("burst limiter not initialized")
	}
	key := fmt.Sprintf("burst:%s", userID)
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to flush burst limit data: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (l *BurstLimiter) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Close()
}
