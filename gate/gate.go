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
	"log"
	"time"

	"paradoc/platform/identity"
	"paradoc/platform/ledger"
)

// EventCounter is the one read the gate needs from the usage log.
// *ledger.Recorder satisfies it.
type EventCounter interface {
	CountSince(ctx context.Context, userID string, tag ledger.ActionTag, since time.Time) (int, error)
}

// Gate performs subscription authorization and quota checks. It holds no
// per-request state; the policy set is read-only after construction, so a
// single Gate serves all handlers concurrently.
type Gate struct {
	counter  EventCounter
	policies PolicySet
	logger   *log.Logger
	now      func() time.Time
}

// New creates a gate over the given event counter and policy set.
func New(counter EventCounter, policies PolicySet) *Gate {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Gate{
		counter:  counter,
		policies: policies,
		logger:   log.Default(),
		now:      time.Now,
	}
}

// Authorize checks that the user's subscription status is acceptable for the
// endpoint. No side effects; deterministic given the identity snapshot.
func (g *Gate) Authorize(user *identity.User, required ...identity.SubscriptionStatus) AuthDecision {
	decision := AuthDecision{
		Status:   user.Status,
		Required: required,
	}
	for _, status := range required {
		if user.Status == status {
			decision.Allowed = true
			return decision
		}
	}
	return decision
}

// CheckQuota counts the user's events for the action within the trailing
// window and compares against the tier limit. Unknown tiers resolve to the
// free-tier budget.
//
// If the count query fails the gate fails open: the decision is allowed with
// CurrentUsage 0 and the error is logged. Enforcement resumes as soon as the
// store recovers; see the package comment before changing this.
func (g *Gate) CheckQuota(ctx context.Context, user *identity.User, tag ledger.ActionTag) QuotaDecision {
	policy := g.policies[tag].For(user.Tier)
	now := g.now().UTC()

	decision := QuotaDecision{
		Limit:     policy.RequestLimit,
		Window:    policy.Window,
		ResetTime: now.Add(policy.Window),
	}

	windowStart := now.Add(-policy.Window)
	count, err := g.counter.CountSince(ctx, user.ID, tag, windowStart)
	if err != nil {
		g.logger.Printf("[Gate] Usage count failed for user=%s tag=%s: %v (failing open)",
			user.ID, tag, err)
		decision.Allowed = true
		decision.FailedOpen = true
		return decision
	}

	decision.CurrentUsage = count
	decision.Allowed = count < policy.RequestLimit
	return decision
}
