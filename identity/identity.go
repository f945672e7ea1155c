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
	"errors"
	"time"
)

// Tier is a user's subscription tier. The set is closed; any value outside it
// must be treated as TierFree by consumers (see gate.PolicyTable).
type Tier string

const (
	TierFree       Tier = "free"
	TierTrial      Tier = "trial"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Known reports whether t is one of the defined tiers.
func (t Tier) Known() bool {
	switch t {
	case TierFree, TierTrial, TierPro, TierEnterprise:
		return true
	}
	return false
}

// SubscriptionStatus is the billing lifecycle state of a user.
type SubscriptionStatus string

const (
	StatusInactive SubscriptionStatus = "inactive"
	StatusTrial    SubscriptionStatus = "trial"
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

// User is a snapshot of one account's subscription state.
//
// Fields are read-only from this service's perspective: the billing webhook
// service is the single writer of tier, status, and trial expiry.
type User struct {
	ID          string
	Email       string
	Tier        Tier
	Status      SubscriptionStatus
	TrialEndsAt *time.Time
}

// TrialExpired reports whether the user's trial window has lapsed.
// Users without a trial expiry are never considered expired.
func (u *User) TrialExpired(now time.Time) bool {
	return u.TrialEndsAt != nil && now.After(*u.TrialEndsAt)
}

// ErrUserNotFound is returned when no account exists for the requested ID.
var ErrUserNotFound = errors.New("user not found")
