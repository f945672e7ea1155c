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
	"time"

	"paradoc/platform/identity"
)

// DenyReason distinguishes the two expected denial outcomes so handlers can
// map them to distinct response codes without string matching.
type DenyReason string

const (
	DenyAuth  DenyReason = "AUTH_DENIED"
	DenyQuota DenyReason = "QUOTA_EXCEEDED"
)

// AuthDecision is the result of a subscription-status check.
type AuthDecision struct {
	Allowed bool
	// Status is the caller's current subscription status.
	Status identity.SubscriptionStatus
	// Required is the set of statuses the endpoint accepts, carried so a
	// denial response can tell the user what state would be admitted.
	Required []identity.SubscriptionStatus
}

// QuotaDecision is the transient result of one quota check. It exists only
// for the duration of a request and is never persisted.
type QuotaDecision struct {
	Allowed bool
	// CurrentUsage is the event count observed inside the trailing window.
	// Zero when the count query failed and the gate failed open.
	CurrentUsage int
	Limit        int
	Window       time.Duration
	// ResetTime is now+window: a conservative upper bound on when capacity
	// frees up, not the exact expiry of the oldest in-window event.
	ResetTime time.Time
	// FailedOpen is set when the usage count was unavailable and the gate
	// admitted the request by policy. Surfaced so callers can count these
	// in metrics; never exposed to end users.
	FailedOpen bool
}

// Policy is the request budget one tier gets for one action family.
type Policy struct {
	RequestLimit int           `yaml:"request_limit"`
	Window       time.Duration `yaml:"window"`
}
