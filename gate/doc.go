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

/*
Package gate admits or rejects requests before any billable work happens.

# Overview

The gate runs two checks in order for every AI-backed endpoint:

 1. Authorize — is the caller's subscription status in the set this endpoint
    accepts? Pure comparison against the identity snapshot, no I/O.
 2. CheckQuota — has the caller exhausted the trailing-window request limit
    for this action tag? One count query against the usage event log.

Both outcomes are result values, not errors: every handler branches on them,
so denial is ordinary control flow.

# Sliding windows

Quota windows are trailing, not calendar-aligned. Each event stops counting
exactly windowDuration after it happened, independently of any other event.
The reported reset time is now+window — an intentionally conservative upper
bound; the precise reset (expiry of the oldest in-window event) is earlier.

# Fail-open

If the count query fails, the request is ALLOWED with zero recorded usage and
the error is logged. Product availability is prioritized over strict
enforcement while the store is degraded. Do not invert this without a product
decision; fail-closed turns every storage blip into a user-facing outage.

# Known race

CheckQuota is read-then-compare with no atomic increment. Two concurrent
requests can both observe count = limit-1 and both be admitted, so bursts can
exceed a limit by a small margin. This is accepted. For callers that need a
hard per-minute ceiling in one round trip, BurstLimiter provides a Redis
sorted-set sliding window as an optional middleware layer.
*/
package gate
