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
Package ledger records completed billable actions to an append-only event log
and serves aggregate usage reads.

# Overview

One usage event is written after every successful AI-backed action. The same
log is read back by the access gate (to count current-window usage) and by the
dashboard (per-tag totals). Events are never mutated or deleted; the table
doubles as the audit trail.

# Recording

	recorder := ledger.NewRecorder(store)
	recorder.Record(ctx, ledger.UsageEvent{
	    UserID:    user.ID,
	    ActionTag: ledger.TagChatbotQuery,
	    Metadata: ledger.Metadata{
	        Model:            "gpt-4o",
	        PromptTokens:     150,
	        CompletionTokens: 200,
	    },
	})

Record is fire-and-forget: by the time it runs, the user-visible action has
already succeeded, so a storage failure is logged and swallowed rather than
turned into a 500 for an action that worked.

# Aggregation

	stats := recorder.Aggregate(ctx, userID,
	    []ledger.ActionTag{ledger.TagChatbotQuery}, 30*24*time.Hour)

Aggregate is reporting-only and degrades to all-zero counts on any store
failure. It is never used for enforcement; the gate does its own counting.
*/
package ledger
