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

import "time"

// ActionTag identifies one billable capability. The vocabulary is fixed and
// shared between the gate (quota counting) and the ledger (recording); the
// two must agree or quota checks will count against the wrong bucket.
type ActionTag string

const (
	TagDocumentGenerated ActionTag = "DOCUMENT_GENERATED"
	TagChatbotQuery      ActionTag = "CHATBOT_QUERY"
	TagDocumentSummary   ActionTag = "DOCUMENT_SUMMARY"
	TagLegalLookup       ActionTag = "LEGAL_LOOKUP"
)

// AllTags lists every billable action tag, in dashboard display order.
var AllTags = []ActionTag{
	TagDocumentGenerated,
	TagChatbotQuery,
	TagDocumentSummary,
	TagLegalLookup,
}

// Known reports whether t is part of the fixed vocabulary.
func (t ActionTag) Known() bool {
	switch t {
	case TagDocumentGenerated, TagChatbotQuery, TagDocumentSummary, TagLegalLookup:
		return true
	}
	return false
}

// Metadata carries the billable and observable details of one action.
// All fields are optional; zero values are stored as-is.
type Metadata struct {
	Provider           string  `json:"provider,omitempty"`
	Model              string  `json:"model,omitempty"`
	PromptTokens       int     `json:"prompt_tokens,omitempty"`
	CompletionTokens   int     `json:"completion_tokens,omitempty"`
	EstimatedCostCents float64 `json:"estimated_cost_cents,omitempty"`
	InputExcerpt       string  `json:"input_excerpt,omitempty"`
	LatencyMs          int64   `json:"latency_ms,omitempty"`
}

// UsageEvent is one immutable record of a completed billable action.
type UsageEvent struct {
	ID          string
	UserID      string
	ActionTag   ActionTag
	Description string
	Metadata    Metadata
	CreatedAt   time.Time
}

// TagStats is the per-tag aggregate served to the dashboard.
type TagStats struct {
	Total int `json:"total"`
	Today int `json:"today"`
}

// maxExcerptLen bounds the stored input excerpt. Longer inputs are truncated
// before insertion so the audit trail stays small and free of full documents.
const maxExcerptLen = 200

// TruncateExcerpt shortens s to the stored excerpt bound.
func TruncateExcerpt(s string) string {
	if len(s) <= maxExcerptLen {
		return s
	}
	return s[:maxExcerptLen]
}
