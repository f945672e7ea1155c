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

package gateway

import (
	"time"

	"paradoc/platform/ledger"
)

// GenerateDocumentRequest asks for a drafted legal document.
type GenerateDocumentRequest struct {
	DocumentType string `json:"document_type"` // "nda", "lease", "employment_contract", ...
	Instructions string `json:"instructions"`
}

// ChatRequest is one legal assistant chat turn.
type ChatRequest struct {
	Message string `json:"message"`
}

// SummarizeRequest asks for a summary of pasted document text.
type SummarizeRequest struct {
	DocumentText string `json:"document_text"`
}

// LookupRequest asks for statute or case law background.
type LookupRequest struct {
	Query string `json:"query"`
}

// CompletionResult is the common success envelope for AI-backed endpoints.
type CompletionResult struct {
	Content   string `json:"content"`
	Model     string `json:"model"`
	RequestID string `json:"request_id"`
}

// UsageStatsResponse serves the dashboard usage panel.
type UsageStatsResponse struct {
	UserID     string                               `json:"user_id"`
	WindowDays int                                  `json:"window_days"`
	Stats      map[ledger.ActionTag]ledger.TagStats `json:"stats"`
}

// ErrorResponse is the envelope for all error and denial responses.
// Code is machine-readable; Message is for display.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// Auth denial context: the subscription statuses this endpoint accepts.
	RequiredStatuses []string `json:"required_statuses,omitempty"`

	// Quota denial context.
	Limit        int        `json:"limit,omitempty"`
	WindowHours  float64    `json:"window_hours,omitempty"`
	CurrentUsage int        `json:"current_usage,omitempty"`
	ResetTime    *time.Time `json:"reset_time,omitempty"`
}
