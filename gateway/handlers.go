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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paradoc/platform/gate"
	"paradoc/platform/identity"
	"paradoc/platform/ledger"
	"paradoc/platform/llm"
)

// aiAction describes one gated AI-backed endpoint: the ledger tag it bills
// under, the statuses admitted, and how to turn the parsed request into a
// completion call. All four AI endpoints run through runGatedAction, so the
// gate logic lives in exactly one place.
type aiAction struct {
	Tag      ledger.ActionTag
	System   string
	Admitted []identity.SubscriptionStatus
}

// paidStatuses admits active subscribers and trialing users. Past-due,
// canceled, and inactive accounts are sent to the billing portal instead.
var paidStatuses = []identity.SubscriptionStatus{
	identity.StatusActive,
	identity.StatusTrial,
}

// runGatedAction is the single implementation of the gated request flow:
// authorize, check quota, optional burst ceiling, complete, record.
func runGatedAction(w http.ResponseWriter, r *http.Request, action aiAction, prompt, description string) {
	ctx := r.Context()
	user := userFrom(ctx)
	requestID := requestIDFrom(ctx)

	if strings.TrimSpace(prompt) == "" {
		promRequestsTotal.WithLabelValues(string(action.Tag), "bad_request").Inc()
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error: "empty input",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if auth := accessGate.Authorize(user, action.Admitted...); !auth.Allowed {
		promRequestsTotal.WithLabelValues(string(action.Tag), "denied").Inc()
		promGateDenials.WithLabelValues(string(action.Tag), string(gate.DenyAuth)).Inc()
		appLogger.Info(user.ID, requestID, "Request denied: subscription status",
			map[string]interface{}{"status": string(auth.Status), "action": string(action.Tag)})

		required := make([]string, len(auth.Required))
		for i, s := range auth.Required {
			required[i] = string(s)
		}
		writeError(w, http.StatusForbidden, ErrorResponse{
			Error:            "subscription required",
			Code:             string(gate.DenyAuth),
			Message:          fmt.Sprintf("This feature requires a subscription in one of these states: %s.", strings.Join(required, ", ")),
			RequiredStatuses: required,
		})
		return
	}

	quota := accessGate.CheckQuota(ctx, user, action.Tag)
	if quota.FailedOpen {
		promGateFailOpen.Inc()
	}
	if !quota.Allowed {
		promRequestsTotal.WithLabelValues(string(action.Tag), "denied").Inc()
		promGateDenials.WithLabelValues(string(action.Tag), string(gate.DenyQuota)).Inc()
		appLogger.Info(user.ID, requestID, "Request denied: quota exceeded",
			map[string]interface{}{
				"action": string(action.Tag),
				"usage":  quota.CurrentUsage,
				"limit":  quota.Limit,
			})

		reset := quota.ResetTime
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(time.Until(reset).Seconds())))
		writeError(w, http.StatusTooManyRequests, ErrorResponse{
			Error: "quota exceeded",
			Code:  string(gate.DenyQuota),
			Message: fmt.Sprintf("You've used %d of %d requests in the last %s. Upgrade your plan for higher limits.",
				quota.CurrentUsage, quota.Limit, formatWindow(quota.Window)),
			Limit:        quota.Limit,
			WindowHours:  quota.Window.Hours(),
			CurrentUsage: quota.CurrentUsage,
			ResetTime:    &reset,
		})
		return
	}

	// Hard short-window ceiling against scripted bursts. Separate from the
	// tier quota: a nil limiter (Redis not configured) always admits.
	if !burstLimiter.Allow(ctx, user.ID) {
		promRequestsTotal.WithLabelValues(string(action.Tag), "denied").Inc()
		promGateDenials.WithLabelValues(string(action.Tag), "BURST_LIMIT").Inc()
		writeError(w, http.StatusTooManyRequests, ErrorResponse{
			Error:   "too many requests",
			Code:    "BURST_LIMIT",
			Message: "Slow down and retry in a few seconds.",
		})
		return
	}

	resp, err := llmProvider.Complete(ctx, llm.CompletionRequest{
		System:      action.System,
		Prompt:      prompt,
		MaxTokens:   maxCompletionTokens,
		Temperature: 0.2,
	})
	if err != nil {
		promRequestsTotal.WithLabelValues(string(action.Tag), "error").Inc()
		appLogger.ErrorWithCode(user.ID, requestID, "Completion failed",
			http.StatusBadGateway, err, map[string]interface{}{"action": string(action.Tag)})
		writeError(w, http.StatusBadGateway, ErrorResponse{
			Error: "AI service unavailable",
			Code:  "UPSTREAM_ERROR",
		})
		return
	}

	promLLMDuration.WithLabelValues(llmProvider.Name(), string(action.Tag)).
		Observe(float64(resp.Latency.Milliseconds()))
	promLLMTokens.WithLabelValues(llmProvider.Name(), "prompt").Add(float64(resp.PromptTokens))
	promLLMTokens.WithLabelValues(llmProvider.Name(), "completion").Add(float64(resp.CompletionTokens))

	// The user-visible action has succeeded; recording is best-effort from
	// here on and must not affect the response.
	usageRecorder.Record(ctx, ledger.UsageEvent{
		UserID:      user.ID,
		ActionTag:   action.Tag,
		Description: description,
		Metadata: ledger.Metadata{
			Provider:           llmProvider.Name(),
			Model:              resp.Model,
			PromptTokens:       resp.PromptTokens,
			CompletionTokens:   resp.CompletionTokens,
			EstimatedCostCents: llm.EstimateCostCents(llmProvider.Name(), resp.Model, resp.PromptTokens, resp.CompletionTokens),
			InputExcerpt:       ledger.TruncateExcerpt(prompt),
			LatencyMs:          resp.Latency.Milliseconds(),
		},
	})

	promRequestsTotal.WithLabelValues(string(action.Tag), "success").Inc()
	appLogger.InfoWithDuration(user.ID, requestID, "Action completed",
		float64(resp.Latency.Milliseconds()), map[string]interface{}{
			"action": string(action.Tag),
			"model":  resp.Model,
		})

	writeJSON(w, http.StatusOK, CompletionResult{
		Content:   resp.Content,
		Model:     resp.Model,
		RequestID: requestID,
	})
}

func generateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	action := aiAction{
		Tag:      ledger.TagDocumentGenerated,
		System:   "You are a legal document drafting assistant. Draft clear, well-structured legal documents. Note that output is a draft requiring attorney review.",
		Admitted: paidStatuses,
	}
	prompt := fmt.Sprintf("Draft a %s. Instructions: %s", req.DocumentType, req.Instructions)
	runGatedAction(w, r, action, prompt, "Generated "+req.DocumentType)
}

func chatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	action := aiAction{
		Tag:      ledger.TagChatbotQuery,
		System:   "You are a legal information assistant. Provide general legal information, not legal advice. Recommend consulting an attorney for specific situations.",
		Admitted: paidStatuses,
	}
	runGatedAction(w, r, action, req.Message, "Chat query")
}

func summarizeDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	action := aiAction{
		Tag:      ledger.TagDocumentSummary,
		System:   "You summarize legal documents: key obligations, parties, dates, termination clauses, and unusual terms.",
		Admitted: paidStatuses,
	}
	runGatedAction(w, r, action, req.DocumentText, "Document summary")
}

func legalLookupHandler(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	action := aiAction{
		Tag:      ledger.TagLegalLookup,
		System:   "You provide background on statutes and case law. Cite the jurisdiction and note that sources should be verified.",
		Admitted: paidStatuses,
	}
	runGatedAction(w, r, action, req.Query, "Legal lookup")
}

// usageStatsHandler serves the dashboard usage panel. Requires auth but no
// subscription gating: canceled users still see their history.
func usageStatsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	const windowDays = 30
	stats := usageRecorder.Aggregate(r.Context(), user.ID, ledger.AllTags, windowDays*24*time.Hour)

	writeJSON(w, http.StatusOK, UsageStatsResponse{
		UserID:     user.ID,
		WindowDays: windowDays,
		Stats:      stats,
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "healthy",
		"service": "paradoc-server",
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if db != nil {
		if err := db.PingContext(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unavailable"
		} else {
			status["database"] = "ok"
		}
	}

	code := http.StatusOK
	if status["status"] != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLogger.Error("", "", "Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func writeError(w http.ResponseWriter, code int, resp ErrorResponse) {
	writeJSON(w, code, resp)
}

// formatWindow renders a quota window for user-facing messages.
func formatWindow(window time.Duration) string {
	if window%(24*time.Hour) == 0 {
		days := int(window / (24 * time.Hour))
		if days == 1 {
			return "24 hours"
		}
		return fmt.Sprintf("%d days", days)
	}
	if window >= time.Hour {
		return fmt.Sprintf("%g hours", window.Hours())
	}
	return window.String()
}
