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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"paradoc/platform/gate"
	"paradoc/platform/identity"
	"paradoc/platform/ledger"
	"paradoc/platform/llm"
	"paradoc/platform/shared/logger"
)

// memLedger is an in-memory ledger.Store with error injection, shared by the
// recorder and the gate so quota checks see recorded events.
type memLedger struct {
	mu sync.Mutex

	events []ledger.UsageEvent

	insertErr    error
	countErr     error
	aggregateErr error
}

func (m *memLedger) Insert(ctx context.Context, event *ledger.UsageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return m.insertErr
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *memLedger) CountSince(ctx context.Context, userID string, tag ledger.ActionTag, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.countErr != nil {
		return 0, m.countErr
	}
	count := 0
	for _, e := range m.events {
		if e.UserID == userID && e.ActionTag == tag && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *memLedger) AggregateSince(ctx context.Context, userID string, tags []ledger.ActionTag, since, todayStart time.Time) (map[ledger.ActionTag]ledger.TagStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.aggregateErr != nil {
		return nil, m.aggregateErr
	}

	requested := make(map[ledger.ActionTag]bool, len(tags))
	for _, tag := range tags {
		requested[tag] = true
	}

	stats := make(map[ledger.ActionTag]ledger.TagStats)
	for _, e := range m.events {
		if e.UserID != userID || !requested[e.ActionTag] || e.CreatedAt.Before(since) {
			continue
		}
		s := stats[e.ActionTag]
		s.Total++
		if !e.CreatedAt.Before(todayStart) {
			s.Today++
		}
		stats[e.ActionTag] = s
	}
	return stats, nil
}

// memIdentity serves fixed user snapshots.
type memIdentity struct {
	users map[string]*identity.User
}

func (m *memIdentity) Fetch(ctx context.Context, userID string) (*identity.User, error) {
	if u, ok := m.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, identity.ErrUserNotFound
}

// stubProvider returns a fixed completion or a fixed error.
type stubProvider struct {
	err      error
	response llm.CompletionResponse
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	resp := p.response
	return &resp, nil
}

func (p *stubProvider) HealthCheck(ctx context.Context) error { return p.err }

// setupTestServer wires the package components with in-memory fakes and
// returns the router plus the shared ledger store for assertions.
func setupTestServer(t *testing.T) (*mux.Router, *memLedger, *stubProvider) {
	t.Helper()

	store := &memLedger{}
	provider := &stubProvider{
		response: llm.CompletionResponse{
			Content:          "Here is your draft.",
			Model:            "stub-model",
			PromptTokens:     10,
			CompletionTokens: 20,
			Latency:          50 * time.Millisecond,
		},
	}

	db = nil
	identityStore = &memIdentity{users: map[string]*identity.User{
		"active-pro":    {ID: "active-pro", Email: "pro@example.com", Tier: identity.TierPro, Status: identity.StatusActive},
		"free-user":     {ID: "free-user", Email: "free@example.com", Tier: identity.TierFree, Status: identity.StatusActive},
		"canceled-user": {ID: "canceled-user", Email: "gone@example.com", Tier: identity.TierPro, Status: identity.StatusCanceled},
	}}
	usageRecorder = ledger.NewRecorder(store)
	accessGate = gate.New(usageRecorder, gate.DefaultPolicies())
	burstLimiter = nil
	llmProvider = provider
	appLogger = logger.New("test")
	jwtSecret = []byte("test-secret")

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.HandleFunc("/health", healthHandler).Methods("GET")
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/documents/generate", generateDocumentHandler).Methods("POST")
	api.HandleFunc("/documents/summarize", summarizeDocumentHandler).Methods("POST")
	api.HandleFunc("/chat", chatHandler).Methods("POST")
	api.HandleFunc("/lookup", legalLookupHandler).Methods("POST")
	api.HandleFunc("/usage", usageStatsHandler).Methods("GET")

	return r, store, provider
}

func signToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	router, _, _ := setupTestServer(t)

	w := doJSON(t, router, "POST", "/api/v1/chat", "", ChatRequest{Message: "hello"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "UNAUTHENTICATED" {
		t.Errorf("expected UNAUTHENTICATED, got %s", resp.Code)
	}
}

func TestCanceledSubscriptionIsDenied(t *testing.T) {
	router, store, _ := setupTestServer(t)
	token := signToken(t, "canceled-user")

	w := doJSON(t, router, "POST", "/api/v1/chat", token, ChatRequest{Message: "hello"})

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != string(gate.DenyAuth) {
		t.Errorf("expected %s, got %s", gate.DenyAuth, resp.Code)
	}
	if len(resp.RequiredStatuses) == 0 {
		t.Error("denial must tell the client which statuses are admitted")
	}
	if len(store.events) != 0 {
		t.Error("denied requests must not be billed")
	}
}

func TestQuotaExceededReturns429(t *testing.T) {
	router, store, _ := setupTestServer(t)
	token := signToken(t, "free-user")

	// Free tier allows 10 chat queries per 24h. Fill the window.
	now := time.Now().UTC()
	for i := 0; i < 10; i++ {
		store.events = append(store.events, ledger.UsageEvent{
			UserID:    "free-user",
			ActionTag: ledger.TagChatbotQuery,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	w := doJSON(t, router, "POST", "/api/v1/chat", token, ChatRequest{Message: "one more"})

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 must carry a Retry-After header")
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != string(gate.DenyQuota) {
		t.Errorf("expected %s, got %s", gate.DenyQuota, resp.Code)
	}
	if resp.Limit != 10 || resp.CurrentUsage != 10 {
		t.Errorf("expected limit/usage 10/10, got %d/%d", resp.Limit, resp.CurrentUsage)
	}
	if resp.ResetTime == nil || !resp.ResetTime.After(now) {
		t.Errorf("expected a future reset time, got %v", resp.ResetTime)
	}

	if len(store.events) != 10 {
		t.Error("denied requests must not be billed")
	}
}

func TestGatedActionSuccessRecordsUsage(t *testing.T) {
	router, store, _ := setupTestServer(t)
	token := signToken(t, "active-pro")

	w := doJSON(t, router, "POST", "/api/v1/documents/generate", token, GenerateDocumentRequest{
		DocumentType: "NDA",
		Instructions: "Mutual, two-year term, Delaware law.",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result CompletionResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Content != "Here is your draft." {
		t.Errorf("unexpected content %q", result.Content)
	}
	if result.RequestID == "" {
		t.Error("response must echo a request ID")
	}

	if len(store.events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(store.events))
	}
	event := store.events[0]
	if event.ActionTag != ledger.TagDocumentGenerated {
		t.Errorf("expected %s, got %s", ledger.TagDocumentGenerated, event.ActionTag)
	}
	if event.UserID != "active-pro" {
		t.Errorf("expected user active-pro, got %s", event.UserID)
	}
	if event.Metadata.Provider != "stub" || event.Metadata.Model != "stub-model" {
		t.Errorf("unexpected metadata: %+v", event.Metadata)
	}
	if event.Metadata.PromptTokens != 10 || event.Metadata.CompletionTokens != 20 {
		t.Errorf("unexpected token counts: %+v", event.Metadata)
	}
}

// TestRecordFailureDoesNotAffectResponse: the ledger going down after a
// successful completion must stay invisible to the caller.
func TestRecordFailureDoesNotAffectResponse(t *testing.T) {
	router, store, _ := setupTestServer(t)
	store.insertErr = errors.New("connection refused")
	token := signToken(t, "active-pro")

	w := doJSON(t, router, "POST", "/api/v1/chat", token, ChatRequest{Message: "hello"})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 despite record failure, got %d", w.Code)
	}
}

// TestQuotaCheckFailsOpen: a store outage during the quota check admits the
// request rather than blocking paying users.
func TestQuotaCheckFailsOpen(t *testing.T) {
	router, store, _ := setupTestServer(t)
	store.countErr = errors.New("connection refused")
	token := signToken(t, "free-user")

	w := doJSON(t, router, "POST", "/api/v1/chat", token, ChatRequest{Message: "hello"})

	if w.Code != http.StatusOK {
		t.Errorf("expected fail-open 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpstreamFailureReturns502(t *testing.T) {
	router, store, provider := setupTestServer(t)
	provider.err = errors.New("model overloaded")
	token := signToken(t, "active-pro")

	w := doJSON(t, router, "POST", "/api/v1/chat", token, ChatRequest{Message: "hello"})

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "UPSTREAM_ERROR" {
		t.Errorf("expected UPSTREAM_ERROR, got %s", resp.Code)
	}
	if len(store.events) != 0 {
		t.Error("failed completions must not be billed")
	}
}

func TestEmptyInputReturns400(t *testing.T) {
	router, _, _ := setupTestServer(t)
	token := signToken(t, "active-pro")

	w := doJSON(t, router, "POST", "/api/v1/chat", token, ChatRequest{Message: "   "})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank message, got %d", w.Code)
	}
}

func TestUsageStatsEndpoint(t *testing.T) {
	router, store, _ := setupTestServer(t)
	token := signToken(t, "canceled-user")

	// Canceled users still see their history.
	now := time.Now().UTC()
	store.events = append(store.events,
		ledger.UsageEvent{UserID: "canceled-user", ActionTag: ledger.TagChatbotQuery, CreatedAt: now.Add(-time.Hour)},
		ledger.UsageEvent{UserID: "canceled-user", ActionTag: ledger.TagChatbotQuery, CreatedAt: now.Add(-10 * 24 * time.Hour)},
		ledger.UsageEvent{UserID: "someone-else", ActionTag: ledger.TagChatbotQuery, CreatedAt: now},
	)

	w := doJSON(t, router, "GET", "/api/v1/usage", token, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp UsageStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.UserID != "canceled-user" || resp.WindowDays != 30 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if got := resp.Stats[ledger.TagChatbotQuery]; got.Total != 2 {
		t.Errorf("expected 2 chat events in window, got %+v", got)
	}
	if got := resp.Stats[ledger.TagLegalLookup]; got.Total != 0 {
		t.Errorf("expected zero stats for unused tag, got %+v", got)
	}
}

// TestUsageStatsZeroStateOnOutage: the dashboard renders zeros, not an error,
// when the ledger is unreachable.
func TestUsageStatsZeroStateOnOutage(t *testing.T) {
	router, store, _ := setupTestServer(t)
	store.aggregateErr = errors.New("connection refused")
	token := signToken(t, "active-pro")

	w := doJSON(t, router, "GET", "/api/v1/usage", token, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp UsageStatsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Stats) != len(ledger.AllTags) {
		t.Fatalf("expected a zero entry per tag, got %d", len(resp.Stats))
	}
	for tag, s := range resp.Stats {
		if s.Total != 0 || s.Today != 0 {
			t.Errorf("%s: expected zero stats, got %+v", tag, s)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var status map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &status)
	if status["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", status["status"])
	}
}

func TestFormatWindow(t *testing.T) {
	tests := []struct {
		window time.Duration
		want   string
	}{
		{24 * time.Hour, "24 hours"},
		{7 * 24 * time.Hour, "7 days"},
		{6 * time.Hour, "6 hours"},
		{time.Minute, "1m0s"},
	}
	for _, tt := range tests {
		if got := formatWindow(tt.window); got != tt.want {
			t.Errorf("formatWindow(%v): expected %q, got %q", tt.window, tt.want, got)
		}
	}
}
