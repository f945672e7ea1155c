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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"paradoc/platform/identity"
	"paradoc/platform/shared/logger"
)

func setupAuth(t *testing.T) {
	t.Helper()

	identityStore = &memIdentity{users: map[string]*identity.User{
		"active-pro": {ID: "active-pro", Email: "pro@example.com", Tier: identity.TierPro, Status: identity.StatusActive},
	}}
	appLogger = logger.New("test")
	jwtSecret = []byte("test-secret")
}

func TestResolveUser(t *testing.T) {
	setupAuth(t)

	req := httptest.NewRequest("GET", "/api/v1/usage", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "active-pro"))

	user, err := resolveUser(req)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user.ID != "active-pro" || user.Tier != identity.TierPro {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestResolveUserRejectsBadTokens(t *testing.T) {
	setupAuth(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "active-pro",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, err := expired.SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "active-pro"})
	wrongKeyToken, err := wrongKey.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSubjectToken, err := noSubject.SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expiredToken},
		{"wrong signing key", "Bearer " + wrongKeyToken},
		{"missing subject", "Bearer " + noSubjectToken},
		{"unknown user", "Bearer " + signToken(t, "ghost")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/usage", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if _, err := resolveUser(req); err == nil {
				t.Error("expected resolution to fail")
			}
		})
	}
}

// testHandler passes the request ID from the context to a check function.
func testHandler(check func(id string)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		check(requestIDFrom(r.Context()))
	})
}

func TestRequestIDMiddlewareHonorsInboundID(t *testing.T) {
	handlerCalled := false
	h := requestIDMiddleware(testHandler(func(id string) {
		handlerCalled = true
		if id != "req-42" {
			t.Errorf("expected inbound request ID to survive, got %q", id)
		}
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if !handlerCalled {
		t.Fatal("handler not invoked")
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected request ID echoed in response, got %q", got)
	}
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	h := requestIDMiddleware(testHandler(func(id string) {
		if id == "" {
			t.Error("expected a generated request ID")
		}
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request ID in the response")
	}
}
