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
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"paradoc/platform/gate"
	"paradoc/platform/identity"
	"paradoc/platform/ledger"
	"paradoc/platform/llm"
	"paradoc/platform/shared/logger"
)

// maxCompletionTokens caps every completion the platform requests.
const maxCompletionTokens = 4096

// Service components, wired once in initializeComponents. Read-only after
// startup; safe for concurrent handler use.
var (
	db            *sql.DB
	identityStore identity.Store
	usageRecorder *ledger.Recorder
	accessGate    *gate.Gate
	burstLimiter  *gate.BurstLimiter
	llmProvider   llm.Provider
	appLogger     *logger.Logger
	jwtSecret     []byte
)

// Run starts the ParaDoc API server.
//
// Environment variables:
//
//	PORT              - HTTP port (default: 8080)
//	DATABASE_URL      - PostgreSQL connection string (or DATABASE_HOST etc.)
//	JWT_SECRET        - HS256 secret for session tokens (required)
//	REDIS_URL         - optional; enables the burst limiter
//	BURST_LIMIT       - burst ceiling per minute (default: 30)
//	QUOTA_POLICY_FILE - optional YAML tier-limit overrides
//	LLM_PROVIDER      - "openai" (default) or "bedrock"
//	OPENAI_API_KEY    - OpenAI API key
//	OPENAI_BASE_URL   - optional OpenAI-compatible endpoint
//	OPENAI_MODEL      - default model
//	BEDROCK_REGION    - AWS region for Bedrock
//	BEDROCK_MODEL     - Bedrock model ID
func Run() {
	log.Println("Starting ParaDoc API server...")

	initializeComponents()

	if burstLimiter != nil {
		defer burstLimiter.Close()
	}

	r := mux.NewRouter()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "*")},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})

	// Unauthenticated surface
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Authenticated API
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/documents/generate", generateDocumentHandler).Methods("POST")
	api.HandleFunc("/documents/summarize", summarizeDocumentHandler).Methods("POST")
	api.HandleFunc("/chat", chatHandler).Methods("POST")
	api.HandleFunc("/lookup", legalLookupHandler).Methods("POST")
	api.HandleFunc("/usage", usageStatsHandler).Methods("GET")

	port := getEnv("PORT", "8080")
	handler := c.Handler(requestIDMiddleware(r))
	log.Printf("ParaDoc API listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func initializeComponents() {
	appLogger = logger.New("server")
	registerMetrics()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	jwtSecret = []byte(secret)

	// Database connection string from separate env vars (12-Factor), with
	// DATABASE_URL as the fallback for legacy deployments.
	dbURL := os.Getenv("DATABASE_URL")
	dbHost := os.Getenv("DATABASE_HOST")
	dbPassword := os.Getenv("DATABASE_PASSWORD")
	if dbHost != "" && dbPassword != "" {
		dbPort := getEnv("DATABASE_PORT", "5432")
		dbName := getEnv("DATABASE_NAME", "paradoc")
		dbUser := getEnv("DATABASE_USER", "paradoc_app")
		dbSSLMode := getEnv("DATABASE_SSLMODE", "require")
		// URL-encode password to handle special characters in URI format
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			url.QueryEscape(dbUser), url.QueryEscape(dbPassword), dbHost, dbPort, dbName, dbSSLMode)
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL (or DATABASE_HOST/DATABASE_PASSWORD) is required")
	}

	var err error
	db, err = sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	log.Println("✅ Database configured")

	identityStore = identity.NewPostgresStore(db)

	ledgerStore := ledger.NewPostgresStore(db)
	if err := ledgerStore.EnsureSchema(context.Background()); err != nil {
		// Schema bootstrap needs a live database; fail-open semantics only
		// start once the server is serving traffic.
		log.Printf("Warning: usage_events schema bootstrap failed: %v", err)
	}
	usageRecorder = ledger.NewRecorder(ledgerStore)

	policies, err := gate.LoadPolicies(os.Getenv("QUOTA_POLICY_FILE"))
	if err != nil {
		log.Fatalf("Failed to load quota policies: %v", err)
	}
	accessGate = gate.New(usageRecorder, policies)
	log.Println("✅ Access gate initialized")

	// Burst limiter is optional: without Redis the tier quotas still
	// apply, only the hard per-minute ceiling is skipped.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		burstLimit, _ := strconv.Atoi(getEnv("BURST_LIMIT", "30"))
		burstLimiter, err = gate.NewBurstLimiter(redisURL, burstLimit, time.Minute)
		if err != nil {
			log.Printf("Warning: burst limiter disabled: %v", err)
			burstLimiter = nil
		} else {
			log.Printf("✅ Burst limiter enabled: %d req/min", burstLimit)
		}
	}

	switch getEnv("LLM_PROVIDER", "openai") {
	case "bedrock":
		provider, err := llm.NewBedrockProvider(os.Getenv("BEDROCK_REGION"), os.Getenv("BEDROCK_MODEL"))
		if err != nil {
			log.Fatalf("Failed to initialize Bedrock provider: %v", err)
		}
		llmProvider = provider
	default:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Fatal("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		llmProvider = llm.NewOpenAIProvider(apiKey, os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"))
	}
	log.Printf("✅ LLM provider: %s", llmProvider.Name())
}

// getEnv returns the environment variable value or a default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
