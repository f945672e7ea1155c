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

package llm

import (
	"context"
	"time"
)

// Provider is the unified interface for completion backends.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the provider identifier used in logs, metrics, and
	// usage event metadata ("openai", "bedrock").
	Name() string

	// Complete generates a completion for the given request. The context
	// carries cancellation and timeout.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// HealthCheck verifies the provider is reachable and authenticated.
	HealthCheck(ctx context.Context) error
}

// CompletionRequest is one completion call.
type CompletionRequest struct {
	// System primes the model with the task framing (e.g. the legal
	// drafting instructions). Optional.
	System string
	// Prompt is the user-supplied input.
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// CompletionResponse carries the generated text plus the token accounting
// the usage ledger needs.
type CompletionResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}
