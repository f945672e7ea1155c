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
	"math"
	"testing"
)

func TestEstimateCostCents(t *testing.T) {
	tests := []struct {
		name             string
		provider         string
		model            string
		promptTokens     int
		completionTokens int
		wantCents        float64
	}{
		{
			// 1M prompt tokens of gpt-4o at $2.50/1M = 250 cents.
			name:     "gpt-4o large request",
			provider: "openai", model: "gpt-4o",
			promptTokens: 1_000_000, completionTokens: 0,
			wantCents: 250,
		},
		{
			// 1K/1K of gpt-4o-mini: 0.02 + 0.06 cents.
			name:     "gpt-4o-mini small request",
			provider: "openai", model: "gpt-4o-mini",
			promptTokens: 1000, completionTokens: 1000,
			wantCents: 0.08,
		},
		{
			name:     "bedrock sonnet",
			provider: "bedrock", model: "anthropic.claude-3-5-sonnet-20240620-v1:0",
			promptTokens: 2000, completionTokens: 1000,
			wantCents: 2.1,
		},
		{
			// Unknown models use the conservative default table entry.
			name:     "unknown model falls back",
			provider: "openai", model: "gpt-99",
			promptTokens: 1000, completionTokens: 1000,
			wantCents: 4,
		},
		{
			name:     "zero tokens cost nothing",
			provider: "openai", model: "gpt-4o",
			promptTokens: 0, completionTokens: 0,
			wantCents: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateCostCents(tt.provider, tt.model, tt.promptTokens, tt.completionTokens)
			if math.Abs(got-tt.wantCents) > 1e-9 {
				t.Errorf("expected %v cents, got %v", tt.wantCents, got)
			}
		})
	}
}

func TestFormatCostToDollars(t *testing.T) {
	if got := FormatCostToDollars(135); got != "$1.35" {
		t.Errorf("expected $1.35, got %s", got)
	}
	if got := FormatCostToDollars(0.5); got != "$0.01" {
		t.Errorf("expected $0.01, got %s", got)
	}
}
