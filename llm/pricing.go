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

import "fmt"

// Model pricing as of mid 2025, USD.
// Stored in hundredths of a cent per 1K tokens so the table stays integral.

// ModelPricing contains per-token pricing for one model.
type ModelPricing struct {
	PromptPer1K     int // hundredths of a cent per 1K prompt tokens
	CompletionPer1K int // hundredths of a cent per 1K completion tokens
}

// modelPricing maps provider-model combinations to pricing.
var modelPricing = map[string]ModelPricing{
	// OpenAI
	"openai-gpt-4o":      {25, 100}, // $2.50/$10.00 per 1M tokens
	"openai-gpt-4o-mini": {2, 6},    // $0.15/$0.60 per 1M tokens
	"openai-gpt-4-turbo": {100, 300},

	// Bedrock Anthropic
	"bedrock-anthropic.claude-3-5-sonnet-20240620-v1:0": {30, 150},
	"bedrock-anthropic.claude-3-haiku-20240307-v1:0":    {3, 13},

	// Conservative fallback for unpriced models
	"default": {100, 300},
}

// EstimateCostCents estimates the cost of a completion in cents.
func EstimateCostCents(provider, model string, promptTokens, completionTokens int) float64 {
	pricing, ok := modelPricing[provider+"-"+model]
	if !ok {
		pricing = modelPricing["default"]
	}

	promptCost := float64(promptTokens) * float64(pricing.PromptPer1K) / 1000
	completionCost := float64(completionTokens) * float64(pricing.CompletionPer1K) / 1000

	// Table is in hundredths of a cent.
	return (promptCost + completionCost) / 100
}

// FormatCostToDollars converts cents to a dollar string (135 -> "$1.35").
func FormatCostToDollars(cents float64) string {
	return fmt.Sprintf("$%.2f", cents/100)
}
