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
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paradoc_requests_total",
			Help: "Total number of API requests by action and outcome",
		},
		[]string{"action", "outcome"},
	)
	promGateDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paradoc_gate_denials_total",
			Help: "Requests rejected by the access gate, by action and reason",
		},
		[]string{"action", "reason"},
	)
	promGateFailOpen = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paradoc_gate_fail_open_total",
			Help: "Quota checks that failed open because the event store was unavailable",
		},
	)
	promLLMDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paradoc_llm_request_duration_milliseconds",
			Help:    "LLM completion latency in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		},
		[]string{"provider", "action"},
	)
	promLLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paradoc_llm_tokens_total",
			Help: "LLM tokens consumed, by provider and direction",
		},
		[]string{"provider", "direction"},
	)
)

func registerMetrics() {
	prometheus.MustRegister(
		promRequestsTotal,
		promGateDenials,
		promGateFailOpen,
		promLLMDuration,
		promLLMTokens,
	)
}
