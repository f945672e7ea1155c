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

/*
Package gateway is the ParaDoc HTTP API service.

Every AI-backed endpoint runs the same gated flow:

	resolve user → gate.Authorize → gate.CheckQuota → LLM call → ledger.Record

The gate decides before any billable work happens; the ledger records after
the work succeeded. Denials are mapped to structured JSON responses: 403 with
the accepted subscription statuses for auth denials, 429 with the limit,
window, current usage, and reset time for quota denials.

Endpoints:

	POST /api/v1/documents/generate   - draft a legal document
	POST /api/v1/chat                 - legal assistant chat
	POST /api/v1/documents/summarize  - summarize a document
	POST /api/v1/lookup               - statute / case lookup
	GET  /api/v1/usage                - per-user usage dashboard stats
	GET  /health                      - liveness and dependency status
	GET  /metrics                     - Prometheus metrics

Configuration is environment-driven; see Run.
*/
package gateway
