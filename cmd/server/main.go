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

// Package main is the entry point for the ParaDoc API server.
//
// The server fronts all AI-backed features of the ParaDoc legal-document
// platform: document generation, chat, summarization, and legal lookup.
// Every request passes the access gate (subscription authorization and
// sliding-window quotas) before any LLM call, and is recorded to the usage
// ledger afterwards.
//
// Usage:
//
//	./server
//
// Configuration is environment-driven; see gateway.Run for the full list.
package main

import (
	"paradoc/platform/gateway"
)

func main() {
	gateway.Run()
}
