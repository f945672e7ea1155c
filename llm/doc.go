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
Package llm wraps the third-party completion APIs behind a single Provider
interface.

Two implementations ship: an OpenAI-compatible HTTP provider (works against
OpenAI or any endpoint speaking the chat-completions protocol) and an AWS
Bedrock provider authenticated via the AWS SDK credential chain.

The platform treats completion as an opaque capability: prompt in, text and
token counts out. Token counts feed the usage ledger; EstimateCostCents turns
them into the cost metadata stored on each usage event.
*/
package llm
