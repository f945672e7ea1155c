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
Package logger provides structured JSON logging for ParaDoc services.

# Overview

Logs are emitted as single-line JSON to stdout so they can be shipped
unmodified to CloudWatch or any other aggregation backend.

Each entry carries:
  - Timestamp (RFC3339Nano)
  - Level (DEBUG, INFO, WARN, ERROR)
  - Component name
  - Instance ID and container name
  - User ID and request ID for correlation
  - Custom fields

# Usage

	log := logger.New("server")

	log.Info(userID, requestID, "Document generated", map[string]interface{}{
	    "action": "DOCUMENT_GENERATED",
	    "model":  "gpt-4o",
	})

	log.ErrorWithCode(userID, requestID, "Completion failed", 502, err, nil)

# Environment Variables

  - INSTANCE_ID: deployment instance identifier
  - HOSTNAME: container hostname (auto-detected)

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
