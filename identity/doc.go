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
Package identity provides read-only access to user subscription state.

# Overview

Every gated request needs the caller's subscription tier and status to decide
whether the request is authorized and which quota table applies. This package
owns the Tier and SubscriptionStatus vocabularies and a Postgres-backed store
that fetches a single user row.

Subscription state is written exclusively by the billing webhook service;
nothing in this codebase updates a user row. Treat User values as a snapshot
taken at the start of the request.

# Usage

	store := identity.NewPostgresStore(db)
	user, err := store.Fetch(ctx, userID)
	if err != nil {
	    // identity.ErrUserNotFound or a wrapped database error
	}

# Tiers and Statuses

Tier is a closed enumeration (free, trial, pro, enterprise). Code that maps a
tier to limits must carry an explicit default arm so an unrecognized value
degrades to free-tier treatment rather than failing or granting unlimited
access.
*/
package identity
