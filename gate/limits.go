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

package gate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"paradoc/platform/identity"
	"paradoc/platform/ledger"
)

// PolicyTable maps tiers to request budgets for one action family.
// Every table must carry a free entry: it is the fallback arm for
// unrecognized tiers, so a bad tier value degrades to the most restrictive
// budget instead of erroring or granting unlimited access.
type PolicyTable map[identity.Tier]Policy

// For resolves a tier to its policy, falling back to the free entry.
func (t PolicyTable) For(tier identity.Tier) Policy {
	if p, ok := t[tier]; ok && p.RequestLimit > 0 {
		return p
	}
	return t[identity.TierFree]
}

// PolicySet holds one table per billable action.
type PolicySet map[ledger.ActionTag]PolicyTable

// DefaultPolicies returns the built-in tier limit tables. These are literal
// product configuration, not computed values; adjust via the YAML override
// file rather than in code.
func DefaultPolicies() PolicySet {
	day := 24 * time.Hour
	return PolicySet{
		ledger.TagDocumentGenerated: {
			identity.TierFree:       {RequestLimit: 5, Window: day},
			identity.TierTrial:      {RequestLimit: 20, Window: day},
			identity.TierPro:        {RequestLimit: 100, Window: day},
			identity.TierEnterprise: {RequestLimit: 1000, Window: day},
		},
		ledger.TagChatbotQuery: {
			identity.TierFree:       {RequestLimit: 10, Window: day},
			identity.TierTrial:      {RequestLimit: 50, Window: day},
			identity.TierPro:        {RequestLimit: 500, Window: day},
			identity.TierEnterprise: {RequestLimit: 5000, Window: day},
		},
		ledger.TagDocumentSummary: {
			identity.TierFree:       {RequestLimit: 5, Window: day},
			identity.TierTrial:      {RequestLimit: 25, Window: day},
			identity.TierPro:        {RequestLimit: 200, Window: day},
			identity.TierEnterprise: {RequestLimit: 2000, Window: day},
		},
		ledger.TagLegalLookup: {
			identity.TierFree:       {RequestLimit: 10, Window: day},
			identity.TierTrial:      {RequestLimit: 50, Window: day},
			identity.TierPro:        {RequestLimit: 300, Window: day},
			identity.TierEnterprise: {RequestLimit: 3000, Window: day},
		},
	}
}

// policyFile is the YAML shape of a limits override file:
//
//	policies:
//	  CHATBOT_QUERY:
//	    free:
//	      request_limit: 10
//	      window: 24h
type policyFile struct {
	Policies map[string]map[string]policyEntry `yaml:"policies"`
}

type policyEntry struct {
	RequestLimit int    `yaml:"request_limit"`
	Window       string `yaml:"window"`
}

// LoadPolicies returns the defaults overlaid with entries from the YAML file
// at path. Overrides replace whole (tag, tier) entries; tags or tiers absent
// from the file keep their defaults.
func LoadPolicies(path string) (PolicySet, error) {
	policies := DefaultPolicies()
	if path == "" {
		return policies, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	for tagName, tiers := range file.Policies {
		tag := ledger.ActionTag(tagName)
		if !tag.Known() {
			return nil, fmt.Errorf("policy file %s: unknown action tag %q", path, tagName)
		}
		table := policies[tag]
		for tierName, entry := range tiers {
			tier := identity.Tier(tierName)
			if !tier.Known() {
				return nil, fmt.Errorf("policy file %s: unknown tier %q under %s", path, tierName, tagName)
			}
			if entry.RequestLimit <= 0 {
				return nil, fmt.Errorf("policy file %s: %s/%s: request_limit must be positive", path, tagName, tierName)
			}
			window, err := time.ParseDuration(entry.Window)
			if err != nil || window <= 0 {
				return nil, fmt.Errorf("policy file %s: %s/%s: invalid window %q", path, tagName, tierName, entry.Window)
			}
			table[tier] = Policy{RequestLimit: entry.RequestLimit, Window: window}
		}
	}

	return policies, nil
}
