package intents

import (
	"slices"

	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/orchestrator"
)

// DefaultParameters is the context filter stored with a template row.
type DefaultParameters struct {
	ExcludesDomain []string `json:"excludes_domain,omitempty"`
	RequiresDomain string   `json:"requires_domain,omitempty"`
}

// IsZero reports whether no filter is set.
func (p *DefaultParameters) IsZero() bool {
	return p == nil || (len(p.ExcludesDomain) == 0 && p.RequiresDomain == "")
}

// Unit is one intent ready for expansion. It is not modified after
// construction.
type Unit struct {
	Domain     string
	Intent     string
	Service    string
	Language   string
	Sentences  []string
	Rules      grammar.Rules // Rules declared inside the intent's data blocks
	Parameters *DefaultParameters
}

// NewUnit collects the sentences and context filters of an intent.
// Sentences keep their order across data blocks and are not deduplicated.
// Excluded domains are unioned in first-seen order; the last required
// domain wins.
func NewUnit(domain, language string, intent Intent) Unit {
	u := Unit{
		Domain:   domain,
		Intent:   intent.Name,
		Service:  ServiceName(intent.Name, domain),
		Language: language,
	}

	var params DefaultParameters
	for _, block := range intent.Data {
		u.Sentences = append(u.Sentences, block.Sentences...)

		for _, d := range block.ExcludesContext.Domain {
			if !slices.Contains(params.ExcludesDomain, d) {
				params.ExcludesDomain = append(params.ExcludesDomain, d)
			}
		}
		if required := block.RequiresContext.Domain; len(required) > 0 {
			params.RequiresDomain = required[len(required)-1]
		}

		if len(block.ExpansionRules) > 0 {
			u.Rules = grammar.Override(u.Rules, block.ExpansionRules)
		}
	}

	if !params.IsZero() {
		u.Parameters = &params
	}
	return u
}

// Expansion returns the orchestrator's view of the unit.
func (u Unit) Expansion() orchestrator.Unit {
	return orchestrator.Unit{
		Domain:    u.Domain,
		Intent:    u.Intent,
		Sentences: u.Sentences,
		Rules:     u.Rules,
	}
}
