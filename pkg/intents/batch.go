package intents

import (
	"sort"
	"strings"

	"alice-hq/hassil-parser/pkg/grammar"
)

// CommonDocument holds the rules and lists shared by every domain.
const CommonDocument = "_common"

// Batch is the set of documents of one language, keyed by file stem.
type Batch struct {
	Language  string
	Documents map[string]*Document
}

// NewBatch creates an empty batch.
func NewBatch(language string) *Batch {
	return &Batch{
		Language:  language,
		Documents: make(map[string]*Document),
	}
}

// Add stores a document under name.
func (b *Batch) Add(name string, doc *Document) {
	b.Documents[name] = doc
}

// IsMeta reports whether a document name is a meta document such as
// "_common" rather than a domain.
func IsMeta(name string) bool {
	return strings.HasPrefix(name, "_")
}

// Domains returns the domain documents in sorted order.
func (b *Batch) Domains() []string {
	var out []string
	for name := range b.Documents {
		if !IsMeta(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// MergeCommon returns the shared rule table: the common document's
// expansion rules plus its usable lists that are not already rules.
func (b *Batch) MergeCommon() grammar.Rules {
	rules := make(grammar.Rules)
	common, ok := b.Documents[CommonDocument]
	if !ok || common == nil {
		return rules
	}

	rules = grammar.Override(rules, common.ExpansionRules)
	grammar.MergeLists(rules, common.Lists)
	return rules
}

// DomainRules returns the document-level rules of a domain: shared rules
// overridden by the domain's own, plus the domain's usable lists that are
// not already rules.
func DomainRules(shared grammar.Rules, doc *Document) grammar.Rules {
	rules := grammar.Override(shared, doc.ExpansionRules)
	grammar.MergeLists(rules, doc.Lists)
	return rules
}
