package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"alice-hq/hassil-parser/pkg/expand"
	"alice-hq/hassil-parser/pkg/grammar"
	"alice-hq/hassil-parser/pkg/sampler"
)

// Adapter runs units through the sampler. Rules are canonicalized before
// compilation because the sampler takes one template string per rule.
type Adapter struct {
	grammar         *sampler.Grammar
	explosionFactor int
	logger          *slog.Logger
}

// NewAdapter compiles the shared rules of a document. An error means the
// sampler cannot serve this document at all. explosionFactor bounds the
// sampled candidates of one sentence to that multiple of the pattern cap,
// as the custom expander does.
func NewAdapter(shared grammar.Rules, maxDepth, explosionFactor int, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default().With("component", "orchestrator")
	}
	if explosionFactor <= 0 {
		explosionFactor = expand.DefaultExplosionFactor
	}
	g, err := sampler.Compile(grammar.Normalize(shared, logger), sampler.WithMaxDepth(maxDepth))
	if err != nil {
		return nil, fmt.Errorf("compile shared rules: %w", err)
	}
	return &Adapter{grammar: g, explosionFactor: explosionFactor, logger: logger}, nil
}

// Expand samples every sentence with local rules overriding the shared
// ones and collects at most limit normalized, distinct patterns. Any
// compile, parse or sampling error is returned unchanged.
func (a *Adapter) Expand(ctx context.Context, sentences []string, local grammar.Rules, limit int) ([]string, error) {
	g := a.grammar
	if len(local) > 0 {
		var err error
		if g, err = g.Extend(grammar.Normalize(local, a.logger)); err != nil {
			return nil, fmt.Errorf("compile local rules: %w", err)
		}
	}

	budget := a.explosionFactor * max(limit, 0)
	c := expand.NewCollector(limit)
	for _, sentence := range sentences {
		if c.Full() {
			break
		}
		candidates := 0
		for s, err := range g.Sample(ctx, sentence) {
			if err != nil {
				return nil, fmt.Errorf("sample %q: %w", sentence, err)
			}
			s, _ = expand.StripRuleTokens(s)
			c.Add(s)
			candidates++

			if c.Full() {
				break
			}
			if candidates > budget {
				a.logger.Debug("explosion guard reached, truncating sampling",
					"template", sentence, "candidates", candidates, "patterns", c.Len())
				break
			}
		}
	}
	return c.Patterns(), nil
}
