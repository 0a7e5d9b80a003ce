package expand

import (
	"regexp"
	"strings"
)

var (
	// whitespaceRun matches every rune unicode.IsSpace accepts.
	whitespaceRun = regexp.MustCompile(`[\s\v\x{85}\p{Z}]{2,}`)
	ruleToken     = regexp.MustCompile(`<[\p{L}\p{N}_]+>`)
)

// Normalize collapses runs of two or more whitespace characters into a
// single space and trims the result.
func Normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// StripRuleTokens removes every <word> token, including tokens formed by
// an earlier removal. It reports whether anything was removed.
func StripRuleTokens(s string) (string, bool) {
	stripped := false
	for ruleToken.MatchString(s) {
		s = ruleToken.ReplaceAllString(s, "")
		stripped = true
	}
	return s, stripped
}

// Collector accumulates normalized, deduplicated patterns in first-seen
// order up to a limit. Both expansion paths feed one, so their results
// follow the same contract.
type Collector struct {
	limit    int
	seen     map[string]struct{}
	patterns []string
}

// NewCollector creates a collector holding at most limit patterns. A
// limit below zero is treated as zero.
func NewCollector(limit int) *Collector {
	limit = max(limit, 0)
	return &Collector{
		limit: limit,
		seen:  make(map[string]struct{}, min(limit, 64)),
	}
}

// Add normalizes s and keeps it unless it is empty, already seen or the
// collector is full. It reports whether s was kept.
func (c *Collector) Add(s string) bool {
	if c.Full() {
		return false
	}
	s = Normalize(s)
	if s == "" {
		return false
	}
	if _, dup := c.seen[s]; dup {
		return false
	}
	c.seen[s] = struct{}{}
	c.patterns = append(c.patterns, s)
	return true
}

// Full reports whether the limit has been reached.
func (c *Collector) Full() bool {
	return len(c.patterns) >= c.limit
}

// Len returns the number of patterns kept so far.
func (c *Collector) Len() int {
	return len(c.patterns)
}

// Patterns returns the kept patterns in first-seen order.
func (c *Collector) Patterns() []string {
	return c.patterns
}
