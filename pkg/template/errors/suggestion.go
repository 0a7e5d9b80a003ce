package errors

import (
	"fmt"
	"sort"
	"strings"
)

// SuggestRuleName suggests a defined rule when an unknown one is referenced.
// It uses Levenshtein distance to find the closest name.
func SuggestRuleName(unknown string, defined []string) string {
	if len(defined) == 0 {
		return ""
	}

	names := append([]string(nil), defined...)
	sort.Strings(names)

	minDistance := 1000
	var bestMatch string
	for _, name := range names {
		dist := levenshteinDistance(unknown, name)
		if dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	if minDistance <= 2 || minDistance < len([]rune(unknown))/2 {
		return fmt.Sprintf("Did you mean <%s>?", bestMatch)
	}

	if len(names) > 5 {
		return fmt.Sprintf("Defined rules include: %s, ...", strings.Join(names[:5], ", "))
	}
	return fmt.Sprintf("Defined rules: %s", strings.Join(names, ", "))
}

// SuggestClosing suggests the delimiter that closes an open construct.
func SuggestClosing(open rune) string {
	switch open {
	case '(':
		return "Close the alternation with ')'"
	case '[':
		return "Close the optional span with ']'"
	case '{':
		return "Close the slot with '}'"
	case '<':
		return "Close the rule reference with '>'"
	default:
		return ""
	}
}

// levenshteinDistance computes the edit distance between two strings,
// counting runes rather than bytes.
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}

	s1 := []rune(a)
	s2 := []rune(b)

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
