package ast

import "fmt"

// Location identifies a byte offset inside a template string.
type Location struct {
	Template string // Template source, or the rule name it came from
	Offset   int    // Byte offset (0-based)
}

// String returns a human-readable representation of the location.
// Format: "template@offset"
func (l Location) String() string {
	if l.Template == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%q@%d", l.Template, l.Offset)
}

// IsValid returns true if the location points into a known template.
func (l Location) IsValid() bool {
	return l.Template != "" && l.Offset >= 0
}
