package errors

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"alice-hq/hassil-parser/pkg/template/ast"
)

// Context renders the template with a caret under the error offset:
//
//	  | turn on (the light
//	  |         ^
func Context(location ast.Location) string {
	if !location.IsValid() {
		return ""
	}

	src := location.Template
	offset := location.Offset
	if offset > len(src) {
		offset = len(src)
	}

	column := utf8.RuneCountInString(src[:offset])

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  | %s\n", src))
	sb.WriteString(fmt.Sprintf("  | %s^", strings.Repeat(" ", column)))
	return sb.String()
}
