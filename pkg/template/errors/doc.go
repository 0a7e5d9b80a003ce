// Package errors provides located error types for template parsing and
// grammar compilation.
//
// # Error Types
//
// ErrorTypeSyntax: unbalanced delimiters, malformed rule references
//
// ErrorTypeReference: a rule reference with no definition
//
// ErrorTypeCycle: a rule that reaches itself through its own expansion
//
// ErrorTypeLimit: nesting depth exceeded
//
// ErrorTypeStructural: a rule or list with an unusable shape
//
// # Basic Usage
//
//	err := &errors.Error{
//	    Type:     errors.ErrorTypeReference,
//	    Message:  "Unknown rule <colour>",
//	    Location: ast.Location{Template: sentence, Offset: 5},
//	}
//	err.Suggestion = errors.SuggestRuleName("colour", ruleNames)
//
// Accumulate errors across sentences:
//
//	errList := errors.NewErrorList()
//	errList.Add(err)
//	return errList.ToError()
package errors
