package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ForbiddenKeywords are rejected anywhere in a statement, as whole words.
var ForbiddenKeywords = []string{"drop", "delete", "update", "insert", "alter", "truncate", "create", "replace"}

var forbiddenPattern = regexp.MustCompile(`\b(` + strings.Join(ForbiddenKeywords, "|") + `)\b`)

// CheckSafety reports why a normalized statement is not a read-only SELECT.
// The keyword scan covers the whole string, so a mutating statement pasted
// after a SELECT is still caught. Keywords inside string literals are rejected
// too; false positives are accepted in exchange for that guarantee.
func CheckSafety(normalized string) error {
	if !strings.HasPrefix(normalized, "select") {
		return fmt.Errorf("%w: only SELECT statements are allowed", ErrUnsafeStatement)
	}
	if kw := forbiddenPattern.FindString(normalized); kw != "" {
		return fmt.Errorf("%w: forbidden keyword %q", ErrUnsafeStatement, kw)
	}
	return nil
}

// IsSafe reports whether a normalized statement passes CheckSafety.
func IsSafe(normalized string) bool {
	return CheckSafety(normalized) == nil
}
