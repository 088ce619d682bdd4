package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	projectionPattern   = regexp.MustCompile(`select\s+(.*?)\s+from`)
	filterClausePattern = regexp.MustCompile(`\bwhere\s+(.*)`)
	filterColumnPattern = regexp.MustCompile(`([a-z0-9_ ]+)\s*(?:=|<|>|\blike\b)`)
)

// HeuristicChecker validates table and column references with pattern
// matching over normalized SQL. It understands a single unaliased table with a
// plain projection list and simple WHERE comparisons. Joins, subqueries,
// aliases, functions and qualified references are rejected.
type HeuristicChecker struct{}

func NewHeuristicChecker() *HeuristicChecker {
	return &HeuristicChecker{}
}

// CheckReferences returns ErrInvalidSchemaReference when the statement does not
// resolve to exactly one known table or touches a column that table lacks.
func (HeuristicChecker) CheckReferences(normalized string, schema SchemaMap) error {
	table, err := activeTable(normalized, schema)
	if err != nil {
		return err
	}

	projection, ok := projectionColumns(normalized)
	if !ok {
		return fmt.Errorf("%w: no SELECT ... FROM clause found", ErrInvalidSchemaReference)
	}

	columns := append(projection, filterColumns(normalized)...)
	for _, col := range columns {
		if col == "*" {
			continue
		}
		if col == "" {
			return fmt.Errorf("%w: unrecognized expression on table %q", ErrInvalidSchemaReference, table)
		}
		if !schema.HasColumn(table, col) {
			return fmt.Errorf("%w: column %q not found on table %q", ErrInvalidSchemaReference, col, table)
		}
	}
	return nil
}

// ReferencesValidSchema reports whether the normalized statement passes the
// heuristic reference check against schema.
func ReferencesValidSchema(normalized string, schema SchemaMap) bool {
	return HeuristicChecker{}.CheckReferences(normalized, schema) == nil
}

// activeTable finds the single schema table that appears as a standalone token.
func activeTable(normalized string, schema SchemaMap) (string, error) {
	padded := " " + normalized + " "

	var matches []string
	for _, table := range schema.Tables() {
		if strings.Contains(padded, " "+table+" ") {
			matches = append(matches, table)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no known table referenced", ErrInvalidSchemaReference)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: query matches multiple tables %v; only single-table queries are supported",
			ErrInvalidSchemaReference, matches)
	}
}

func projectionColumns(normalized string) ([]string, bool) {
	m := projectionPattern.FindStringSubmatch(normalized)
	if m == nil {
		return nil, false
	}
	parts := strings.Split(m[1], ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		cols = append(cols, strings.TrimSpace(p))
	}
	return cols, true
}

// filterColumns returns the token immediately preceding each comparison
// operator in the WHERE clause. An empty entry means the operator followed
// something other than a bare identifier, e.g. a function call.
func filterColumns(normalized string) []string {
	m := filterClausePattern.FindStringSubmatch(normalized)
	if m == nil {
		return nil
	}

	var cols []string
	for _, match := range filterColumnPattern.FindAllStringSubmatch(m[1], -1) {
		cols = append(cols, precedingToken(match[1]))
	}
	return cols
}

// precedingToken returns the last word of run, skipping a trailing "not" as in
// "name not like".
func precedingToken(run string) string {
	words := strings.Fields(run)
	for len(words) > 0 && words[len(words)-1] == "not" {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}
