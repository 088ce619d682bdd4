package domain

import (
	"sort"
	"strings"
)

// TableNotes is human-written context for a table, usually from the policy file.
type TableNotes struct {
	Description string
	Columns     map[string]string
}

// DescribeSchema renders tables as the plain-text schema block handed to the
// SQL generator. Tables are sorted by name; columns keep introspection order.
// notes are keyed by normalized table and column name.
func DescribeSchema(tables []TableSchema, notes map[string]TableNotes) string {
	sorted := make([]TableSchema, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for i, t := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}
		n := notes[Normalize(t.Name)]

		b.WriteString("Table ")
		b.WriteString(t.Name)
		if n.Description != "" {
			b.WriteString(": ")
			b.WriteString(n.Description)
		}
		b.WriteByte('\n')

		for _, c := range t.Columns {
			b.WriteString("  - ")
			b.WriteString(c.Name)
			if c.DataType != "" {
				b.WriteString(" (")
				b.WriteString(c.DataType)
				b.WriteByte(')')
			}
			if d := n.Columns[Normalize(c.Name)]; d != "" {
				b.WriteString(": ")
				b.WriteString(d)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
