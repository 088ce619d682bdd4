package domain

import "sort"

// Column is a column as reported by schema introspection.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// TableSchema is a table and its columns in catalog order.
type TableSchema struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// ColumnSet is a set of normalized column names.
type ColumnSet map[string]struct{}

// Has reports whether name is in the set.
func (c ColumnSet) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// SchemaMap maps normalized table names to their normalized column names.
type SchemaMap map[string]ColumnSet

// NewSchemaMap builds a SchemaMap from introspected tables, normalizing every
// table and column name. Tables reported more than once have their columns merged.
func NewSchemaMap(tables []TableSchema) SchemaMap {
	m := make(SchemaMap, len(tables))
	for _, t := range tables {
		name := Normalize(t.Name)
		cols, ok := m[name]
		if !ok {
			cols = make(ColumnSet, len(t.Columns))
			m[name] = cols
		}
		for _, c := range t.Columns {
			cols[Normalize(c.Name)] = struct{}{}
		}
	}
	return m
}

// Tables returns the table names in sorted order.
func (m SchemaMap) Tables() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasColumn reports whether table exists and has column.
func (m SchemaMap) HasColumn(table, column string) bool {
	cols, ok := m[table]
	return ok && cols.Has(column)
}
