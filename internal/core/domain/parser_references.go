package domain

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ParserChecker validates references with PostgreSQL's parser. Unlike
// HeuristicChecker it resolves joins, table aliases, qualified column
// references and subqueries. CTEs and subquery aliases are accepted as
// relations whose columns cannot be verified. At least one base table must be
// referenced and only allowlisted functions may be called.
type ParserChecker struct{}

func NewParserChecker() *ParserChecker {
	return &ParserChecker{}
}

// statementRefs is everything a statement references, collected in one walk.
type statementRefs struct {
	tables  []string          // base tables from RangeVar nodes
	aliases map[string]string // alias or bare table name -> base table
	derived map[string]bool   // CTE names and subquery/function aliases
	outputs map[string]bool   // SELECT list aliases
	columns [][]string        // ColumnRef field names; "*" for A_Star
	funcs   []string          // unqualified, lower-cased function names
}

// allowedFuncs are the aggregates and scalar functions a read-only reporting
// query may call. Anything else, pg_sleep or pg_read_file included, is refused.
var allowedFuncs = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"string_agg": true, "array_agg": true, "bool_and": true, "bool_or": true,
	"lower": true, "upper": true, "length": true, "char_length": true,
	"trim": true, "btrim": true, "ltrim": true, "rtrim": true,
	"substring": true, "substr": true, "concat": true, "replace": true,
	"abs": true, "round": true, "ceil": true, "floor": true,
	"date_trunc": true, "date_part": true, "extract": true, "to_char": true,
	"now": true, "age": true,
}

// CheckReferences parses the normalized statement and verifies every table and
// column it touches. Statements that do not parse as exactly one SELECT are
// reported as ErrUnsafeStatement.
func (ParserChecker) CheckReferences(normalized string, schema SchemaMap) error {
	tree, err := pg_query.Parse(normalized)
	if err != nil {
		return fmt.Errorf("%w: failed to parse SQL: %w", ErrUnsafeStatement, err)
	}
	if len(tree.Stmts) != 1 {
		return fmt.Errorf("%w: expected exactly one statement, got %d", ErrUnsafeStatement, len(tree.Stmts))
	}
	stmt := tree.Stmts[0].Stmt
	if stmt == nil || stmt.GetSelectStmt() == nil {
		return fmt.Errorf("%w: only SELECT statements are allowed", ErrUnsafeStatement)
	}

	refs := collectRefs(stmt)
	for _, fn := range refs.funcs {
		if !allowedFuncs[fn] {
			return fmt.Errorf("%w: function %q is not allowed", ErrUnsafeStatement, fn)
		}
	}
	if len(refs.tables) == 0 {
		return fmt.Errorf("%w: no known table referenced", ErrInvalidSchemaReference)
	}

	for _, t := range refs.tables {
		if _, ok := schema[t]; !ok && !refs.derived[t] {
			return fmt.Errorf("%w: table %q not found", ErrInvalidSchemaReference, t)
		}
	}

	for _, fields := range refs.columns {
		if err := refs.checkColumn(fields, schema); err != nil {
			return err
		}
	}
	return nil
}

func (r *statementRefs) checkColumn(fields []string, schema SchemaMap) error {
	col := fields[len(fields)-1]

	if len(fields) == 1 {
		if col == "*" || r.outputs[col] {
			return nil
		}
		for _, t := range r.tables {
			if schema.HasColumn(t, col) {
				return nil
			}
		}
		return fmt.Errorf("%w: column %q not found on any referenced table", ErrInvalidSchemaReference, col)
	}

	qualifier := fields[len(fields)-2]
	if r.derived[qualifier] {
		return nil
	}
	table, ok := r.aliases[qualifier]
	if !ok {
		return fmt.Errorf("%w: unknown table or alias %q", ErrInvalidSchemaReference, qualifier)
	}
	if r.derived[table] {
		return nil
	}
	if col == "*" {
		return nil
	}
	if !schema.HasColumn(table, col) {
		return fmt.Errorf("%w: column %q not found on table %q", ErrInvalidSchemaReference, col, table)
	}
	return nil
}

func collectRefs(stmt *pg_query.Node) *statementRefs {
	refs := &statementRefs{
		aliases: make(map[string]string),
		derived: make(map[string]bool),
		outputs: make(map[string]bool),
	}

	walk(stmt.ProtoReflect(), func(m protoreflect.ProtoMessage) {
		switch n := m.(type) {
		case *pg_query.RangeVar:
			refs.tables = append(refs.tables, n.Relname)
			refs.aliases[n.Relname] = n.Relname
			if n.Alias != nil && n.Alias.Aliasname != "" {
				refs.aliases[n.Alias.Aliasname] = n.Relname
			}
		case *pg_query.CommonTableExpr:
			refs.derived[n.Ctename] = true
		case *pg_query.RangeSubselect:
			if n.Alias != nil {
				refs.derived[n.Alias.Aliasname] = true
			}
		case *pg_query.RangeFunction:
			if n.Alias != nil {
				refs.derived[n.Alias.Aliasname] = true
			}
		case *pg_query.ResTarget:
			if n.Name != "" {
				refs.outputs[n.Name] = true
			}
		case *pg_query.FuncCall:
			if len(n.Funcname) > 0 {
				if name := n.Funcname[len(n.Funcname)-1].GetString_(); name != nil {
					refs.funcs = append(refs.funcs, strings.ToLower(name.Sval))
				}
			}
		case *pg_query.ColumnRef:
			if fields := columnRefFields(n); len(fields) > 0 {
				refs.columns = append(refs.columns, fields)
			}
		}
	})
	return refs
}

func columnRefFields(ref *pg_query.ColumnRef) []string {
	fields := make([]string, 0, len(ref.Fields))
	for _, f := range ref.Fields {
		switch {
		case f.GetString_() != nil:
			fields = append(fields, f.GetString_().Sval)
		case f.GetAStar() != nil:
			fields = append(fields, "*")
		}
	}
	return fields
}

// walk visits m and every message reachable from it.
func walk(m protoreflect.Message, visit func(protoreflect.ProtoMessage)) {
	if !m.IsValid() {
		return
	}
	visit(m.Interface())
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		switch {
		case fd.IsMap():
		case fd.IsList() && fd.Message() != nil:
			list := v.List()
			for i := 0; i < list.Len(); i++ {
				walk(list.Get(i).Message(), visit)
			}
		case fd.Message() != nil:
			walk(v.Message(), visit)
		}
		return true
	})
}
