package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// outputLineage records, for every SELECT in a statement, which column names
// each result column reads. Nested selects are included so a mask can follow a
// value through subqueries, CTEs and set operations.
type outputLineage struct {
	sources map[string][]string // output name -> column names it reads
	unnamed [][]string          // columns read by expressions with no alias
}

func (l *outputLineage) add(output string, reads ...string) {
	output = strings.ToLower(output)
	if output == "" || output == "*" {
		return
	}
	for _, r := range reads {
		r = strings.ToLower(r)
		if r != "" && r != "*" && r != output {
			l.sources[output] = append(l.sources[output], r)
		}
	}
}

// ForQuery returns the masks to apply to the rows of sql. A masked column
// selected under another name, e.g. "ssn AS x", is masked under that name too.
// Columns read by an unaliased expression cannot be matched to a row key, so
// reading a masked column that way is refused with ErrUnsafeStatement.
//
// Statements PostgreSQL's parser cannot read get m unchanged. They only reach
// here through HeuristicChecker, which admits plain column projections only.
func (m ColumnMasks) ForQuery(sql string) (ColumnMasks, error) {
	if len(m) == 0 {
		return m, nil
	}
	tree, err := pg_query.Parse(sql)
	if err != nil || len(tree.Stmts) != 1 || tree.Stmts[0].Stmt == nil {
		return m, nil
	}

	lineage := collectLineage(tree.Stmts[0].Stmt)
	out := m.Merge(nil)

	for changed := true; changed; {
		changed = false
		for output, reads := range lineage.sources {
			for _, r := range reads {
				mask, ok := out[r]
				if !ok {
					continue
				}
				if next := Strictest(out[output], mask); next != out[output] {
					out[output] = next
					changed = true
				}
			}
		}
	}

	for _, reads := range lineage.unnamed {
		for _, r := range reads {
			if _, ok := out[r]; ok {
				return nil, fmt.Errorf("%w: masked column %q is read by an expression without an alias", ErrUnsafeStatement, r)
			}
		}
	}
	return out, nil
}

func collectLineage(stmt *pg_query.Node) *outputLineage {
	l := &outputLineage{sources: make(map[string][]string)}

	walk(stmt.ProtoReflect(), func(msg protoreflect.ProtoMessage) {
		switch n := msg.(type) {
		case *pg_query.SelectStmt:
			if n.Larg != nil {
				l.addSetOperation(n)
				return
			}
			for _, target := range n.TargetList {
				rt := target.GetResTarget()
				if rt == nil || rt.Val == nil {
					continue
				}
				reads := readColumns(rt.Val)
				name := outputName(rt)
				if name == "" {
					l.unnamed = append(l.unnamed, reads)
					continue
				}
				l.add(name, reads...)
			}
		case *pg_query.RangeSubselect:
			if n.Alias != nil {
				l.addRenames(n.Alias.Colnames, n.Subquery)
			}
		case *pg_query.CommonTableExpr:
			l.addRenames(n.Aliascolnames, n.Ctequery)
		}
	})
	return l
}

// addSetOperation ties each result column of a UNION, INTERSECT or EXCEPT,
// named after the leftmost arm, to the same position in every arm.
func (l *outputLineage) addSetOperation(sel *pg_query.SelectStmt) {
	names := selectOutputs(sel)
	for _, arm := range setArms(sel) {
		for i, name := range selectOutputs(arm) {
			if i < len(names) {
				l.add(names[i], name)
			}
		}
	}
}

// addRenames handles column lists such as "(select ...) s(a, b)" and
// "with t(a, b) as (...)".
func (l *outputLineage) addRenames(colnames []*pg_query.Node, query *pg_query.Node) {
	if len(colnames) == 0 || query == nil {
		return
	}
	inner := selectOutputs(query.GetSelectStmt())
	for i, c := range colnames {
		if s := c.GetString_(); s != nil && i < len(inner) {
			l.add(s.Sval, inner[i])
		}
	}
}

func setArms(sel *pg_query.SelectStmt) []*pg_query.SelectStmt {
	if sel == nil {
		return nil
	}
	if sel.Larg == nil {
		return []*pg_query.SelectStmt{sel}
	}
	return append(setArms(sel.Larg), setArms(sel.Rarg)...)
}

// selectOutputs lists result column names by position. Unaliased expressions
// yield "".
func selectOutputs(sel *pg_query.SelectStmt) []string {
	if sel == nil {
		return nil
	}
	if sel.Larg != nil {
		return selectOutputs(sel.Larg)
	}
	names := make([]string, 0, len(sel.TargetList))
	for _, target := range sel.TargetList {
		rt := target.GetResTarget()
		if rt == nil {
			names = append(names, "")
			continue
		}
		names = append(names, outputName(rt))
	}
	return names
}

// outputName is the alias, or the column name for a bare column reference.
func outputName(rt *pg_query.ResTarget) string {
	if rt.Name != "" {
		return rt.Name
	}
	if cr := rt.Val.GetColumnRef(); cr != nil {
		if fields := columnRefFields(cr); len(fields) > 0 {
			return fields[len(fields)-1]
		}
	}
	return ""
}

// readColumns returns the unqualified name of every column node reads,
// subqueries included.
func readColumns(node *pg_query.Node) []string {
	seen := make(map[string]bool)
	walk(node.ProtoReflect(), func(msg protoreflect.ProtoMessage) {
		if cr, ok := msg.(*pg_query.ColumnRef); ok {
			if fields := columnRefFields(cr); len(fields) > 0 {
				seen[strings.ToLower(fields[len(fields)-1])] = true
			}
		}
	})
	return slices.Sorted(maps.Keys(seen))
}
