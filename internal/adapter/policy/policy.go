// Package policy loads the operator's data dictionary and column masking
// rules from YAML.
package policy

import (
	"fmt"
	"strings"

	"github.com/guillermoBallester/querygate/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Policy is the parsed policy file.
//
//	masks:
//	  ssn: "null"            # every result column named ssn
//	tables:
//	  public.users:          # schema prefix is optional and ignored
//	    description: "Registered accounts"
//	    columns:
//	      name: "Display name"
//	      email:
//	        description: "Contact address"
//	        mask: "redact"
type Policy struct {
	Masks  map[string]domain.MaskType `yaml:"masks"`
	Tables map[string]Table           `yaml:"tables"`
}

type Table struct {
	Description string            `yaml:"description"`
	Columns     map[string]Column `yaml:"columns"`
}

type Column struct {
	Description string          `yaml:"description"`
	Mask        domain.MaskType `yaml:"mask,omitempty"`
}

// UnmarshalYAML accepts a bare string as shorthand for a description.
func (c *Column) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		c.Description = value.Value
		return nil
	}
	type plain Column
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("decoding column: %w", err)
	}
	*c = Column(p)
	return nil
}

// Notes returns table and column descriptions keyed by normalized,
// unqualified table name, ready for domain.DescribeSchema.
func (p *Policy) Notes() map[string]domain.TableNotes {
	if p == nil {
		return nil
	}
	notes := make(map[string]domain.TableNotes, len(p.Tables))
	for key, t := range p.Tables {
		n := domain.TableNotes{Description: t.Description, Columns: make(map[string]string)}
		for col, c := range t.Columns {
			if c.Description != "" {
				n.Columns[domain.Normalize(col)] = c.Description
			}
		}
		notes[tableName(key)] = n
	}
	return notes
}

// ColumnMasks flattens the global and per-table masks into one set keyed by
// column name. When a name is masked differently in several places the
// strictest strategy wins.
func (p *Policy) ColumnMasks() domain.ColumnMasks {
	if p == nil {
		return nil
	}
	masks := make(domain.ColumnMasks)
	add := func(col string, m domain.MaskType) {
		if m == "" {
			return
		}
		col = domain.Normalize(col)
		masks[col] = domain.Strictest(masks[col], m)
	}
	for col, m := range p.Masks {
		add(col, m)
	}
	for _, t := range p.Tables {
		for col, c := range t.Columns {
			add(col, c.Mask)
		}
	}
	return masks
}

// tableName drops an optional schema qualifier.
func tableName(key string) string {
	key = domain.Normalize(key)
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i+1:]
	}
	return key
}
