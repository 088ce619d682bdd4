package policy

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/guillermoBallester/querygate/internal/core/domain"
	"gopkg.in/yaml.v3"
)

const allowedMasks = "redact, hash, partial, null"

// LoadFromFile reads a YAML policy file and returns a validated Policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	var pol Policy
	if err := yaml.Unmarshal(data, &pol); err != nil {
		return nil, fmt.Errorf("parsing policy YAML: %w", err)
	}
	if err := pol.validate(); err != nil {
		return nil, fmt.Errorf("validating policy: %w", err)
	}
	return &pol, nil
}

// validate walks keys in sorted order so the reported error is stable.
func (p *Policy) validate() error {
	for _, col := range sortedKeys(p.Masks) {
		if err := checkMask(fmt.Sprintf("masks[%q]", col), col, p.Masks[col]); err != nil {
			return err
		}
	}

	owners := make(map[string]string, len(p.Tables))
	for _, key := range sortedKeys(p.Tables) {
		if key == "" {
			return fmt.Errorf("tables contains an empty key")
		}
		name := tableName(key)
		if prev, ok := owners[name]; ok {
			return fmt.Errorf("tables[%q] and tables[%q] both describe table %q", prev, key, name)
		}
		owners[name] = key

		cols := p.Tables[key].Columns
		for _, col := range sortedKeys(cols) {
			field := fmt.Sprintf("tables[%q].columns[%q].mask", key, col)
			if err := checkMask(field, col, cols[col].Mask); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkMask(field, col string, m domain.MaskType) error {
	if col == "" {
		return fmt.Errorf("%s: empty column name", field)
	}
	if !m.Valid() {
		return fmt.Errorf("%s: invalid value %q (allowed: %s)", field, m, allowedMasks)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
