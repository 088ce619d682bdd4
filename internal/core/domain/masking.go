package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// MaskType is how a sensitive column is rewritten before rows leave the process.
type MaskType string

const (
	MaskRedact  MaskType = "redact"
	MaskHash    MaskType = "hash"
	MaskPartial MaskType = "partial"
	MaskNull    MaskType = "null"
)

const (
	redacted       = "***"
	partialVisible = 4
)

// Valid reports whether m is a known strategy. The empty value means unmasked.
func (m MaskType) Valid() bool {
	switch m {
	case "", MaskRedact, MaskHash, MaskPartial, MaskNull:
		return true
	default:
		return false
	}
}

// ColumnMasks maps result column names to mask strategies. Lookups lower-case
// the result row key, so a column matches regardless of how the driver or the
// query spelled its case.
type ColumnMasks map[string]MaskType

// Strictest returns whichever of a and b hides more: null, then redact, then
// hash, then partial.
func Strictest(a, b MaskType) MaskType {
	if strictness(b) > strictness(a) {
		return b
	}
	return a
}

func strictness(m MaskType) int {
	switch m {
	case MaskNull:
		return 4
	case MaskRedact:
		return 3
	case MaskHash:
		return 2
	case MaskPartial:
		return 1
	default:
		return 0
	}
}

// Merge returns a new set containing m overlaid with other.
func (m ColumnMasks) Merge(other ColumnMasks) ColumnMasks {
	out := make(ColumnMasks, len(m)+len(other))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	for k, v := range other {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Apply rewrites the masked columns of every row in place.
func (m ColumnMasks) Apply(rows []map[string]any) {
	if len(m) == 0 {
		return
	}
	for _, row := range rows {
		for col, val := range row {
			if mask, ok := m[strings.ToLower(col)]; ok {
				row[col] = ApplyMask(val, mask)
			}
		}
	}
}

// ApplyMask rewrites a single value. NULLs stay NULL for every strategy.
func ApplyMask(value any, mask MaskType) any {
	if value == nil {
		return nil
	}
	switch mask {
	case MaskRedact:
		return redacted
	case MaskHash:
		sum := sha256.Sum256([]byte(stringify(value)))
		return hex.EncodeToString(sum[:])
	case MaskPartial:
		return partial(stringify(value))
	case MaskNull:
		return nil
	default:
		return value
	}
}

func stringify(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

// partial keeps the trailing runes visible and stars out the rest. Short
// values are fully redacted so the mask never reveals the whole value.
func partial(s string) string {
	runes := []rune(s)
	if len(runes) <= partialVisible {
		return redacted
	}
	hidden := len(runes) - partialVisible
	return strings.Repeat("*", hidden) + string(runes[hidden:])
}
