package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskType_Valid(t *testing.T) {
	t.Parallel()
	for _, mt := range []MaskType{"", MaskRedact, MaskHash, MaskPartial, MaskNull} {
		assert.True(t, mt.Valid(), "expected %q to be valid", mt)
	}
	for _, mt := range []MaskType{"encrypt", "REDACT", "sha256"} {
		assert.False(t, mt.Valid(), "expected %q to be invalid", mt)
	}
}

func TestApplyMask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		mask  MaskType
		want  any
	}{
		{"redact string", "alice@example.com", MaskRedact, "***"},
		{"redact int", 42, MaskRedact, "***"},
		{"null", "alice", MaskNull, nil},
		{"nil stays nil", nil, MaskPartial, nil},
		{"partial", "4111111111111111", MaskPartial, "************1111"},
		{"partial short", "abcd", MaskPartial, "***"},
		{"partial unicode", "ñandú-99", MaskPartial, "****ú-99"},
		{"partial bytes", []byte("secret-key"), MaskPartial, "******-key"},
		{"no mask", 7, "", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ApplyMask(tt.value, tt.mask))
		})
	}
}

func TestApplyMask_Hash(t *testing.T) {
	t.Parallel()

	h, ok := ApplyMask("alice@example.com", MaskHash).(string)
	require.True(t, ok)
	assert.Len(t, h, 64)
	assert.Equal(t, h, ApplyMask("alice@example.com", MaskHash))
	assert.NotEqual(t, h, ApplyMask("bob@example.com", MaskHash))

	// Values hash by their printed form.
	assert.Equal(t, ApplyMask("123", MaskHash), ApplyMask(123, MaskHash))
}

func TestColumnMasks_Apply(t *testing.T) {
	t.Parallel()

	rows := []map[string]any{
		{"id": 1, "email": "alice@example.com", "SSN": "123-45-6789"},
		{"id": 2, "email": nil, "SSN": "987-65-4321"},
	}
	masks := ColumnMasks{"email": MaskRedact, "ssn": MaskPartial}
	masks.Apply(rows)

	assert.Equal(t, 1, rows[0]["id"])
	assert.Equal(t, "***", rows[0]["email"])
	assert.Equal(t, "*******6789", rows[0]["SSN"])
	assert.Nil(t, rows[1]["email"])
	assert.Equal(t, "*******4321", rows[1]["SSN"])
}

func TestColumnMasks_ApplyEmpty(t *testing.T) {
	t.Parallel()
	rows := []map[string]any{{"email": "a@b.c"}}
	ColumnMasks(nil).Apply(rows)
	assert.Equal(t, "a@b.c", rows[0]["email"])
}

func TestColumnMasks_Merge(t *testing.T) {
	t.Parallel()

	base := ColumnMasks{"email": MaskHash, "phone": MaskPartial}
	merged := base.Merge(ColumnMasks{"EMAIL": MaskRedact})

	assert.Equal(t, ColumnMasks{"email": MaskRedact, "phone": MaskPartial}, merged)
	assert.Equal(t, MaskHash, base["email"], "merge must not mutate receiver")
}
