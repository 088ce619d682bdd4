package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONValue(t *testing.T) {
	t.Parallel()

	id := [16]byte{0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8}
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", jsonValue(id))
	assert.Equal(t, "raw", jsonValue([]byte("raw")))
	assert.Equal(t, int64(7), jsonValue(int64(7)))
	assert.Nil(t, jsonValue(nil))
}
