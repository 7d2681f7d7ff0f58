package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disassembler/internal/engine"
)

// call runs Exports.Call and fails the test on protocol errors.
func call(t *testing.T, e *Exports, code []byte, compat bool) (string, bool) {
	t.Helper()
	text, ok, err := e.Call(code, compat)
	require.NoError(t, err)
	return text, ok
}

func TestExportsDisassemble(t *testing.T) {
	e := NewExports()

	text, ok := call(t, e, []byte{0x01, 0x05}, false)
	require.True(t, ok)
	assert.Equal(t, "PUSH 5", text)

	_, ok = call(t, e, []byte{0x01}, false)
	assert.False(t, ok)
	_, ok = call(t, e, []byte{0x01}, true)
	assert.False(t, ok)

	_, ok = call(t, e, []byte{0xFF}, false)
	assert.False(t, ok)
	text, ok = call(t, e, []byte{0xFF}, true)
	require.True(t, ok)
	assert.Equal(t, ".byte 0xff", text)

	assert.Zero(t, e.Heap.Live(), "every buffer must be released")
}

func TestExportsEmptyInput(t *testing.T) {
	e := NewExports()
	text, ok := call(t, e, nil, false)
	assert.True(t, ok, "empty text is not the absence signal")
	assert.Empty(t, text)
	assert.Zero(t, e.Heap.Live())
}

func TestExportsRejectUnknownBuffer(t *testing.T) {
	e := NewExports()
	assert.Zero(t, e.Disassemble(0x1000, 2, false))
	assert.Zero(t, e.Heap.Live())
}

func TestExportsVersion(t *testing.T) {
	e := NewExports()
	ptr, size := Unpack(e.Version())
	buf, err := e.Heap.Bytes(ptr, size)
	require.NoError(t, err)
	assert.Equal(t, engine.Version(), string(buf))
	require.NoError(t, e.Heap.Free(ptr, size))
}

func TestPackUnpack(t *testing.T) {
	ptr, size := Unpack(Pack(0xDEAD0000, 42))
	assert.Equal(t, uint32(0xDEAD0000), ptr)
	assert.Equal(t, uint32(42), size)
}
