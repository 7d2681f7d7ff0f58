package engine

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disassembler/internal/decoder"
	"disassembler/internal/isa"
)

// program is a well formed stream using every operand kind.
var program = []byte{
	0x01, 0x05, // PUSH 5
	0x02, 0x00, 0x01, // PUSH16 256
	0x20, 0x02, // LOAD fp
	0x22, 0x00, 0x09, // MOVE acc, r9
	0x31, 0x02, // JZ 0x000e
	0x10,             // ADD
	0x05,             // POP
	0x34, 0x00, 0x00, // CALL 0x0000
	0x35, 0x03, 0x00, // LDCONST 3
	0x08, // RET
}

var programText = strings.Join([]string{
	"PUSH 5",
	"PUSH16 256",
	"LOAD fp",
	"MOVE acc, r9",
	"JZ 0x000e",
	"ADD",
	"POP",
	"CALL 0x0000",
	"LDCONST 3",
	"RET",
}, "\n")

func TestDisassemblePush(t *testing.T) {
	for _, compat := range []bool{false, true} {
		text, ok := Disassemble([]byte{0x01, 0x05}, compat)
		require.True(t, ok)
		assert.Equal(t, "PUSH 5", text)
	}
}

func TestDisassembleProgram(t *testing.T) {
	text, ok := Disassemble(program, false)
	require.True(t, ok)
	assert.Equal(t, programText, text)
	assert.False(t, strings.HasSuffix(text, "\n"))
}

func TestEmptyInput(t *testing.T) {
	for _, compat := range []bool{false, true} {
		text, ok := Disassemble(nil, compat)
		assert.True(t, ok, "empty input must not be absent (compat=%v)", compat)
		assert.Empty(t, text)

		text, ok = Disassemble([]byte{}, compat)
		assert.True(t, ok)
		assert.Empty(t, text)
	}
}

func TestAbsence(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		compat bool
	}{
		{"missing immediate strict", []byte{0x01}, false},
		{"missing immediate compat", []byte{0x01}, true},
		{"trailing partial push32 strict", []byte{0x08, 0x03, 0x01, 0x02}, false},
		{"trailing partial push32 compat", []byte{0x08, 0x03, 0x01, 0x02}, true},
		{"unknown opcode strict", []byte{0x01, 0x05, 0xFF}, false},
		{"compat only opcode strict", []byte{0x51, 0, 0, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := Disassemble(tt.code, tt.compat)
			assert.False(t, ok)
			assert.Empty(t, text)
		})
	}
}

func TestUnknownOpcodeCompat(t *testing.T) {
	code := []byte{0x01, 0x05, 0xFF, 0x08}

	_, ok := Disassemble(code, false)
	require.False(t, ok)

	text, ok := Disassemble(code, true)
	require.True(t, ok)
	assert.Equal(t, "PUSH 5\n.byte 0xff\nRET", text)
}

func TestCompatEncodings(t *testing.T) {
	text, ok := Disassemble([]byte{0x50, 0x01, 0x51, 0x2A, 0, 0, 0, 0x34, 0x00, 0x00, 0x03}, true)
	require.True(t, ok)
	assert.Equal(t, "EMIT sp\nABORT 42\nCALL 0x0000, 3", text)
}

func TestRunKeepsErrorKind(t *testing.T) {
	_, err := Run([]byte{0x01}, decoder.Strict)
	assert.ErrorIs(t, err, decoder.ErrTruncatedInstruction)

	_, err = Run([]byte{0xFF}, decoder.Strict)
	assert.ErrorIs(t, err, decoder.ErrUnknownOpcode)
}

func TestLineCountMatchesInstructions(t *testing.T) {
	stream, err := Listing(program, decoder.Strict)
	require.NoError(t, err)

	text, ok := Disassemble(program, false)
	require.True(t, ok)
	assert.Len(t, strings.Split(text, "\n"), len(stream))
	assert.Equal(t, len(program), stream.Size())
}

func TestWindowRedecode(t *testing.T) {
	// Relative targets depend on the stream bounds, so only instructions
	// without a relative operand keep their text on their own byte window.
	ins, err := decoder.DecodeAll(program, decoder.Strict)
	require.NoError(t, err)
	stream, err := Listing(program, decoder.Strict)
	require.NoError(t, err)
	require.Len(t, stream, len(ins))

	relative := 0
	for i, in := range stream {
		window := program[in.Offset : in.Offset+len(in.Raw)]
		text, ok := Disassemble(window, false)
		require.True(t, ok, "window at %d", in.Offset)

		if hasRelative(ins[i]) {
			relative++
			assert.Contains(t, text, "?", "window at %d leaves the target unresolved", in.Offset)
			continue
		}
		assert.Equal(t, in.Text, text, "window at %d", in.Offset)
	}
	assert.Equal(t, 1, relative)

	// JZ +2 at the start of a two byte window points past its end
	text, ok := Disassemble([]byte{0x31, 0x02}, false)
	require.True(t, ok)
	assert.Equal(t, "JZ ?+2", text)
}

func hasRelative(ins decoder.Instruction) bool {
	for _, op := range ins.Entry.Operands {
		if op.Kind == isa.Relative {
			return true
		}
	}
	return false
}

func TestIdempotent(t *testing.T) {
	inputs := [][]byte{program, {0x01, 0x05, 0xFF}, {0x30, 0x7F}, nil}
	for _, code := range inputs {
		for _, compat := range []bool{false, true} {
			a, okA := Disassemble(code, compat)
			b, okB := Disassemble(code, compat)
			assert.Equal(t, okA, okB)
			assert.Equal(t, a, b)
		}
	}
}

func TestInputNotMutated(t *testing.T) {
	code := append([]byte(nil), program...)
	_, _ = Disassemble(code, true)
	assert.Equal(t, program, code)
}

func TestConcurrentCalls(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(compat bool) {
			defer wg.Done()
			text, ok := Disassemble(program, compat)
			if !ok || text != programText {
				errs <- text
			}
			if _, ok := Disassemble([]byte{0x01}, compat); ok {
				errs <- "truncated input decoded"
			}
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent call failed: %q", e)
	}
}

func TestListing(t *testing.T) {
	stream, err := Listing([]byte{0x01, 0x05, 0xAB, 0x22, 0x01, 0x02}, decoder.Tolerant)
	require.NoError(t, err)
	require.Len(t, stream, 3)

	assert.Equal(t, 0, stream[0].Offset)
	assert.Equal(t, []byte{0x01, 0x05}, stream[0].Raw)
	assert.Equal(t, "PUSH", stream[0].Op)

	assert.Equal(t, 2, stream[1].Offset)
	assert.Equal(t, ".byte", stream[1].Op)
	assert.Equal(t, ".byte 0xab", stream[1].Text)

	assert.Equal(t, 3, stream[2].Offset)
	assert.Equal(t, "MOVE sp, fp", stream[2].Text)
}

func TestVersionStable(t *testing.T) {
	v := Version()
	assert.NotEmpty(t, v)
	assert.Equal(t, v, Version())
}
