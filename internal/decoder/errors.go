package decoder

import (
	"errors"
	"fmt"
)

var (
	// ErrEndOfStream is returned by Cursor.Peek when no bytes remain.
	ErrEndOfStream = errors.New("end of stream")
	// ErrTruncatedStream is returned by a cursor read that would cross the end of the stream.
	ErrTruncatedStream = errors.New("truncated stream")
	// ErrTruncatedInstruction reports an instruction whose operands run past the end of the stream.
	ErrTruncatedInstruction = errors.New("truncated instruction")
	// ErrUnknownOpcode reports an opcode missing from the instruction table in strict mode.
	ErrUnknownOpcode = errors.New("unknown opcode")

	errUnsupportedWidth = errors.New("unsupported operand width")
)

// DecodeError annotates a decoding failure with the offset of the instruction
// being decoded.
type DecodeError struct {
	Offset int
	Opcode byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v at offset 0x%04x (opcode 0x%02x)", e.Err, e.Offset, e.Opcode)
}

func (e *DecodeError) Unwrap() error { return e.Err }
