// Package decoder turns a raw bytecode stream into decoded instructions in a
// single forward pass over a bounds-checked cursor.
package decoder

import (
	"fmt"

	"disassembler/internal/isa"
)

// Value is a decoded operand. Bits holds the raw little-endian value
// zero-extended to 64 bits.
type Value struct {
	Operand isa.Operand
	Bits    uint64
}

// Signed returns the value sign-extended from its encoded width.
func (v Value) Signed() int64 {
	shift := 64 - uint(v.Operand.Width)*8
	return int64(v.Bits<<shift) >> shift
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Offset   int // offset of the opcode byte
	Opcode   byte
	Entry    isa.Entry
	Operands []Value
	Length   int  // bytes consumed, always at least 1
	Raw      bool // unknown opcode kept as an opaque byte
}

// End returns the offset just past the instruction.
func (ins Instruction) End() int { return ins.Offset + ins.Length }

// Decoder iterates over the instructions of a byte stream.
type Decoder struct {
	cur    *Cursor
	policy Policy
	ins    Instruction
	err    error
}

// New returns a decoder over code using the given policy.
func New(code []byte, policy Policy) *Decoder {
	return &Decoder{cur: NewCursor(code), policy: policy}
}

// Next decodes the next instruction and reports whether one is available.
// It returns false at the end of the stream or after the first error.
func (d *Decoder) Next() bool {
	if d.err != nil || d.cur.Remaining() == 0 {
		return false
	}

	start := d.cur.Offset()
	op, err := d.cur.ReadU8()
	if err != nil {
		d.err = &DecodeError{Offset: start, Err: ErrTruncatedStream}
		return false
	}

	entry, ok := isa.Lookup(op, d.policy.Tier())
	if !ok {
		if d.policy != Tolerant {
			d.err = &DecodeError{Offset: start, Opcode: op, Err: ErrUnknownOpcode}
			return false
		}
		d.ins = Instruction{Offset: start, Opcode: op, Length: 1, Raw: true}
		return true
	}

	var operands []Value
	if len(entry.Operands) > 0 {
		operands = make([]Value, 0, len(entry.Operands))
	}
	for _, desc := range entry.Operands {
		bits, err := d.cur.readWidth(desc.Width)
		if err != nil {
			d.err = &DecodeError{Offset: start, Opcode: op, Err: fmt.Errorf("%w: %w", ErrTruncatedInstruction, err)}
			return false
		}
		operands = append(operands, Value{Operand: desc, Bits: bits})
	}

	d.ins = Instruction{
		Offset:   start,
		Opcode:   op,
		Entry:    entry,
		Operands: operands,
		Length:   d.cur.Offset() - start,
	}
	return true
}

// Instruction returns the instruction decoded by the last successful Next.
func (d *Decoder) Instruction() Instruction { return d.ins }

// Err returns the error that stopped decoding, if any.
func (d *Decoder) Err() error { return d.err }

// Bytes returns the raw encoding of ins.
func (d *Decoder) Bytes(ins Instruction) []byte {
	return d.cur.Slice(ins.Offset, ins.End())
}

// StreamLen returns the length of the stream being decoded.
func (d *Decoder) StreamLen() int { return d.cur.Len() }

// DecodeAll decodes code to completion.
func DecodeAll(code []byte, policy Policy) ([]Instruction, error) {
	d := New(code, policy)
	var out []Instruction
	for d.Next() {
		out = append(out, d.Instruction())
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
