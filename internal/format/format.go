// Package format renders decoded instructions as text.
//
// The output convention is fixed: the mnemonic, then the operands separated
// by ", ". Immediates are unsigned decimal. Relative offsets are resolved to
// the absolute target (0x%04x) when it lies inside the stream, otherwise the
// raw signed offset is printed behind a '?' marker. Labels are absolute
// targets (0x%04x) and registers use their symbolic name. Unknown bytes kept
// in tolerant mode render as ".byte 0xNN".
package format

import (
	"fmt"
	"strconv"
	"strings"

	"disassembler/internal/decoder"
	"disassembler/internal/isa"
)

// Formatter renders instructions of a single stream.
type Formatter struct {
	// StreamLen bounds the resolution of relative offsets.
	StreamLen int
}

// New returns a formatter for a stream of n bytes.
func New(n int) Formatter {
	return Formatter{StreamLen: n}
}

// Format renders ins as a single line without a trailing newline.
func (f Formatter) Format(ins decoder.Instruction) string {
	if ins.Raw {
		return fmt.Sprintf(".byte 0x%02x", ins.Opcode)
	}
	if len(ins.Operands) == 0 {
		return ins.Entry.Mnemonic
	}

	var sb strings.Builder
	sb.WriteString(ins.Entry.Mnemonic)
	for i, v := range ins.Operands {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Operand(ins, v))
	}
	return sb.String()
}

// Operand renders a single operand of ins.
func (f Formatter) Operand(ins decoder.Instruction, v decoder.Value) string {
	switch v.Operand.Kind {
	case isa.Immediate:
		return strconv.FormatUint(v.Bits, 10)
	case isa.Relative:
		off := v.Signed()
		target := int64(ins.End()) + off
		if target >= 0 && target < int64(f.StreamLen) {
			return Address(int(target))
		}
		return fmt.Sprintf("?%+d", off)
	case isa.Register:
		return isa.RegisterName(byte(v.Bits))
	case isa.Label:
		return Address(int(v.Bits))
	}
	return strconv.FormatUint(v.Bits, 10)
}

// Address renders a stream offset.
func Address(off int) string {
	return fmt.Sprintf("0x%04x", off)
}
