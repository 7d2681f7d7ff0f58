package decoder

import "disassembler/internal/isa"

// Policy selects how the decoder treats opcodes it cannot find in the
// instruction table.
type Policy int

const (
	// Strict aborts decoding at the first unknown opcode.
	Strict Policy = iota
	// Tolerant emits a one-byte raw pseudo instruction for unknown opcodes
	// and enables the compatibility encodings of the instruction table.
	Tolerant
)

// PolicyFor maps the compat mode flag of the public API to a policy.
func PolicyFor(compat bool) Policy {
	if compat {
		return Tolerant
	}
	return Strict
}

// Tier returns the highest instruction table tier decoded under p.
func (p Policy) Tier() isa.Tier {
	if p == Tolerant {
		return isa.TierCompat
	}
	return isa.TierBase
}

func (p Policy) String() string {
	if p == Tolerant {
		return "tolerant"
	}
	return "strict"
}
