// Package isa holds the instruction table of the bytecode format: opcode values,
// mnemonics, operand layouts and the compatibility tier each encoding belongs to.
// The table is built once at program start and is read-only afterwards.
package isa

import (
	"fmt"
	"sort"
)

// Tier is the compatibility tier an encoding belongs to.
type Tier int

const (
	// TierBase encodings are decoded in every mode.
	TierBase Tier = iota
	// TierCompat encodings are legacy or extended forms that are only
	// recognised when decoding in compatibility mode.
	TierCompat
)

func (t Tier) String() string {
	switch t {
	case TierBase:
		return "base"
	case TierCompat:
		return "compat"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Kind is the kind of an operand.
type Kind int

const (
	Immediate Kind = iota // unsigned integer
	Relative              // signed offset from the end of the instruction
	Register              // register index
	Label                 // absolute offset into the stream
)

func (k Kind) String() string {
	switch k {
	case Immediate:
		return "imm"
	case Relative:
		return "rel"
	case Register:
		return "reg"
	case Label:
		return "label"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Operand describes one operand of an encoding. Width is in bytes.
type Operand struct {
	Kind  Kind
	Width int
}

func (o Operand) String() string {
	if o.Kind == Register {
		return "reg"
	}
	return fmt.Sprintf("%s%d", o.Kind, o.Width*8)
}

// Entry is one row of the instruction table.
type Entry struct {
	Opcode   byte
	Mnemonic string
	Operands []Operand
	Tier     Tier
}

// Size returns the encoded size of the instruction in bytes, opcode included.
func (e Entry) Size() int {
	n := 1
	for _, op := range e.Operands {
		n += op.Width
	}
	return n
}

// Lookup returns the entry for op with the highest tier that does not exceed
// tier. It reports false when the opcode is unknown or only defined above tier.
func Lookup(op byte, tier Tier) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range table[op] {
		if e.Tier > tier {
			continue
		}
		if !found || e.Tier > best.Tier {
			best, found = e, true
		}
	}
	return best, found
}

// Entries returns a copy of every table entry ordered by opcode, then tier.
func Entries() []Entry {
	var out []Entry
	for _, entries := range table {
		out = append(out, entries...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Opcode != out[j].Opcode {
			return out[i].Opcode < out[j].Opcode
		}
		return out[i].Tier < out[j].Tier
	})
	return out
}
