package isa

var (
	imm8    = Operand{Kind: Immediate, Width: 1}
	imm16   = Operand{Kind: Immediate, Width: 2}
	imm32   = Operand{Kind: Immediate, Width: 4}
	imm64   = Operand{Kind: Immediate, Width: 8}
	rel8    = Operand{Kind: Relative, Width: 1}
	rel16   = Operand{Kind: Relative, Width: 2}
	reg     = Operand{Kind: Register, Width: 1}
	label16 = Operand{Kind: Label, Width: 2}
)

// definitions lists every encoding. Opcodes defined in more than one tier are
// resolved by Lookup.
var definitions = []Entry{
	{Opcode: 0x00, Mnemonic: "NOP"},
	{Opcode: 0x01, Mnemonic: "PUSH", Operands: []Operand{imm8}},
	{Opcode: 0x02, Mnemonic: "PUSH16", Operands: []Operand{imm16}},
	{Opcode: 0x03, Mnemonic: "PUSH32", Operands: []Operand{imm32}},
	{Opcode: 0x04, Mnemonic: "PUSH64", Operands: []Operand{imm64}},
	{Opcode: 0x05, Mnemonic: "POP"},
	{Opcode: 0x06, Mnemonic: "DUP"},
	{Opcode: 0x07, Mnemonic: "SWAP"},
	{Opcode: 0x08, Mnemonic: "RET"},

	// arithmetic and comparison, all stack only
	{Opcode: 0x10, Mnemonic: "ADD"},
	{Opcode: 0x11, Mnemonic: "SUB"},
	{Opcode: 0x12, Mnemonic: "MUL"},
	{Opcode: 0x13, Mnemonic: "DIV"},
	{Opcode: 0x14, Mnemonic: "MOD"},
	{Opcode: 0x15, Mnemonic: "AND"},
	{Opcode: 0x16, Mnemonic: "OR"},
	{Opcode: 0x17, Mnemonic: "XOR"},
	{Opcode: 0x18, Mnemonic: "NOT"},
	{Opcode: 0x19, Mnemonic: "SHL"},
	{Opcode: 0x1A, Mnemonic: "SHR"},
	{Opcode: 0x1B, Mnemonic: "EQ"},
	{Opcode: 0x1C, Mnemonic: "NEQ"},
	{Opcode: 0x1D, Mnemonic: "LT"},
	{Opcode: 0x1E, Mnemonic: "GT"},

	{Opcode: 0x20, Mnemonic: "LOAD", Operands: []Operand{reg}},
	{Opcode: 0x21, Mnemonic: "STORE", Operands: []Operand{reg}},
	{Opcode: 0x22, Mnemonic: "MOVE", Operands: []Operand{reg, reg}},
	{Opcode: 0x23, Mnemonic: "COPY", Operands: []Operand{reg}},

	{Opcode: 0x30, Mnemonic: "JMP", Operands: []Operand{rel8}},
	{Opcode: 0x31, Mnemonic: "JZ", Operands: []Operand{rel8}},
	{Opcode: 0x32, Mnemonic: "JNZ", Operands: []Operand{rel8}},
	{Opcode: 0x33, Mnemonic: "JMPW", Operands: []Operand{rel16}},
	{Opcode: 0x34, Mnemonic: "CALL", Operands: []Operand{label16}},
	{Opcode: 0x34, Mnemonic: "CALL", Operands: []Operand{label16, imm8}, Tier: TierCompat},
	{Opcode: 0x35, Mnemonic: "LDCONST", Operands: []Operand{imm16}},
	{Opcode: 0x35, Mnemonic: "LDCONST", Operands: []Operand{imm8}, Tier: TierCompat},

	{Opcode: 0x50, Mnemonic: "EMIT", Operands: []Operand{reg}, Tier: TierCompat},
	{Opcode: 0x51, Mnemonic: "ABORT", Operands: []Operand{imm32}, Tier: TierCompat},
	{Opcode: 0x52, Mnemonic: "TRACE", Operands: []Operand{imm16}, Tier: TierCompat},
}

// table indexes definitions by opcode byte.
var table = buildTable(definitions)

func buildTable(defs []Entry) [256][]Entry {
	var t [256][]Entry
	for _, e := range defs {
		t[e.Opcode] = append(t[e.Opcode], e)
	}
	return t
}
