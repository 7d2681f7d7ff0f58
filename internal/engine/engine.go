// Package engine drives the decoder and formatter over a whole byte stream.
// It is the single entry point used by the boundary exports and the CLI.
//
// All functions are safe for concurrent use: each call owns its cursor and
// output, and the instruction table is read-only.
package engine

import (
	"disassembler/internal/decoder"
	"disassembler/internal/disasm"
	"disassembler/internal/format"
	"disassembler/internal/version"
)

// Disassemble decodes code and returns the listing text, one instruction per
// line. ok is false when the stream is malformed: an unknown opcode in strict
// mode or an instruction cut off by the end of the stream. Empty input yields
// an empty text.
func Disassemble(code []byte, compat bool) (text string, ok bool) {
	text, err := Run(code, decoder.PolicyFor(compat))
	if err != nil {
		return "", false
	}
	return text, true
}

// Run is Disassemble with the decoding error preserved.
func Run(code []byte, policy decoder.Policy) (string, error) {
	stream, err := Listing(code, policy)
	if err != nil {
		return "", err
	}
	return stream.Text(), nil
}

// Listing decodes code into a listing that keeps offsets and raw bytes.
func Listing(code []byte, policy decoder.Policy) (disasm.Stream, error) {
	d := decoder.New(code, policy)
	f := format.New(len(code))

	var out disasm.Stream
	for d.Next() {
		ins := d.Instruction()
		op := ins.Entry.Mnemonic
		if ins.Raw {
			op = ".byte"
		}
		out = append(out, disasm.Inst{
			Offset: ins.Offset,
			Raw:    d.Bytes(ins),
			Op:     op,
			Text:   f.Format(ins),
		})
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Version returns the build identifier of the engine.
func Version() string {
	return version.String()
}
