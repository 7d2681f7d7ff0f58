// Package disasm defines the listing representation shared by the engine,
// the boundary exports and the command line front end.
package disasm

import "strings"

// Inst is one rendered line of a listing.
type Inst struct {
	Offset int    // offset of the first byte in the stream
	Raw    []byte // encoded bytes
	Op     string // mnemonic, ".byte" for raw bytes
	Text   string // formatted instruction
}

// Stream is a listing in stream order.
type Stream []Inst

// Text joins the formatted lines with newlines, without a trailing one.
func (s Stream) Text() string {
	var sb strings.Builder
	for i, in := range s {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(in.Text)
	}
	return sb.String()
}

// Size returns the number of bytes covered by the listing.
func (s Stream) Size() int {
	n := 0
	for _, in := range s {
		n += len(in.Raw)
	}
	return n
}
