package isa

import "strconv"

// registerNames holds the symbolic names of the special registers.
var registerNames = [...]string{"acc", "sp", "fp", "ra"}

// RegisterName returns the symbolic name of a register, or r<N> for
// registers without one.
func RegisterName(index byte) string {
	if int(index) < len(registerNames) {
		return registerNames[index]
	}
	return "r" + strconv.Itoa(int(index))
}
