//go:build wasip1

// Command disassembler-wasm is the wasm reactor build of the disassembler.
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o disassembler.wasm ./cmd/disassembler-wasm
//
// The host calls malloc to obtain a buffer for the bytecode, disassemble with
// that buffer, and free on the input and on every non-zero result.
// Results are packed as ptr<<32 | len; zero means no result.
package main

import "disassembler/internal/boundary"

var exports = boundary.NewExports()

//go:wasmexport malloc
func malloc(size uint32) uint32 {
	return exports.Heap.Malloc(size)
}

//go:wasmexport free
func free(ptr, size uint32) {
	_ = exports.Heap.Free(ptr, size)
}

//go:wasmexport version
func version() uint64 {
	return exports.Version()
}

//go:wasmexport disassemble
func disassemble(ptr, size, compat uint32) uint64 {
	return exports.Disassemble(ptr, size, compat != 0)
}

func main() {}
