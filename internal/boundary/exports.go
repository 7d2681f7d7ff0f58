package boundary

import "disassembler/internal/engine"

// Pack combines an address and a length into the single 64-bit result of an
// export. A zero result is the absence signal.
func Pack(ptr, size uint32) uint64 {
	return uint64(ptr)<<32 | uint64(size)
}

// Unpack splits a packed export result.
func Unpack(v uint64) (ptr, size uint32) {
	return uint32(v >> 32), uint32(v)
}

// Exports implements the functions exported to the host on top of a Heap.
type Exports struct {
	Heap *Heap
}

// NewExports returns exports backed by a fresh heap.
func NewExports() *Exports {
	return &Exports{Heap: NewHeap()}
}

// Version returns the packed version string. The host frees it.
func (e *Exports) Version() uint64 {
	return e.text(engine.Version())
}

// Disassemble reads size bytes at ptr, disassembles them and returns the
// packed listing text, or 0 when the input is malformed or the buffer is not
// a live allocation. The input buffer stays owned by the host.
func (e *Exports) Disassemble(ptr, size uint32, compat bool) uint64 {
	code, err := e.Heap.Bytes(ptr, size)
	if err != nil {
		return 0
	}
	text, ok := engine.Disassemble(code, compat)
	if !ok {
		return 0
	}
	return e.text(text)
}

// Call drives the exports the way a host does, in process: the input is
// copied into a module buffer, disassembled, and the input and result
// buffers are freed on every path. ok is false when the export signals
// absence.
func (e *Exports) Call(code []byte, compat bool) (text string, ok bool, err error) {
	size := uint32(len(code))
	err = e.Heap.With(size, func(ptr uint32, buf []byte) error {
		copy(buf, code)
		packed := e.Disassemble(ptr, size, compat)
		if packed == 0 {
			return nil
		}
		out, outSize := Unpack(packed)
		res, err := e.Heap.Bytes(out, outSize)
		if err != nil {
			return err
		}
		text, ok = string(res), true
		return e.Heap.Free(out, outSize)
	})
	if err != nil {
		return "", false, err
	}
	return text, ok, nil
}

// text allocates s for the host. A failed allocation is reported as absence.
func (e *Exports) text(s string) uint64 {
	ptr := e.Heap.Alloc([]byte(s))
	if ptr == 0 {
		return 0
	}
	return Pack(ptr, uint32(len(s)))
}
