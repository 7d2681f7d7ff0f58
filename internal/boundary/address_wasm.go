//go:build wasm

package boundary

import "unsafe"

// address returns the linear memory address of buf. The Go collector does not
// move heap objects, so the address stays valid while buf is referenced.
func (h *Heap) address(buf []byte) (uint32, bool) {
	return uint32(uintptr(unsafe.Pointer(unsafe.SliceData(buf[:cap(buf)])))), true
}
