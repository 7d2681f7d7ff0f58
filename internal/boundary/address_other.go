//go:build !wasm

package boundary

import "math"

// address hands out synthetic, 8-byte aligned addresses so the protocol can be
// exercised outside a wasm runtime. It reports false once the 32-bit address
// space is used up. Callers hold h.mu.
func (h *Heap) address(buf []byte) (uint32, bool) {
	step := (uint64(cap(buf)) + 7) &^ 7
	if uint64(h.next)+step > math.MaxUint32 {
		return 0, false
	}
	ptr := h.next
	h.next += uint32(step)
	return ptr, true
}
