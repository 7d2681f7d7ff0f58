// Package boundary implements the allocate/free protocol used when the
// disassembler runs behind a foreign-memory host such as a wasm runtime.
//
// The host asks the module for a buffer (Malloc), writes the input into it,
// calls an export, and releases every buffer it received exactly once (Free).
// Buffers returned by exports are allocated on the same heap and are owned by
// the host from that point on.
package boundary

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInvalidFree is returned when freeing a pointer that is not live.
	ErrInvalidFree = errors.New("free of unknown pointer")
	// ErrSizeMismatch is returned when the size given to Free or Bytes
	// does not fit the allocation.
	ErrSizeMismatch = errors.New("allocation size mismatch")
	// ErrOutOfMemory is returned when no address is left for an allocation.
	ErrOutOfMemory = errors.New("out of memory")
)

// firstAddress keeps zero out of the address space; a zero pointer is the
// absence signal of the exports.
const firstAddress = 8

// Heap tracks the buffers handed across the boundary. Live buffers are kept
// referenced so the collector cannot reclaim memory the host still uses.
type Heap struct {
	mu   sync.Mutex
	live map[uint32][]byte
	next uint32
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{live: make(map[uint32][]byte), next: firstAddress}
}

// Malloc allocates size bytes and returns their address. Zero sized
// allocations get a distinct non-zero address too. Malloc returns 0 when the
// address space is exhausted.
func (h *Heap) Malloc(size uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := make([]byte, size, max(size, 1))
	ptr, ok := h.address(buf)
	if !ok {
		return 0
	}
	h.live[ptr] = buf
	return ptr
}

// Free releases the allocation at ptr. size must match the allocated size.
func (h *Heap) Free(ptr, size uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.live[ptr]
	if !ok {
		return fmt.Errorf("%w: %#x", ErrInvalidFree, ptr)
	}
	if uint32(len(buf)) != size {
		return fmt.Errorf("%w: %#x has %d bytes, freed with %d", ErrSizeMismatch, ptr, len(buf), size)
	}
	delete(h.live, ptr)
	return nil
}

// Bytes returns the first size bytes of the live allocation at ptr.
func (h *Heap) Bytes(ptr, size uint32) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.live[ptr]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidFree, ptr)
	}
	if size > uint32(len(buf)) {
		return nil, fmt.Errorf("%w: %#x has %d bytes, %d requested", ErrSizeMismatch, ptr, len(buf), size)
	}
	return buf[:size], nil
}

// Alloc copies b into a new allocation and returns its address, or 0 when
// the allocation fails.
func (h *Heap) Alloc(b []byte) uint32 {
	ptr := h.Malloc(uint32(len(b)))
	if ptr == 0 {
		return 0
	}
	buf, _ := h.Bytes(ptr, uint32(len(b)))
	copy(buf, b)
	return ptr
}

// With allocates size bytes for the duration of fn and frees them on every
// return path.
func (h *Heap) With(size uint32, fn func(ptr uint32, buf []byte) error) (err error) {
	ptr := h.Malloc(size)
	if ptr == 0 {
		return fmt.Errorf("%w: %d bytes", ErrOutOfMemory, size)
	}
	defer func() {
		if ferr := h.Free(ptr, size); err == nil {
			err = ferr
		}
	}()
	buf, err := h.Bytes(ptr, size)
	if err != nil {
		return err
	}
	return fn(ptr, buf)
}

// Live returns the number of outstanding allocations.
func (h *Heap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}
