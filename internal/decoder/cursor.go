package decoder

import "encoding/binary"

// Cursor is a bounds-checked read position over an immutable byte stream.
// The offset never exceeds the stream length; a read that would cross the
// end fails and leaves the offset unchanged.
type Cursor struct {
	data   []byte
	offset int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current position.
func (c *Cursor) Offset() int { return c.offset }

// Len returns the length of the underlying stream.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.offset }

// Peek returns the next byte without consuming it.
func (c *Cursor) Peek() (byte, error) {
	if c.Remaining() == 0 {
		return 0, ErrEndOfStream
	}
	return c.data[c.offset], nil
}

// Slice returns the bytes in [from, to) of the stream.
func (c *Cursor) Slice(from, to int) []byte {
	return c.data[from:to]
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n > c.Remaining() {
		return nil, ErrTruncatedStream
	}
	b := c.data[c.offset : c.offset+n]
	c.offset += n
	return b, nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian 16-bit value.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian 32-bit value.
func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian 64-bit value.
func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readWidth reads an unsigned little-endian value of the given byte width.
func (c *Cursor) readWidth(width int) (uint64, error) {
	switch width {
	case 1:
		v, err := c.ReadU8()
		return uint64(v), err
	case 2:
		v, err := c.ReadU16()
		return uint64(v), err
	case 4:
		v, err := c.ReadU32()
		return uint64(v), err
	case 8:
		return c.ReadU64()
	}
	return 0, errUnsupportedWidth
}
