package smfkit

import (
	"fmt"
	"io"
)

// Buffer is a growable, seekable in-memory byte container with a single
// read/write cursor. It backs every chunk, event, and track operation in
// this package: nothing in the codec touches an os.File or io.Reader
// directly once the bytes are loaded.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer returns an empty Buffer positioned at 0.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferFromBytes returns a Buffer whose contents are b, positioned at 0.
// The Buffer takes ownership of b; callers must not modify it afterward.
func NewBufferFromBytes(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes returns the Buffer's full contents. The returned slice aliases the
// Buffer's storage and is only valid until the next Put/Insert.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the total number of bytes in the Buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Pos returns the current cursor position.
func (b *Buffer) Pos() int {
	return b.pos
}

// SetPos clamps n into [0, Len()] and moves the cursor there, returning the
// resulting position.
func (b *Buffer) SetPos(n int) int {
	if n < 0 {
		n = 0
	} else if n > len(b.data) {
		n = len(b.data)
	}
	b.pos = n
	return b.pos
}

// Request reports whether at least n bytes remain between the cursor and
// the end of the Buffer.
func (b *Buffer) Request(n int) bool {
	return len(b.data)-b.pos >= n
}

// ReadFromFile discards the Buffer's current contents and reads all of f
// into it, resetting the cursor to 0 on success.
func (b *Buffer) ReadFromFile(f io.Reader) error {
	data, e := io.ReadAll(f)
	if e != nil {
		return fmt.Errorf("failed reading input: %s", e)
	}
	b.data = data
	b.pos = 0
	return nil
}

// WriteToFile writes the entire Buffer contents to f. The cursor is not
// used or modified.
func (b *Buffer) WriteToFile(f io.Writer) error {
	if len(b.data) == 0 {
		return nil
	}
	_, e := f.Write(b.data)
	if e != nil {
		return fmt.Errorf("failed writing output: %s", e)
	}
	return nil
}

// Get reads one byte at the cursor and advances it. It returns io.EOF if
// the cursor is already at the end of the Buffer.
func (b *Buffer) Get() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

// Put writes one byte at the cursor and advances it, growing the Buffer by
// one byte if the cursor was at the end.
func (b *Buffer) Put(c byte) {
	if b.pos >= len(b.data) {
		b.data = append(b.data, c)
		b.pos = len(b.data)
		return
	}
	b.data[b.pos] = c
	b.pos++
}

// Write appends data at the cursor, overwriting existing bytes in place and
// growing the Buffer for any part of data past the current end. The cursor
// advances by len(data).
func (b *Buffer) Write(data []byte) (int, error) {
	for _, c := range data {
		b.Put(c)
	}
	return len(data), nil
}

// Insert splices all of other's contents into b at b's current cursor
// position. b's cursor is left unchanged (i.e. still pointing at the first
// byte of the newly inserted data). other is left untouched.
func (b *Buffer) Insert(other *Buffer) {
	if other.Len() == 0 {
		return
	}
	grown := make([]byte, 0, len(b.data)+len(other.data))
	grown = append(grown, b.data[:b.pos]...)
	grown = append(grown, other.data...)
	grown = append(grown, b.data[b.pos:]...)
	b.data = grown
}

// Remaining returns a view of the bytes between the cursor and the end of
// the Buffer, without moving the cursor.
func (b *Buffer) Remaining() []byte {
	return b.data[b.pos:]
}
