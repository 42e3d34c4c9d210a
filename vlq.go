package smfkit

import "fmt"

// MaxVLQ is the largest value a MIDI variable-length quantity can encode
// (28 bits).
const MaxVLQ = 0x0fffffff

// VLD is variable-length data: a VLQ-encoded length followed by that many
// opaque bytes. The core never interprets the contents; textual decoding
// is left to callers.
type VLD []byte

// ReadVLQ decodes a MIDI variable-length quantity (big-endian base-128,
// continuation bit = high bit of each byte) starting at b's cursor. On
// failure the cursor is restored to its pre-call position.
func ReadVLQ(b *Buffer) (uint32, error) {
	start := b.Pos()
	var value uint32
	for i := 0; i < 4; i++ {
		c, e := b.Get()
		if e != nil {
			b.SetPos(start)
			return 0, fmt.Errorf("truncated vlq: %s", e)
		}
		value = (value << 7) | uint32(c&0x7f)
		if (c & 0x80) == 0 {
			return value, nil
		}
		if i == 3 {
			b.SetPos(start)
			return 0, fmt.Errorf("vlq out of range: continuation bit set on 4th byte")
		}
	}
	panic("unreachable")
}

// WriteVLQ encodes v as a MIDI variable-length quantity and appends it at
// b's cursor. v must be in [0, MaxVLQ].
func WriteVLQ(b *Buffer, v uint32) error {
	if v > MaxVLQ {
		return fmt.Errorf("vlq out of range: 0x%x exceeds 0x%x", v, uint32(MaxVLQ))
	}
	var stack [4]byte
	n := 0
	stack[n] = byte(v & 0x7f)
	n++
	for v > 0x7f {
		v >>= 7
		stack[n] = 0x80 | byte(v&0x7f)
		n++
	}
	for i := n - 1; i >= 0; i-- {
		b.Put(stack[i])
	}
	return nil
}

// ReadVLD decodes variable-length data: a VLQ length followed by exactly
// that many bytes. On failure the cursor is restored to its pre-call
// position.
func ReadVLD(b *Buffer) (VLD, error) {
	start := b.Pos()
	length, e := ReadVLQ(b)
	if e != nil {
		return nil, e
	}
	if !b.Request(int(length)) {
		b.SetPos(start)
		return nil, fmt.Errorf("truncated vld: need %d bytes, fewer remain", length)
	}
	data := make([]byte, length)
	copy(data, b.Remaining()[:length])
	b.SetPos(b.Pos() + int(length))
	return VLD(data), nil
}

// WriteVLD encodes d as variable-length data: its VLQ length followed by
// its bytes.
func WriteVLD(b *Buffer, d VLD) error {
	if e := WriteVLQ(b, uint32(len(d))); e != nil {
		return fmt.Errorf("writing vld length: %s", e)
	}
	if _, e := b.Write(d); e != nil {
		return fmt.Errorf("writing vld data: %s", e)
	}
	return nil
}
