package smfkit

import "testing"

func TestVLQRoundTrip(t *testing.T) {
	values := []uint32{
		0x00000000,
		0x00000040,
		0x0000007F,
		0x00000080,
		0x00002000,
		0x00003FFF,
		0x00004000,
		0x00100000,
		0x001FFFFF,
		0x00200000,
		0x08000000,
		0x0FFFFFFF,
	}
	b := NewBuffer()
	for _, v := range values {
		if e := WriteVLQ(b, v); e != nil {
			t.Logf("Failed writing vlq 0x%08x: %s\n", v, e)
			t.FailNow()
		}
	}
	b.SetPos(0)
	for _, v := range values {
		got, e := ReadVLQ(b)
		if e != nil {
			t.Logf("Failed reading vlq 0x%08x: %s\n", v, e)
			t.FailNow()
		}
		if got != v {
			t.Logf("Read wrong vlq value: expected 0x%08x, got 0x%08x\n", v, got)
			t.FailNow()
		}
	}
}

func TestVLQExactEncoding(t *testing.T) {
	cases := []struct {
		value    uint32
		expected []byte
	}{
		{0x00000000, []byte{0x00}},
		{0x00000040, []byte{0x40}},
		{0x0000007F, []byte{0x7F}},
		{0x00000080, []byte{0x81, 0x00}},
		{0x00002000, []byte{0xC0, 0x00}},
		{0x00003FFF, []byte{0xFF, 0x7F}},
		{0x001FFFFF, []byte{0xFF, 0xFF, 0x7F}},
		{0x0FFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}
	for _, c := range cases {
		b := NewBuffer()
		if e := WriteVLQ(b, c.value); e != nil {
			t.Logf("Failed writing vlq 0x%08x: %s\n", c.value, e)
			t.FailNow()
		}
		got := b.Bytes()
		if len(got) != len(c.expected) {
			t.Logf("Wrong byte count for 0x%08x: expected %v, got %v\n", c.value, c.expected, got)
			t.FailNow()
		}
		for i := range got {
			if got[i] != c.expected[i] {
				t.Logf("Mismatched byte %d for 0x%08x: expected %v, got %v\n", i, c.value, c.expected, got)
				t.FailNow()
			}
		}
	}
}

func TestVLQOutOfRange(t *testing.T) {
	b := NewBuffer()
	e := WriteVLQ(b, MaxVLQ+1)
	if e == nil {
		t.Logf("Didn't get expected error for writing vlq that's too big\n")
		t.FailNow()
	}
	t.Logf("Got expected error: %s\n", e)
}

func TestVLQTruncated(t *testing.T) {
	b := NewBufferFromBytes([]byte{0x81, 0x80})
	start := b.Pos()
	_, e := ReadVLQ(b)
	if e == nil {
		t.Logf("Didn't get expected error reading truncated vlq\n")
		t.FailNow()
	}
	if b.Pos() != start {
		t.Logf("Expected cursor restored to %d after failed read, got %d\n", start, b.Pos())
		t.FailNow()
	}
}

func TestVLQContinuationOnFourthByte(t *testing.T) {
	b := NewBufferFromBytes([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	_, e := ReadVLQ(b)
	if e == nil {
		t.Logf("Didn't get expected error for a vlq with 4 continuation bytes\n")
		t.FailNow()
	}
	t.Logf("Got expected error: %s\n", e)
}

func TestVLDRoundTrip(t *testing.T) {
	b := NewBuffer()
	data := VLD([]byte{1, 2, 3, 4, 5})
	if e := WriteVLD(b, data); e != nil {
		t.Logf("Failed writing vld: %s\n", e)
		t.FailNow()
	}
	b.SetPos(0)
	got, e := ReadVLD(b)
	if e != nil {
		t.Logf("Failed reading vld: %s\n", e)
		t.FailNow()
	}
	if len(got) != len(data) {
		t.Logf("Wrong vld length: expected %d, got %d\n", len(data), len(got))
		t.FailNow()
	}
	for i := range got {
		if got[i] != data[i] {
			t.Logf("Mismatched vld byte %d: expected %d, got %d\n", i, data[i], got[i])
			t.FailNow()
		}
	}
}

func TestVLDTruncated(t *testing.T) {
	b := NewBuffer()
	if e := WriteVLQ(b, 10); e != nil {
		t.Logf("Failed writing vld length: %s\n", e)
		t.FailNow()
	}
	b.SetPos(0)
	_, e := ReadVLD(b)
	if e == nil {
		t.Logf("Didn't get expected error reading vld whose data is missing\n")
		t.FailNow()
	}
	t.Logf("Got expected error: %s\n", e)
}
