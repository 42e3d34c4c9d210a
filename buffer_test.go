package smfkit

import (
	"bytes"
	"io"
	"testing"
)

func TestBufferGetPut(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < 10; i++ {
		b.Put(byte(i))
	}
	if b.Len() != 10 {
		t.Logf("Expected length 10, got %d\n", b.Len())
		t.FailNow()
	}
	b.SetPos(0)
	for i := 0; i < 10; i++ {
		v, e := b.Get()
		if e != nil {
			t.Logf("Unexpected error reading byte %d: %s\n", i, e)
			t.FailNow()
		}
		if v != byte(i) {
			t.Logf("Expected byte %d, got %d\n", i, v)
			t.FailNow()
		}
	}
	_, e := b.Get()
	if e != io.EOF {
		t.Logf("Expected io.EOF at end of buffer, got %v\n", e)
		t.FailNow()
	}
}

func TestBufferSetPosClamps(t *testing.T) {
	b := NewBufferFromBytes([]byte{1, 2, 3})
	if p := b.SetPos(-5); p != 0 {
		t.Logf("Expected negative SetPos to clamp to 0, got %d\n", p)
		t.FailNow()
	}
	if p := b.SetPos(100); p != 3 {
		t.Logf("Expected oversized SetPos to clamp to Len(), got %d\n", p)
		t.FailNow()
	}
}

func TestBufferWriteOverwritesInPlace(t *testing.T) {
	b := NewBufferFromBytes([]byte{0, 0, 0, 0})
	b.SetPos(1)
	n, e := b.Write([]byte{9, 9})
	if e != nil {
		t.Logf("Unexpected error writing: %s\n", e)
		t.FailNow()
	}
	if n != 2 {
		t.Logf("Expected to write 2 bytes, wrote %d\n", n)
		t.FailNow()
	}
	if !bytes.Equal(b.Bytes(), []byte{0, 9, 9, 0}) {
		t.Logf("Unexpected buffer contents after write: %v\n", b.Bytes())
		t.FailNow()
	}
}

func TestBufferInsert(t *testing.T) {
	b := NewBufferFromBytes([]byte{1, 2, 5, 6})
	b.SetPos(2)
	other := NewBufferFromBytes([]byte{3, 4})
	b.Insert(other)
	if !bytes.Equal(b.Bytes(), []byte{1, 2, 3, 4, 5, 6}) {
		t.Logf("Unexpected buffer contents after insert: %v\n", b.Bytes())
		t.FailNow()
	}
	if b.Pos() != 2 {
		t.Logf("Expected cursor to remain at 2 after insert, got %d\n", b.Pos())
		t.FailNow()
	}
}

func TestBufferReadWriteFile(t *testing.T) {
	b := NewBuffer()
	b.Put(1)
	b.Put(2)
	b.Put(3)
	var out bytes.Buffer
	if e := b.WriteToFile(&out); e != nil {
		t.Logf("Unexpected error writing to file: %s\n", e)
		t.FailNow()
	}
	b2 := NewBuffer()
	if e := b2.ReadFromFile(&out); e != nil {
		t.Logf("Unexpected error reading from file: %s\n", e)
		t.FailNow()
	}
	if !bytes.Equal(b.Bytes(), b2.Bytes()) {
		t.Logf("Round-tripped buffer differs: got %v, want %v\n", b2.Bytes(), b.Bytes())
		t.FailNow()
	}
	if b2.Pos() != 0 {
		t.Logf("Expected cursor reset to 0 after ReadFromFile, got %d\n", b2.Pos())
		t.FailNow()
	}
}

func TestBufferRequestRemaining(t *testing.T) {
	b := NewBufferFromBytes([]byte{1, 2, 3, 4})
	b.SetPos(2)
	if !b.Request(2) {
		t.Logf("Expected Request(2) to succeed with 2 bytes remaining\n")
		t.FailNow()
	}
	if b.Request(3) {
		t.Logf("Expected Request(3) to fail with only 2 bytes remaining\n")
		t.FailNow()
	}
	if !bytes.Equal(b.Remaining(), []byte{3, 4}) {
		t.Logf("Unexpected Remaining(): %v\n", b.Remaining())
		t.FailNow()
	}
}
