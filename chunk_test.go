package smfkit

import (
	"testing"

	"github.com/go-smf/smfkit/diag"
)

func TestSearchChunkMThd(t *testing.T) {
	b := NewBuffer()
	if e := WriteMThd(b, 1, 3, 480); e != nil {
		t.Logf("Failed writing MThd: %s\n", e)
		t.FailNow()
	}
	b.SetPos(0)
	skipped, chunk, ok := SearchChunk(b, nil)
	if !ok {
		t.Logf("Expected to find an MThd chunk\n")
		t.FailNow()
	}
	if skipped != 0 {
		t.Logf("Expected no skipped bytes, got %d\n", skipped)
		t.FailNow()
	}
	if chunk.Kind != ChunkMThd || chunk.Format != 1 || chunk.NTrk != 3 || chunk.Division != 480 {
		t.Logf("Unexpected chunk contents: %+v\n", chunk)
		t.FailNow()
	}
}

func TestSearchChunkMTrk(t *testing.T) {
	b := NewBuffer()
	if e := WriteMTrk(b, 42); e != nil {
		t.Logf("Failed writing MTrk: %s\n", e)
		t.FailNow()
	}
	b.SetPos(0)
	_, chunk, ok := SearchChunk(b, nil)
	if !ok {
		t.Logf("Expected to find an MTrk chunk\n")
		t.FailNow()
	}
	if chunk.Kind != ChunkMTrk || chunk.Size != 42 {
		t.Logf("Unexpected chunk contents: %+v\n", chunk)
		t.FailNow()
	}
}

func TestSearchChunkSkipsGarbage(t *testing.T) {
	b := NewBuffer()
	b.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	if e := WriteMTrk(b, 0); e != nil {
		t.Logf("Failed writing MTrk: %s\n", e)
		t.FailNow()
	}
	b.SetPos(0)
	skipped, chunk, ok := SearchChunk(b, diag.NewSink(nil))
	if !ok {
		t.Logf("Expected to find the MTrk chunk past the garbage\n")
		t.FailNow()
	}
	if skipped != 4 {
		t.Logf("Expected to skip 4 bytes, skipped %d\n", skipped)
		t.FailNow()
	}
	if chunk.Kind != ChunkMTrk {
		t.Logf("Expected MTrk chunk, got %v\n", chunk.Kind)
		t.FailNow()
	}
}

func TestSearchChunkNoneFound(t *testing.T) {
	b := NewBufferFromBytes([]byte{1, 2, 3})
	_, _, ok := SearchChunk(b, nil)
	if ok {
		t.Logf("Expected no chunk to be found in garbage-only input\n")
		t.FailNow()
	}
	if b.Pos() != 0 {
		t.Logf("Expected cursor restored to 0, got %d\n", b.Pos())
		t.FailNow()
	}
}

func TestMThdRejectsBadFormat(t *testing.T) {
	b := NewBuffer()
	if e := WriteMThd(b, 3, 1, 480); e == nil {
		t.Logf("Expected an error writing an MThd with an invalid format\n")
		t.FailNow()
	}
}
