package smfkit

import (
	"fmt"

	"github.com/go-smf/smfkit/diag"
)

// ChunkKind tags a Chunk as either the file header or a track.
type ChunkKind int

const (
	// ChunkMThd is the SMF header chunk.
	ChunkMThd ChunkKind = iota
	// ChunkMTrk is a track chunk.
	ChunkMTrk
)

func (k ChunkKind) String() string {
	if k == ChunkMThd {
		return "MThd"
	}
	return "MTrk"
}

// Chunk is a scanned MThd or MTrk chunk header. Only the fields relevant
// to Kind are meaningful.
type Chunk struct {
	Kind ChunkKind

	// MThd fields.
	Format           int
	NTrk             int
	Division         uint16
	ExtraHeaderBytes int

	// MTrk field.
	Size int
}

func readUint32(b *Buffer) (uint32, bool) {
	var v uint32
	for i := 0; i < 4; i++ {
		c, e := b.Get()
		if e != nil {
			return 0, false
		}
		v = (v << 8) | uint32(c)
	}
	return v, true
}

func readTag(b *Buffer, tag string) bool {
	for i := 0; i < len(tag); i++ {
		c, e := b.Get()
		if e != nil || c != tag[i] {
			return false
		}
	}
	return true
}

func tryMThd(b *Buffer, sink *diag.Sink) (Chunk, bool) {
	start := b.Pos()
	if !b.Request(8) || !readTag(b, "MThd") {
		b.SetPos(start)
		return Chunk{}, false
	}
	size32, ok := readUint32(b)
	if !ok {
		b.SetPos(start)
		return Chunk{}, false
	}
	size := int(size32)
	if size < 6 {
		sink.ReportAt(diag.Error, start, "skipping header: size %d too short", size)
		b.SetPos(start)
		return Chunk{}, false
	}
	if size > 6 {
		sink.ReportAt(diag.Warn, start, "unusually long header: %d bytes", size)
	}
	if !b.Request(6) {
		sink.ReportAt(diag.Error, start, "skipping header: truncated before format/ntrk/div")
		b.SetPos(start)
		return Chunk{}, false
	}
	if !b.Request(size) {
		sink.ReportAt(diag.Warn, start, "truncated but usable header")
	}
	formatRaw, _ := readBE16(b)
	ntrkRaw, _ := readBE16(b)
	divRaw, _ := readBE16(b)
	format := int(formatRaw)
	if format < 0 || format > 2 {
		sink.ReportAt(diag.Error, start, "skipping header: illegal format %d", format)
		b.SetPos(start)
		return Chunk{}, false
	}
	if divRaw == 0 {
		sink.ReportAt(diag.Error, start, "skipping header: division is 0")
		b.SetPos(start)
		return Chunk{}, false
	}
	return Chunk{
		Kind:             ChunkMThd,
		Format:           format,
		NTrk:             int(ntrkRaw),
		Division:         divRaw,
		ExtraHeaderBytes: size - 6,
	}, true
}

func tryMTrk(b *Buffer, sink *diag.Sink) (Chunk, bool) {
	start := b.Pos()
	if !b.Request(8) || !readTag(b, "MTrk") {
		b.SetPos(start)
		return Chunk{}, false
	}
	size32, ok := readUint32(b)
	if !ok {
		b.SetPos(start)
		return Chunk{}, false
	}
	return Chunk{Kind: ChunkMTrk, Size: int(size32)}, true
}

func readBE16(b *Buffer) (uint16, bool) {
	hi, e1 := b.Get()
	lo, e2 := b.Get()
	if e1 != nil || e2 != nil {
		return 0, false
	}
	return uint16(hi)<<8 | uint16(lo), true
}

// SearchChunk scans forward from b's cursor for the next well-formed
// MThd or MTrk header, skipping any leading bytes that don't form one. It
// returns the number of bytes skipped and the decoded chunk, leaving the
// cursor immediately after the header (at the start of the chunk body).
// If no valid chunk is found before EOF, ok is false and the cursor is
// left at its pre-call position.
func SearchChunk(b *Buffer, sink *diag.Sink) (skipped int, chunk Chunk, ok bool) {
	start := b.Pos()
	n := 0
	for b.Request(8) {
		if c, matched := tryMThd(b, sink); matched {
			return n, c, true
		}
		if c, matched := tryMTrk(b, sink); matched {
			return n, c, true
		}
		b.Get()
		n++
	}
	b.SetPos(start)
	return 0, Chunk{}, false
}

// WriteMThd writes a 14-byte MThd chunk header with the given format,
// track count, and division.
func WriteMThd(b *Buffer, format, ntrk int, div uint16) error {
	if format < 0 || format > 2 {
		return fmt.Errorf("invalid header format: %d", format)
	}
	if ntrk < 0 {
		return fmt.Errorf("invalid track count: %d", ntrk)
	}
	b.Write([]byte{'M', 'T', 'h', 'd', 0, 0, 0, 6})
	b.Put(byte(format >> 8))
	b.Put(byte(format))
	b.Put(byte(ntrk >> 8))
	b.Put(byte(ntrk))
	b.Put(byte(div >> 8))
	b.Put(byte(div))
	return nil
}

// WriteMTrk writes an 8-byte MTrk chunk header with the given track size.
// The track body itself must be written separately, and size is usually
// patched afterward once the body's length is known.
func WriteMTrk(b *Buffer, size uint32) error {
	b.Write([]byte{'M', 'T', 'r', 'k'})
	b.Put(byte(size >> 24))
	b.Put(byte(size >> 16))
	b.Put(byte(size >> 8))
	b.Put(byte(size))
	return nil
}
