package smfkit

import (
	"fmt"
	"io"

	"github.com/go-smf/smfkit/diag"
)

// Score bundles a file's header fields with its tracks, in file order.
type Score struct {
	Format   int
	Division uint16
	Tracks   []*Track
}

// ReadScores reads every SMF stream concatenated in r, as the file-spec
// grammar's score index (name@score.track) expects: each new MThd chunk
// encountered starts a fresh Score, so a file holding several back-to-
// back header+tracks streams yields one Score per header.
//
// Diagnostics (malformed chunks, a track missing its end of track
// event) are reported through sink rather than failing the read;
// ReadScores only returns an error when the input can't be salvaged at
// all.
//
// If the stream starts with track chunks and no MThd, the first score
// defaults to format 0, division 120, per the original tool's behavior
// reading headerless track dumps. Within a score, the number of tracks
// actually discovered always wins over its header's declared track
// count, which is advisory only.
func ReadScores(r io.Reader, sink *diag.Sink) ([]*Score, error) {
	b := NewBuffer()
	if e := b.ReadFromFile(r); e != nil {
		return nil, e
	}

	var scores []*Score
	cur := &Score{Format: 0, Division: 120}
	started := false
	for {
		skipped, chunk, ok := SearchChunk(b, sink)
		if !ok {
			break
		}
		if skipped > 0 {
			sink.Report(diag.Warn, "skipped %d bytes of unrecognized data before chunk", skipped)
		}
		switch chunk.Kind {
		case ChunkMThd:
			if started {
				scores = append(scores, cur)
				cur = &Score{}
			}
			started = true
			cur.Format = chunk.Format
			cur.Division = chunk.Division
			if chunk.ExtraHeaderBytes > 0 {
				b.SetPos(b.Pos() + chunk.ExtraHeaderBytes)
			}
		case ChunkMTrk:
			cur.Tracks = append(cur.Tracks, readTrackBody(b, chunk.Size, sink))
		}
	}
	if !started && len(cur.Tracks) == 0 {
		return nil, fmt.Errorf("no MThd or MTrk chunks found")
	}
	if !started {
		sink.Report(diag.Warn, "no MThd chunk found, assuming format 0, division 120")
	}
	scores = append(scores, cur)
	return scores, nil
}

// ReadScore reads a single SMF stream from r. It's a convenience over
// ReadScores for the common case of one score per file; if r holds more
// than one concatenated stream, every score after the first is
// reported through sink and discarded.
func ReadScore(r io.Reader, sink *diag.Sink) (*Score, error) {
	scores, e := ReadScores(r, sink)
	if e != nil {
		return nil, e
	}
	if len(scores) > 1 {
		sink.Report(diag.Warn, "input holds %d concatenated scores, using only the first", len(scores))
	}
	return scores[0], nil
}

// readTrackBody reads size bytes (clamped to what's actually left in b) of
// event data starting at b's current position. A read failure partway
// through the track (a corrupt or truncated message) stops only this
// track: the error is reported through sink and the loop falls through to
// the same missing-end-of-track handling used when the declared size runs
// out before an EndOfTrackEvent, synthesizing one so the rest of the
// stream can still be read. This mirrors the original tool's read_events,
// which isolates a bad track instead of aborting the whole file.
func readTrackBody(b *Buffer, size int, sink *diag.Sink) *Track {
	end := b.Pos() + size
	if end > b.Len() {
		sink.Report(diag.Warn, "track declares %d bytes but only %d remain; reading what's available",
			size, b.Len()-b.Pos())
		end = b.Len()
	}

	track := NewTrack()
	var rs uint8
	var abs uint32
	sawEOT := false
	for b.Pos() < end {
		delta, msg, e := ReadEvent(b, &rs, sink)
		if e != nil {
			sink.Report(diag.Warn, "reading track: %s; stopping this track", e)
			break
		}
		abs += delta
		track.Insert(Event{Time: abs, Msg: msg})
		if IsEndOfTrack(msg) {
			sawEOT = true
			break
		}
	}
	if b.Pos() < end {
		sink.Report(diag.Warn, "discarding %d bytes of track data after end of track", end-b.Pos())
	}
	b.SetPos(end)
	if !sawEOT {
		sink.Report(diag.Warn, "track missing end of track, synthesizing one")
		track.Insert(Event{Time: abs, Msg: EndOfTrackEvent{}})
	}
	return track
}

// WriteScore writes score to w as a standard multi-chunk SMF file: one
// MThd followed by one MTrk per track, in order. Each track must already
// end with an EndOfTrackEvent (ReadScore and every transform in this
// package guarantee that).
func WriteScore(w io.Writer, score *Score) error {
	out := NewBuffer()
	if e := WriteMThd(out, score.Format, len(score.Tracks), score.Division); e != nil {
		return e
	}
	for i, track := range score.Tracks {
		body, e := writeTrackBody(track)
		if e != nil {
			return fmt.Errorf("writing track %d: %s", i, e)
		}
		if e := WriteMTrk(out, uint32(body.Len())); e != nil {
			return e
		}
		out.Write(body.Bytes())
	}
	return out.WriteToFile(w)
}

func writeTrackBody(track *Track) (*Buffer, error) {
	events := track.Live()
	if len(events) == 0 || !IsEndOfTrack(events[len(events)-1].Msg) {
		return nil, fmt.Errorf("missing end of track event")
	}
	body := NewBuffer()
	var rs uint8
	var prev uint32
	for _, e := range events {
		if e.Time < prev {
			return nil, fmt.Errorf("event time %d precedes previous event time %d", e.Time, prev)
		}
		if err := WriteEvent(body, &rs, e.Time-prev, e.Msg); err != nil {
			return nil, err
		}
		prev = e.Time
	}
	return body, nil
}
