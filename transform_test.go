package smfkit

import "testing"

func TestPairNotesFoldsDurationAndRelease(t *testing.T) {
	tr := NewTrack()
	tr.Insert(Event{Time: 0, Msg: &NoteOnEvent{Channel: 0, Note: 60, Velocity: 100}})
	tr.Insert(Event{Time: 480, Msg: &NoteOffEvent{Channel: 0, Note: 60, Velocity: 64}})
	tr.Insert(Event{Time: 480, Msg: EndOfTrackEvent{}})

	if n := PairNotes(tr); n != 0 {
		t.Logf("Expected 0 unmatched notes, got %d\n", n)
		t.FailNow()
	}
	events := tr.Live()
	if len(events) != 2 {
		t.Logf("Expected 2 events after pairing (note + EOT), got %d\n", len(events))
		t.FailNow()
	}
	on, ok := events[0].Msg.(*NoteOnEvent)
	if !ok {
		t.Logf("Expected the first event to remain a NoteOnEvent, got %T\n", events[0].Msg)
		t.FailNow()
	}
	if on.Duration != 480 || on.Release != 64 {
		t.Logf("Expected Duration 480, Release 64; got Duration %d, Release %d\n", on.Duration, on.Release)
		t.FailNow()
	}
}

func TestPairNotesLIFOMatching(t *testing.T) {
	tr := NewTrack()
	tr.Insert(Event{Time: 0, Msg: &NoteOnEvent{Channel: 0, Note: 60, Velocity: 100}}) // outer
	tr.Insert(Event{Time: 10, Msg: &NoteOnEvent{Channel: 0, Note: 60, Velocity: 90}}) // inner
	tr.Insert(Event{Time: 20, Msg: &NoteOffEvent{Channel: 0, Note: 60, Velocity: 0}}) // closes inner
	tr.Insert(Event{Time: 30, Msg: &NoteOffEvent{Channel: 0, Note: 60, Velocity: 0}}) // closes outer
	tr.Insert(Event{Time: 30, Msg: EndOfTrackEvent{}})

	PairNotes(tr)
	events := tr.Live()
	var outer, inner *NoteOnEvent
	for _, e := range events {
		on, ok := e.Msg.(*NoteOnEvent)
		if !ok {
			continue
		}
		if e.Time == 0 {
			outer = on
		} else if e.Time == 10 {
			inner = on
		}
	}
	if outer == nil || inner == nil {
		t.Logf("Expected both notes to survive pairing\n")
		t.FailNow()
	}
	if inner.Duration != 10 {
		t.Logf("Expected the inner (later-opened) note to close first at duration 10, got %d\n", inner.Duration)
		t.FailNow()
	}
	if outer.Duration != 30 {
		t.Logf("Expected the outer note to close last at duration 30, got %d\n", outer.Duration)
		t.FailNow()
	}
}

func TestPairNotesCountsUnmatchedEvents(t *testing.T) {
	tr := NewTrack()
	// An orphan Note Off (no open Note On on its key)...
	tr.Insert(Event{Time: 0, Msg: &NoteOffEvent{Channel: 0, Note: 10, Velocity: 0}})
	// ...and a Note On that's never closed before the track ends.
	tr.Insert(Event{Time: 10, Msg: &NoteOnEvent{Channel: 0, Note: 20, Velocity: 100}})
	tr.Insert(Event{Time: 20, Msg: EndOfTrackEvent{}})

	n := PairNotes(tr)
	if n != 2 {
		t.Logf("Expected 2 unmatched events (1 orphan Note Off, 1 dangling Note On), got %d\n", n)
		t.FailNow()
	}
}

func TestUnpairNotesReversesPairNotes(t *testing.T) {
	tr := NewTrack()
	tr.Insert(Event{Time: 0, Msg: &NoteOnEvent{Channel: 0, Note: 60, Velocity: 100}})
	tr.Insert(Event{Time: 480, Msg: &NoteOffEvent{Channel: 0, Note: 60, Velocity: 64}})
	tr.Insert(Event{Time: 480, Msg: EndOfTrackEvent{}})
	before := tr.Live()

	PairNotes(tr)
	if n := UnpairNotes(tr); n != 1 {
		t.Logf("Expected 1 note converted back, got %d\n", n)
		t.FailNow()
	}
	after := tr.Live()

	if len(after) != len(before) {
		t.Logf("Expected %d events after unpairing, got %d\n", len(before), len(after))
		t.FailNow()
	}
	for i := range before {
		if after[i].Time != before[i].Time || after[i].Msg.String() != before[i].Msg.String() {
			t.Logf("Event %d differs after pair/unpair round trip: got %+v, want %+v\n", i, after[i], before[i])
			t.FailNow()
		}
	}
}

func TestCompressNoteOffRewritesAsNoteOnVelocityZero(t *testing.T) {
	tr := NewTrack()
	tr.Insert(Event{Time: 0, Msg: &NoteOffEvent{Channel: 0, Note: 60, Velocity: 64}})
	CompressNoteOff(tr)
	events := tr.Live()
	on, ok := events[0].Msg.(*NoteOnEvent)
	if !ok {
		t.Logf("Expected CompressNoteOff to produce a NoteOnEvent, got %T\n", events[0].Msg)
		t.FailNow()
	}
	if on.Velocity != 0 {
		t.Logf("Expected velocity 0 after compression, got %d\n", on.Velocity)
		t.FailNow()
	}
}

func TestMergeTracksDropsPerTrackEOTAndSynthesizesOne(t *testing.T) {
	tr1 := NewTrack()
	tr1.Insert(Event{Time: 0, Msg: &NoteOnEvent{Channel: 0, Note: 1, Velocity: 1}})
	tr1.Insert(Event{Time: 100, Msg: EndOfTrackEvent{}})

	tr2 := NewTrack()
	tr2.Insert(Event{Time: 0, Msg: &NoteOnEvent{Channel: 1, Note: 2, Velocity: 1}})
	tr2.Insert(Event{Time: 200, Msg: EndOfTrackEvent{}})

	score := &Score{Tracks: []*Track{tr1, tr2}}
	merged := MergeTracks(score)
	events := merged.Live()

	eotCount := 0
	for _, e := range events {
		if IsEndOfTrack(e.Msg) {
			eotCount++
		}
	}
	if eotCount != 1 {
		t.Logf("Expected exactly 1 EndOfTrack in the merged track, found %d\n", eotCount)
		t.FailNow()
	}
	last := events[len(events)-1]
	if !IsEndOfTrack(last.Msg) || last.Time != 200 {
		t.Logf("Expected the merged EndOfTrack at time 200, got %+v\n", last)
		t.FailNow()
	}
}

func TestAdjustTracksClampsRange(t *testing.T) {
	tracks := make([]*Track, 5)
	for i := range tracks {
		tracks[i] = NewTrack()
	}
	score := &Score{Tracks: tracks}
	AdjustTracks(score, 1, 100)
	if len(score.Tracks) != 4 {
		t.Logf("Expected to/clamped to the last track, leaving 4 tracks, got %d\n", len(score.Tracks))
		t.FailNow()
	}
}

func TestAdjustTracksEmptiesScoreWhenFromExceedsTo(t *testing.T) {
	tracks := make([]*Track, 3)
	for i := range tracks {
		tracks[i] = NewTrack()
	}
	score := &Score{Tracks: tracks}
	AdjustTracks(score, 2, 0)
	if len(score.Tracks) != 0 {
		t.Logf("Expected a crossed range to leave the score empty, got %d tracks\n", len(score.Tracks))
		t.FailNow()
	}
}

func TestAdjustTracksNoOpWhenFromOutOfRange(t *testing.T) {
	tracks := make([]*Track, 3)
	for i := range tracks {
		tracks[i] = NewTrack()
	}
	score := &Score{Tracks: tracks}
	AdjustTracks(score, 5, 6)
	if len(score.Tracks) != 3 {
		t.Logf("Expected an out-of-range from to be a no-op, got %d tracks\n", len(score.Tracks))
		t.FailNow()
	}
}

func TestConcatScoresShiftsAndPads(t *testing.T) {
	tr1 := NewTrack()
	tr1.Insert(Event{Time: 0, Msg: &NoteOnEvent{Channel: 0, Note: 1, Velocity: 1}})
	tr1.Insert(Event{Time: 100, Msg: EndOfTrackEvent{}})
	score1 := &Score{Format: 1, Division: 480, Tracks: []*Track{tr1}}

	tr2a := NewTrack()
	tr2a.Insert(Event{Time: 0, Msg: &NoteOnEvent{Channel: 0, Note: 2, Velocity: 1}})
	tr2a.Insert(Event{Time: 50, Msg: EndOfTrackEvent{}})
	tr2b := NewTrack()
	tr2b.Insert(Event{Time: 0, Msg: &NoteOnEvent{Channel: 1, Note: 3, Velocity: 1}})
	tr2b.Insert(Event{Time: 50, Msg: EndOfTrackEvent{}})
	score2 := &Score{Format: 1, Division: 480, Tracks: []*Track{tr2a, tr2b}}

	result := ConcatScores([]*Score{score1, score2}, nil)
	if len(result.Tracks) != 2 {
		t.Logf("Expected the result to have 2 tracks (the widest input), got %d\n", len(result.Tracks))
		t.FailNow()
	}

	track0 := result.Tracks[0].Live()
	foundShifted := false
	for _, e := range track0 {
		if _, ok := e.Msg.(*NoteOnEvent); ok && e.Time == 100 {
			foundShifted = true
		}
	}
	if !foundShifted {
		t.Logf("Expected score2's track 0 note to be shifted by score1's duration (100), got %+v\n", track0)
		t.FailNow()
	}

	track1 := result.Tracks[1].Live()
	if len(track1) == 0 {
		t.Logf("Expected track 1 to exist even though score1 had no second track\n")
		t.FailNow()
	}
}
