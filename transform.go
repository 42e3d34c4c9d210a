package smfkit

import "github.com/go-smf/smfkit/diag"

type noteKey struct {
	channel uint8
	note    uint8
}

func noteOffDetails(m Message) (channel, note, velocity uint8) {
	switch v := m.(type) {
	case *NoteOffEvent:
		return v.Channel, v.Note, v.Velocity
	case *NoteOnEvent:
		return v.Channel, v.Note, v.Velocity
	}
	return 0, 0, 0
}

// PairNotes walks t's live events in time order and folds every matching
// Note Off into the Note On that opened it: the Note On's Duration
// becomes the time between the two, and Release takes the Note Off's
// velocity. Matching is LIFO per (channel, note), so overlapping notes on
// the same key close innermost-first. A Note Off with no open Note On on
// its key is left untouched. It returns the number of unmatched events:
// Note Offs with no open Note On, plus Note Ons still open once the track
// ends.
func PairNotes(t *Track) int {
	events := t.Live()
	stacks := map[noteKey][]int{}
	keep := make([]bool, len(events))
	for i := range keep {
		keep[i] = true
	}

	unmatched := 0
	for i, e := range events {
		if IsNoteOn(e.Msg) {
			on := e.Msg.(*NoteOnEvent)
			stacks[noteKey{on.Channel, on.Note}] = append(stacks[noteKey{on.Channel, on.Note}], i)
			continue
		}
		if !IsNoteOff(e.Msg) {
			continue
		}
		channel, note, velocity := noteOffDetails(e.Msg)
		k := noteKey{channel, note}
		s := stacks[k]
		if len(s) == 0 {
			unmatched++
			continue
		}
		onIdx := s[len(s)-1]
		stacks[k] = s[:len(s)-1]
		on := events[onIdx].Msg.(*NoteOnEvent)
		on.Duration = e.Time - events[onIdx].Time
		on.Release = velocity
		keep[i] = false
	}
	for _, s := range stacks {
		unmatched += len(s)
	}

	result := make([]Event, 0, len(events))
	for i, e := range events {
		if keep[i] {
			result = append(result, e)
		}
	}
	t.Clear()
	for _, e := range result {
		t.Insert(e)
	}
	return unmatched
}

// UnpairNotes reverses PairNotes: every NoteOnEvent with a nonzero
// Duration is split back into a bare Note On (Duration and Release
// cleared) and a Note Off at Time+Duration carrying the stored Release
// velocity. A combined note must be unpaired before WriteEvent will
// accept it. It returns the number of notes converted.
func UnpairNotes(t *Track) int {
	events := t.Live()
	result := make([]Event, 0, len(events))
	converted := 0
	for _, e := range events {
		on, ok := e.Msg.(*NoteOnEvent)
		if !ok || on.Duration == 0 {
			result = append(result, e)
			continue
		}
		duration, release := on.Duration, on.Release
		on.Duration, on.Release = 0, 0
		result = append(result, e)
		result = append(result, Event{
			Time: e.Time + duration,
			Msg:  &NoteOffEvent{Channel: on.Channel, Note: on.Note, Velocity: release},
		})
		converted++
	}
	t.Clear()
	for _, e := range result {
		t.Insert(e)
	}
	return converted
}

// CompressNoteOff rewrites every NoteOffEvent in t as a NoteOnEvent with
// velocity 0. The two are functionally identical (see IsNoteOff), but
// the rewrite lets a Note On's running status cover the matching Note
// Off instead of forcing a fresh status byte.
func CompressNoteOff(t *Track) {
	events := t.Live()
	result := make([]Event, len(events))
	for i, e := range events {
		if off, ok := e.Msg.(*NoteOffEvent); ok {
			result[i] = Event{Time: e.Time, Msg: &NoteOnEvent{Channel: off.Channel, Note: off.Note, Velocity: 0}}
			continue
		}
		result[i] = e
	}
	t.Clear()
	for _, e := range result {
		t.Insert(e)
	}
}

// MergeTracks combines every track of score into a single track,
// interleaved in time order by the track's own total ordering rules.
// Each track's own EndOfTrack is dropped; the merged track gets exactly
// one EndOfTrack, at the latest time any input track ended.
func MergeTracks(score *Score) *Track {
	merged := NewTrack()
	var maxEOT uint32
	haveEOT := false
	for _, tr := range score.Tracks {
		for _, e := range tr.Live() {
			if IsEndOfTrack(e.Msg) {
				if !haveEOT || e.Time > maxEOT {
					maxEOT = e.Time
					haveEOT = true
				}
				continue
			}
			merged.Insert(e)
		}
	}
	if haveEOT {
		merged.Insert(Event{Time: maxEOT, Msg: EndOfTrackEvent{}})
	}
	return merged
}

// AdjustTracks restricts score to tracks [from, to], inclusive. to is
// first clamped down to the last valid track index. If from is out of
// range, score is left unmodified. If from is in range but exceeds the
// clamped to, the range is empty and score is left with no tracks.
func AdjustTracks(score *Score, from, to int) {
	ntrk := len(score.Tracks)
	if to >= ntrk {
		to = ntrk - 1
	}
	if from >= ntrk {
		return
	}
	if from > to {
		score.Tracks = nil
		return
	}
	score.Tracks = score.Tracks[from : to+1]
}

func scoreDuration(score *Score) uint32 {
	var max uint32
	for _, tr := range score.Tracks {
		events := tr.Live()
		if len(events) == 0 {
			continue
		}
		last := events[len(events)-1].Time
		if last > max {
			max = last
		}
	}
	return max
}

// emptyTrack returns a track containing only an EndOfTrack at time 0,
// used to pad out a shorter score's track list during ConcatScores.
func emptyTrack() *Track {
	tr := NewTrack()
	tr.Insert(Event{Time: 0, Msg: EndOfTrackEvent{}})
	return tr
}

// ConcatScores appends scores end to end into a single score: each
// score's events are shifted by the running total duration of the
// scores before it. Track i of the result holds track i of every input
// score in sequence; a score with fewer tracks than the widest score in
// the list is padded with empty tracks. The result takes its format and
// division from the first score; a later score with a different
// division is reported through sink but not resampled; divisions are
// assumed to agree, as the original tool this is modeled on assumed.
func ConcatScores(scores []*Score, sink *diag.Sink) *Score {
	if len(scores) == 0 {
		return &Score{Format: 0, Division: 120}
	}
	width := 0
	for _, s := range scores {
		if len(s.Tracks) > width {
			width = len(s.Tracks)
		}
	}
	result := &Score{Format: scores[0].Format, Division: scores[0].Division}
	result.Tracks = make([]*Track, width)
	for i := range result.Tracks {
		result.Tracks[i] = NewTrack()
	}

	var offset uint32
	for si, score := range scores {
		if si > 0 && score.Division != result.Division {
			sink.Report(diag.Warn, "concatenated score %d has division %d, expected %d; not resampled",
				si, score.Division, result.Division)
		}
		for i := 0; i < width; i++ {
			var tr *Track
			if i < len(score.Tracks) {
				tr = score.Tracks[i]
			} else {
				tr = emptyTrack()
			}
			for _, e := range tr.Live() {
				if IsEndOfTrack(e.Msg) {
					continue
				}
				result.Tracks[i].Insert(Event{Time: offset + e.Time, Msg: e.Msg})
			}
		}
		offset += scoreDuration(score)
	}
	for _, tr := range result.Tracks {
		tr.Insert(Event{Time: offset, Msg: EndOfTrackEvent{}})
	}
	return result
}
