package smfkit

import "sort"

// initialTrackCapacity is the capacity reserved the first time a Track
// receives an event, mirroring the teacher's exponential growth starting
// point. Go's append already grows a slice's backing array by doubling
// once it's non-empty, so this only matters for the very first
// allocation; there's no analogue to the original's manual realloc/shrink
// dance needed once the GC owns the backing array.
const initialTrackCapacity = 512

// Track is an ordered, mutable sequence of Events. It supports cursor-
// based iteration (Rewind/Step), binary search by time (Find), and
// insertion-sorted placement (Insert) with a deferred-sort "insertion
// mode" so a batch of inserts costs one sort instead of one per insert.
//
// Reading the track (Step) while a batch of inserts is pending is
// undefined — call Rewind, GetPos, or Find first to finalize the batch.
type Track struct {
	events    []Event
	nempty    int
	cursor    int
	inserting bool
}

// NewTrack returns an empty Track with its cursor at EOT.
func NewTrack() *Track {
	return &Track{}
}

// NEvents returns the number of live (non-tombstone) events.
func (t *Track) NEvents() int {
	return len(t.events) - t.nempty
}

func (t *Track) startInsertion() {
	if t.inserting {
		return
	}
	t.pack()
	if t.events == nil {
		t.events = make([]Event, 0, initialTrackCapacity)
	}
	t.inserting = true
}

func (t *Track) stopInsertion() {
	if !t.inserting {
		return
	}
	t.inserting = false
	sort.SliceStable(t.events, func(i, j int) bool {
		return eventLess(t.events[i], t.events[j])
	})
}

// eventLess implements the total order spec.md §4.6 establishes when
// insertion mode ends or tracks are merged:
//
//	1. time ascending
//	2. EndOfTrack always last at its time
//	3. meta (non-voice, non-EOT) before voice
//	4. voice events ordered by channel ascending
//	5. ProgramChange before other same-time/channel voice events
//	6. ControlChange before other same-time/channel voice events
//	7. NoteOff before NoteOn (NoteOn velocity 0 counts as NoteOff)
//	8. stable by insertion order (handled by sort.SliceStable itself)
func eventLess(e1, e2 Event) bool {
	if e1.Time != e2.Time {
		return e1.Time < e2.Time
	}
	e1EOT, e2EOT := IsEndOfTrack(e1.Msg), IsEndOfTrack(e2.Msg)
	if e2EOT && !e1EOT {
		return true
	}
	if e1EOT {
		return false
	}
	e1Voice, e2Voice := IsVoice(e1.Msg), IsVoice(e2.Msg)
	if e1Voice != e2Voice {
		return e2Voice
	}
	if !e1Voice {
		return false
	}
	c1, _ := Channel(e1.Msg)
	c2, _ := Channel(e2.Msg)
	if c1 != c2 {
		return c1 < c2
	}
	_, e1Prog := e1.Msg.(*ProgramChangeEvent)
	_, e2Prog := e2.Msg.(*ProgramChangeEvent)
	if e1Prog != e2Prog {
		return e1Prog
	}
	_, e1Ctrl := e1.Msg.(*ControlChangeEvent)
	_, e2Ctrl := e2.Msg.(*ControlChangeEvent)
	if e1Ctrl != e2Ctrl {
		return e1Ctrl
	}
	if IsNoteOff(e1.Msg) && IsNoteOn(e2.Msg) {
		return true
	}
	return false
}

// Rewind finalizes any pending insertion batch and sets the cursor to
// EOT, the position before the first live event and after the last.
func (t *Track) Rewind() {
	t.stopInsertion()
	t.cursor = len(t.events)
}

// GetPos finalizes any pending insertion batch and returns the current
// cursor. The returned position is invalidated by any later Insert or
// Delete.
func (t *Track) GetPos() int {
	t.stopInsertion()
	return t.cursor
}

// SetPos restores a position previously returned by GetPos.
func (t *Track) SetPos(p int) {
	t.cursor = p
}

func (t *Track) step1(forward bool) (*Event, bool) {
	if len(t.events) == 0 {
		return nil, false
	}
	if t.cursor >= len(t.events) {
		if forward {
			t.cursor = 0
		} else {
			t.cursor = len(t.events) - 1
		}
	} else if !forward {
		if t.cursor == 0 {
			t.cursor = len(t.events)
		} else {
			t.cursor--
		}
	} else {
		t.cursor++
	}
	if t.cursor < len(t.events) {
		return &t.events[t.cursor], true
	}
	return nil, false
}

// Step moves the cursor one live event in the given direction (forward
// or, if forward is false, backward) and returns it, skipping tombstones
// transparently. It returns (nil, false) at EOT.
func (t *Track) Step(forward bool) (*Event, bool) {
	for {
		e, ok := t.step1(forward)
		if !ok {
			return nil, false
		}
		if !IsEmpty(e.Msg) {
			return e, true
		}
	}
}

// Find finalizes any pending insertion batch, then searches for the
// first live event with Time >= target. The cursor is left at that event
// or at EOT if none exists.
func (t *Track) Find(target uint32) (*Event, bool) {
	t.stopInsertion()
	if len(t.events) == 0 {
		t.cursor = 0
		return nil, false
	}
	idx := sort.Search(len(t.events), func(i int) bool {
		return t.events[i].Time >= target
	})
	t.cursor = idx
	if idx >= len(t.events) {
		return nil, false
	}
	if IsEmpty(t.events[idx].Msg) {
		return t.Step(true)
	}
	return &t.events[idx], true
}

// Delete marks the event at the cursor as a tombstone and advances the
// cursor to the next live event. It returns 1 if an event was deleted,
// or 0 if the cursor was already at EOT or the track was empty.
// Compaction runs automatically once live events drop below half the
// backing array's length.
func (t *Track) Delete() int {
	t.stopInsertion()
	if len(t.events) == 0 || t.cursor >= len(t.events) {
		return 0
	}
	idx := t.cursor
	t.events[idx].Msg = EmptyEvent{}
	t.nempty++
	if idx+1 < len(t.events) {
		// Keep the backing array's Time field non-decreasing so Find's
		// binary search stays correct across a tombstone.
		t.events[idx].Time = t.events[idx+1].Time
	}
	t.Step(true)
	if len(t.events) < 2*t.nempty {
		t.pack()
	}
	return 1
}

// pack removes every tombstone, sliding live events down to close the
// gaps while preserving order, and fixes up the cursor if it pointed at
// an event that moved.
func (t *Track) pack() {
	if t.nempty == 0 {
		return
	}
	from, to := 0, 0
	for from < len(t.events) {
		if IsEmpty(t.events[from].Msg) {
			from++
			continue
		}
		if to < from {
			if t.cursor == from {
				t.cursor = to
			}
			t.events[to] = t.events[from]
		}
		to++
		from++
	}
	t.events = t.events[:to]
	t.nempty = 0
	if t.cursor > len(t.events) {
		t.cursor = len(t.events)
	}
}

// Insert places e into the track in sorted position. If the track is
// already in a deferred-sort insertion batch, e is appended raw; the
// batch sorts the next time Rewind, GetPos, or Find is called. The
// cursor is left in an undefined state.
func (t *Track) Insert(e Event) {
	t.startInsertion()
	t.events = append(t.events, e)
}

// Clear empties the track and releases its backing storage.
func (t *Track) Clear() {
	t.events = nil
	t.nempty = 0
	t.cursor = 0
	t.inserting = false
}

// Live finalizes any pending insertion batch and returns the track's
// live events in order. The cursor is left at EOT. The returned slice
// aliases the track's storage and is only valid until the next mutating
// call.
func (t *Track) Live() []Event {
	t.Rewind()
	if t.nempty == 0 {
		return t.events
	}
	live := make([]Event, 0, t.NEvents())
	for _, e := range t.events {
		if !IsEmpty(e.Msg) {
			live = append(live, e)
		}
	}
	return live
}
