package smfkit

import "fmt"

// Message is the sealed tagged union of every SMF event payload: the
// seven channel-voice messages, the two system-exclusive variants, the
// full meta-message taxonomy, and the internal Empty tombstone. Callers
// outside this package can only hold and type-switch over Messages, not
// create new variants.
type Message interface {
	fmt.Stringer
	sealedMessage()
}

// NoteOffEvent is a channel-voice Note Off message (cmd 0x8n).
type NoteOffEvent struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
}

func (*NoteOffEvent) sealedMessage() {}
func (e *NoteOffEvent) String() string {
	return fmt.Sprintf("channel %d: note %d off, velocity %d", e.Channel, e.Note, e.Velocity)
}

// NoteOnEvent is a channel-voice Note On message (cmd 0x9n). On the wire
// Duration and Release are always 0; a non-zero Duration only appears
// after PairNotes combines a matching NoteOn/NoteOff pair, and such
// a combined event must be unpaired again (UnpairNotes) before it
// can be written back out.
type NoteOnEvent struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
	Duration uint32
	Release  uint8
}

func (*NoteOnEvent) sealedMessage() {}
func (e *NoteOnEvent) String() string {
	if e.Duration != 0 {
		return fmt.Sprintf("channel %d: note %d, velocity %d, duration %d, release %d",
			e.Channel, e.Note, e.Velocity, e.Duration, e.Release)
	}
	return fmt.Sprintf("channel %d: note %d on, velocity %d", e.Channel, e.Note, e.Velocity)
}

// IsNoteOff reports whether a NoteOnEvent is functionally a Note Off, i.e.
// has velocity 0.
func (e *NoteOnEvent) IsNoteOff() bool {
	return e.Velocity == 0
}

// KeyPressureEvent is a polyphonic aftertouch message (cmd 0xAn).
type KeyPressureEvent struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
}

func (*KeyPressureEvent) sealedMessage() {}
func (e *KeyPressureEvent) String() string {
	return fmt.Sprintf("channel %d: note %d key pressure %d", e.Channel, e.Note, e.Velocity)
}

// ControlChangeEvent is a control-change or channel-mode message (cmd
// 0xBn). It's a channel-mode message when Controller is in [120, 127].
type ControlChangeEvent struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

func (*ControlChangeEvent) sealedMessage() {}
func (e *ControlChangeEvent) String() string {
	return fmt.Sprintf("channel %d: control %d = %d", e.Channel, e.Controller, e.Value)
}

// ProgramChangeEvent sets a channel's instrument (cmd 0xCn).
type ProgramChangeEvent struct {
	Channel uint8
	Program uint8
}

func (*ProgramChangeEvent) sealedMessage() {}
func (e *ProgramChangeEvent) String() string {
	return fmt.Sprintf("channel %d: program change to %d", e.Channel, e.Program)
}

// ChannelPressureEvent is a channel-wide aftertouch message (cmd 0xDn).
type ChannelPressureEvent struct {
	Channel  uint8
	Velocity uint8
}

func (*ChannelPressureEvent) sealedMessage() {}
func (e *ChannelPressureEvent) String() string {
	return fmt.Sprintf("channel %d: channel pressure %d", e.Channel, e.Velocity)
}

// PitchWheelChangeEvent is a pitch-bend message (cmd 0xEn). LSB is
// transmitted before MSB on the wire; both are 7-bit.
type PitchWheelChangeEvent struct {
	Channel uint8
	LSB     uint8
	MSB     uint8
}

func (*PitchWheelChangeEvent) sealedMessage() {}
func (e *PitchWheelChangeEvent) String() string {
	return fmt.Sprintf("channel %d: pitch wheel %d", e.Channel, uint16(e.MSB)<<7|uint16(e.LSB))
}

// Value returns the combined 14-bit pitch-wheel value, center at 0x2000.
func (e *PitchWheelChangeEvent) Value() uint16 {
	return uint16(e.MSB)<<7 | uint16(e.LSB)
}

// SystemExclusiveEvent is a sysex message (cmd 0xF0 or 0xF7). Continuation
// is true for 0xF7 (a continuation packet), false for 0xF0 (the start of
// a sysex message).
type SystemExclusiveEvent struct {
	Continuation bool
	Data         VLD
}

func (*SystemExclusiveEvent) sealedMessage() {}
func (e *SystemExclusiveEvent) String() string {
	kind := "start"
	if e.Continuation {
		kind = "continuation"
	}
	return fmt.Sprintf("system exclusive (%s), %d bytes", kind, len(e.Data))
}

// TextKind distinguishes the seven plain-text meta-message types, which
// share a [0x01, 0x07] type-byte range and payload shape.
type TextKind uint8

const (
	TextGeneric        TextKind = 0x01
	TextCopyright      TextKind = 0x02
	TextTrackName      TextKind = 0x03
	TextInstrumentName TextKind = 0x04
	TextLyric          TextKind = 0x05
	TextMarker         TextKind = 0x06
	TextCuePoint       TextKind = 0x07
)

func (k TextKind) String() string {
	switch k {
	case TextGeneric:
		return "text"
	case TextCopyright:
		return "copyright"
	case TextTrackName:
		return "track name"
	case TextInstrumentName:
		return "instrument name"
	case TextLyric:
		return "lyric"
	case TextMarker:
		return "marker"
	case TextCuePoint:
		return "cue point"
	default:
		return fmt.Sprintf("text(0x%02x)", uint8(k))
	}
}

// TextEvent covers Text, Copyright, TrackName, InstrumentName, Lyric,
// Marker, and CuePoint meta-messages (type bytes 0x01 through 0x07).
type TextEvent struct {
	Kind TextKind
	Text VLD
}

func (*TextEvent) sealedMessage() {}
func (e *TextEvent) String() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Text)
}

// SequenceNumberEvent is the sequence-number meta-message (type 0x00).
type SequenceNumberEvent uint16

func (SequenceNumberEvent) sealedMessage() {}
func (e SequenceNumberEvent) String() string {
	return fmt.Sprintf("sequence number %d", uint16(e))
}

// ChannelPrefixEvent associates subsequent meta/sysex events with a
// channel (type 0x20). Valid values are 0-15.
type ChannelPrefixEvent uint8

func (ChannelPrefixEvent) sealedMessage() {}
func (e ChannelPrefixEvent) String() string {
	return fmt.Sprintf("channel prefix %d", uint8(e))
}

// PortPrefixEvent associates subsequent events with an output port (type
// 0x21).
type PortPrefixEvent uint8

func (PortPrefixEvent) sealedMessage() {}
func (e PortPrefixEvent) String() string {
	return fmt.Sprintf("port prefix %d", uint8(e))
}

// EndOfTrackEvent marks the mandatory end of every track (type 0x2f).
type EndOfTrackEvent struct{}

func (EndOfTrackEvent) sealedMessage() {}
func (EndOfTrackEvent) String() string {
	return "end of track"
}

// SetTempoEvent sets the tempo in microseconds per quarter note (type
// 0x51). The value fits in 24 bits.
type SetTempoEvent uint32

func (SetTempoEvent) sealedMessage() {}
func (e SetTempoEvent) String() string {
	bpm := 60000000.0 / float64(e)
	return fmt.Sprintf("set tempo: %d us/quarter note (%.2f bpm)", uint32(e), bpm)
}

// SMPTEOffsetEvent records a SMPTE start offset (type 0x54).
type SMPTEOffsetEvent struct {
	Hours     uint8
	Minutes   uint8
	Seconds   uint8
	Frames    uint8
	Subframes uint8
}

func (*SMPTEOffsetEvent) sealedMessage() {}
func (e *SMPTEOffsetEvent) String() string {
	return fmt.Sprintf("SMPTE offset %02d:%02d:%02d frame %d.%02d",
		e.Hours, e.Minutes, e.Seconds, e.Frames, e.Subframes)
}

// TimeSignatureEvent records a time signature (type 0x58). Denominator is
// a negative power of 2 (e.g. 2 means quarter notes, 3 means eighths).
type TimeSignatureEvent struct {
	Numerator      uint8
	Denominator    uint8
	ClocksPerClick uint8
	TTPerQuarter   uint8
}

func (*TimeSignatureEvent) sealedMessage() {}
func (e *TimeSignatureEvent) String() string {
	return fmt.Sprintf("time signature %d/%d, %d clocks/click, %d 32nds/quarter",
		e.Numerator, uint32(1)<<e.Denominator, e.ClocksPerClick, e.TTPerQuarter)
}

// KeySignatureEvent records a key signature (type 0x59). SharpsFlats is
// in [-7, 7]; negative means flats, positive means sharps.
type KeySignatureEvent struct {
	SharpsFlats int8
	Minor       bool
}

func (*KeySignatureEvent) sealedMessage() {}
func (e *KeySignatureEvent) String() string {
	mode := "major"
	if e.Minor {
		mode = "minor"
	}
	return fmt.Sprintf("key signature %d sharps/flats, %s", e.SharpsFlats, mode)
}

// SequencerSpecificEvent carries vendor-specific data (type 0x7f).
type SequencerSpecificEvent struct {
	Data VLD
}

func (*SequencerSpecificEvent) sealedMessage() {}
func (e *SequencerSpecificEvent) String() string {
	return fmt.Sprintf("sequencer-specific data, %d bytes", len(e.Data))
}

// UnknownMetaEvent preserves a meta-message type this package doesn't
// otherwise recognize, so round-tripping a file never silently drops
// data.
type UnknownMetaEvent struct {
	Type uint8
	Data VLD
}

func (*UnknownMetaEvent) sealedMessage() {}
func (e *UnknownMetaEvent) String() string {
	return fmt.Sprintf("unknown meta-event 0x%02x, %d bytes", e.Type, len(e.Data))
}

// EmptyEvent is the tombstone Track uses for a deleted slot. It never
// appears on the wire.
type EmptyEvent struct{}

func (EmptyEvent) sealedMessage() {}
func (EmptyEvent) String() string {
	return "(deleted)"
}

// IsVoice reports whether m is one of the seven channel-voice messages.
func IsVoice(m Message) bool {
	switch m.(type) {
	case *NoteOffEvent, *NoteOnEvent, *KeyPressureEvent, *ControlChangeEvent,
		*ProgramChangeEvent, *ChannelPressureEvent, *PitchWheelChangeEvent:
		return true
	default:
		return false
	}
}

// Channel returns m's channel number and true if m is a channel-voice
// message, or 0 and false otherwise.
func Channel(m Message) (uint8, bool) {
	switch v := m.(type) {
	case *NoteOffEvent:
		return v.Channel, true
	case *NoteOnEvent:
		return v.Channel, true
	case *KeyPressureEvent:
		return v.Channel, true
	case *ControlChangeEvent:
		return v.Channel, true
	case *ProgramChangeEvent:
		return v.Channel, true
	case *ChannelPressureEvent:
		return v.Channel, true
	case *PitchWheelChangeEvent:
		return v.Channel, true
	default:
		return 0, false
	}
}

// IsNoteOff reports whether m is a Note Off event, or a Note On event
// with velocity 0 — the two are interchangeable per spec.
func IsNoteOff(m Message) bool {
	switch v := m.(type) {
	case *NoteOffEvent:
		return true
	case *NoteOnEvent:
		return v.Velocity == 0
	default:
		return false
	}
}

// IsNoteOn reports whether m is a Note On event with nonzero velocity.
func IsNoteOn(m Message) bool {
	v, ok := m.(*NoteOnEvent)
	return ok && v.Velocity != 0
}

// IsEndOfTrack reports whether m is an EndOfTrackEvent.
func IsEndOfTrack(m Message) bool {
	_, ok := m.(EndOfTrackEvent)
	return ok
}

// IsEmpty reports whether m is the internal tombstone variant.
func IsEmpty(m Message) bool {
	_, ok := m.(EmptyEvent)
	return ok
}
