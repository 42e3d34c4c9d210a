package smfkit

import (
	"fmt"

	"github.com/go-smf/smfkit/diag"
)

// Event pairs an absolute time (ticks from the start of its Track) with a
// Message. On the wire, times are stored as deltas from the previous
// event; Track and the Score read/write path handle that conversion.
type Event struct {
	Time uint32
	Msg  Message
}

// meta-message type bytes.
const (
	metaSequenceNumber     = 0x00
	metaChannelPrefix      = 0x20
	metaPortPrefix         = 0x21
	metaEndOfTrack         = 0x2f
	metaSetTempo           = 0x51
	metaSMPTEOffset        = 0x54
	metaTimeSignature      = 0x58
	metaKeySignature       = 0x59
	metaSequencerSpecific  = 0x7f
)

// ReadMessage decodes one MIDI message (channel-voice, sysex, or meta)
// starting at b's cursor, threading running status through rs. On any
// failure the cursor is restored to the message's starting position and
// rs is left unchanged.
func ReadMessage(b *Buffer, rs *uint8, sink *diag.Sink) (Message, error) {
	start := b.Pos()
	first, e := b.Get()
	if e != nil {
		b.SetPos(start)
		return nil, fmt.Errorf("reading message: end of input")
	}

	status := first
	usingRunningStatus := false
	if (status & 0x80) == 0 {
		// Not a status byte: this is a running-status continuation. Put
		// the byte back so the channel-voice parser can consume it as a
		// data byte.
		b.SetPos(start)
		if *rs&0x80 == 0 {
			return nil, fmt.Errorf("bad status: no running status set, got data byte 0x%02x", first)
		}
		status = *rs
		usingRunningStatus = true
	}

	switch status & 0xf0 {
	case 0x80, 0x90, 0xa0, 0xb0, 0xe0:
		return readTwoByteChannelMessage(b, start, status, rs)
	case 0xc0, 0xd0:
		return readOneByteChannelMessage(b, start, status, rs)
	}

	if usingRunningStatus {
		// status came entirely from rs but wasn't a recognized channel
		// command: this can only happen if rs itself holds a garbage
		// value, which read/write never produces.
		return nil, fmt.Errorf("bad status: running status 0x%02x isn't a channel command", status)
	}

	switch status {
	case 0xf0, 0xf7:
		data, e := ReadVLD(b)
		if e != nil {
			b.SetPos(start)
			return nil, fmt.Errorf("reading sysex message: %s", e)
		}
		*rs = 0
		return &SystemExclusiveEvent{Continuation: status == 0xf7, Data: data}, nil
	case 0xff:
		msg, e := readMetaMessage(b, start, sink)
		if e != nil {
			return nil, e
		}
		*rs = 0
		return msg, nil
	default:
		b.SetPos(start)
		return nil, fmt.Errorf("unknown status byte 0x%02x", status)
	}
}

func readDataByte(b *Buffer) (uint8, error) {
	v, e := b.Get()
	if e != nil {
		return 0, fmt.Errorf("end of input")
	}
	if v >= 0x80 {
		return 0, fmt.Errorf("invalid data byte 0x%02x", v)
	}
	return v, nil
}

// readTwoByteChannelMessage reads the two data bytes of a channel-voice
// message whose status byte was already consumed (or supplied via
// running status) at msgStart. On failure the cursor is restored all the
// way to msgStart, not just to before the data bytes, so ReadMessage's
// cursor-restore contract holds for its caller.
func readTwoByteChannelMessage(b *Buffer, msgStart int, status uint8, rs *uint8) (Message, error) {
	d1, e := readDataByte(b)
	if e != nil {
		b.SetPos(msgStart)
		return nil, fmt.Errorf("reading message: %s", e)
	}
	d2, e := readDataByte(b)
	if e != nil {
		b.SetPos(msgStart)
		return nil, fmt.Errorf("reading message: %s", e)
	}
	*rs = status
	channel := status & 0x0f
	switch status & 0xf0 {
	case 0x80:
		return &NoteOffEvent{Channel: channel, Note: d1, Velocity: d2}, nil
	case 0x90:
		return &NoteOnEvent{Channel: channel, Note: d1, Velocity: d2}, nil
	case 0xa0:
		return &KeyPressureEvent{Channel: channel, Note: d1, Velocity: d2}, nil
	case 0xb0:
		return &ControlChangeEvent{Channel: channel, Controller: d1, Value: d2}, nil
	case 0xe0:
		return &PitchWheelChangeEvent{Channel: channel, LSB: d1, MSB: d2}, nil
	}
	panic("unreachable")
}

// readOneByteChannelMessage reads the single data byte of a channel-voice
// message whose status byte was already consumed (or supplied via
// running status) at msgStart. On failure the cursor is restored to
// msgStart, matching ReadMessage's cursor-restore contract.
func readOneByteChannelMessage(b *Buffer, msgStart int, status uint8, rs *uint8) (Message, error) {
	d1, e := readDataByte(b)
	if e != nil {
		b.SetPos(msgStart)
		return nil, fmt.Errorf("reading message: %s", e)
	}
	*rs = status
	channel := status & 0x0f
	switch status & 0xf0 {
	case 0xc0:
		return &ProgramChangeEvent{Channel: channel, Program: d1}, nil
	case 0xd0:
		return &ChannelPressureEvent{Channel: channel, Velocity: d1}, nil
	}
	panic("unreachable")
}

func readMetaMessage(b *Buffer, msgStart int, sink *diag.Sink) (Message, error) {
	metaType, e := b.Get()
	if e != nil {
		b.SetPos(msgStart)
		return nil, fmt.Errorf("reading meta-event type: end of input")
	}
	data, e := ReadVLD(b)
	if e != nil {
		b.SetPos(msgStart)
		return nil, fmt.Errorf("reading meta-event data: %s", e)
	}
	msg, e := normalizeMeta(metaType, data, sink)
	if e != nil {
		b.SetPos(msgStart)
		return nil, e
	}
	return msg, nil
}

// normalizeMeta converts a raw (type, data) meta payload into its typed
// variant, validating length per spec: undersize is an error (there's no
// sensible best-effort fill for a genuinely truncated fixed-size payload
// given only io-level information), oversize warns and the extra bytes
// are discarded.
func normalizeMeta(metaType uint8, data VLD, sink *diag.Sink) (Message, error) {
	need := func(n int, name string) error {
		if len(data) < n {
			return fmt.Errorf("%s: payload too short (%d bytes, need %d)", name, len(data), n)
		}
		if len(data) > n {
			sink.Report(diag.Warn, "%s: payload longer than expected (%d bytes, need %d)", name, len(data), n)
		}
		return nil
	}

	switch metaType {
	case metaSequenceNumber:
		if e := need(2, "sequence number"); e != nil {
			return nil, e
		}
		return SequenceNumberEvent(uint16(data[0])<<8 | uint16(data[1])), nil
	case 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		return &TextEvent{Kind: TextKind(metaType), Text: data}, nil
	case metaChannelPrefix:
		if e := need(1, "channel prefix"); e != nil {
			return nil, e
		}
		if data[0] > 15 {
			return nil, fmt.Errorf("channel prefix: invalid channel %d", data[0])
		}
		return ChannelPrefixEvent(data[0]), nil
	case metaPortPrefix:
		if e := need(1, "port prefix"); e != nil {
			return nil, e
		}
		return PortPrefixEvent(data[0]), nil
	case metaEndOfTrack:
		if len(data) > 0 {
			sink.Report(diag.Warn, "end of track: payload should be empty, got %d bytes", len(data))
		}
		return EndOfTrackEvent{}, nil
	case metaSetTempo:
		if e := need(3, "set tempo"); e != nil {
			return nil, e
		}
		return SetTempoEvent(uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])), nil
	case metaSMPTEOffset:
		if e := need(5, "SMPTE offset"); e != nil {
			return nil, e
		}
		return &SMPTEOffsetEvent{
			Hours:     data[0],
			Minutes:   data[1],
			Seconds:   data[2],
			Frames:    data[3],
			Subframes: data[4],
		}, nil
	case metaTimeSignature:
		if e := need(4, "time signature"); e != nil {
			return nil, e
		}
		return &TimeSignatureEvent{
			Numerator:      data[0],
			Denominator:    data[1],
			ClocksPerClick: data[2],
			TTPerQuarter:   data[3],
		}, nil
	case metaKeySignature:
		if e := need(2, "key signature"); e != nil {
			return nil, e
		}
		sf := int8(data[0])
		if sf < -7 || sf > 7 {
			return nil, fmt.Errorf("key signature: invalid sharps/flats %d", sf)
		}
		if data[1] > 1 {
			return nil, fmt.Errorf("key signature: invalid major/minor byte %d", data[1])
		}
		return &KeySignatureEvent{SharpsFlats: sf, Minor: data[1] == 1}, nil
	case metaSequencerSpecific:
		return &SequencerSpecificEvent{Data: data}, nil
	default:
		sink.Report(diag.Warn, "unknown meta-event type 0x%02x", metaType)
		return &UnknownMetaEvent{Type: metaType, Data: data}, nil
	}
}

// WriteMessage encodes msg to b. If rs is non-nil, running status is
// used: the status byte for a channel-voice message is omitted when it
// equals *rs, and *rs is updated to the message's status byte. System
// common (sysex, meta) messages always emit their status byte and, if rs
// is non-nil, clear it. Passing rs as nil disables running status
// entirely (every channel-voice message always emits its status byte).
func WriteMessage(b *Buffer, msg Message, rs *uint8) error {
	switch m := msg.(type) {
	case *NoteOffEvent:
		return writeChannelMessage(b, rs, 0x80|m.Channel, m.Note, m.Velocity, true)
	case *NoteOnEvent:
		if m.Duration != 0 {
			return fmt.Errorf("invariant violation: combined note (duration %d) reached the writer", m.Duration)
		}
		return writeChannelMessage(b, rs, 0x90|m.Channel, m.Note, m.Velocity, true)
	case *KeyPressureEvent:
		return writeChannelMessage(b, rs, 0xa0|m.Channel, m.Note, m.Velocity, true)
	case *ControlChangeEvent:
		return writeChannelMessage(b, rs, 0xb0|m.Channel, m.Controller, m.Value, true)
	case *ProgramChangeEvent:
		return writeChannelMessage(b, rs, 0xc0|m.Channel, m.Program, 0, false)
	case *ChannelPressureEvent:
		return writeChannelMessage(b, rs, 0xd0|m.Channel, m.Velocity, 0, false)
	case *PitchWheelChangeEvent:
		return writeChannelMessage(b, rs, 0xe0|m.Channel, m.LSB, m.MSB, true)
	case *SystemExclusiveEvent:
		if rs != nil {
			*rs = 0
		}
		status := byte(0xf0)
		if m.Continuation {
			status = 0xf7
		}
		b.Put(status)
		return WriteVLD(b, m.Data)
	case SequenceNumberEvent:
		return writeMeta(b, rs, metaSequenceNumber, []byte{byte(m >> 8), byte(m)})
	case *TextEvent:
		return writeMeta(b, rs, uint8(m.Kind), m.Text)
	case ChannelPrefixEvent:
		if m > 15 {
			return fmt.Errorf("invalid channel prefix: %d", uint8(m))
		}
		return writeMeta(b, rs, metaChannelPrefix, []byte{byte(m)})
	case PortPrefixEvent:
		return writeMeta(b, rs, metaPortPrefix, []byte{byte(m)})
	case EndOfTrackEvent:
		return writeMeta(b, rs, metaEndOfTrack, nil)
	case SetTempoEvent:
		if m > 0xffffff {
			return fmt.Errorf("set tempo value 0x%x exceeds 24 bits", uint32(m))
		}
		return writeMeta(b, rs, metaSetTempo, []byte{byte(m >> 16), byte(m >> 8), byte(m)})
	case *SMPTEOffsetEvent:
		return writeMeta(b, rs, metaSMPTEOffset,
			[]byte{m.Hours, m.Minutes, m.Seconds, m.Frames, m.Subframes})
	case *TimeSignatureEvent:
		return writeMeta(b, rs, metaTimeSignature,
			[]byte{m.Numerator, m.Denominator, m.ClocksPerClick, m.TTPerQuarter})
	case *KeySignatureEvent:
		if m.SharpsFlats < -7 || m.SharpsFlats > 7 {
			return fmt.Errorf("invalid key signature sharps/flats: %d", m.SharpsFlats)
		}
		minor := byte(0)
		if m.Minor {
			minor = 1
		}
		return writeMeta(b, rs, metaKeySignature, []byte{byte(m.SharpsFlats), minor})
	case *SequencerSpecificEvent:
		return writeMeta(b, rs, metaSequencerSpecific, m.Data)
	case *UnknownMetaEvent:
		return writeMeta(b, rs, m.Type, m.Data)
	case EmptyEvent:
		return fmt.Errorf("invariant violation: empty tombstone reached the writer")
	default:
		return fmt.Errorf("invariant violation: unwritable message type %T", msg)
	}
}

func writeChannelMessage(b *Buffer, rs *uint8, status, d1, d2 uint8, twoBytes bool) error {
	if rs == nil || *rs != status {
		b.Put(status)
		if rs != nil {
			*rs = status
		}
	}
	b.Put(d1)
	if twoBytes {
		b.Put(d2)
	}
	return nil
}

func writeMeta(b *Buffer, rs *uint8, metaType uint8, data []byte) error {
	if rs != nil {
		*rs = 0
	}
	b.Put(0xff)
	b.Put(metaType)
	return WriteVLD(b, data)
}

// ReadEvent decodes one (delta time, message) pair at b's cursor. On
// failure the cursor is restored to its pre-call position.
func ReadEvent(b *Buffer, rs *uint8, sink *diag.Sink) (delta uint32, msg Message, err error) {
	start := b.Pos()
	delta, e := ReadVLQ(b)
	if e != nil {
		return 0, nil, fmt.Errorf("reading event delta time: %s", e)
	}
	msg, e = ReadMessage(b, rs, sink)
	if e != nil {
		b.SetPos(start)
		return 0, nil, e
	}
	return delta, msg, nil
}

// WriteEvent encodes a (delta time, message) pair at b's cursor.
func WriteEvent(b *Buffer, rs *uint8, delta uint32, msg Message) error {
	if e := WriteVLQ(b, delta); e != nil {
		return fmt.Errorf("writing event delta time: %s", e)
	}
	return WriteMessage(b, msg, rs)
}
