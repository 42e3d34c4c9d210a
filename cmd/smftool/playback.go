package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/go-smf/smfkit"
)

const playbackSampleRate = 44100

// playScore renders score through the SoundFont at soundFontPath and
// plays it through the system's default audio output, blocking until
// playback finishes. This is best-effort wall-clock replay, not a
// sequencer: tempo changes are honored, but nothing else about the
// playback is adjustable once started.
func playScore(score *smfkit.Score, soundFontPath string) error {
	sf, e := os.Open(soundFontPath)
	if e != nil {
		return fmt.Errorf("opening soundfont: %s", e)
	}
	defer sf.Close()
	soundFont, e := meltysynth.NewSoundFont(sf)
	if e != nil {
		return fmt.Errorf("parsing soundfont: %s", e)
	}
	settings := meltysynth.NewSynthesizerSettings(playbackSampleRate)
	synth, e := meltysynth.NewSynthesizer(soundFont, settings)
	if e != nil {
		return fmt.Errorf("creating synthesizer: %s", e)
	}

	merged := smfkit.MergeTracks(score)
	stream := newPlaybackStream(synth, merged, score.Division)

	ctx, ready, e := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   playbackSampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if e != nil {
		return fmt.Errorf("creating audio context: %s", e)
	}
	<-ready

	player := ctx.NewPlayer(stream)
	player.Play()
	for player.IsPlaying() {
		time.Sleep(50 * time.Millisecond)
	}
	return player.Close()
}

// playbackStream renders a merged track's events in real time: each Read
// advances a tick counter by one sample's worth per frame, dispatches to
// the synthesizer every event whose time falls within that span, and then
// renders the whole buffer. Event timing is therefore only as fine as the
// size of the buffer Read is given.
type playbackStream struct {
	synth       *meltysynth.Synthesizer
	events      []smfkit.Event
	next        int
	division    uint16
	microsPerQN uint32
	elapsedTick float64
	left, right []float32
}

func newPlaybackStream(synth *meltysynth.Synthesizer, track *smfkit.Track, division uint16) *playbackStream {
	return &playbackStream{
		synth:       synth,
		events:      track.Live(),
		division:    division,
		microsPerQN: 500000,
	}
}

func (s *playbackStream) ticksPerSample() float64 {
	secondsPerTick := float64(s.microsPerQN) / 1e6 / float64(s.division)
	return 1.0 / (secondsPerTick * playbackSampleRate)
}

// Read fills p with interleaved stereo float32LE samples. It returns
// io.EOF once every event has been dispatched and its final buffer of
// audio rendered.
func (s *playbackStream) Read(p []byte) (int, error) {
	const bytesPerFrame = 8 // 2 channels * 4 bytes (float32)
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if s.next >= len(s.events) {
		return 0, io.EOF
	}
	if cap(s.left) < frames {
		s.left = make([]float32, frames)
		s.right = make([]float32, frames)
	}
	left := s.left[:frames]
	right := s.right[:frames]

	tps := s.ticksPerSample()
	for i := 0; i < frames; i++ {
		s.elapsedTick += tps
		for s.next < len(s.events) && float64(s.events[s.next].Time) <= s.elapsedTick {
			s.dispatch(s.events[s.next].Msg)
			s.next++
		}
	}
	s.synth.Render(left, right)
	for i := 0; i < frames; i++ {
		putFloat32LE(p[i*bytesPerFrame:], left[i])
		putFloat32LE(p[i*bytesPerFrame+4:], right[i])
	}
	return frames * bytesPerFrame, nil
}

// dispatch forwards msg to the synthesizer as a raw (channel, command,
// data1, data2) tuple, the shape meltysynth.Synthesizer.ProcessMidiMessage
// takes for every channel-voice message.
func (s *playbackStream) dispatch(msg smfkit.Message) {
	switch m := msg.(type) {
	case *smfkit.NoteOnEvent:
		s.synth.ProcessMidiMessage(int32(m.Channel), 0x90, int32(m.Note), int32(m.Velocity))
	case *smfkit.NoteOffEvent:
		s.synth.ProcessMidiMessage(int32(m.Channel), 0x80, int32(m.Note), int32(m.Velocity))
	case *smfkit.KeyPressureEvent:
		s.synth.ProcessMidiMessage(int32(m.Channel), 0xa0, int32(m.Note), int32(m.Velocity))
	case *smfkit.ChannelPressureEvent:
		s.synth.ProcessMidiMessage(int32(m.Channel), 0xd0, int32(m.Velocity), 0)
	case *smfkit.ControlChangeEvent:
		s.synth.ProcessMidiMessage(int32(m.Channel), 0xb0, int32(m.Controller), int32(m.Value))
	case *smfkit.ProgramChangeEvent:
		s.synth.ProcessMidiMessage(int32(m.Channel), 0xc0, int32(m.Program), 0)
	case *smfkit.PitchWheelChangeEvent:
		s.synth.ProcessMidiMessage(int32(m.Channel), 0xe0, int32(m.LSB), int32(m.MSB))
	case smfkit.SetTempoEvent:
		s.microsPerQN = uint32(m)
	}
}

func putFloat32LE(b []byte, v float32) {
	bits := math.Float32bits(v)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}
