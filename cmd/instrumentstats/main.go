// This defines a command-line utility for gathering per-instrument
// statistics — note counts and average note duration — over a directory
// of Standard MIDI Files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-smf/smfkit"
)

// instrumentStats accumulates, per GM program number, how many notes were
// played on it and how many ticks (in that file's own division) those
// notes lasted in total. Channel 9 (percussion) ignores Program Change,
// so its notes are tallied separately by note number instead of program.
type instrumentStats struct {
	noteCount          [128]uint64
	totalDuration      [128]uint64
	percussionCount    [128]uint64
	percussionDuration [128]uint64
	unmatchedNotes     uint64
}

func (s *instrumentStats) printInfo() {
	for i := 0; i < 128; i++ {
		if s.noteCount[i] == 0 {
			continue
		}
		avg := s.totalDuration[i] / s.noteCount[i]
		fmt.Printf("Instrument %d: %d notes, average duration %d ticks.\n", i, s.noteCount[i], avg)
	}
	for i := 0; i < 128; i++ {
		if s.percussionCount[i] == 0 {
			continue
		}
		avg := s.percussionDuration[i] / s.percussionCount[i]
		fmt.Printf("Percussion note %d: %d hits, average duration %d ticks.\n", i, s.percussionCount[i], avg)
	}
	if s.unmatchedNotes > 0 {
		fmt.Printf("%d Note On/Off events could not be paired.\n", s.unmatchedNotes)
	}
}

// addFile pairs each track's Note On/Off events (smfkit.PairNotes) so
// every surviving Note On carries the Duration its matching Note Off
// implied, then folds those durations into s by whatever instrument was
// selected on that channel at the time.
func (s *instrumentStats) addFile(name string) error {
	f, e := os.Open(name)
	if e != nil {
		return fmt.Errorf("failed opening %s: %w", name, e)
	}
	defer f.Close()
	score, e := smfkit.ReadScore(f, nil)
	if e != nil {
		return fmt.Errorf("failed parsing %s: %w", name, e)
	}
	var channelInstruments [16]uint8
	for _, track := range score.Tracks {
		s.unmatchedNotes += uint64(smfkit.PairNotes(track))
		// Reset the known instrument for every channel at the start of
		// each track. This may be incorrect for files that rely on a
		// program change from an earlier track carrying over.
		for i := range channelInstruments {
			channelInstruments[i] = 0
		}
		for _, event := range track.Live() {
			switch m := event.Msg.(type) {
			case *smfkit.NoteOnEvent:
				if m.Velocity == 0 {
					continue
				}
				if m.Channel == 9 {
					s.percussionCount[m.Note]++
					s.percussionDuration[m.Note] += uint64(m.Duration)
				} else {
					program := channelInstruments[m.Channel]
					s.noteCount[program]++
					s.totalDuration[program] += uint64(m.Duration)
				}
			case *smfkit.ProgramChangeEvent:
				channelInstruments[m.Channel] = m.Program
			}
		}
	}
	return nil
}

func run() int {
	var baseDir string
	flag.StringVar(&baseDir, "dir", "", "The directory to scan for .mid files")
	flag.Parse()
	if baseDir == "" {
		fmt.Println("A base directory must be specified. Run with -help for usage.")
		return 1
	}
	filenames, e := filepath.Glob(baseDir + "/*.mid")
	if e != nil {
		fmt.Printf("Failed looking up MIDI files in dir %s: %s\n", baseDir, e)
		return 1
	}
	if len(filenames) == 0 {
		fmt.Printf("Didn't find any MIDI (.mid) files in dir %s.\n", baseDir)
		return 1
	}
	stats := &instrumentStats{}
	for i, name := range filenames {
		fmt.Printf("Scanning file %d/%d: %s\n", i+1, len(filenames), name)
		if e := stats.addFile(name); e != nil {
			fmt.Printf("Failed analyzing file %s: %s\n", name, e)
		}
		runtime.GC()
	}
	stats.printInfo()
	return 0
}

func main() {
	os.Exit(run())
}
