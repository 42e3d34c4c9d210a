// This defines a command-line utility for viewing or manipulating one or
// more standard MIDI files (SMF, usually with a ".mid" extension).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-smf/smfkit"
	"github.com/go-smf/smfkit/diag"
	"github.com/go-smf/smfkit/internal/filespec"
)

// loadSpec opens and parses the file named by spec, selecting the score
// and track range spec names. Multiple scores in range are concatenated
// back to back (see smfkit.ConcatScores) before the track range is
// applied, so "file@1-2.1-3" behaves as "concatenate scores 1 and 2,
// then keep tracks 1 through 3 of the result".
func loadSpec(spec filespec.Spec, sink *diag.Sink) (*smfkit.Score, error) {
	f, e := os.Open(spec.Path)
	if e != nil {
		return nil, fmt.Errorf("opening %s: %s", spec.Path, e)
	}
	defer f.Close()
	scores, e := smfkit.ReadScores(f, sink.WithFile(spec.Path))
	if e != nil {
		return nil, fmt.Errorf("parsing %s: %s", spec.Path, e)
	}

	from, to := 0, len(scores)-1
	if spec.HasScore {
		from, to = spec.ScoreFrom-1, spec.ScoreTo-1
		if from < 0 || from >= len(scores) || to >= len(scores) || from > to {
			return nil, fmt.Errorf("%s: score range %d-%d out of bounds (file has %d scores)",
				spec.Path, spec.ScoreFrom, spec.ScoreTo, len(scores))
		}
	}
	score := smfkit.ConcatScores(scores[from:to+1], sink)

	if spec.HasTrack {
		smfkit.AdjustTracks(score, spec.TrackFrom-1, spec.TrackTo-1)
	}
	return score, nil
}

func dumpEvents(score *smfkit.Score) {
	fmt.Printf("Format %d, division %d, %d tracks.\n", score.Format, score.Division, len(score.Tracks))
	for i, t := range score.Tracks {
		events := t.Live()
		fmt.Printf("Track %d (%d events):\n", i+1, len(events))
		for j, e := range events {
			fmt.Printf("  %d. Time %d: %s\n", j+1, e.Time, e.Msg)
		}
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run() int {
	var outputFile string
	var dump bool
	var group, ungroup bool
	var merge bool
	var concat bool
	var format int
	var division int
	var logLevel string
	var playSoundFont string
	flag.StringVar(&outputFile, "output", "", "The name of the .mid file to write, if any.")
	flag.BoolVar(&dump, "dump_events", false, "If set, print every event in the result to stdout.")
	flag.BoolVar(&group, "group", false, "Fold each Note Off into its matching Note On's Duration and Release.")
	flag.BoolVar(&ungroup, "ungroup", false, "Reverse -group: split combined notes back into separate Note On/Off events.")
	flag.BoolVar(&merge, "merge", false, "Merge every track of the result into a single track.")
	flag.BoolVar(&concat, "concat", false, "Concatenate the input files end to end instead of treating them as independent scores.")
	flag.IntVar(&format, "format", -1, "Override the output header's format field.")
	flag.IntVar(&division, "division", -1, "Override the output header's division field.")
	flag.StringVar(&logLevel, "log_level", "warn", "Diagnostic log level: debug, info, warn, or error.")
	flag.StringVar(&playSoundFont, "play", "", "If set, play the result through the SoundFont at this path instead of (or in addition to) writing it.")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Printf("At least one input file is required. Run with -help for usage.\n")
		return 1
	}

	sink := diag.NewSink(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(logLevel)})))

	var scores []*smfkit.Score
	for _, arg := range flag.Args() {
		spec, e := filespec.Parse(arg)
		if e != nil {
			fmt.Printf("Invalid file spec %q: %s\n", arg, e)
			return 1
		}
		score, e := loadSpec(spec, sink)
		if e != nil {
			fmt.Printf("%s\n", e)
			return 1
		}
		scores = append(scores, score)
	}

	if len(scores) > 1 && !concat {
		sink.Report(diag.Warn, "%d input files given without -concat; using only the first", len(scores))
		scores = scores[:1]
	}
	var score *smfkit.Score
	if concat {
		score = smfkit.ConcatScores(scores, sink)
	} else {
		score = scores[0]
	}

	if group && ungroup {
		fmt.Printf("-group and -ungroup can't both be set.\n")
		return 1
	}
	for i, t := range score.Tracks {
		switch {
		case group:
			if n := smfkit.PairNotes(t); n != 0 {
				sink.Report(diag.Warn, "track %d: %d unmatched notes", i, n)
			}
		case ungroup:
			smfkit.UnpairNotes(t)
			smfkit.CompressNoteOff(t)
		}
	}

	if merge {
		score.Tracks = []*smfkit.Track{smfkit.MergeTracks(score)}
	}

	if format >= 0 {
		score.Format = format
	}
	if division >= 0 {
		score.Division = uint16(division)
	}

	if dump {
		dumpEvents(score)
	}

	if playSoundFont != "" {
		if e := playScore(score, playSoundFont); e != nil {
			fmt.Printf("Playback failed: %s\n", e)
			return 1
		}
	}

	if outputFile != "" {
		f, e := os.Create(outputFile)
		if e != nil {
			fmt.Printf("Error creating %s: %s\n", outputFile, e)
			return 1
		}
		defer f.Close()
		if e := smfkit.WriteScore(f, score); e != nil {
			fmt.Printf("Error writing %s: %s\n", outputFile, e)
			return 1
		}
		fmt.Printf("%s saved OK.\n", outputFile)
	}
	return 0
}

func main() {
	os.Exit(run())
}
