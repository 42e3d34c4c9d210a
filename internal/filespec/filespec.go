// Package filespec parses the command-line file-spec grammar
// cmd/smftool accepts for selecting a specific score and track range out
// of an input file: path[@scoreRange[.trackRange]], where each range is
// either a single 1-based index or an inclusive N-M span.
//
// Examples:
//
//	song.mid            whole file
//	song.mid@2          score 2 only (for a file holding several
//	                     concatenated MThd/MTrk streams)
//	song.mid@2.1-3      score 2, tracks 1 through 3
//	song.mid@.1-3       tracks 1 through 3 of the (single) score
package filespec

import (
	"fmt"
	"strconv"
	"strings"
)

// Spec is a parsed file-spec.
type Spec struct {
	Path string

	HasScore          bool
	ScoreFrom, ScoreTo int

	HasTrack          bool
	TrackFrom, TrackTo int
}

// Parse parses s into a Spec. An absent range leaves its HasScore/
// HasTrack flag false; callers should treat that as "no restriction".
func Parse(s string) (Spec, error) {
	path, rest, hasSpec := strings.Cut(s, "@")
	spec := Spec{Path: path}
	if !hasSpec {
		return spec, nil
	}

	scorePart, trackPart, hasTrack := strings.Cut(rest, ".")

	if scorePart != "" {
		from, to, e := parseRange(scorePart)
		if e != nil {
			return Spec{}, fmt.Errorf("bad score range %q: %s", scorePart, e)
		}
		spec.HasScore = true
		spec.ScoreFrom, spec.ScoreTo = from, to
	}

	if hasTrack && trackPart != "" {
		from, to, e := parseRange(trackPart)
		if e != nil {
			return Spec{}, fmt.Errorf("bad track range %q: %s", trackPart, e)
		}
		spec.HasTrack = true
		spec.TrackFrom, spec.TrackTo = from, to
	}

	return spec, nil
}

// parseRange parses "N" or "N-M" into a 1-based inclusive [from, to] pair.
func parseRange(s string) (from, to int, err error) {
	before, after, isRange := strings.Cut(s, "-")
	from, e := strconv.Atoi(before)
	if e != nil {
		return 0, 0, fmt.Errorf("invalid number %q", before)
	}
	if !isRange {
		return from, from, nil
	}
	to, e = strconv.Atoi(after)
	if e != nil {
		return 0, 0, fmt.Errorf("invalid number %q", after)
	}
	if to < from {
		return 0, 0, fmt.Errorf("range end %d precedes start %d", to, from)
	}
	return from, to, nil
}
