package assemble

import "errors"

// ErrTrackFinalized is returned when a finalized Track is modified or
// finalized again.
var ErrTrackFinalized = errors.New("composite track already finalized")

// Payload is a decoded audio file with a known duration.
type Payload struct {
	Path       string
	DurationMs int64
}

// Slice references DurationMs of Source starting at StartMs.
type Slice struct {
	Source     string
	StartMs    int64
	DurationMs int64
}

// Track is an ordered, growing list of slices that is finalized exactly once.
type Track struct {
	slices    []Slice
	totalMs   int64
	finalized bool
}

// Append adds a slice to the end of the track.
func (t *Track) Append(s Slice) error {
	if t.finalized {
		return ErrTrackFinalized
	}
	if s.DurationMs <= 0 {
		return nil
	}
	t.slices = append(t.slices, s)
	t.totalMs += s.DurationMs
	return nil
}

// DurationMs returns the summed duration of all slices.
func (t *Track) DurationMs() int64 { return t.totalMs }

// Len returns the number of slices.
func (t *Track) Len() int { return len(t.slices) }

// Slices returns a copy of the slices in order.
func (t *Track) Slices() []Slice { return append([]Slice(nil), t.slices...) }

// Finalize truncates the track to limitMs when it is at least that long and
// reports whether the track came up short. A track can only be finalized once.
func (t *Track) Finalize(limitMs int64) (short bool, err error) {
	if t.finalized {
		return false, ErrTrackFinalized
	}
	t.finalized = true
	if t.totalMs < limitMs {
		return true, nil
	}
	remaining := limitMs
	kept := t.slices[:0]
	for _, s := range t.slices {
		if remaining <= 0 {
			break
		}
		if s.DurationMs > remaining {
			s.DurationMs = remaining
		}
		remaining -= s.DurationMs
		kept = append(kept, s)
	}
	t.slices = kept
	t.totalMs = limitMs
	return false, nil
}
