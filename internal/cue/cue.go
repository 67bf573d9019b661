// Package cue schedules pre-rendered audio assets on the frame timeline.
package cue

import (
	"errors"
	"fmt"

	"github.com/ivlev/narracomp/internal/animation"
)

// ErrInvalidEntry is returned by NewTrack for malformed entries.
var ErrInvalidEntry = errors.New("invalid cue entry")

// Entry mounts the asset ID from StartFrame-PremountFrames until
// StartFrame+MaxDurationFrames.
type Entry struct {
	ID                string `json:"id"`
	StartFrame        int    `json:"start_frame"`
	MaxDurationFrames int    `json:"max_duration_frames"`
	PremountFrames    int    `json:"premount_frames"`
	FadeInFrames      int    `json:"fade_in_frames"`
}

// MountFrame is the first frame at which the entry is active.
func (e Entry) MountFrame() int { return e.StartFrame - e.PremountFrames }

// EndFrame is the first frame at which the entry is no longer active.
func (e Entry) EndFrame() int { return e.StartFrame + e.MaxDurationFrames }

// Active is a cue mounted at a given frame. Gain is 0 while premounted.
type Active struct {
	ID     string  `json:"id"`
	Gain   float64 `json:"gain"`
	Offset int     `json:"offset"` // frames since StartFrame, negative while premounted
}

// Premounted reports whether the asset is loaded but not yet audible.
func (a Active) Premounted() bool { return a.Offset < 0 }

// Track is an immutable list of cue entries. Entries may overlap; each one is
// an independent channel and mixing happens downstream.
type Track struct {
	entries []Entry
}

// NewTrack validates entries and copies them into a track.
func NewTrack(entries []Entry) (*Track, error) {
	for i, e := range entries {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("cue %d (%q): %w", i, e.ID, err)
		}
	}
	return &Track{entries: append([]Entry(nil), entries...)}, nil
}

func validate(e Entry) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidEntry)
	case e.StartFrame < 0:
		return fmt.Errorf("%w: negative start frame %d", ErrInvalidEntry, e.StartFrame)
	case e.MaxDurationFrames <= 0:
		return fmt.Errorf("%w: max duration %d frames", ErrInvalidEntry, e.MaxDurationFrames)
	case e.PremountFrames < 0:
		return fmt.Errorf("%w: negative premount %d", ErrInvalidEntry, e.PremountFrames)
	case e.FadeInFrames < 0:
		return fmt.Errorf("%w: negative fade-in %d", ErrInvalidEntry, e.FadeInFrames)
	}
	return nil
}

// ActiveAt returns every cue mounted at frame, in track order.
func (t *Track) ActiveAt(frame int) []Active {
	if t == nil {
		return nil
	}
	var out []Active
	for _, e := range t.entries {
		if frame < e.MountFrame() || frame >= e.EndFrame() {
			continue
		}
		offset := frame - e.StartFrame
		gain := animation.RampTo(float64(offset), 0, float64(e.FadeInFrames), 0, 1, true, true)
		out = append(out, Active{ID: e.ID, Gain: gain, Offset: offset})
	}
	return out
}

// Entries returns a copy of the track's entries.
func (t *Track) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of entries.
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// EndFrame is the frame after the last mounted frame of any entry.
func (t *Track) EndFrame() int {
	end := 0
	if t == nil {
		return end
	}
	for _, e := range t.entries {
		if e.EndFrame() > end {
			end = e.EndFrame()
		}
	}
	return end
}
