// Package sequencer lays out scenes joined by overlapping transitions on a
// single frame timeline.
package sequencer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ivlev/narracomp/internal/effects"
)

var (
	// ErrInvalidDuration is returned for non-positive scene or negative
	// transition durations.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrTransitionTooLong is returned when transitions do not fit inside the
	// scenes they join.
	ErrTransitionTooLong = errors.New("transition longer than adjacent scene")
	// ErrLayout is returned when the transition count does not match the scenes.
	ErrLayout = errors.New("invalid scene layout")
)

// Scene is one visual segment.
type Scene struct {
	ID             string `json:"id"`
	DurationFrames int    `json:"duration_frames"`
}

// Transition joins scene i and i+1.
type Transition struct {
	Style          effects.Style `json:"style"`
	DurationFrames int           `json:"duration_frames"`
}

// Slot identifies a scene and the frame local to its own start.
type Slot struct {
	Index      int    `json:"index"`
	ID         string `json:"id"`
	LocalFrame int    `json:"local_frame"`
}

// Selection is what the scene renderer draws for one frame.
// Incoming, Progress and Style are set only while Transitioning.
type Selection struct {
	Primary       Slot          `json:"primary"`
	Incoming      Slot          `json:"incoming"`
	Transitioning bool          `json:"transitioning"`
	Progress      float64       `json:"transition_progress"`
	Style         effects.Style `json:"transition_style"`
}

// Blend returns the composite parameters for the selection.
func (s Selection) Blend() effects.Blend {
	if !s.Transitioning {
		return effects.Blend{OutgoingOpacity: 1}
	}
	return s.Style.Blend(s.Progress)
}

// Sequencer is immutable after New and safe for concurrent use.
type Sequencer struct {
	scenes      []Scene
	transitions []Transition
	starts      []int
	length      int
}

// New validates the layout and precomputes each scene's effective start.
// transitions[i] joins scenes[i] and scenes[i+1].
func New(scenes []Scene, transitions []Transition) (*Sequencer, error) {
	if len(scenes) == 0 {
		if len(transitions) != 0 {
			return nil, fmt.Errorf("%w: %d transitions without scenes", ErrLayout, len(transitions))
		}
		return &Sequencer{}, nil
	}
	if len(transitions) != len(scenes)-1 {
		return nil, fmt.Errorf("%w: %d scenes need %d transitions, got %d",
			ErrLayout, len(scenes), len(scenes)-1, len(transitions))
	}

	for i, sc := range scenes {
		if sc.DurationFrames <= 0 {
			return nil, fmt.Errorf("scene %d (%q): %w: %d frames", i, sc.ID, ErrInvalidDuration, sc.DurationFrames)
		}
	}
	for i, tr := range transitions {
		if tr.DurationFrames < 0 {
			return nil, fmt.Errorf("transition %d: %w: %d frames", i, ErrInvalidDuration, tr.DurationFrames)
		}
		if err := tr.Style.Validate(); err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
	}
	// Each scene must hold its incoming and outgoing transitions without
	// them overlapping, which also bounds every transition by both neighbours.
	for i, sc := range scenes {
		in, out := 0, 0
		if i > 0 {
			in = transitions[i-1].DurationFrames
		}
		if i < len(transitions) {
			out = transitions[i].DurationFrames
		}
		if in+out > sc.DurationFrames {
			return nil, fmt.Errorf("scene %d (%q): %w: %d+%d frames of transition in %d frames",
				i, sc.ID, ErrTransitionTooLong, in, out, sc.DurationFrames)
		}
	}

	s := &Sequencer{
		scenes:      append([]Scene(nil), scenes...),
		transitions: append([]Transition(nil), transitions...),
		starts:      make([]int, len(scenes)),
	}
	for i := 1; i < len(scenes); i++ {
		s.starts[i] = s.starts[i-1] + scenes[i-1].DurationFrames - transitions[i-1].DurationFrames
	}
	last := len(scenes) - 1
	s.length = s.starts[last] + scenes[last].DurationFrames
	return s, nil
}

// Len is the timeline length: sum of scene durations minus sum of transitions.
func (s *Sequencer) Len() int { return s.length }

// Count returns the number of scenes.
func (s *Sequencer) Count() int { return len(s.scenes) }

// Scene returns scene i.
func (s *Sequencer) Scene(i int) Scene { return s.scenes[i] }

// Start returns the effective start frame of scene i.
func (s *Sequencer) Start(i int) int { return s.starts[i] }

// End returns the frame after the last frame of scene i.
func (s *Sequencer) End(i int) int { return s.starts[i] + s.scenes[i].DurationFrames }

// Transition returns the transition after scene i.
func (s *Sequencer) Transition(i int) Transition { return s.transitions[i] }

// Index returns the position of the scene with id, or -1.
func (s *Sequencer) Index(id string) int {
	for i, sc := range s.scenes {
		if sc.ID == id {
			return i
		}
	}
	return -1
}

// At selects the scenes visible at frame. It reports false for frames before
// the first scene or an empty sequencer. Frames at or past the end hold the
// last scene on its final frame.
func (s *Sequencer) At(frame int) (Selection, bool) {
	if len(s.scenes) == 0 || frame < 0 {
		return Selection{}, false
	}

	// last scene that has started by frame
	i := sort.Search(len(s.starts), func(k int) bool { return s.starts[k] > frame }) - 1

	if i > 0 && frame < s.End(i-1) {
		tr := s.transitions[i-1]
		return Selection{
			Primary:       s.slot(i-1, frame),
			Incoming:      s.slot(i, frame),
			Transitioning: true,
			Progress:      float64(frame-s.starts[i]) / float64(tr.DurationFrames),
			Style:         tr.Style,
		}, true
	}

	primary := s.slot(i, frame)
	if last := s.scenes[i].DurationFrames - 1; primary.LocalFrame > last {
		primary.LocalFrame = last
	}
	return Selection{Primary: primary}, true
}

func (s *Sequencer) slot(i, frame int) Slot {
	return Slot{Index: i, ID: s.scenes[i].ID, LocalFrame: frame - s.starts[i]}
}
