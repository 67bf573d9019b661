// Package composition is the root that binds the frame clock, the scene
// sequencer, the cue track and per-scene emphasis windows. Everything is
// converted from seconds to frames once in Build; Frame is a pure projection.
package composition

import (
	"fmt"
	"log"

	"github.com/ivlev/narracomp/internal/animation"
	"github.com/ivlev/narracomp/internal/clock"
	"github.com/ivlev/narracomp/internal/cue"
	"github.com/ivlev/narracomp/internal/director"
	"github.com/ivlev/narracomp/internal/effects"
	"github.com/ivlev/narracomp/internal/highlight"
	"github.com/ivlev/narracomp/internal/sequencer"
)

// Composition is immutable after Build and safe for concurrent use.
type Composition struct {
	ID     string
	Width  int
	Height int
	Clock  clock.Clock

	Sequencer *sequencer.Sequencer
	Cues      *cue.Track

	highlights []*highlight.Synchronizer
	springs    map[string]animation.Spring
	assets     map[string]string

	// Warnings lists authoring inconsistencies tolerated at build time.
	Warnings []string
}

// Build converts an authored scenario into frame-based tracks. It is the only
// place where input may be rejected.
func Build(s *director.Scenario) (*Composition, error) {
	probe, err := clock.New(s.Composition.FPS, 0)
	if err != nil {
		return nil, err
	}

	seq, err := buildSequencer(s, probe)
	if err != nil {
		return nil, err
	}

	c := &Composition{
		ID:        s.Composition.ID,
		Width:     s.Composition.Width,
		Height:    s.Composition.Height,
		Sequencer: seq,
		springs:   make(map[string]animation.Spring, len(s.Springs)),
		assets:    make(map[string]string, len(s.Cues)),
	}
	for name, sp := range s.Springs {
		if err := sp.Validate(); err != nil {
			return nil, fmt.Errorf("spring %q: %w", name, err)
		}
		c.springs[name] = sp
	}

	total := seq.Len()
	if declared := s.Composition.DurationFrames; declared > 0 {
		if declared != total {
			c.warnf("declared %d frames but scenes span %d", declared, total)
		}
		total = declared
	}
	if c.Clock, err = clock.New(s.Composition.FPS, total); err != nil {
		return nil, err
	}

	if c.Cues, err = c.buildCues(s); err != nil {
		return nil, err
	}

	c.highlights = make([]*highlight.Synchronizer, len(s.Scenes))
	for i, sc := range s.Scenes {
		hl, err := c.buildHighlights(sc)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", sc.ID, err)
		}
		for _, o := range hl.Overlaps() {
			c.warnf("scene %q: overlapping emphasis on %q [%d,%d) and [%d,%d), later start wins",
				sc.ID, o.ElementID, o.First.StartFrame, o.First.EndFrame, o.Second.StartFrame, o.Second.EndFrame)
		}
		c.highlights[i] = hl
	}

	return c, nil
}

func buildSequencer(s *director.Scenario, clk clock.Clock) (*sequencer.Sequencer, error) {
	scenes := make([]sequencer.Scene, len(s.Scenes))
	var transitions []sequencer.Transition
	for i, sc := range s.Scenes {
		scenes[i] = sequencer.Scene{ID: sc.ID, DurationFrames: clk.Frames(sc.Duration)}
		if i == len(s.Scenes)-1 {
			break
		}
		tr := sequencer.Transition{Style: effects.CrossFade}
		if sc.Transition != nil {
			style, err := effects.ParseStyle(sc.Transition.Style)
			if err != nil {
				return nil, fmt.Errorf("scene %q: %w", sc.ID, err)
			}
			tr = sequencer.Transition{Style: style, DurationFrames: clk.Frames(sc.Transition.Duration)}
		}
		transitions = append(transitions, tr)
	}
	return sequencer.New(scenes, transitions)
}

func (c *Composition) buildCues(s *director.Scenario) (*cue.Track, error) {
	premount := max(s.Audio.Premount, 0)
	entries := make([]cue.Entry, len(s.Cues))
	for i, sc := range s.Cues {
		maxDur := sc.MaxDuration
		if maxDur <= 0 {
			maxDur = s.Audio.MaxDuration
		}
		fadeIn := sc.FadeIn
		if fadeIn <= 0 {
			fadeIn = s.Audio.FadeIn
		}
		entries[i] = cue.Entry{
			ID:                sc.ID,
			StartFrame:        c.Clock.ToFrame(sc.Start),
			MaxDurationFrames: c.Clock.Frames(maxDur),
			PremountFrames:    c.Clock.Frames(premount),
			FadeInFrames:      c.Clock.Frames(fadeIn),
		}
		if entries[i].StartFrame >= c.Clock.TotalFrames {
			c.warnf("cue %q starts at frame %d, after the last frame %d", sc.ID, entries[i].StartFrame, c.Clock.TotalFrames-1)
		}
		c.assets[sc.ID] = s.AssetPath(sc.ID)
	}
	return cue.NewTrack(entries)
}

func (c *Composition) buildHighlights(sc director.Scene) (*highlight.Synchronizer, error) {
	windows := make([]highlight.Window, len(sc.Emphasis))
	for i, e := range sc.Emphasis {
		start, end := c.Clock.ToFrame(e.Start), c.Clock.ToFrame(e.End)
		// A window shorter than one frame still covers its start frame.
		if e.End > e.Start && end <= start {
			end = start + 1
		}
		windows[i] = highlight.Window{
			ElementID:  e.Element,
			StartFrame: start,
			EndFrame:   end,
			PulseSpeed: e.PulseSpeed,
			Intensity:  e.Intensity,
		}
	}
	return highlight.New(windows)
}

func (c *Composition) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, msg)
	log.Printf("[!] %s: %s", c.ID, msg)
}

// Highlights returns the emphasis synchronizer of scene i.
func (c *Composition) Highlights(i int) *highlight.Synchronizer {
	if i < 0 || i >= len(c.highlights) {
		return nil
	}
	return c.highlights[i]
}

// Spring returns the named spring preset.
func (c *Composition) Spring(name string) animation.Spring {
	if sp, ok := c.springs[name]; ok {
		return sp
	}
	return animation.DefaultSpring
}

// Asset resolves a cue id to its audio file.
func (c *Composition) Asset(id string) string {
	return c.assets[id]
}
