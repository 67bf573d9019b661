package composition

import (
	"github.com/ivlev/narracomp/internal/animation"
	"github.com/ivlev/narracomp/internal/cue"
	"github.com/ivlev/narracomp/internal/effects"
	"github.com/ivlev/narracomp/internal/highlight"
	"github.com/ivlev/narracomp/internal/sequencer"
)

// RenderState is everything the scene renderer and the audio player need for
// one frame. It is recomputed from scratch on every call.
type RenderState struct {
	Frame     int     `json:"frame"`
	Requested int     `json:"requested"`
	Time      float64 `json:"time"`
	Visible   bool    `json:"visible"`

	Scene sequencer.Selection `json:"scene"`
	Blend effects.Blend       `json:"blend"`
	Cues  []cue.Active        `json:"cues"`

	// Entrance is the "default" spring released at the primary scene start.
	Entrance float64 `json:"entrance"`

	// Emphasis states keyed by element id, resolved on scene-local frames.
	Emphasis         map[string]highlight.State `json:"emphasis,omitempty"`
	IncomingEmphasis map[string]highlight.State `json:"incoming_emphasis,omitempty"`
}

// Frame computes the render state of frame. Frames outside the timeline are
// clamped to the nearest valid frame and never fail.
func (c *Composition) Frame(frame int) RenderState {
	f := c.Clock.Clamp(frame)
	st := RenderState{
		Frame:     f,
		Requested: frame,
		Time:      c.Clock.ToSeconds(f),
	}
	if c.Clock.TotalFrames == 0 {
		return st
	}

	sel, ok := c.Sequencer.At(f)
	st.Visible = ok
	if ok {
		st.Scene = sel
		st.Blend = sel.Blend()
		st.Entrance = animation.SpringResponse(sel.Primary.LocalFrame, 0, c.Clock.FPS, c.Spring("default"))
		st.Emphasis = c.Highlights(sel.Primary.Index).States(sel.Primary.LocalFrame)
		if sel.Transitioning {
			st.IncomingEmphasis = c.Highlights(sel.Incoming.Index).States(sel.Incoming.LocalFrame)
		}
	}
	st.Cues = c.Cues.ActiveAt(f)
	return st
}

// Emphasized reports whether element of the primary scene is emphasized at frame.
func (c *Composition) Emphasized(frame int, element string) bool {
	f := c.Clock.Clamp(frame)
	sel, ok := c.Sequencer.At(f)
	if !ok {
		return false
	}
	return c.Highlights(sel.Primary.Index).IsEmphasized(sel.Primary.LocalFrame, element)
}
