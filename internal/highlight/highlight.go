// Package highlight resolves narration-aligned emphasis windows into a
// per-frame render state for scene elements.
package highlight

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidWindow is returned for empty or inverted windows.
var ErrInvalidWindow = errors.New("invalid emphasis window")

// Window emphasises ElementID for frames in [StartFrame, EndFrame).
type Window struct {
	ElementID  string  `json:"element"`
	StartFrame int     `json:"start_frame"`
	EndFrame   int     `json:"end_frame"`
	PulseSpeed float64 `json:"pulse_speed"` // radians per frame
	Intensity  float64 `json:"intensity"`   // pulse amplitude around scale 1
}

// Contains reports whether frame falls in the window.
func (w Window) Contains(frame int) bool {
	return w.StartFrame <= frame && frame < w.EndFrame
}

// State is the emphasis state of one element at one frame.
type State struct {
	Emphasized bool    `json:"emphasized"`
	Phase      float64 `json:"phase"`
	Scale      float64 `json:"scale"`
	Intensity  float64 `json:"intensity"`
}

var baseState = State{Scale: 1}

// Overlap records two windows of the same element sharing frames.
type Overlap struct {
	ElementID string
	First     Window
	Second    Window
}

// Synchronizer is immutable after New and safe for concurrent use.
type Synchronizer struct {
	byElement map[string][]Window
	elements  []string
}

// New validates windows and indexes them by element.
func New(windows []Window) (*Synchronizer, error) {
	s := &Synchronizer{byElement: make(map[string][]Window)}
	for i, w := range windows {
		if w.ElementID == "" {
			return nil, fmt.Errorf("window %d: %w: empty element id", i, ErrInvalidWindow)
		}
		if w.EndFrame <= w.StartFrame {
			return nil, fmt.Errorf("window %d (%s): %w: [%d,%d)", i, w.ElementID, ErrInvalidWindow, w.StartFrame, w.EndFrame)
		}
		if _, seen := s.byElement[w.ElementID]; !seen {
			s.elements = append(s.elements, w.ElementID)
		}
		s.byElement[w.ElementID] = append(s.byElement[w.ElementID], w)
	}
	for _, ws := range s.byElement {
		// stable: equal starts keep authored order so the later one wins
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].StartFrame < ws[j].StartFrame })
	}
	return s, nil
}

// Elements lists element ids in first-seen order.
func (s *Synchronizer) Elements() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.elements...)
}

// Windows returns the sorted windows of element.
func (s *Synchronizer) Windows(element string) []Window {
	if s == nil {
		return nil
	}
	return append([]Window(nil), s.byElement[element]...)
}

// Overlaps lists same-element windows that share at least one frame.
func (s *Synchronizer) Overlaps() []Overlap {
	if s == nil {
		return nil
	}
	var out []Overlap
	for _, id := range s.elements {
		ws := s.byElement[id]
		for i := 1; i < len(ws); i++ {
			for j := 0; j < i; j++ {
				if ws[i].StartFrame < ws[j].EndFrame {
					out = append(out, Overlap{ElementID: id, First: ws[j], Second: ws[i]})
				}
			}
		}
	}
	return out
}

// active returns the window with the latest start containing frame.
func (s *Synchronizer) active(frame int, element string) (Window, bool) {
	if s == nil {
		return Window{}, false
	}
	ws := s.byElement[element]
	n := sort.Search(len(ws), func(i int) bool { return ws[i].StartFrame > frame })
	for i := n - 1; i >= 0; i-- {
		if frame < ws[i].EndFrame {
			return ws[i], true
		}
	}
	return Window{}, false
}

// IsEmphasized reports whether any window of element contains frame.
func (s *Synchronizer) IsEmphasized(frame int, element string) bool {
	_, ok := s.active(frame, element)
	return ok
}

// Phase is sin((frame-start)*pulseSpeed) of the winning window, 0 otherwise.
func (s *Synchronizer) Phase(frame int, element string) float64 {
	w, ok := s.active(frame, element)
	if !ok {
		return 0
	}
	return phase(frame, w)
}

// StateAt resolves the full emphasis state of element at frame.
func (s *Synchronizer) StateAt(frame int, element string) State {
	w, ok := s.active(frame, element)
	if !ok {
		return baseState
	}
	p := phase(frame, w)
	return State{
		Emphasized: true,
		Phase:      p,
		Scale:      1 + w.Intensity*p,
		Intensity:  w.Intensity,
	}
}

// States resolves every known element at frame.
func (s *Synchronizer) States(frame int) map[string]State {
	if s == nil || len(s.elements) == 0 {
		return nil
	}
	out := make(map[string]State, len(s.elements))
	for _, id := range s.elements {
		out[id] = s.StateAt(frame, id)
	}
	return out
}

func phase(frame int, w Window) float64 {
	return math.Sin(float64(frame-w.StartFrame) * w.PulseSpeed)
}
