package effects

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStyle is returned when a transition style cannot be parsed.
var ErrUnknownStyle = errors.New("unknown transition style")

// Kind is the family of a transition presentation.
type Kind string

const (
	Fade  Kind = "fade"
	Slide Kind = "slide"
)

// Direction is where the incoming scene slides in from.
type Direction string

const (
	FromLeft   Direction = "from-left"
	FromRight  Direction = "from-right"
	FromTop    Direction = "from-top"
	FromBottom Direction = "from-bottom"
)

// Style is the visual presentation of a transition.
type Style struct {
	Kind      Kind      `yaml:"style" json:"style"`
	Direction Direction `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// CrossFade is the default style.
var CrossFade = Style{Kind: Fade}

// SlideFrom returns a slide style entering from d.
func SlideFrom(d Direction) Style {
	return Style{Kind: Slide, Direction: d}
}

// ParseStyle accepts "fade", "slide" (from-right) and "slide:<direction>".
func ParseStyle(s string) (Style, error) {
	kind, dir, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	style := Style{Kind: Kind(kind), Direction: Direction(dir)}
	if style.Kind == "" {
		style.Kind = Fade
	}
	if err := style.Validate(); err != nil {
		return Style{}, err
	}
	return style.normalized(), nil
}

// Validate checks kind and direction.
func (s Style) Validate() error {
	switch s.Kind {
	case Fade:
		if s.Direction != "" {
			return fmt.Errorf("%w: fade takes no direction (%s)", ErrUnknownStyle, s.Direction)
		}
		return nil
	case Slide:
		switch s.Direction {
		case "", FromLeft, FromRight, FromTop, FromBottom:
			return nil
		}
		return fmt.Errorf("%w: slide direction %q", ErrUnknownStyle, s.Direction)
	}
	return fmt.Errorf("%w: %q", ErrUnknownStyle, s.Kind)
}

func (s Style) normalized() Style {
	if s.Kind == Slide && s.Direction == "" {
		s.Direction = FromRight
	}
	return s
}

func (s Style) String() string {
	s = s.normalized()
	if s.Kind == Slide {
		return string(s.Kind) + ":" + string(s.Direction)
	}
	return string(s.Kind)
}

// Offset is a translation expressed as a fraction of the frame size.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Blend describes how the outgoing and incoming scenes are composited.
// The incoming scene is always drawn on top.
type Blend struct {
	OutgoingOpacity float64 `json:"outgoing_opacity"`
	IncomingOpacity float64 `json:"incoming_opacity"`
	OutgoingOffset  Offset  `json:"outgoing_offset"`
	IncomingOffset  Offset  `json:"incoming_offset"`
}

// Blend returns the composite parameters at progress in [0,1].
func (s Style) Blend(progress float64) Blend {
	p := clamp01(progress)
	s = s.normalized()

	if s.Kind != Slide {
		return Blend{OutgoingOpacity: 1 - p, IncomingOpacity: p}
	}

	b := Blend{OutgoingOpacity: 1, IncomingOpacity: 1}
	rest := 1 - p
	switch s.Direction {
	case FromLeft:
		b.IncomingOffset.X, b.OutgoingOffset.X = -rest, p
	case FromTop:
		b.IncomingOffset.Y, b.OutgoingOffset.Y = -rest, p
	case FromBottom:
		b.IncomingOffset.Y, b.OutgoingOffset.Y = rest, -p
	default:
		b.IncomingOffset.X, b.OutgoingOffset.X = rest, -p
	}
	return b
}

// XfadeName maps the style onto the equivalent ffmpeg xfade transition.
func (s Style) XfadeName() string {
	s = s.normalized()
	if s.Kind != Slide {
		return "fade"
	}
	switch s.Direction {
	case FromLeft:
		return "slideright"
	case FromTop:
		return "slidedown"
	case FromBottom:
		return "slideup"
	default:
		return "slideleft"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
