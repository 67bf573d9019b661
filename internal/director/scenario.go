package director

import (
	"fmt"

	"github.com/ivlev/narracomp/internal/animation"
	"github.com/ivlev/narracomp/internal/effects"
)

// Scenario is the authored description of a narrated video. All times are in
// seconds; the composition converts them to frames once at build time.
type Scenario struct {
	Version     string                      `yaml:"version"`
	Composition Composition                 `yaml:"composition"`
	Audio       Audio                       `yaml:"audio"`
	Springs     map[string]animation.Spring `yaml:"springs,omitempty"`
	Scenes      []Scene                     `yaml:"scenes"`
	Cues        []Cue                       `yaml:"cues"`
}

// Composition is the global output contract.
type Composition struct {
	ID             string  `yaml:"id"`
	FPS            float64 `yaml:"fps"`
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	DurationFrames int     `yaml:"duration_frames,omitempty"` // 0 = length of the scene sequence
}

// Audio holds the narration track constants.
type Audio struct {
	Dir         string  `yaml:"dir"`
	Ext         string  `yaml:"ext"`
	MaxDuration float64 `yaml:"max_duration"` // seconds each cue stays mounted
	Premount    float64 `yaml:"premount"`     // seconds mounted before start, negative for none
	FadeIn      float64 `yaml:"fade_in"`
	Lead        float64 `yaml:"lead"` // first cue start for sequential layout
	Gap         float64 `yaml:"gap"`  // silence between laid out cues
}

// Scene is one visual segment and the transition into the next one.
type Scene struct {
	ID         string      `yaml:"id"`
	Duration   float64     `yaml:"duration"` // seconds
	Transition *Transition `yaml:"transition,omitempty"`
	Emphasis   []Emphasis  `yaml:"emphasis,omitempty"`
}

// Transition is written as style "fade" or "slide:from-right".
type Transition struct {
	Style    string  `yaml:"style"`
	Duration float64 `yaml:"duration"`
}

// Emphasis highlights an element of its scene. Start and End are relative to
// the scene start.
type Emphasis struct {
	Element    string  `yaml:"element"`
	Start      float64 `yaml:"start"`
	End        float64 `yaml:"end"`
	PulseSpeed float64 `yaml:"pulse_speed,omitempty"`
	Intensity  float64 `yaml:"intensity,omitempty"`
}

// Cue schedules an audio asset at an absolute start time.
type Cue struct {
	ID          string  `yaml:"id"`
	Start       float64 `yaml:"start"`
	MaxDuration float64 `yaml:"max_duration,omitempty"`
	FadeIn      float64 `yaml:"fade_in,omitempty"`
	Duration    float64 `yaml:"duration,omitempty"` // measured asset length, informational
}

// Defaults taken from the tutorial composition.
const (
	DefaultFPS                = 30
	DefaultWidth              = 1920
	DefaultHeight             = 1080
	DefaultAudioMaxDuration   = 15.0
	DefaultPremount           = 1.0
	DefaultTransitionDuration = 0.5
	DefaultLead               = 0.5
	DefaultGap                = 0.5
	DefaultPulseSpeed         = 0.3
	DefaultIntensity          = 0.05
)

// ApplyDefaults fills unset fields in place.
func (s *Scenario) ApplyDefaults() {
	if s.Version == "" {
		s.Version = "1.0"
	}
	c := &s.Composition
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}

	a := &s.Audio
	if a.Dir == "" {
		a.Dir = "audio"
	}
	if a.Ext == "" {
		a.Ext = ".mp3"
	}
	if a.MaxDuration <= 0 {
		a.MaxDuration = DefaultAudioMaxDuration
	}
	if a.Premount == 0 {
		a.Premount = DefaultPremount
	}
	if a.Lead <= 0 {
		a.Lead = DefaultLead
	}
	if a.Gap <= 0 {
		a.Gap = DefaultGap
	}

	if s.Springs == nil {
		s.Springs = map[string]animation.Spring{}
	}
	for name, sp := range map[string]animation.Spring{
		"default": animation.DefaultSpring,
		"bouncy":  animation.BouncySpring,
		"smooth":  animation.SmoothSpring,
	} {
		if _, ok := s.Springs[name]; !ok {
			s.Springs[name] = sp
		}
	}

	for i := range s.Scenes {
		sc := &s.Scenes[i]
		if i < len(s.Scenes)-1 && sc.Transition == nil {
			sc.Transition = &Transition{Style: string(effects.Fade), Duration: DefaultTransitionDuration}
		}
		for j := range sc.Emphasis {
			e := &sc.Emphasis[j]
			if e.PulseSpeed == 0 {
				e.PulseSpeed = DefaultPulseSpeed
			}
			if e.Intensity == 0 {
				e.Intensity = DefaultIntensity
			}
		}
	}
}

// Validate checks identifiers, transition style names and spring presets.
func (s *Scenario) Validate() error {
	if len(s.Scenes) == 0 {
		return fmt.Errorf("scenario has no scenes")
	}
	seen := make(map[string]bool, len(s.Scenes))
	for i, sc := range s.Scenes {
		if sc.ID == "" {
			return fmt.Errorf("scene %d has no id", i)
		}
		if seen[sc.ID] {
			return fmt.Errorf("duplicate scene id %q", sc.ID)
		}
		seen[sc.ID] = true
		if sc.Transition != nil {
			if _, err := effects.ParseStyle(sc.Transition.Style); err != nil {
				return fmt.Errorf("scene %q transition: %w", sc.ID, err)
			}
		}
	}
	for name, sp := range s.Springs {
		if err := sp.Validate(); err != nil {
			return fmt.Errorf("spring %q: %w", name, err)
		}
	}
	for i, c := range s.Cues {
		if c.ID == "" {
			return fmt.Errorf("cue %d has no id", i)
		}
	}
	return nil
}

// Spring returns the named preset, or the default spring.
func (s *Scenario) Spring(name string) animation.Spring {
	if sp, ok := s.Springs[name]; ok {
		return sp
	}
	return animation.DefaultSpring
}
