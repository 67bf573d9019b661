package animation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSpring reports a spring whose response would not settle.
var ErrInvalidSpring = errors.New("invalid spring")

// Spring describes a damped mass-spring system released from rest at 0
// towards a target of 1.
type Spring struct {
	Stiffness float64 `yaml:"stiffness" json:"stiffness"`
	Damping   float64 `yaml:"damping" json:"damping"`
	Mass      float64 `yaml:"mass,omitempty" json:"mass,omitempty"`
}

// Presets used by the tutorial scenes.
var (
	DefaultSpring = Spring{Stiffness: 100, Damping: 10, Mass: 1}
	BouncySpring  = Spring{Stiffness: 100, Damping: 8, Mass: 1}
	SmoothSpring  = Spring{Stiffness: 100, Damping: 200, Mass: 1}
)

// DampingRatio returns zeta; 1 is critical, above 1 never overshoots.
func (s Spring) DampingRatio() float64 {
	k, m := s.Stiffness, s.mass()
	if k <= 0 {
		return math.Inf(1)
	}
	return s.Damping / (2 * math.Sqrt(k*m))
}

// Validate rejects springs that would oscillate without bound or produce
// non-finite values.
func (s Spring) Validate() error {
	for _, v := range []float64{s.Stiffness, s.Damping, s.Mass} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite parameter in %+v", ErrInvalidSpring, s)
		}
	}
	switch {
	case s.Stiffness <= 0:
		return fmt.Errorf("%w: stiffness %g must be positive", ErrInvalidSpring, s.Stiffness)
	case s.Damping < 0:
		return fmt.Errorf("%w: damping %g is negative", ErrInvalidSpring, s.Damping)
	case s.Mass < 0:
		return fmt.Errorf("%w: mass %g is negative", ErrInvalidSpring, s.Mass)
	}
	return nil
}

func (s Spring) mass() float64 {
	if s.Mass <= 0 {
		return 1
	}
	return s.Mass
}

// SpringResponse returns the unit step displacement of s at the given frame
// when released at delay. Elapsed time is (frame-delay)/fps seconds; fps <= 0
// counts frames as seconds. The value is evaluated in closed form so any frame
// can be sampled without the ones before it.
func SpringResponse(frame, delay int, fps float64, s Spring) float64 {
	if frame < delay {
		return 0
	}
	if fps <= 0 {
		fps = 1
	}
	if s.Stiffness <= 0 {
		return 0
	}
	t := float64(frame-delay) / fps
	return stepResponse(t, s)
}

func stepResponse(t float64, s Spring) float64 {
	m := s.mass()
	w0 := math.Sqrt(s.Stiffness / m)
	zeta := s.Damping / (2 * math.Sqrt(s.Stiffness*m))

	switch {
	case math.Abs(zeta-1) < 1e-9:
		return 1 - math.Exp(-w0*t)*(1+w0*t)
	case zeta < 1:
		wd := w0 * math.Sqrt(1-zeta*zeta)
		decay := math.Exp(-zeta * w0 * t)
		return 1 - decay*(math.Cos(wd*t)+(zeta*w0/wd)*math.Sin(wd*t))
	default:
		root := math.Sqrt(zeta*zeta - 1)
		r1 := -w0 * (zeta - root)
		r2 := -w0 * (zeta + root)
		return 1 + (r2*math.Exp(r1*t)-r1*math.Exp(r2*t))/(r1-r2)
	}
}
