package animation

import (
	"errors"
	"math"
	"testing"
)

func TestRampTo(t *testing.T) {
	tests := []struct {
		name       string
		frame      float64
		clampLeft  bool
		clampRight bool
		want       float64
	}{
		{"start", 10, true, true, 0},
		{"middle", 15, true, true, 0.5},
		{"end", 20, true, true, 1},
		{"before clamped", 0, true, true, 0},
		{"after clamped", 40, true, true, 1},
		{"before extended", 0, false, false, -1},
		{"after extended", 30, false, false, 2},
		{"negative frame", -50, true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RampTo(tt.frame, 10, 20, 0, 1, tt.clampLeft, tt.clampRight)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("RampTo(%.0f) = %f, want %f", tt.frame, got, tt.want)
			}
		})
	}
}

func TestRampToMalformedRangeIsStep(t *testing.T) {
	for _, f1 := range []float64{10, 5} {
		if got := RampTo(10, 10, f1, 3, 7, false, false); got != 7 {
			t.Errorf("f1=%.0f: at f0 expected v1=7, got %f", f1, got)
		}
		if got := RampTo(50, 10, f1, 3, 7, false, false); got != 7 {
			t.Errorf("f1=%.0f: after f0 expected v1=7, got %f", f1, got)
		}
		if got := RampTo(9, 10, f1, 3, 7, false, false); got != 3 {
			t.Errorf("f1=%.0f: before f0 expected v0=3, got %f", f1, got)
		}
	}
}

func TestInterpolateMultiSegment(t *testing.T) {
	inputs := []float64{0, 10, 20}
	outputs := []float64{0, 1, 0}

	tests := []struct {
		x    float64
		want float64
	}{
		{-5, 0},
		{0, 0},
		{5, 0.5},
		{10, 1},
		{15, 0.5},
		{20, 0},
		{25, 0},
	}
	for _, tt := range tests {
		got := Interpolate(tt.x, inputs, outputs, ClampBoth)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Interpolate(%.0f) = %f, want %f", tt.x, got, tt.want)
		}
	}

	if got := Interpolate(5, []float64{0}, []float64{1, 2}, ClampBoth); got != 0 {
		t.Errorf("mismatched slices should yield 0, got %f", got)
	}
}

func TestInterpolateEasing(t *testing.T) {
	opts := Options{Left: Clamp, Right: Clamp, Easing: EaseInOutCubic}
	mid := Interpolate(5, []float64{0, 10}, []float64{0, 100}, opts)
	if math.Abs(mid-50) > 1e-9 {
		t.Errorf("eased midpoint = %f, want 50", mid)
	}
	early := Interpolate(2, []float64{0, 10}, []float64{0, 100}, opts)
	if early >= 20 {
		t.Errorf("ease-in should lag linear at 20%%: got %f", early)
	}
}

func TestSpringZeroBeforeDelay(t *testing.T) {
	for _, s := range []Spring{DefaultSpring, BouncySpring, SmoothSpring} {
		for f := -10; f < 30; f++ {
			if v := SpringResponse(f, 30, 30, s); v != 0 {
				t.Fatalf("spring %+v at frame %d = %f, want exactly 0", s, f, v)
			}
		}
		if v := SpringResponse(30, 30, 30, s); math.Abs(v) > 1e-12 {
			t.Errorf("spring %+v at release frame = %g, want 0", s, v)
		}
	}
}

func TestSpringApproachesOne(t *testing.T) {
	for _, s := range []Spring{DefaultSpring, BouncySpring, SmoothSpring, {Stiffness: 100, Damping: 20}} {
		v := SpringResponse(30+30*120, 30, 30, s)
		if math.Abs(v-1) > 1e-6 {
			t.Errorf("spring %+v did not settle: %f", s, v)
		}
	}
}

func TestSpringMonotonicWhenNotUnderdamped(t *testing.T) {
	springs := []Spring{
		{Stiffness: 100, Damping: 20, Mass: 1}, // critical
		SmoothSpring,
		{Stiffness: 400, Damping: 60},
	}
	for _, s := range springs {
		if s.DampingRatio() < 1 {
			t.Fatalf("spring %+v is underdamped", s)
		}
		prev := 0.0
		for f := 0; f <= 600; f++ {
			v := SpringResponse(f, 0, 30, s)
			if v < prev-1e-12 {
				t.Fatalf("spring %+v not monotonic at frame %d: %f < %f", s, f, v, prev)
			}
			if v > 1+1e-12 {
				t.Fatalf("spring %+v overshoots at frame %d: %f", s, f, v)
			}
			prev = v
		}
	}
}

func TestSpringUnderdampedOvershoots(t *testing.T) {
	peak := 0.0
	for f := 0; f < 90; f++ {
		peak = math.Max(peak, SpringResponse(f, 0, 30, BouncySpring))
	}
	if peak <= 1 {
		t.Errorf("bouncy spring should overshoot, peak %f", peak)
	}
}

func TestSpringStiffnessSpeedsRise(t *testing.T) {
	soft := SpringResponse(6, 0, 30, Spring{Stiffness: 50, Damping: 20})
	stiff := SpringResponse(6, 0, 30, Spring{Stiffness: 400, Damping: 40})
	if stiff <= soft {
		t.Errorf("stiffer spring should rise faster: soft=%f stiff=%f", soft, stiff)
	}
}

func TestSpringIsPure(t *testing.T) {
	a := SpringResponse(47, 5, 30, BouncySpring)
	for f := 0; f < 100; f++ {
		SpringResponse(f, 5, 30, BouncySpring)
	}
	if b := SpringResponse(47, 5, 30, BouncySpring); a != b {
		t.Errorf("repeated evaluation differs: %v vs %v", a, b)
	}
}

func TestSpringValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Spring
		ok   bool
	}{
		{"default", DefaultSpring, true},
		{"smooth", SmoothSpring, true},
		{"mass omitted", Spring{Stiffness: 100, Damping: 10}, true},
		{"undamped", Spring{Stiffness: 100}, true},
		{"zero stiffness", Spring{Damping: 10}, false},
		{"negative damping", Spring{Stiffness: 10000, Damping: -100}, false},
		{"negative mass", Spring{Stiffness: 100, Damping: 10, Mass: -1}, false},
		{"nan", Spring{Stiffness: 100, Damping: math.NaN()}, false},
		{"inf", Spring{Stiffness: math.Inf(1), Damping: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidSpring) {
				t.Errorf("expected ErrInvalidSpring, got %v", err)
			}
		})
	}
}

func TestInterpolateDefaultsToLinear(t *testing.T) {
	in, out := []float64{0, 10}, []float64{0, 100}
	plain := Interpolate(4, in, out, ClampBoth)
	explicit := Interpolate(4, in, out, Options{Left: Clamp, Right: Clamp, Easing: Linear})
	if plain != explicit || math.Abs(plain-40) > 1e-12 {
		t.Errorf("expected 40 both ways, got %f and %f", plain, explicit)
	}
}
