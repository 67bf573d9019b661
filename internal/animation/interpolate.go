package animation

// Extrapolation controls what happens outside the input range.
type Extrapolation int

const (
	// Extend continues the outermost segment linearly.
	Extend Extrapolation = iota
	// Clamp holds the boundary value.
	Clamp
)

// Easing remaps a linear progress value in [0,1].
type Easing func(t float64) float64

// Options for Interpolate. The zero value extends on both sides with Linear easing.
type Options struct {
	Left   Extrapolation
	Right  Extrapolation
	Easing Easing
}

// ClampBoth clamps on both sides of the input range.
var ClampBoth = Options{Left: Clamp, Right: Clamp}

// RampTo linearly maps frame from [f0,f1] onto [v0,v1].
// A malformed range (f1 <= f0) is a step at f0: v0 before, v1 from f0 on.
func RampTo(frame, f0, f1, v0, v1 float64, clampLeft, clampRight bool) float64 {
	opts := Options{}
	if clampLeft {
		opts.Left = Clamp
	}
	if clampRight {
		opts.Right = Clamp
	}
	return Interpolate(frame, []float64{f0, f1}, []float64{v0, v1}, opts)
}

// Interpolate evaluates a piecewise linear curve through (inputs[i], outputs[i]).
// Inputs are expected ascending; a segment whose end does not exceed its start
// behaves as a step. Mismatched or empty slices yield 0.
func Interpolate(x float64, inputs, outputs []float64, opts Options) float64 {
	n := len(inputs)
	if n == 0 || n != len(outputs) {
		return 0
	}
	if n == 1 {
		return outputs[0]
	}

	// pick the segment containing x, or the outermost one
	seg := 0
	for seg < n-2 && x >= inputs[seg+1] {
		seg++
	}
	a, b := inputs[seg], inputs[seg+1]
	va, vb := outputs[seg], outputs[seg+1]

	if b <= a {
		if x >= a {
			return vb
		}
		return va
	}

	if x < a && seg == 0 && opts.Left == Clamp {
		return va
	}
	if x > b && seg == n-2 && opts.Right == Clamp {
		return vb
	}

	ease := opts.Easing
	if ease == nil {
		ease = Linear
	}
	t := (x - a) / (b - a)
	if t >= 0 && t <= 1 {
		t = ease(t)
	}
	return lerp(va, vb, t)
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseInOutCubic applies smooth easing function
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
