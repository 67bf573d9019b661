// Package clock converts authored seconds into frame numbers for one render.
package clock

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate is returned for a non-positive frame rate or negative length.
var ErrInvalidRate = errors.New("invalid frame clock")

// epsilon absorbs binary representation error, e.g. 4.1*30 = 122.99999999999999.
const epsilon = 1e-9

// Clock is the frame clock shared by every track of a composition.
type Clock struct {
	FPS         float64
	TotalFrames int
}

// New validates fps > 0 and totalFrames >= 0.
func New(fps float64, totalFrames int) (Clock, error) {
	if !(fps > 0) || math.IsInf(fps, 0) {
		return Clock{}, fmt.Errorf("%w: fps %v", ErrInvalidRate, fps)
	}
	if totalFrames < 0 {
		return Clock{}, fmt.Errorf("%w: total frames %d", ErrInvalidRate, totalFrames)
	}
	return Clock{FPS: fps, TotalFrames: totalFrames}, nil
}

// ToFrame returns floor(seconds * fps).
func (c Clock) ToFrame(seconds float64) int {
	return int(math.Floor(seconds*c.FPS + epsilon))
}

// ToSeconds returns the time at which frame starts.
func (c Clock) ToSeconds(frame int) float64 {
	return float64(frame) / c.FPS
}

// Frames converts a duration in seconds to a frame count.
func (c Clock) Frames(seconds float64) int {
	return c.ToFrame(seconds)
}

// Clamp maps frame into [0, TotalFrames-1]. An empty clock clamps to 0.
func (c Clock) Clamp(frame int) int {
	if frame < 0 || c.TotalFrames == 0 {
		return 0
	}
	if frame >= c.TotalFrames {
		return c.TotalFrames - 1
	}
	return frame
}

// Duration returns the clock length in seconds.
func (c Clock) Duration() float64 {
	return c.ToSeconds(c.TotalFrames)
}

// Timecode formats frame as mm:ss.ff for tables and previews.
func (c Clock) Timecode(frame int) string {
	sign := ""
	if frame < 0 {
		sign = "-"
		frame = -frame
	}
	fps := int(math.Round(c.FPS))
	if fps <= 0 {
		fps = 1
	}
	secs := frame / fps
	return fmt.Sprintf("%s%02d:%02d.%02d", sign, secs/60, secs%60, frame%fps)
}
