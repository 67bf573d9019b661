package clock

import (
	"errors"
	"testing"
)

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		fps   float64
		total int
	}{
		{0, 10},
		{-30, 10},
		{30, -1},
	}
	for _, tt := range tests {
		if _, err := New(tt.fps, tt.total); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("New(%v, %d): expected ErrInvalidRate, got %v", tt.fps, tt.total, err)
		}
	}
	if _, err := New(30, 0); err != nil {
		t.Errorf("empty clock should be valid: %v", err)
	}
}

func TestToFrame(t *testing.T) {
	c := Clock{FPS: 30}
	tests := []struct {
		sec  float64
		want int
	}{
		{0, 0},
		{0.5, 15},
		{4.1, 123},
		{11.3, 339},
		{0.01, 0},
		{22.4, 672},
	}
	for _, tt := range tests {
		if got := c.ToFrame(tt.sec); got != tt.want {
			t.Errorf("ToFrame(%v) = %d, want %d", tt.sec, got, tt.want)
		}
	}
}

func TestRoundTripDrift(t *testing.T) {
	for _, fps := range []float64{24, 25, 30, 60} {
		c := Clock{FPS: fps}
		for i := 0; i < 3000; i++ {
			start := float64(i) * 0.1
			dur := 0.5 + float64(i%37)*0.13

			startFrame := c.ToFrame(start)
			durFrames := c.Frames(dur)

			back := c.ToFrame(c.ToSeconds(startFrame))
			if d := back - startFrame; d < -1 || d > 1 {
				t.Fatalf("fps %v start %.1fs drifted %d frames", fps, start, d)
			}
			backDur := c.Frames(c.ToSeconds(durFrames))
			if d := backDur - durFrames; d < -1 || d > 1 {
				t.Fatalf("fps %v duration %.2fs drifted %d frames", fps, dur, d)
			}
			if d := c.ToSeconds(startFrame) - start; d > 1e-9 || d <= -1/fps-1e-9 {
				t.Fatalf("fps %v start %.1fs maps to %.4fs", fps, start, c.ToSeconds(startFrame))
			}
		}
	}
}

func TestClamp(t *testing.T) {
	c := Clock{FPS: 30, TotalFrames: 100}
	tests := []struct{ in, want int }{
		{-5, 0},
		{0, 0},
		{50, 50},
		{99, 99},
		{100, 99},
		{1000, 99},
	}
	for _, tt := range tests {
		if got := c.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := (Clock{FPS: 30}).Clamp(12); got != 0 {
		t.Errorf("empty clock Clamp = %d, want 0", got)
	}
}

func TestTimecode(t *testing.T) {
	c := Clock{FPS: 30}
	if got := c.Timecode(30*61 + 7); got != "01:01.07" {
		t.Errorf("Timecode = %q", got)
	}
}
