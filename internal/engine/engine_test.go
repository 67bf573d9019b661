package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ivlev/narracomp/internal/composition"
	"github.com/ivlev/narracomp/internal/config"
	"github.com/ivlev/narracomp/internal/director"
)

func testComposition(t *testing.T) *composition.Composition {
	t.Helper()
	s := &director.Scenario{
		Composition: director.Composition{ID: "engine", FPS: 30, Width: 64, Height: 36},
		Scenes: []director.Scene{
			{ID: "a", Duration: 4, Emphasis: []director.Emphasis{{Element: "title", Start: 1, End: 2}}},
			{ID: "b", Duration: 4},
		},
		Cues: []director.Cue{{ID: "a-1", Start: 0.5}},
	}
	s.ApplyDefaults()
	c, err := composition.Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return c
}

type collectSink struct {
	mu     sync.Mutex
	states map[int]composition.RenderState
}

func (s *collectSink) WriteFrame(_ context.Context, st composition.RenderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states == nil {
		s.states = make(map[int]composition.RenderState)
	}
	s.states[st.Frame] = st
	return nil
}

func TestRangeFrames(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		total   int
		want    []int
		wantErr bool
	}{
		{"whole", Range{}, 4, []int{0, 1, 2, 3}, false},
		{"stepped", Range{From: 1, To: 8, Step: 3}, 10, []int{1, 4, 7}, false},
		{"to beyond end", Range{From: 8, To: 50}, 10, []int{8, 9}, false},
		{"negative from", Range{From: -5, To: 2}, 10, []int{0, 1}, false},
		{"empty", Range{From: 5, To: 5}, 10, nil, true},
		{"past end", Range{From: 12}, 10, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.Frames(tt.total)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrEmptyRange) {
					t.Errorf("err = %v, want ErrEmptyRange", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Frames = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunMatchesSequentialEvaluation(t *testing.T) {
	comp := testComposition(t)
	total := comp.Clock.TotalFrames

	for _, workers := range []int{1, 7} {
		sink := &collectSink{}
		cfg := config.Default()
		cfg.Workers = workers
		p := NewProject(cfg, comp, sink)

		stats, err := p.Run(context.Background(), Range{})
		if err != nil {
			t.Fatalf("workers=%d: Run failed: %v", workers, err)
		}
		if stats.Frames != total || len(sink.states) != total {
			t.Fatalf("workers=%d: %d frames written, want %d", workers, len(sink.states), total)
		}
		if stats.Workers != workers {
			t.Errorf("Workers = %d, want %d", stats.Workers, workers)
		}
		for f := 0; f < total; f++ {
			if !reflect.DeepEqual(sink.states[f], comp.Frame(f)) {
				t.Fatalf("workers=%d: frame %d differs from Frame()", workers, f)
			}
		}
	}
}

func TestRunStopsOnSinkError(t *testing.T) {
	comp := testComposition(t)
	boom := errors.New("disk full")

	cfg := config.Default()
	cfg.Workers = 2
	p := NewProject(cfg, comp, SinkFunc(func(_ context.Context, st composition.RenderState) error {
		if st.Frame == 10 {
			return boom
		}
		return nil
	}))

	stats, err := p.Run(context.Background(), Range{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "frame 10") {
		t.Errorf("error should name the frame: %v", err)
	}
	if stats.Frames >= comp.Clock.TotalFrames {
		t.Errorf("all %d frames written despite error", stats.Frames)
	}
}

func TestRunCancelled(t *testing.T) {
	comp := testComposition(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.Default()
	cfg.Workers = 2
	_, err := NewProject(cfg, comp, &collectSink{}).Run(ctx, Range{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunIDsAndStatsLog(t *testing.T) {
	comp := testComposition(t)
	cfg := config.Default()
	cfg.Workers = 3
	cfg.ShowStats = true
	cfg.OutputDir = t.TempDir()

	a := NewProject(cfg, comp, &collectSink{})
	b := NewProject(cfg, comp, &collectSink{})
	if a.RunID == "" || a.RunID == b.RunID {
		t.Fatalf("run ids %q / %q", a.RunID, b.RunID)
	}

	if _, err := a.Run(context.Background(), Range{Step: 30}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "benchmark.log"))
	if err != nil {
		t.Fatalf("benchmark.log not written: %v", err)
	}
	if !strings.Contains(string(data), a.RunID) {
		t.Errorf("log entry misses run id: %s", data)
	}
}
