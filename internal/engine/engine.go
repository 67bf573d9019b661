// Package engine evaluates frame ranges of a composition in parallel and
// hands every render state to a FrameSink.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/narracomp/internal/composition"
	"github.com/ivlev/narracomp/internal/config"
	"github.com/ivlev/narracomp/internal/system"
)

// ErrEmptyRange is returned when a range selects no frames.
var ErrEmptyRange = errors.New("empty frame range")

// FrameSink consumes render states. WriteFrame is called concurrently and in
// no particular order.
type FrameSink interface {
	WriteFrame(ctx context.Context, st composition.RenderState) error
}

// SinkFunc adapts a function to FrameSink.
type SinkFunc func(ctx context.Context, st composition.RenderState) error

func (f SinkFunc) WriteFrame(ctx context.Context, st composition.RenderState) error {
	return f(ctx, st)
}

// Range selects frames From, From+Step, ... below To. To <= 0 means the end
// of the composition.
type Range struct {
	From int
	To   int
	Step int
}

// Frames resolves the range against a timeline of total frames.
func (r Range) Frames(total int) ([]int, error) {
	from, to, step := max(r.From, 0), r.To, r.Step
	if to <= 0 || to > total {
		to = total
	}
	if step < 1 {
		step = 1
	}
	if from >= to {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrEmptyRange, r.From, r.To, total)
	}
	frames := make([]int, 0, (to-from+step-1)/step)
	for f := from; f < to; f += step {
		frames = append(frames, f)
	}
	return frames, nil
}

// Stats describes one finished run.
type Stats struct {
	RunID   string
	Frames  int
	Workers int
	Elapsed time.Duration
}

// FPS is the evaluation throughput.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

type Project struct {
	Config      config.Config
	Composition *composition.Composition
	Sink        FrameSink
	RunID       string
}

func NewProject(cfg config.Config, comp *composition.Composition, sink FrameSink) *Project {
	return &Project{
		Config:      cfg,
		Composition: comp,
		Sink:        sink,
		RunID:       uuid.NewString(),
	}
}

func (p *Project) workers(frames int) int {
	n := p.Config.Workers
	if n <= 0 {
		n = system.RecommendedWorkers(uint64(p.Composition.Width) * uint64(p.Composition.Height) * 4)
	}
	return max(min(n, frames), 1)
}

// Run evaluates every frame of r and writes it to the sink. The first sink
// error cancels the remaining work and is returned.
func (p *Project) Run(ctx context.Context, r Range) (Stats, error) {
	startTime := time.Now()

	frames, err := r.Frames(p.Composition.Clock.TotalFrames)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{RunID: p.RunID, Workers: p.workers(len(frames))}

	fmt.Printf("[*] Run %s: %s | %d frames | %d workers\n", p.RunID, p.Composition.ID, len(frames), stats.Workers)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stats.Workers)
	for _, f := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.Sink.WriteFrame(gctx, p.Composition.Frame(f)); err != nil {
				return fmt.Errorf("frame %d: %w", f, err)
			}
			done.Add(1)
			return nil
		})
	}
	err = g.Wait()

	stats.Frames = int(done.Load())
	stats.Elapsed = time.Since(startTime)
	if err != nil {
		return stats, err
	}

	if p.Config.ShowStats {
		p.report(stats)
	}
	return stats, nil
}

func (p *Project) report(s Stats) {
	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Run: %s\n"+
			"Frames: %d\n"+
			"Workers: %d\n"+
			"Total Time: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, s.RunID, s.Frames, s.Workers, s.Elapsed.Seconds(), s.FPS(),
	)

	logEntry := fmt.Sprintf("[%s] Build: %s | Run: %s | Composition: %s | Frames: %d | Workers: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		s.RunID,
		p.Composition.ID,
		s.Frames,
		s.Workers,
		s.Elapsed.Seconds(),
		s.FPS(),
	)

	path := filepath.Join(p.Config.OutputDir, "benchmark.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("[!] cannot write %s: %v\n", path, err)
		return
	}
	defer f.Close()
	f.WriteString(logEntry)
}
