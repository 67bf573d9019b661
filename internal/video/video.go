// Package video plans the ffmpeg invocation that turns externally rendered
// scene clips and narration cues into the final video. The plan mirrors the
// composition timeline: xfade offsets come from the sequencer's effective
// scene starts and every cue is delayed to its start frame.
package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ivlev/narracomp/internal/composition"
)

// ErrNoScenes is returned for a composition without scenes.
var ErrNoScenes = errors.New("composition has no scenes")

// Options control where clips come from and how the output is encoded.
type Options struct {
	SceneDir string // <SceneDir>/<scene id><SceneExt>
	SceneExt string
	Output   string
	Encoder  string // libx264, h264_nvenc, h264_videotoolbox
	Quality  int
}

// DefaultOptions encodes with libx264 at crf 23.
func DefaultOptions() Options {
	return Options{
		SceneDir: "scenes",
		SceneExt: ".mp4",
		Output:   "output.mp4",
		Encoder:  "libx264",
		Quality:  23,
	}
}

// Segment is one scene clip placed on the output timeline.
type Segment struct {
	SceneID    string
	Input      string
	Offset     float64 // output time where the clip starts
	Frames     int
	Transition string  // xfade name into the next segment, "" for a cut
	Overlap    float64 // seconds shared with the next segment
}

// Cue is one narration asset placed on the output timeline.
type Cue struct {
	ID     string
	Input  string
	Delay  float64
	Length float64
	FadeIn float64
}

// Plan is a complete ffmpeg invocation.
type Plan struct {
	Segments []Segment
	Cues     []Cue
	Filter   string
	Duration float64
	Args     []string
}

// BuildPlan lays out scene clips and cues of c.
func BuildPlan(c *composition.Composition, opts Options) (*Plan, error) {
	seq := c.Sequencer
	if seq == nil || seq.Count() == 0 {
		return nil, ErrNoScenes
	}
	if opts.Encoder == "" {
		opts.Encoder = "libx264"
	}
	clk := c.Clock
	p := &Plan{Duration: clk.Duration()}

	for i := 0; i < seq.Count(); i++ {
		sc := seq.Scene(i)
		seg := Segment{
			SceneID: sc.ID,
			Input:   filepath.Join(opts.SceneDir, sc.ID+opts.SceneExt),
			Offset:  clk.ToSeconds(seq.Start(i)),
			Frames:  sc.DurationFrames,
		}
		if i < seq.Count()-1 {
			if tr := seq.Transition(i); tr.DurationFrames > 0 {
				seg.Transition = tr.Style.XfadeName()
				seg.Overlap = clk.ToSeconds(tr.DurationFrames)
			}
		}
		p.Segments = append(p.Segments, seg)
	}

	for _, e := range c.Cues.Entries() {
		if e.StartFrame >= clk.TotalFrames {
			continue
		}
		length := min(e.EndFrame(), clk.TotalFrames) - e.StartFrame
		p.Cues = append(p.Cues, Cue{
			ID:     e.ID,
			Input:  c.Asset(e.ID),
			Delay:  clk.ToSeconds(e.StartFrame),
			Length: clk.ToSeconds(length),
			FadeIn: clk.ToSeconds(e.FadeInFrames),
		})
	}

	p.Filter = p.filterGraph(clk.FPS)
	p.Args = p.args(clk.FPS, opts)
	return p, nil
}

func (p *Plan) filterGraph(fps float64) string {
	var parts []string

	for i, s := range p.Segments {
		parts = append(parts, fmt.Sprintf("[%d:v]fps=%s,trim=end_frame=%d,setpts=PTS-STARTPTS[s%d]", i, num(fps), s.Frames, i))
	}

	lastOut := "[s0]"
	for i := 1; i < len(p.Segments); i++ {
		prev := p.Segments[i-1]
		outName := fmt.Sprintf("[v%d]", i)
		if prev.Transition == "" {
			parts = append(parts, fmt.Sprintf("%s[s%d]concat=n=2:v=1:a=0%s", lastOut, i, outName))
		} else {
			parts = append(parts, fmt.Sprintf("%s[s%d]xfade=transition=%s:duration=%s:offset=%s%s",
				lastOut, i, prev.Transition, num(prev.Overlap), num(p.Segments[i].Offset), outName))
		}
		lastOut = outName
	}
	parts = append(parts, fmt.Sprintf("%snull[vout]", lastOut))

	base := len(p.Segments)
	var mix strings.Builder
	for k, c := range p.Cues {
		delayMs := int64(c.Delay*1000 + 0.5)
		parts = append(parts, fmt.Sprintf("[%d:a]atrim=end=%s,asetpts=PTS-STARTPTS,%s,adelay=%d:all=1[c%d]",
			base+k, num(c.Length), gainExpr(c.FadeIn), delayMs, k))
		fmt.Fprintf(&mix, "[c%d]", k)
	}
	switch len(p.Cues) {
	case 0:
	case 1:
		parts = append(parts, "[c0]anull[aout]")
	default:
		parts = append(parts, fmt.Sprintf("%samix=inputs=%d:duration=longest:normalize=0[aout]", mix.String(), len(p.Cues)))
	}

	return strings.Join(parts, ";")
}

// gainExpr ramps a cue from silence to full volume over fadeIn seconds of
// its own time, clamped on both sides.
func gainExpr(fadeIn float64) string {
	if fadeIn <= 0 {
		return "volume=1"
	}
	return fmt.Sprintf("volume='min(max(t/%s,0),1)':eval=frame", num(fadeIn))
}

func (p *Plan) args(fps float64, opts Options) []string {
	args := []string{"-y"}
	for _, s := range p.Segments {
		args = append(args, "-i", s.Input)
	}
	for _, c := range p.Cues {
		args = append(args, "-i", c.Input)
	}

	args = append(args, "-filter_complex", p.Filter, "-map", "[vout]")
	if len(p.Cues) > 0 {
		args = append(args, "-map", "[aout]", "-c:a", "aac")
	}

	args = append(args, "-c:v", opts.Encoder, "-pix_fmt", "yuv420p", "-r", num(fps))
	args = append(args, qualityArgs(opts.Encoder, opts.Quality)...)
	args = append(args, "-t", num(p.Duration), opts.Output)
	return args
}

func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no constant quality mode on every version, use bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// Command returns the ffmpeg process for the plan.
func (p *Plan) Command(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, "ffmpeg", p.Args...)
}

// String renders the plan as a shell command line.
func (p *Plan) String() string {
	quoted := make([]string, len(p.Args))
	for i, a := range p.Args {
		if strings.ContainsAny(a, " ;'[]") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return "ffmpeg " + strings.Join(quoted, " ")
}

func num(v float64) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
	if s == "" || s == "-0" {
		return "0"
	}
	return s
}
