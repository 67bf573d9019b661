package video

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ivlev/narracomp/internal/composition"
	"github.com/ivlev/narracomp/internal/director"
)

func testComposition(t *testing.T) *composition.Composition {
	t.Helper()
	s := &director.Scenario{
		Composition: director.Composition{ID: "video", FPS: 30},
		Scenes: []director.Scene{
			{ID: "opening", Duration: 10, Transition: &director.Transition{Style: "fade", Duration: 0.5}},
			{ID: "intro", Duration: 10, Transition: &director.Transition{Style: "slide:from-right", Duration: 0}},
			{ID: "outro", Duration: 5},
		},
		Cues: []director.Cue{
			{ID: "opening-1", Start: 0.5, FadeIn: 0.2},
			{ID: "intro-1", Start: 18, MaxDuration: 4},
			{ID: "late", Start: 60},
		},
	}
	s.ApplyDefaults()
	c, err := composition.Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return c
}

func TestBuildPlanSegments(t *testing.T) {
	c := testComposition(t)
	p, err := BuildPlan(c, DefaultOptions())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	// 300 + 300 + 150 - 15
	if p.Duration != 24.5 {
		t.Errorf("Duration = %f, want 24.5", p.Duration)
	}
	want := []Segment{
		{SceneID: "opening", Input: filepath.Join("scenes", "opening.mp4"), Offset: 0, Frames: 300, Transition: "fade", Overlap: 0.5},
		{SceneID: "intro", Input: filepath.Join("scenes", "intro.mp4"), Offset: 9.5, Frames: 300},
		{SceneID: "outro", Input: filepath.Join("scenes", "outro.mp4"), Offset: 19.5, Frames: 150},
	}
	if !slices.Equal(p.Segments, want) {
		t.Errorf("Segments = %+v\nwant %+v", p.Segments, want)
	}
}

func TestBuildPlanCues(t *testing.T) {
	c := testComposition(t)
	p, err := BuildPlan(c, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Cues) != 2 {
		t.Fatalf("cues = %+v, the cue past the end should be dropped", p.Cues)
	}
	first, second := p.Cues[0], p.Cues[1]
	if first.ID != "opening-1" || first.Delay != 0.5 || first.Length != 15 || first.FadeIn != 0.2 {
		t.Errorf("first cue = %+v", first)
	}
	if first.Input != filepath.Join("audio", "opening-1.mp3") {
		t.Errorf("first cue input = %s", first.Input)
	}
	// intro-1 would run to 22s but stays within the 24.5s timeline
	if second.Delay != 18 || second.Length != 4 {
		t.Errorf("second cue = %+v", second)
	}
}

func TestFilterGraph(t *testing.T) {
	c := testComposition(t)
	p, err := BuildPlan(c, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	for _, part := range []string{
		"[0:v]fps=30,trim=end_frame=300,setpts=PTS-STARTPTS[s0]",
		"[s0][s1]xfade=transition=fade:duration=0.5:offset=9.5[v1]",
		"[v1][s2]concat=n=2:v=1:a=0[v2]",
		"[v2]null[vout]",
		"[3:a]atrim=end=15,asetpts=PTS-STARTPTS,volume='min(max(t/0.2,0),1)':eval=frame,adelay=500:all=1[c0]",
		"[4:a]atrim=end=4,asetpts=PTS-STARTPTS,volume=1,adelay=18000:all=1[c1]",
		"[c0][c1]amix=inputs=2:duration=longest:normalize=0[aout]",
	} {
		if !strings.Contains(p.Filter, part) {
			t.Errorf("filter graph misses %q\n%s", part, p.Filter)
		}
	}
}

func TestArgs(t *testing.T) {
	c := testComposition(t)
	opts := DefaultOptions()
	opts.Output = "out/final.mp4"
	p, err := BuildPlan(c, opts)
	if err != nil {
		t.Fatal(err)
	}

	if p.Args[0] != "-y" || p.Args[len(p.Args)-1] != "out/final.mp4" {
		t.Errorf("args = %v", p.Args)
	}
	inputs := 0
	for i, a := range p.Args {
		if a == "-i" {
			inputs++
			if i+1 >= len(p.Args) {
				t.Fatal("dangling -i")
			}
		}
	}
	if inputs != 5 {
		t.Errorf("%d inputs, want 3 scenes + 2 cues", inputs)
	}
	joined := strings.Join(p.Args, " ")
	for _, want := range []string{"-map [vout]", "-map [aout]", "-c:v libx264", "-crf 23", "-t 24.5"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args miss %q: %s", want, joined)
		}
	}

	cmd := p.Command(context.Background())
	if filepath.Base(cmd.Path) != "ffmpeg" && !strings.HasSuffix(cmd.Path, "ffmpeg") {
		t.Errorf("command path = %s", cmd.Path)
	}
	if !strings.HasPrefix(p.String(), "ffmpeg -y -i ") {
		t.Errorf("String() = %s", p.String())
	}
}

func TestQualityArgs(t *testing.T) {
	tests := []struct {
		encoder string
		want    []string
	}{
		{"h264_videotoolbox", []string{"-b:v", "7500k"}},
		{"h264_nvenc", []string{"-cq", "75"}},
		{"libx264", []string{"-crf", "75", "-preset", "medium"}},
	}
	for _, tt := range tests {
		if got := qualityArgs(tt.encoder, 75); !slices.Equal(got, tt.want) {
			t.Errorf("qualityArgs(%s) = %v, want %v", tt.encoder, got, tt.want)
		}
	}
}

func TestSingleCueAndNoCues(t *testing.T) {
	s := &director.Scenario{
		Composition: director.Composition{ID: "one", FPS: 25},
		Scenes:      []director.Scene{{ID: "only", Duration: 4}},
		Cues:        []director.Cue{{ID: "only-1", Start: 1}},
	}
	s.ApplyDefaults()
	c, err := composition.Build(s)
	if err != nil {
		t.Fatal(err)
	}
	p, err := BuildPlan(c, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.Filter, "[c0]anull[aout]") || strings.Contains(p.Filter, "amix") {
		t.Errorf("single cue graph = %s", p.Filter)
	}
	if !strings.Contains(p.Filter, "[s0]null[vout]") {
		t.Errorf("single scene graph = %s", p.Filter)
	}

	s.Cues = nil
	c, err = composition.Build(s)
	if err != nil {
		t.Fatal(err)
	}
	p, err = BuildPlan(c, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(p.Filter, "aout") || slices.Contains(p.Args, "[aout]") {
		t.Errorf("no cues should mean no audio output: %v", p.Args)
	}
}

func TestBuildPlanEmpty(t *testing.T) {
	if _, err := BuildPlan(&composition.Composition{}, DefaultOptions()); !errors.Is(err, ErrNoScenes) {
		t.Errorf("err = %v, want ErrNoScenes", err)
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{0: "0", 0.5: "0.5", 30: "30", 29.97: "29.97", 1.0 / 3: "0.333333"}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %s, want %s", in, got, want)
		}
	}
}
