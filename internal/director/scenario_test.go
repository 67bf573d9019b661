package director

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/narracomp/internal/animation"
)

const sampleYAML = `
version: "1.0"
composition:
  id: PythonGitTutorial
  fps: 30
scenes:
  - id: opening
    duration: 22
    emphasis:
      - element: file-1
        start: 3.8
        end: 5.3
  - id: intro
    duration: 21
    transition:
      style: slide:from-right
      duration: 0.5
  - id: outro
    duration: 18
cues:
  - id: opening-1
    start: 0.5
  - id: intro-1
    start: 22.4
    fade_in: 0.2
`

func TestParseScenarioDefaults(t *testing.T) {
	s, err := ParseScenario([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseScenario failed: %v", err)
	}

	if s.Composition.Width != DefaultWidth || s.Composition.Height != DefaultHeight {
		t.Errorf("expected default dimensions, got %dx%d", s.Composition.Width, s.Composition.Height)
	}
	if s.Audio.MaxDuration != DefaultAudioMaxDuration {
		t.Errorf("MaxDuration = %f", s.Audio.MaxDuration)
	}
	if s.Audio.Premount != DefaultPremount {
		t.Errorf("Premount = %f", s.Audio.Premount)
	}
	if tr := s.Scenes[0].Transition; tr == nil || tr.Style != "fade" || tr.Duration != DefaultTransitionDuration {
		t.Errorf("first scene should get the default transition, got %+v", tr)
	}
	if s.Scenes[2].Transition != nil {
		t.Error("last scene should not get a transition")
	}
	if e := s.Scenes[0].Emphasis[0]; e.PulseSpeed != DefaultPulseSpeed || e.Intensity != DefaultIntensity {
		t.Errorf("emphasis defaults not applied: %+v", e)
	}
	if s.Spring("bouncy") != animation.BouncySpring {
		t.Errorf("bouncy preset = %+v", s.Spring("bouncy"))
	}
	if s.Spring("missing") != animation.DefaultSpring {
		t.Error("unknown preset should fall back to the default spring")
	}
	if got := s.AssetPath("intro-1"); got != filepath.Join("audio", "intro-1.mp3") {
		t.Errorf("AssetPath = %s", got)
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no scenes", "version: '1'\n", "no scenes"},
		{"duplicate", "scenes:\n  - {id: a, duration: 1}\n  - {id: a, duration: 1}\n", "duplicate"},
		{"bad style", "scenes:\n  - {id: a, duration: 1, transition: {style: wipe, duration: 0.1}}\n  - {id: b, duration: 1}\n", "transition"},
		{"cue id", "scenes:\n  - {id: a, duration: 1}\ncues:\n  - {start: 1}\n", "cue 0"},
		{"spring", "springs:\n  default: {stiffness: 10000, damping: -100}\nscenes:\n  - {id: a, duration: 1}\n", "invalid spring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestScenarioWriteRead(t *testing.T) {
	scenario, err := ParseScenario([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	tmpFile := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := WriteScenario(scenario, tmpFile); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	readScenario, err := ReadScenario(tmpFile)
	if err != nil {
		t.Fatalf("ReadScenario failed: %v", err)
	}

	if readScenario.Composition.ID != scenario.Composition.ID {
		t.Errorf("ID mismatch: expected %s, got %s", scenario.Composition.ID, readScenario.Composition.ID)
	}
	if len(readScenario.Scenes) != len(scenario.Scenes) || len(readScenario.Cues) != len(scenario.Cues) {
		t.Errorf("Scene/cue count mismatch after round trip")
	}
	if readScenario.Scenes[1].Transition.Style != "slide:from-right" {
		t.Errorf("transition style lost: %+v", readScenario.Scenes[1].Transition)
	}
}
