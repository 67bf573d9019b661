package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScenariosDir is where scenarios are looked up when none is given.
const ScenariosDir = "scenarios"

// GenerateScenarioPath creates a timestamped scenario filename in dir
func GenerateScenarioPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("scenario_%s.yaml", timestamp))
}

// FindLatestScenario finds the most recent scenario file in dir
func FindLatestScenario(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var scenarios []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		scenarios = append(scenarios, candidate{path: filepath.Join(dir, name), mod: info.ModTime()})
	}

	if len(scenarios) == 0 {
		return "", fmt.Errorf("no scenario files found in %s", dir)
	}

	// Sort by modification time (newest first)
	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].mod.After(scenarios[j].mod)
	})

	return scenarios[0].path, nil
}

// AssetPath resolves the audio file of a cue id.
func (s *Scenario) AssetPath(id string) string {
	return filepath.Join(s.Audio.Dir, id+s.Audio.Ext)
}

// LayoutCues rewrites cue start times back to back, in cue order, starting at
// Audio.Lead with Audio.Gap of silence after each measured duration. Cues
// without a measurement keep their start and are returned as missing.
func (s *Scenario) LayoutCues(durations map[string]float64) (missing []string) {
	current := s.Audio.Lead
	for i := range s.Cues {
		c := &s.Cues[i]
		d, ok := durations[c.ID]
		if !ok || d <= 0 {
			missing = append(missing, c.ID)
			continue
		}
		c.Start = roundTenth(current)
		c.Duration = d
		current += d + s.Audio.Gap
	}
	return missing
}

// End returns the time after the last laid out cue finishes.
func (s *Scenario) End() float64 {
	end := 0.0
	for _, c := range s.Cues {
		if e := c.Start + c.Duration; e > end {
			end = e
		}
	}
	return end
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
