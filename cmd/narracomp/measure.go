package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/narracomp/internal/director"
	"github.com/ivlev/narracomp/internal/system"
)

func newMeasureCommand(ctx *commandContext) *cobra.Command {
	var (
		audioDir string
		outPath  string
		inPlace  bool
	)

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Measure narration assets with ffprobe and lay cues out back to back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, _, err := ctx.load()
			if err != nil {
				return err
			}
			if audioDir == "" {
				audioDir = ctx.cfg.AudioDir
			}
			if audioDir == "" {
				audioDir = scenario.Audio.Dir
			}

			assets, err := system.ListAudio(audioDir)
			if err != nil {
				return err
			}
			if len(scenario.Cues) == 0 {
				for _, id := range system.SortedIDs(assets) {
					scenario.Cues = append(scenario.Cues, director.Cue{ID: id})
				}
			}

			var mu sync.Mutex
			durations := make(map[string]float64, len(scenario.Cues))
			g, gctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(4)
			for _, c := range scenario.Cues {
				path, ok := assets[c.ID]
				if !ok {
					continue
				}
				g.Go(func() error {
					d, err := ctx.probe(gctx, path)
					if err != nil {
						log.Printf("[!] %s: %v", path, err)
						return nil
					}
					mu.Lock()
					durations[c.ID] = d
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			missing := scenario.LayoutCues(durations)
			for _, id := range missing {
				log.Printf("[!] cue %q has no measured asset in %s, start kept", id, audioDir)
			}

			rows := make([][]string, 0, len(scenario.Cues))
			for _, c := range scenario.Cues {
				rows = append(rows, []string{
					c.ID,
					strconv.FormatFloat(c.Start, 'f', 1, 64),
					strconv.FormatFloat(c.Duration, 'f', 2, 64),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("Cue layout",
				[]column{left("Cue"), right("Start (s)"), right("Duration (s)")}, rows))
			fmt.Fprintf(cmd.OutOrStdout(), "[*] Narration ends at %.2fs\n", scenario.End())

			switch {
			case outPath != "":
			case inPlace:
				outPath = ctx.path
			default:
				outPath = director.GenerateScenarioPath(filepath.Dir(ctx.path))
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return err
			}
			if err := director.WriteScenario(scenario, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Scenario saved: %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioDir, "audio-dir", "", "Directory with cue assets (default: scenario audio.dir)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the updated scenario here (default: new timestamped file)")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Overwrite the input scenario")
	return cmd
}
