package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/narracomp/internal/engine"
	"github.com/ivlev/narracomp/internal/preview"
	"github.com/ivlev/narracomp/internal/system"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		from, to, every int
		outDir          string
		noSheet         bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Evaluate a frame range in parallel into preview PNGs and a contact sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, comp, err := ctx.load()
			if err != nil {
				return err
			}
			cfg := ctx.cfg
			if cmd.Flags().Changed("workers") {
				cfg.Workers, _ = cmd.Flags().GetInt("workers")
			}
			if cmd.Flags().Changed("qr") {
				cfg.QRStamp, _ = cmd.Flags().GetBool("qr")
			}
			if cmd.Flags().Changed("stats") {
				cfg.ShowStats, _ = cmd.Flags().GetBool("stats")
			}
			if every <= 0 {
				every = cfg.PreviewEvery
			}
			if outDir == "" {
				timestamp := time.Now().Format("2006-01-02_15-04-05")
				outDir = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s", comp.ID, timestamp))
			}
			cfg.OutputDir = outDir

			system.InitResourceLimits()
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}

			width := max(cfg.PreviewWidth, 16)
			height := width * comp.Height / max(comp.Width, 1)
			height += height % 2
			r := preview.NewRenderer(comp.ID, width, height, system.NewImagePool())
			r.QR = cfg.QRStamp
			if cfg.BackdropDir != "" {
				if r.Backdrops, err = preview.LoadBackdrops(cfg.BackdropDir, width, height); err != nil {
					log.Printf("[!] backdrops from %s not loaded: %v", cfg.BackdropDir, err)
				}
			}

			sink := &preview.PNGSink{Dir: outDir, Renderer: r}
			if !noSheet {
				sink.Sheet = preview.NewContactSheet(cfg.ThumbWidth, cfg.SheetColumns)
			}

			project := engine.NewProject(cfg, comp, sink)
			stats, err := project.Run(cmd.Context(), engine.Range{From: from, To: to, Step: every})
			if err != nil {
				return err
			}

			if sink.Sheet != nil {
				sheetPath := filepath.Join(outDir, "contact_sheet.png")
				if err := sink.Sheet.Save(sheetPath); err != nil {
					return err
				}
				fmt.Printf("[*] Contact sheet: %s\n", sheetPath)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+++] %d frames written to %s in %.2fs (run %s)\n",
				stats.Frames, outDir, stats.Elapsed.Seconds(), stats.RunID)
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "First frame")
	cmd.Flags().IntVar(&to, "to", 0, "Stop before this frame (0 = end of composition)")
	cmd.Flags().IntVar(&every, "every", 0, "Write every Nth frame (default from config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: output/<composition>_<timestamp>)")
	cmd.Flags().Int("workers", 0, "Parallel workers (0 = from CPUs and memory)")
	cmd.Flags().Bool("qr", true, "Stamp a QR code with the frame id")
	cmd.Flags().Bool("stats", false, "Print a performance report")
	cmd.Flags().BoolVar(&noSheet, "no-sheet", false, "Skip the contact sheet")
	return cmd
}
