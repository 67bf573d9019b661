package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ivlev/narracomp/internal/system"
	"github.com/ivlev/narracomp/internal/video"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	opts := video.DefaultOptions()
	var run bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the ffmpeg invocation that assembles scene clips and narration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, comp, err := ctx.load()
			if err != nil {
				return err
			}
			if opts.Encoder == "auto" {
				opts.Encoder = system.GetBestH264Encoder(cmd.Context())
				fmt.Printf("[*] Encoder: %s\n", opts.Encoder)
			}

			plan, err := video.BuildPlan(comp, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(plan.Segments))
			for _, s := range plan.Segments {
				transition := "cut"
				if s.Transition != "" {
					transition = fmt.Sprintf("%s %.2fs", s.Transition, s.Overlap)
				}
				rows = append(rows, []string{s.SceneID, s.Input, strconv.FormatFloat(s.Offset, 'f', 3, 64), strconv.Itoa(s.Frames), transition})
			}
			fmt.Fprintln(out, renderTable("Segments",
				[]column{left("Scene"), left("Input"), right("Offset (s)"), right("Frames"), left("Into next")}, rows))
			fmt.Fprintln(out, plan.String())

			if !run {
				return nil
			}
			fmt.Printf("[>] Running ffmpeg for %s...\n", opts.Output)
			c := plan.Command(cmd.Context())
			c.Stdout, c.Stderr = os.Stdout, os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("ffmpeg: %w", err)
			}
			fmt.Fprintf(out, "[+++] Video saved: %s\n", opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.SceneDir, "scene-dir", opts.SceneDir, "Directory with rendered scene clips named <scene id><ext>")
	cmd.Flags().StringVar(&opts.SceneExt, "scene-ext", opts.SceneExt, "Scene clip extension")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", opts.Output, "Final video path")
	cmd.Flags().StringVar(&opts.Encoder, "encoder", opts.Encoder, "libx264, h264_nvenc, h264_videotoolbox or auto")
	cmd.Flags().IntVar(&opts.Quality, "quality", opts.Quality, "x264/NVENC: CRF/CQ, VideoToolbox: bitrate = Q*100 kbit/s")
	cmd.Flags().BoolVar(&run, "run", false, "Execute ffmpeg instead of only printing the command")
	return cmd
}
