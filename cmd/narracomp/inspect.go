package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ivlev/narracomp/internal/composition"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show the frame layout of scenes, cues and emphasis windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, comp, err := ctx.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %dx%d @ %s fps, %d frames (%s)\n",
				comp.ID, comp.Width, comp.Height,
				strconv.FormatFloat(comp.Clock.FPS, 'f', -1, 64),
				comp.Clock.TotalFrames, comp.Clock.Timecode(comp.Clock.TotalFrames))
			fmt.Fprintln(out, sceneTable(comp))
			fmt.Fprintln(out, cueTable(comp))
			if t := emphasisTable(comp); t != "" {
				fmt.Fprintln(out, t)
			}
			for _, w := range comp.Warnings {
				fmt.Fprintf(out, "[!] %s\n", w)
			}
			return nil
		},
	}
}

func sceneTable(c *composition.Composition) string {
	seq := c.Sequencer
	rows := make([][]string, 0, seq.Count())
	for i := 0; i < seq.Count(); i++ {
		sc := seq.Scene(i)
		transition := "-"
		if i < seq.Count()-1 {
			tr := seq.Transition(i)
			transition = fmt.Sprintf("%s (%d)", tr.Style, tr.DurationFrames)
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			sc.ID,
			strconv.Itoa(seq.Start(i)),
			strconv.Itoa(seq.End(i)),
			strconv.Itoa(sc.DurationFrames),
			c.Clock.Timecode(seq.Start(i)),
			transition,
		})
	}
	return renderTable("Scenes",
		[]column{right("#"), left("Scene"), right("Start"), right("End"), right("Frames"), right("Timecode"), left("Transition out")},
		rows)
}

func cueTable(c *composition.Composition) string {
	entries := c.Cues.Entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			strconv.Itoa(e.MountFrame()),
			strconv.Itoa(e.StartFrame),
			strconv.Itoa(e.EndFrame()),
			strconv.Itoa(e.FadeInFrames),
			c.Clock.Timecode(e.StartFrame),
			c.Asset(e.ID),
		})
	}
	return renderTable("Cues",
		[]column{left("Cue"), right("Mount"), right("Start"), right("End"), right("Fade in"), right("Timecode"), left("Asset")},
		rows)
}

func emphasisTable(c *composition.Composition) string {
	var rows [][]string
	seq := c.Sequencer
	for i := 0; i < seq.Count(); i++ {
		hl := c.Highlights(i)
		for _, el := range hl.Elements() {
			for _, w := range hl.Windows(el) {
				rows = append(rows, []string{
					seq.Scene(i).ID,
					el,
					strconv.Itoa(w.StartFrame),
					strconv.Itoa(w.EndFrame),
					strconv.Itoa(seq.Start(i) + w.StartFrame),
				})
			}
		}
	}
	if len(rows) == 0 {
		return ""
	}
	return renderTable("Emphasis",
		[]column{left("Scene"), left("Element"), right("Local start"), right("Local end"), right("Global start")},
		rows)
}
