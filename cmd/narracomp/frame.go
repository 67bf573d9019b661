package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFrameCommand(ctx *commandContext) *cobra.Command {
	var seconds float64

	cmd := &cobra.Command{
		Use:   "frame [N]",
		Short: "Print the render state of one frame as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, comp, err := ctx.load()
			if err != nil {
				return err
			}

			var frame int
			switch {
			case len(args) == 1:
				if frame, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("frame must be an integer: %w", err)
				}
			case cmd.Flags().Changed("time"):
				frame = comp.Clock.ToFrame(seconds)
			default:
				return fmt.Errorf("give a frame number or --time")
			}

			data, err := json.MarshalIndent(comp.Frame(frame), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().Float64VarP(&seconds, "time", "t", 0, "Select the frame by time in seconds")
	return cmd
}
