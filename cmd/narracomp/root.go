package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ivlev/narracomp/internal/composition"
	"github.com/ivlev/narracomp/internal/config"
	"github.com/ivlev/narracomp/internal/director"
	"github.com/ivlev/narracomp/internal/system"
)

var buildVersion = "dev"

type commandContext struct {
	scenarioFlag *string
	cfg          config.Config

	// probe measures audio assets; replaced in tests.
	probe func(ctx context.Context, path string) (float64, error)

	loadOnce sync.Once
	path     string
	scenario *director.Scenario
	comp     *composition.Composition
	loadErr  error
}

func newCommandContext(scenarioFlag *string) *commandContext {
	cfg := config.Load()
	cfg.BuildVersion = buildVersion
	return &commandContext{
		scenarioFlag: scenarioFlag,
		cfg:          cfg,
		probe:        system.GetAudioDuration,
	}
}

func (c *commandContext) scenarioPath() (string, error) {
	if c.scenarioFlag != nil {
		if p := strings.TrimSpace(*c.scenarioFlag); p != "" {
			return p, nil
		}
	}
	if c.cfg.ScenarioPath != "" {
		return c.cfg.ScenarioPath, nil
	}
	latest, err := director.FindLatestScenario(director.ScenariosDir)
	if err != nil {
		return "", fmt.Errorf("%w; pass --scenario or put a scenario in %s/", err, director.ScenariosDir)
	}
	fmt.Printf("[*] Using scenario: %s\n", latest)
	return latest, nil
}

// load reads the scenario and builds the composition once per invocation.
func (c *commandContext) load() (*director.Scenario, *composition.Composition, error) {
	c.loadOnce.Do(func() {
		c.path, c.loadErr = c.scenarioPath()
		if c.loadErr != nil {
			return
		}
		c.scenario, c.loadErr = director.ReadScenario(c.path)
		if c.loadErr != nil {
			c.loadErr = fmt.Errorf("read scenario %s: %w", c.path, c.loadErr)
			return
		}
		c.comp, c.loadErr = composition.Build(c.scenario)
		if c.loadErr != nil {
			c.loadErr = fmt.Errorf("build %s: %w", c.path, c.loadErr)
		}
	})
	return c.scenario, c.comp, c.loadErr
}

func newRootCommand() *cobra.Command {
	var scenarioFlag string
	ctx := newCommandContext(&scenarioFlag)
	return newRootCommandWith(ctx)
}

func newRootCommandWith(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "narracomp",
		Short:         "Frame-accurate timeline compositor for narrated videos",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(ctx.scenarioFlag, "scenario", "s", "", "Scenario YAML (default: newest file in scenarios/)")

	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newFrameCommand(ctx))
	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newMeasureCommand(ctx))
	rootCmd.AddCommand(newPlanCommand(ctx))

	return rootCmd
}
