package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/setanarut/impulse/internal/config"
	"github.com/setanarut/impulse/internal/scenario"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	dt         float64
	steps      int
	iterations int
	plot       bool
	debug      bool
	broadPhase string
	outFile    string
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("impulse: ")

	rootCmd := &cobra.Command{
		Use:           "impulse",
		Short:         "2D rigid-body physics playground",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and print a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().IntVar(&iterations, "iterations", 10, "solver iterations per step")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot height and energy traces")
	runCmd.Flags().BoolVar(&debug, "debug", false, "log constraint and body lifecycle")
	runCmd.Flags().StringVar(&broadPhase, "broadphase", config.BroadPhaseSweep, "broad phase: sweep or tree")

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "write a default config file",
		RunE:  initConfig,
	}
	configInitCmd.Flags().StringVarP(&outFile, "out", "o", "impulse.yaml", "output path")
	configInitCmd.Flags().StringVar(&preset, "preset", "", "start from a preset (scenario/name)")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// resolveConfig merges, in increasing priority: defaults, the config file,
// the preset, the scenario argument and explicitly set flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	name := cfg.Scenario
	if len(args) > 0 {
		name = args[0]
	}
	if preset != "" {
		scen, p := name, preset
		if before, after, ok := strings.Cut(preset, "/"); ok {
			scen, p = before, after
		}
		pc := config.GetPreset(scen, p)
		if pc == nil {
			return nil, fmt.Errorf("unknown preset %q for scenario %q", p, scen)
		}
		cfg = pc
		name = scen
	}
	cfg.Scenario = name

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Solver.Iterations = iterations
	}
	if cmd.Flags().Changed("debug") {
		cfg.Solver.Debug = debug
	}
	if cmd.Flags().Changed("broadphase") {
		cfg.BroadPhase = broadPhase
	}
	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(dimStyle.Render(fmt.Sprintf("running %s for %d steps...", cfg.Scenario, cfg.Steps)))
	start := time.Now()
	trace, err := scenario.Run(ctx, cfg)
	if err != nil && trace == nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(summary(cfg, trace, elapsed))
	if plot && len(trace.Samples) > 1 {
		printPlot(trace.Heights(), "height of tracked body")
		printPlot(trace.Energies(), "kinetic energy")
	}
	return err
}

func summary(cfg *config.Config, trace *scenario.Trace, elapsed time.Duration) string {
	last := trace.Last()
	rows := [][2]string{
		{"scenario", cfg.Scenario},
		{"steps", fmt.Sprintf("%d x %.4gs", trace.StepsTaken, cfg.Dt)},
		{"iterations", fmt.Sprint(cfg.Solver.Iterations)},
		{"broad phase", cfg.BroadPhase},
		{"friction rule", cfg.Solver.FrictionRule.String()},
		{"elapsed", elapsed.Round(time.Microsecond).String()},
		{"final pos", fmt.Sprintf("(%.3f, %.3f)", last.X, last.Y)},
		{"final speed", fmt.Sprintf("%.4f", last.Speed)},
		{"rotation", fmt.Sprintf("%.3f rad", last.Angle)},
		{"energy", fmt.Sprintf("%.4f", last.Energy)},
		{"collisions", fmt.Sprint(trace.Collisions)},
		{"separations", fmt.Sprint(trace.Separations)},
		{"breaks", fmt.Sprint(trace.Breaks)},
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("impulse " + cfg.Scenario))
	b.WriteString("\n")
	for i, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(valueStyle.Render(r[1]))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return boxStyle.Render(b.String())
}

func printPlot(data []float64, caption string) {
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenarios := config.ListScenarios()
	if len(args) > 0 {
		scenarios = []string{args[0]}
	}
	for _, s := range scenarios {
		names := config.ListPresets(s)
		if names == nil {
			return fmt.Errorf("no presets for scenario %q", s)
		}
		fmt.Println(headerStyle.Render(s))
		for _, n := range names {
			p := config.GetPreset(s, n)
			fmt.Printf("  %s %s\n", labelStyle.Render(n), dimStyle.Render(fmt.Sprintf("%d steps, e=%.2f, mu=%.2f",
				p.Steps, p.Scene.Restitution, p.Scene.Friction)))
		}
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		scen, name, ok := strings.Cut(preset, "/")
		if !ok {
			return fmt.Errorf("preset must be scenario/name, got %q", preset)
		}
		cfg = config.GetPreset(scen, name)
		if cfg == nil {
			return fmt.Errorf("unknown preset %q", preset)
		}
	}
	if err := config.Save(outFile, cfg); err != nil {
		return err
	}
	fmt.Println(dimStyle.Render("wrote " + outFile))
	return nil
}
