package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/storage"
	"github.com/san-kum/orbsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tableBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// addScenarioFlags registers the flags every simulating command shares.
func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "scenario file (yaml); overrides the preset argument")
	f.Float64("dt", config.DefaultDt, "time step in seconds")
	f.Float64("days", 0, "simulated duration in days (default: scenario duration)")
	f.String("integrator", config.DefaultIntegrator, "integrator: pc, verlet, euler")
	f.Int("history", 0, "trajectory entries kept per body (0 keeps all)")
}

// resolveConfig picks the scenario from --config or the preset argument and
// applies explicitly set flags or ORBSIM_* variables on top.
func resolveConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	if path := settings.GetString("config"); path != "" {
		c, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	} else {
		name := config.DefaultScenario
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown scenario: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
		}
	}

	if settings.IsSet("dt") {
		cfg.Dt = settings.GetFloat64("dt")
	}
	if settings.IsSet("days") {
		cfg.Duration = settings.GetFloat64("days") * day
	}
	if settings.IsSet("integrator") {
		cfg.Integrator = settings.GetString("integrator")
	}
	if settings.IsSet("history") {
		cfg.HistoryLimit = settings.GetInt("history")
	}
	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(cmd)
	cmd.Flags().Bool("save", true, "save the run to the data directory")
	cmd.Flags().String("state-out", "", "write the final state to this file (.json, .yaml)")
	cmd.Flags().Bool("plot", false, "plot relative energy after the run")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s / %s", res.Scenario, res.Integrator)))
	fmt.Fprintf(out, "steps: %d  simulated: %.2f days  elapsed: %v\n", res.Steps, res.Time/day, res.Elapsed)
	printMetrics(cmd, res.Metrics)

	if settings.GetBool("save") {
		st := storage.New(settings.GetString("data"), logger)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(res, exp.Simulation())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run id: %s\n", runID)
	}
	if path := settings.GetString("state-out"); path != "" {
		if err := storage.SaveState(path, exp.Simulation().State()); err != nil {
			return err
		}
		fmt.Fprintf(out, "state: %s\n", path)
	}
	if settings.GetBool("plot") && len(res.Energy) > 1 {
		fmt.Fprintln(out, energyPlot(res.Energy))
	}
	return nil
}

func printMetrics(cmd *cobra.Command, m map[string]float64) {
	t := newTable("METRIC", "VALUE")
	for _, name := range sortedKeys(m) {
		t.Row(name, fmt.Sprintf("%.6g", m[name]))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a simulation with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(cmd)
	cmd.Flags().Int("every", 6, "steps between frames")
	cmd.Flags().String("theme", "", "color theme: "+strings.Join(viz.ThemeNames(), ", "))
	return cmd
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}
	// The view owns the terminal; keep the log quiet while it runs.
	exp := experiment.New(cfg, experiment.WithLogger(log.NewNopLogger()))
	if err := exp.Setup(); err != nil {
		return err
	}
	title := cfg.Scenario
	if title == "" {
		title = "custom"
	}
	return viz.RunLive(context.Background(), exp.Simulation(), title, cfg.Duration,
		settings.GetInt("every"), settings.GetString("theme"))
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [scenario] [integrator...]",
		Short: "run one scenario under several integrators concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(cmd)
	return cmd
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args[:1])
	if err != nil {
		return err
	}
	names := args[1:]
	if len(names) == 0 {
		names = experiment.NewRegistry().ListIntegrators()
	}

	ctx, cancel := signalContext()
	defer cancel()
	level.Info(logger).Log("msg", "comparing", "scenario", cfg.Scenario, "integrators", strings.Join(names, ","))

	results, err := experiment.Compare(ctx, cfg, names, logger)
	if err != nil {
		return err
	}

	t := newTable("INTEGRATOR", "STEPS", "ENERGY DRIFT", "L DRIFT", "MAX RADIUS DEV", "ELAPSED")
	for _, r := range results {
		t.Row(r.Integrator,
			fmt.Sprintf("%d", r.Steps),
			fmt.Sprintf("%.3e", r.Metrics["energy_drift"]),
			fmt.Sprintf("%.3e", r.Metrics["angular_momentum_drift"]),
			fmt.Sprintf("%.3e", maxRadiusDeviation(r.Metrics)),
			r.Elapsed.String())
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
	return nil
}

func maxRadiusDeviation(m map[string]float64) float64 {
	var out float64
	for name, v := range m {
		if strings.HasPrefix(name, "radius_deviation:") && v > out {
			out = v
		}
	}
	return out
}

func energyPlot(energy []float64) string {
	rel := make([]float64, len(energy))
	for i, e := range energy {
		if energy[0] != 0 {
			rel[i] = (e - energy[0]) / energy[0]
		}
	}
	return asciigraph.Plot(rel,
		asciigraph.Height(10),
		asciigraph.Width(72),
		asciigraph.Caption("relative energy change"))
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable("NAME", "BODIES", "CENTER", "DT", "DAYS", "DESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				t.Row(name,
					fmt.Sprintf("%d", len(p.Bodies)),
					p.Center,
					fmt.Sprintf("%g", p.Dt),
					fmt.Sprintf("%g", p.Duration/day),
					mutedStyle.Render(p.Description))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
