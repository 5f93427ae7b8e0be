package main

import (
	"fmt"

	"github.com/san-kum/orbsim/internal/automation"
	"github.com/san-kum/orbsim/internal/optim"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [file]",
		Short: "run a yaml batch of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	st := store()
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunBatch(ctx, batch, st, logger)

	t := newTable("#", "SCENARIO", "INTEGRATOR", "STEPS", "ENERGY DRIFT", "ELAPSED")
	for i, r := range results {
		t.Row(fmt.Sprintf("%d", i+1), r.Scenario, r.Integrator, fmt.Sprintf("%d", r.Steps),
			fmt.Sprintf("%.3e", r.Metrics["energy_drift"]), r.Elapsed.String())
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
	return err
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "run a scenario over a range of time steps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addScenarioFlags(cmd)
	f := cmd.Flags()
	f.Float64("dt-min", 600, "smallest time step")
	f.Float64("dt-max", 86400, "largest time step")
	f.Int("points", 6, "number of time steps")
	f.Bool("log", true, "space time steps geometrically")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	sweep := &automation.DtSweep{
		Base:   base,
		DtMin:  settings.GetFloat64("dt-min"),
		DtMax:  settings.GetFloat64("dt-max"),
		Points: settings.GetInt("points"),
		Log:    settings.GetBool("log"),
	}
	results, err := automation.RunSweep(ctx, sweep, logger)

	t := newTable("DT", "STEPS", "ENERGY DRIFT", "L DRIFT", "MAX RADIUS DEV", "SECONDS")
	for _, r := range results {
		t.Row(fmt.Sprintf("%.6g", r.Dt), fmt.Sprintf("%d", r.Steps),
			fmt.Sprintf("%.3e", r.EnergyDrift), fmt.Sprintf("%.3e", r.AngularDrift),
			fmt.Sprintf("%.3e", r.RadiusDrift), fmt.Sprintf("%.3f", r.ElapsedSeconds))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
	return err
}

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "perturb initial velocities and report which bodies stay bound",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addScenarioFlags(cmd)
	f := cmd.Flags()
	f.Int("trials", 20, "number of perturbed runs")
	f.Float64("sigma", 0.01, "relative velocity noise")
	f.Uint64("seed", 1, "random seed")
	return cmd
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	mc := &automation.MonteCarlo{
		Base:         base,
		Perturbation: settings.GetFloat64("sigma"),
		Trials:       settings.GetInt("trials"),
		Seed:         settings.GetUint64("seed"),
	}
	results, err := automation.RunMonteCarlo(ctx, mc, logger)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	t := newTable("BODY", "BOUND", "MEAN ENERGY DRIFT", "STD")
	for _, name := range sortedKeys(results[0].Bound) {
		frac, mean, std := automation.BoundFraction(results, name)
		t.Row(name, fmt.Sprintf("%.0f%%", frac*100), fmt.Sprintf("%.3e", mean), fmt.Sprintf("%.3e", std))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
	return nil
}

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid search one parameter to minimise a metric",
		Long: `Runs the scenario once per grid value and reports the value with the
smallest metric. Parameters are dt, speed:<body> (velocity scale) and
mass:<body> (mass scale).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTune,
	}
	addScenarioFlags(cmd)
	f := cmd.Flags()
	f.String("param", "speed:Earth", "parameter to vary")
	f.Float64("from", 0.95, "first grid value")
	f.Float64("to", 1.05, "last grid value")
	f.Int("points", 11, "grid size")
	f.String("metric", "radius_deviation:Earth", "metric to minimise")
	return cmd
}

func runTune(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	param := settings.GetString("param")
	grid := optim.Linspace(settings.GetFloat64("from"), settings.GetFloat64("to"), settings.GetInt("points"))
	metric := settings.GetString("metric")

	g := optim.NewGridSearch([]string{param}, [][]float64{grid}, logger)
	best, val, err := g.Search(ctx, base, metric)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "best %s = %.6g (%s %.3e over %d points)\n", param, best[param], metric, val, len(grid))
	return nil
}
