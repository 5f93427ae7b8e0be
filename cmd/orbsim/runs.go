package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/export"
	"github.com/san-kum/orbsim/internal/storage"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func store() *storage.Store {
	return storage.New(settings.GetString("data"), logger)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store().List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}

	t := newTable("ID", "SCENARIO", "TIME", "DAYS", "DT", "INTEG", "BODIES", "ENERGY DRIFT")
	for _, run := range runs {
		t.Row(run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.1f", run.Duration/day),
			fmt.Sprintf("%gs", run.Dt),
			run.Integrator,
			fmt.Sprintf("%d", len(run.Bodies)),
			fmt.Sprintf("%.3e", run.Metrics["energy_drift"]))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
	return nil
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and separations of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().String("center", "", "plot each body's distance from this body")
	return cmd
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scenario: %s  integrator: %s  steps: %d\n\n", meta.Scenario, meta.Integrator, meta.Steps)

	_, energy, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	if len(energy) > 1 {
		fmt.Fprintln(out, energyPlot(energy))
		fmt.Fprintln(out)
	}

	center := settings.GetString("center")
	if center == "" {
		return nil
	}
	paths, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	ref, ok := paths[center]
	if !ok {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, center)
	}
	for _, name := range meta.Bodies {
		if name == center {
			continue
		}
		dist := separations(paths[name], ref)
		if len(dist) < 2 {
			continue
		}
		graph := asciigraph.Plot(dist,
			asciigraph.Height(8),
			asciigraph.Width(72),
			asciigraph.Caption(fmt.Sprintf("%s distance from %s (AU), min %.4f max %.4f",
				name, center, floats.Min(dist), floats.Max(dist))))
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
	return nil
}

// separations is |a[i]-b[i]| in AU over the samples both paths share.
func separations(a, b []r3.Vec) []float64 {
	const au = 1.495978707e11
	n := min(len(a), len(b))
	out := make([]float64, n)
	for i := range out {
		out[i] = r3.Norm(r3.Sub(a[i], b[i])) / au
	}
	return out
}

// output opens path for writing, or returns stdout when path is empty.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run summary to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	return cmd
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, energy, err := st.LoadEnergy(runID)
	if err != nil {
		return err
	}
	final, err := st.LoadFinalState(runID)
	if err != nil {
		return err
	}

	res := &experiment.Result{
		Scenario:   meta.Scenario,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Steps:      meta.Steps,
		Time:       final.Time,
		Metrics:    meta.Metrics,
		EnergyTime: times,
		Energy:     energy,
	}

	w, closeFn, err := output(cmd, settings.GetString("output"))
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, res, final); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func newExportStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-state [run_id] [file]",
		Short: "write the final state of a saved run (.json, .yaml)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := store().LoadFinalState(args[0])
			if err != nil {
				return err
			}
			if err := storage.SaveState(args[1], rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bodies, t=%.2f days)\n", args[1], len(rec.Bodies), rec.Time/day)
			return nil
		},
	}
}

func newExportSVGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the trajectories of a saved run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().Int("size", 800, "image size in pixels")
	return cmd
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store()
	paths, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	final, err := st.LoadFinalState(runID)
	if err != nil {
		return err
	}

	w, closeFn, err := output(cmd, settings.GetString("output"))
	if err != nil {
		return err
	}
	if err := export.WriteTrajectoriesSVG(w, export.TracksFromRecord(paths, final), settings.GetInt("size")); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}
