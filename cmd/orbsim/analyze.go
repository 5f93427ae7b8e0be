package main

import (
	"fmt"

	"github.com/san-kum/orbsim/internal/analysis"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [scenario]",
		Short: "orbital period, phase portrait and lyapunov exponent of one body",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeScenario,
	}
	addScenarioFlags(cmd)
	f := cmd.Flags()
	f.String("body", "", "body to analyze (default: first non-center body)")
	f.String("center", "", "reference body (default: scenario center)")
	f.Float64("perturbation", 1e3, "initial offset in meters for the lyapunov estimate")
	f.Bool("poincare", false, "plot a poincare section instead of the phase portrait")
	return cmd
}

func analyzeScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}

	center := settings.GetString("center")
	if center == "" {
		center = cfg.Center
	}
	if center == "" {
		return fmt.Errorf("no center body: pass --center")
	}

	exp := experiment.New(cfg.Clone(), experiment.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}
	sim := exp.Simulation()
	initial := sim.Bodies()

	body := settings.GetString("body")
	if body == "" {
		for _, b := range initial {
			if b.Name != center {
				body = b.Name
				break
			}
		}
	}
	if _, ok := sim.Body(body); !ok {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, body)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s about %s (%s, %.0f days)", body, center, cfg.Scenario, cfg.Duration/day)))

	var (
		plot  string
		label string
	)
	if settings.GetBool("poincare") {
		section, err := analysis.GeneratePoincareSection(sim, body, center, cfg.Duration)
		if err != nil {
			return err
		}
		label = fmt.Sprintf("poincare section: %d crossings (x, vx)", len(section.Points))
		plot = analysis.PlotPoints(section.Points, 60, 15)
	} else {
		portrait, err := analysis.GeneratePhasePortrait(sim, body, center, cfg.Duration)
		if err != nil {
			return err
		}
		label = "phase portrait (r, dr/dt)"
		plot = analysis.PlotPoints(portrait.Points, 60, 15)
	}

	// History holds one pre-step position per step, so samples are dt apart.
	bt, _ := sim.Trajectory(body)
	ct, _ := sim.Trajectory(center)
	xs := make([]float64, min(len(bt), len(ct)))
	for i := range xs {
		xs[i] = bt[i].X - ct[i].X
	}
	if p := analysis.DominantPeriod(xs, cfg.Dt); p > 0 {
		fmt.Fprintf(out, "orbital period: %.2f days\n", p/day)
	}

	registry := experiment.NewRegistry()
	model, err := registry.GetModel("gravity")
	if err != nil {
		return err
	}
	newInteg := func() dynamo.Integrator {
		integ, _ := registry.GetIntegrator(cfg.Integrator)
		return integ
	}
	lambda, err := analysis.LyapunovExponent(model, newInteg, initial, body, cfg.Dt, cfg.Duration, settings.GetFloat64("perturbation"))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "lyapunov exponent: %.3e 1/s (e-folding %.1f days)\n", lambda, efold(lambda)/day)

	fmt.Fprintln(out, mutedStyle.Render(label))
	fmt.Fprint(out, plot)
	return nil
}

func efold(lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	return 1 / lambda
}
