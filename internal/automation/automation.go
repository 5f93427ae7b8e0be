package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Batch is a scripted sequence of runs.
type Batch struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []BatchStep `yaml:"steps"`
}

// BatchStep runs one scenario. Zero fields fall back to the scenario preset;
// inline bodies replace the preset's bodies.
type BatchStep struct {
	Scenario   string              `yaml:"scenario"`
	Integrator string              `yaml:"integrator"`
	Dt         float64             `yaml:"dt"`
	Duration   float64             `yaml:"duration"`
	Bodies     []config.BodyConfig `yaml:"bodies"`
	Save       bool                `yaml:"save"`
	StateOut   string              `yaml:"state_out"`
}

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	if len(batch.Steps) == 0 {
		return nil, fmt.Errorf("batch %q has no steps", batch.Name)
	}
	return &batch, nil
}

// Config resolves the step against its preset.
func (s BatchStep) Config() *config.Config {
	cfg := config.GetPreset(s.Scenario)
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.Scenario = s.Scenario
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if len(s.Bodies) > 0 {
		cfg.Bodies = s.Bodies
	}
	return cfg
}

// RunBatch executes every step in order. Steps marked save are written to
// st when it is non-nil. Results of completed steps are returned alongside
// the first error.
func RunBatch(ctx context.Context, batch *Batch, st *storage.Store, logger log.Logger) ([]*experiment.Result, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	results := make([]*experiment.Result, 0, len(batch.Steps))

	for i, step := range batch.Steps {
		level.Info(logger).Log("msg", "batch step", "batch", batch.Name, "step", i+1, "of", len(batch.Steps), "scenario", step.Scenario)

		exp := experiment.New(step.Config(), experiment.WithLogger(logger))
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, res)

		if step.Save && st != nil {
			if _, err := st.Save(res, exp.Simulation()); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		if step.StateOut != "" {
			if err := storage.SaveState(step.StateOut, exp.Simulation().State()); err != nil {
				return results, fmt.Errorf("step %d state: %w", i+1, err)
			}
		}
	}

	return results, nil
}
