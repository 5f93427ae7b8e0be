package experiment

import (
	"context"

	"github.com/go-kit/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/orbsim/internal/config"
)

// Compare runs the same scenario once per integrator, concurrently. Every
// run owns its own simulation; results come back in the order of names.
// The first failure cancels the remaining runs.
func Compare(ctx context.Context, cfg *config.Config, names []string, logger log.Logger) ([]*Result, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	reg := NewRegistry()
	results := make([]*Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		run := cfg.Clone()
		run.Integrator = name
		g.Go(func() error {
			exp := New(run, WithRegistry(reg), WithLogger(logger))
			if err := exp.Setup(); err != nil {
				return err
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
