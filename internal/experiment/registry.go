package experiment

import (
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/integrators"
	"github.com/san-kum/orbsim/internal/metrics"
	"github.com/san-kum/orbsim/internal/physics"
)

type Registry struct {
	models      map[string]func() dynamo.ForceModel
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() dynamo.ForceModel),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.models["gravity"] = func() dynamo.ForceModel { return physics.NewGravity() }

	r.integrators["pc"] = func() dynamo.Integrator { return integrators.NewPredictorCorrector() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVelocityVerlet() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewSemiImplicitEuler() }

	return r
}

func (r *Registry) GetModel(name string) (dynamo.ForceModel, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown force model: %s", name)
	}
	return fn(), nil
}

// GetIntegrator returns a fresh integrator; each carries its own scratch
// memory and must not be shared across simulations.
func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) RegisterIntegrator(name string, fn func() dynamo.Integrator) {
	r.integrators[name] = fn
}

func (r *Registry) ListIntegrators() []string {
	return slices.Sorted(maps.Keys(r.integrators))
}

func (r *Registry) ListScenarios() []string {
	return config.ListPresets()
}

// DefaultMetrics observes energy and angular momentum drift, the energy
// series and, when the run names a center body, every other body's radius
// deviation from it.
func (r *Registry) DefaultMetrics(model dynamo.ForceModel, center string, bodies []*dynamo.Body) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewEnergyDrift(model),
		metrics.NewAngularMomentumDrift(),
		metrics.NewEnergySeries(model),
	}
	if center == "" {
		return ms
	}
	for _, b := range bodies {
		if b.Name != center {
			ms = append(ms, metrics.NewRadiusDeviation(b.Name, center))
		}
	}
	return ms
}
