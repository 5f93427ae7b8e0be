package dynamo_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/integrators"
	"github.com/san-kum/orbsim/internal/metrics"
	"github.com/san-kum/orbsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	au      = 1.496e11
	sunMass = 1.989e30
	hour    = 3600.0
	year    = 8760 * hour
)

func mustBody(name string, mass float64, pos, vel []float64) *dynamo.Body {
	b, err := dynamo.NewBody(name, mass, pos, vel)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func relChange(now, then float64) float64 {
	return math.Abs(now-then) / math.Abs(then)
}

var _ = Describe("Simulation", func() {
	var model *physics.Gravity

	BeforeEach(func() {
		model = physics.NewGravity()
	})

	Context("Sun and Earth at dt = 1 h", func() {
		var (
			sim    *dynamo.Simulation
			radius *metrics.RadiusDeviation
		)

		BeforeEach(func() {
			bodies := []*dynamo.Body{
				mustBody("Sun", sunMass, []float64{0, 0, 0}, []float64{0, 0, 0}),
				mustBody("Earth", 5.972e24, []float64{au, 0, 0}, []float64{0, physics.CircularSpeed(sunMass, au), 0}),
			}
			radius = metrics.NewRadiusDeviation("Earth", "Sun")
			var err error
			sim, err = dynamo.New(model, integrators.NewPredictorCorrector(), hour, bodies, dynamo.WithMetrics(radius))
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps a circular orbit near its radius for a year", func() {
			e0 := metrics.TotalEnergy(model, sim.Bodies())
			l0 := r3.Norm(metrics.TotalAngularMomentum(sim.Bodies()))

			n, err := sim.Run(year)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(8760))

			earth, ok := sim.Body("Earth")
			Expect(ok).To(BeTrue())
			sun, _ := sim.Body("Sun")
			Expect(r3.Norm(r3.Sub(earth.Position, sun.Position))).To(BeNumerically("~", au, 0.02*au))
			Expect(radius.Value()).To(BeNumerically("<", 0.02))

			Expect(relChange(metrics.TotalEnergy(model, sim.Bodies()), e0)).To(BeNumerically("<", 0.01))
			Expect(relChange(r3.Norm(metrics.TotalAngularMomentum(sim.Bodies())), l0)).To(BeNumerically("<", 5e-3))
		})

		DescribeTable("Run(k·dt) appends k entries per body",
			func(k int) {
				n, err := sim.Run(float64(k) * hour)
				Expect(err).NotTo(HaveOccurred())
				Expect(n).To(Equal(k))
				Expect(sim.Time()).To(Equal(float64(k) * hour))
				Expect(sim.TrajectoryLen("Sun")).To(Equal(k))
				Expect(sim.TrajectoryLen("Earth")).To(Equal(k))
			},
			Entry("zero", 0),
			Entry("one", 1),
			Entry("a day", 24),
			Entry("a month", 720),
		)
	})

	Context("an isolated three body system", func() {
		It("conserves total linear momentum", func() {
			bodies := []*dynamo.Body{
				mustBody("A", 1e30, []float64{-5e10, 0, 0}, []float64{0, -15000, 2000}),
				mustBody("B", 8e29, []float64{5e10, 0, 0}, []float64{0, 18750, -2500}),
				mustBody("C", 1e27, []float64{0, 3e11, 1e10}, []float64{-9000, 0, 0}),
			}
			var scale float64
			for _, b := range bodies {
				scale += b.Mass * r3.Norm(b.Velocity)
			}

			for _, integ := range []dynamo.Integrator{
				integrators.NewPredictorCorrector(),
				integrators.NewVelocityVerlet(),
				integrators.NewSemiImplicitEuler(),
			} {
				copies := make([]*dynamo.Body, len(bodies))
				for i, b := range bodies {
					c := *b
					copies[i] = &c
				}
				sim, err := dynamo.New(model, integ, hour, copies)
				Expect(err).NotTo(HaveOccurred())

				p0 := metrics.LinearMomentum(sim.Bodies())
				_, err = sim.Run(2000 * hour)
				Expect(err).NotTo(HaveOccurred())
				p1 := metrics.LinearMomentum(sim.Bodies())

				Expect(r3.Norm(r3.Sub(p1, p0)) / scale).To(BeNumerically("<", 1e-9))
			}
		})
	})

	Context("bodies closer than the distance floor", func() {
		It("exert exactly zero force on each other", func() {
			bodies := []*dynamo.Body{
				mustBody("a", 1e24, []float64{0, 0, 0}, []float64{10, 0, 0}),
				mustBody("b", 1e24, []float64{5e5, 0, 0}, []float64{-10, 0, 0}),
			}
			out := make([]r3.Vec, 2)
			Expect(model.Accelerations(bodies, out)).To(Succeed())
			Expect(out).To(HaveEach(Equal(r3.Vec{})))

			sim, err := dynamo.New(model, integrators.NewPredictorCorrector(), 1, bodies)
			Expect(err).NotTo(HaveOccurred())
			Expect(sim.Step()).To(Succeed())

			a, _ := sim.Body("a")
			Expect(a.Velocity).To(Equal(r3.Vec{X: 10}))
			Expect(a.Position).To(Equal(r3.Vec{X: 10}))
		})
	})
})
