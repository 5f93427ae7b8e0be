package config

import (
	"maps"
	"slices"

	"github.com/san-kum/orbsim/internal/physics"
)

const (
	AU        = 1.496e11
	SunMass   = 1.989e30
	EarthMass = 5.972e24
	MoonMass  = 7.342e22
	MoonDist  = 3.844e8

	day  = 24 * 3600.0
	year = 365 * day
)

var Presets = map[string]*Config{
	"sun_earth": {
		Description: "Sun and Earth on a near-circular orbit",
		Dt:          DefaultDt, Duration: year, Center: "Sun",
		Bodies: []BodyConfig{
			{Name: "Sun", Mass: SunMass, Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}, Radius: 20, Color: "#FFD700"},
			{Name: "Earth", Mass: EarthMass, Position: []float64{AU, 0, 0}, Velocity: []float64{0, 29780, 0}, Radius: 8, Color: "#4169E1"},
		},
	},
	"earth_moon": {
		Description: "Earth and Moon",
		Dt:          DefaultDt, Duration: 30 * day, Center: "Earth",
		Bodies: []BodyConfig{
			{Name: "Earth", Mass: EarthMass, Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}, Radius: 10, Color: "#4169E1"},
			{Name: "Moon", Mass: MoonMass, Position: []float64{MoonDist, 0, 0}, Velocity: []float64{0, 1022, 0}, Radius: 3, Color: "#C0C0C0"},
		},
	},
	"inner_planets": {
		Description: "Sun with Mercury, Venus, Earth and Mars",
		Dt:          DefaultDt, Duration: 2 * year, Center: "Sun",
		Bodies: []BodyConfig{
			{Name: "Sun", Mass: SunMass, Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}, Radius: 25, Color: "#FFD700"},
			{Name: "Mercury", Mass: EarthMass * 0.055, Position: []float64{0.39 * AU, 0, 0}, Velocity: []float64{0, 47870, 0}, Radius: 4, Color: "#8C7853"},
			{Name: "Venus", Mass: EarthMass * 0.815, Position: []float64{0.72 * AU, 0, 0}, Velocity: []float64{0, 35020, 0}, Radius: 7, Color: "#FF8C00"},
			{Name: "Earth", Mass: EarthMass, Position: []float64{AU, 0, 0}, Velocity: []float64{0, 29780, 0}, Radius: 8, Color: "#4169E1"},
			{Name: "Mars", Mass: EarthMass * 0.107, Position: []float64{1.52 * AU, 0, 0}, Velocity: []float64{0, 24077, 0}, Radius: 6, Color: "#CD5C5C"},
		},
	},
	"gas_giants": {
		Description: "Sun with the four gas giants",
		Dt:          DefaultDt, Duration: 12 * year, Center: "Sun",
		Bodies: []BodyConfig{
			{Name: "Sun", Mass: SunMass, Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}, Radius: 30, Color: "#FFD700"},
			{Name: "Jupiter", Mass: EarthMass * 317.8, Position: []float64{5.2 * AU, 0, 0}, Velocity: []float64{0, 13070, 0}, Radius: 25, Color: "#D2691E"},
			{Name: "Saturn", Mass: EarthMass * 95.2, Position: []float64{9.58 * AU, 0, 0}, Velocity: []float64{0, 9680, 0}, Radius: 22, Color: "#F4A460"},
			{Name: "Uranus", Mass: EarthMass * 14.5, Position: []float64{19.2 * AU, 0, 0}, Velocity: []float64{0, 6800, 0}, Radius: 15, Color: "#4FD0E7"},
			{Name: "Neptune", Mass: EarthMass * 17.1, Position: []float64{30.1 * AU, 0, 0}, Velocity: []float64{0, 5430, 0}, Radius: 15, Color: "#4169E1"},
		},
	},
	"binary_star": {
		Description: "Two stars with a circumbinary planet on an inclined path",
		Dt:          DefaultDt, Duration: 2 * year, Center: "Star 1",
		Bodies: []BodyConfig{
			{Name: "Star 1", Mass: SunMass, Position: []float64{-0.5 * AU, 0, 0}, Velocity: []float64{0, 15000, 0}, Radius: 20, Color: "#FFD700"},
			{Name: "Star 2", Mass: SunMass * 0.8, Position: []float64{0.5 * AU, 0, 0}, Velocity: []float64{0, -15000, 0}, Radius: 18, Color: "#FFA500"},
			{Name: "Planet", Mass: EarthMass, Position: []float64{2 * AU, 0, 0.3 * AU}, Velocity: []float64{0, 12000, 2000}, Radius: 6, Color: "#87CEEB"},
		},
	},
	"solar_system": {
		Description: "Sun, eight planets and the Moon, Mars and the Moon slightly inclined",
		Dt:          DefaultDt, Duration: year, Center: "Sun",
		Bodies:      solarSystem(),
	},
	"solar_system_2d": {
		Description: "Planar Sun, Earth and Moon",
		Dt:          DefaultDt, Duration: year, Center: "Sun",
		Bodies: []BodyConfig{
			{Name: "Sun", Mass: SunMass, Position: []float64{0, 0}, Velocity: []float64{0, 0}, Radius: 20, Color: "#FFD700"},
			{Name: "Earth", Mass: EarthMass, Position: []float64{AU, 0}, Velocity: []float64{0, circular(SunMass, AU)}, Radius: 5, Color: "#4169E1"},
			{Name: "Moon", Mass: MoonMass, Position: []float64{AU + MoonDist, 0}, Velocity: []float64{0, circular(SunMass, AU) + circular(EarthMass, MoonDist)}, Radius: 2, Color: "#C0C0C0"},
		},
	},
}

func init() {
	for name, p := range Presets {
		p.Scenario = name
		p.Integrator = DefaultIntegrator
	}
}

func circular(m, r float64) float64 { return physics.CircularSpeed(m, r) }

func solarSystem() []BodyConfig {
	planet := func(name string, massEarths, distAU, tilt, radius float64, color string) BodyConfig {
		d := distAU * AU
		v := circular(SunMass, d)
		return BodyConfig{
			Name: name, Mass: EarthMass * massEarths,
			Position: []float64{d, 0, d * tilt},
			Velocity: []float64{0, v, v * tilt},
			Radius:   radius, Color: color,
		}
	}
	vEarth := circular(SunMass, AU)

	return []BodyConfig{
		{Name: "Sun", Mass: SunMass, Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}, Radius: 30, Color: "#FFD700"},
		planet("Mercury", 0.055, 0.39, 0, 4, "#8C7853"),
		planet("Venus", 0.815, 0.72, 0, 7, "#FF8C00"),
		planet("Earth", 1, 1, 0, 8, "#4169E1"),
		{
			Name: "Moon", Mass: MoonMass,
			Position: []float64{AU + MoonDist, 0, 0},
			Velocity: []float64{0, vEarth + circular(EarthMass, MoonDist), 2000},
			Radius:   3, Color: "#C0C0C0",
		},
		planet("Mars", 0.107, 1.52, 0.05, 6, "#CD5C5C"),
		planet("Jupiter", 317.8, 5.2, 0, 20, "#D2691E"),
		planet("Saturn", 95.2, 9.58, 0, 18, "#F4A460"),
		planet("Uranus", 14.5, 19.2, 0, 12, "#4FD0E7"),
		planet("Neptune", 17.1, 30.1, 0, 12, "#4169E1"),
	}
}

// GetPreset returns a copy of the named scenario, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

// ListPresets returns scenario names in sorted order.
func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
