package dynamo

// Snapshot is an immutable copy of the body set between steps. It is what
// readers on other goroutines are handed; they never see live bodies.
type Snapshot struct {
	Step   int
	Time   float64
	Bodies []Body
}

// Find returns the body called name in the snapshot.
func (s Snapshot) Find(name string) (Body, bool) {
	for _, b := range s.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return Body{}, false
}

// BodyRecord is the persisted form of one body.
type BodyRecord struct {
	Name     string     `json:"name" yaml:"name"`
	Mass     float64    `json:"mass" yaml:"mass"`
	Position [3]float64 `json:"position" yaml:"position,flow"`
	Velocity [3]float64 `json:"velocity" yaml:"velocity,flow"`
	Planar   bool       `json:"planar,omitempty" yaml:"planar,omitempty"`
	Radius   float64    `json:"radius,omitempty" yaml:"radius,omitempty"`
	Color    string     `json:"color,omitempty" yaml:"color,omitempty"`
}

// StateRecord is the save/load shape of a simulation. Encoding is left to
// the storage layer.
type StateRecord struct {
	Dt     float64      `json:"dt" yaml:"dt"`
	Time   float64      `json:"time" yaml:"time"`
	Bodies []BodyRecord `json:"bodies" yaml:"bodies"`
}

func recordOf(b *Body) BodyRecord {
	return BodyRecord{
		Name:     b.Name,
		Mass:     b.Mass,
		Position: [3]float64{b.Position.X, b.Position.Y, b.Position.Z},
		Velocity: [3]float64{b.Velocity.X, b.Velocity.Y, b.Velocity.Z},
		Planar:   b.Planar,
		Radius:   b.Radius,
		Color:    b.Color,
	}
}

// Body validates the record and builds a Body from it.
func (r BodyRecord) Body() (*Body, error) {
	b, err := NewBody(r.Name, r.Mass, r.Position[:], r.Velocity[:], WithRadius(r.Radius), WithColor(r.Color))
	if err != nil {
		return nil, err
	}
	b.Planar = r.Planar
	return b, nil
}

// BodySet builds the record's body set in order.
func (r StateRecord) BodySet() ([]*Body, error) {
	bodies := make([]*Body, 0, len(r.Bodies))
	for _, br := range r.Bodies {
		b, err := br.Body()
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}
