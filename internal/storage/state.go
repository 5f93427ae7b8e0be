package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/experiment"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the state encoding from a file extension; anything other
// than .yaml or .yml is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func EncodeState(w io.Writer, rec dynamo.StateRecord, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
}

func DecodeState(r io.Reader, f Format) (dynamo.StateRecord, error) {
	var rec dynamo.StateRecord
	var err error
	switch f {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&rec)
	default:
		err = json.NewDecoder(r).Decode(&rec)
	}
	if err != nil {
		return dynamo.StateRecord{}, fmt.Errorf("decode state: %w", err)
	}
	return rec, nil
}

func SaveState(path string, rec dynamo.StateRecord) error {
	return writeFile(path, func(f io.Writer) error {
		return EncodeState(f, rec, FormatFor(path))
	})
}

func LoadState(path string) (dynamo.StateRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return dynamo.StateRecord{}, err
	}
	defer f.Close()
	return DecodeState(f, FormatFor(path))
}

type ExportData struct {
	Scenario   string             `json:"scenario"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	Energy     []float64          `json:"energy"`
	Final      dynamo.StateRecord `json:"final"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run summary with its energy series and final state.
func ExportJSON(w io.Writer, res *experiment.Result, final dynamo.StateRecord) error {
	data := ExportData{
		Scenario:   res.Scenario,
		Integrator: res.Integrator,
		Dt:         res.Dt,
		Duration:   res.Time,
		Steps:      res.Steps,
		Times:      res.EnergyTime,
		Energy:     res.Energy,
		Final:      final,
		Metrics:    res.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
