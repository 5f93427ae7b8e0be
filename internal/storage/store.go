package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/experiment"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	energyFile     = "energy.csv"
	stateFile      = "final_state.json"
)

type Store struct {
	baseDir string
	logger  log.Logger
}

func New(baseDir string, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{baseDir: baseDir, logger: logger}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Bodies     []string           `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata, the retained trajectory of
// every body, the energy series and the final state.
func (s *Store) Save(res *experiment.Result, sim *dynamo.Simulation) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s_%d", res.Scenario, res.Integrator, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   res.Scenario,
		Timestamp:  now,
		Dt:         res.Dt,
		Duration:   res.Time,
		Steps:      res.Steps,
		Integrator: res.Integrator,
		Metrics:    res.Metrics,
	}
	for _, b := range res.Final {
		meta.Bodies = append(meta.Bodies, b.Name)
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), sim); err != nil {
		return "", err
	}
	if err := writeEnergy(filepath.Join(runDir, energyFile), res.EnergyTime, res.Energy); err != nil {
		return "", err
	}
	if err := SaveState(filepath.Join(runDir, stateFile), sim.State()); err != nil {
		return "", err
	}

	level.Info(s.logger).Log("msg", "run saved", "id", runID, "dir", runDir)
	return runID, nil
}

// writeFile creates path and hands it to write. A failed Close is reported
// when write itself succeeded.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f io.Writer) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeTrajectory stores one row per retained sample: body, sample index and
// position, bodies in simulation order.
func writeTrajectory(path string, sim *dynamo.Simulation) error {
	return writeFile(path, func(f io.Writer) error {
		return encodeTrajectory(f, sim)
	})
}

func encodeTrajectory(f io.Writer, sim *dynamo.Simulation) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{"body", "sample", "x", "y", "z"}); err != nil {
		return err
	}
	for _, b := range sim.Bodies() {
		pts, _ := sim.Trajectory(b.Name)
		for i, p := range pts {
			row := []string{b.Name, strconv.Itoa(i), formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeEnergy(path string, times, energy []float64) error {
	return writeFile(path, func(f io.Writer) error {
		return encodeEnergy(f, times, energy)
	})
}

func encodeEnergy(f io.Writer, times, energy []float64) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "energy"}); err != nil {
		return err
	}
	for i := range energy {
		if err := w.Write([]string{formatFloat(times[i]), formatFloat(energy[i])}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns saved runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			level.Debug(s.logger).Log("msg", "skipping run dir", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

// LoadTrajectory reads back the trajectory written by Save, keyed by body.
func (s *Store) LoadTrajectory(runID string) (map[string][]r3.Vec, error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}

	out := make(map[string][]r3.Vec)
	for i, row := range rows {
		if len(row) != 5 {
			return nil, fmt.Errorf("%s line %d: expected 5 fields, got %d", trajectoryFile, i+2, len(row))
		}
		var v [3]float64
		for k := range v {
			if v[k], err = strconv.ParseFloat(row[2+k], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", trajectoryFile, i+2, err)
			}
		}
		out[row[0]] = append(out[row[0]], r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	}
	return out, nil
}

func (s *Store) LoadEnergy(runID string) (times, energy []float64, err error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, nil, err
	}

	times = make([]float64, 0, len(rows))
	energy = make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return nil, nil, fmt.Errorf("%s line %d: expected 2 fields, got %d", energyFile, i+2, len(row))
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, nil, err
		}
		e, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, nil, err
		}
		times = append(times, t)
		energy = append(energy, e)
	}
	return times, energy, nil
}

// LoadFinalState reads the state the run ended in.
func (s *Store) LoadFinalState(runID string) (dynamo.StateRecord, error) {
	return LoadState(filepath.Join(s.baseDir, runID, stateFile))
}
