package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
)

func runShort(t *testing.T) *experiment.Experiment {
	t.Helper()
	cfg := config.GetPreset("earth_moon")
	cfg.Duration = 48 * 3600
	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	return exp
}

func saveShort(t *testing.T, st *Store) (string, *experiment.Experiment, *experiment.Result) {
	t.Helper()
	exp := runShort(t)
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save(res, exp.Simulation())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	return runID, exp, res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir(), nil)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, exp, res := saveShort(t, st)
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "earth_moon" || meta.Integrator != "pc" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Steps != 48 {
		t.Errorf("expected 48 steps, got %d", meta.Steps)
	}
	if strings.Join(meta.Bodies, ",") != "Earth,Moon" {
		t.Errorf("bodies = %v", meta.Bodies)
	}
	if meta.Metrics["energy_drift"] != res.Metrics["energy_drift"] {
		t.Error("metrics not persisted")
	}

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	want, _ := exp.Simulation().Trajectory("Moon")
	got := traj["Moon"]
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	times, energy, err := st.LoadEnergy(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 49 || len(energy) != 49 || energy[48] != res.Energy[48] {
		t.Errorf("energy series not round-tripped: %d samples", len(energy))
	}

	final, err := st.LoadFinalState(runID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Time != res.Time || len(final.Bodies) != 2 {
		t.Errorf("final state = %+v", final)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir, nil)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	saveShort(t, st)
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir, nil)

	runID, _, _ := saveShort(t, st)

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{metadataFile, trajectoryFile, energyFile, stateFile} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	exp := runShort(t)
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	rec := exp.Simulation().State()

	for _, name := range []string{"state.json", "state.yaml", "state.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := SaveState(path, rec); err != nil {
				t.Fatal(err)
			}
			back, err := LoadState(path)
			if err != nil {
				t.Fatal(err)
			}
			if back.Dt != rec.Dt || back.Time != rec.Time || len(back.Bodies) != len(rec.Bodies) {
				t.Fatalf("got %+v", back)
			}
			for i := range rec.Bodies {
				if back.Bodies[i] != rec.Bodies[i] {
					t.Errorf("body %d = %+v, want %+v", i, back.Bodies[i], rec.Bodies[i])
				}
			}
		})
	}
}

func TestLoadStateRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestDecodeStateBuildsSimulation(t *testing.T) {
	doc := `
dt: 60
time: 120
bodies:
  - name: Earth
    mass: 5.972e24
    position: [0, 0, 0]
    velocity: [0, 0, 0]
  - name: Moon
    mass: 7.342e22
    position: [3.844e8, 0, 0]
    velocity: [0, 1022, 0]
    planar: true
`
	rec, err := DecodeState(strings.NewReader(doc), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	bodies, err := rec.BodySet()
	if err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 2 || !bodies[1].Planar || bodies[0].Planar {
		t.Errorf("unexpected bodies: %+v", bodies)
	}
}

func TestExportJSON(t *testing.T) {
	exp := runShort(t)
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, res, exp.Simulation().State()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Steps != 48 || len(data.Energy) != 49 || len(data.Final.Bodies) != 2 {
		t.Errorf("unexpected export: steps=%d energy=%d bodies=%d", data.Steps, len(data.Energy), len(data.Final.Bodies))
	}
}

func TestWriteFileReportsClose(t *testing.T) {
	dir := t.TempDir()
	errWrite := errors.New("write failed")

	tests := []struct {
		name  string
		path  string
		write func(io.Writer) error
		want  func(error) bool
	}{
		{
			name:  "ok",
			path:  filepath.Join(dir, "ok.json"),
			write: func(w io.Writer) error { _, err := io.WriteString(w, "{}"); return err },
			want:  func(err error) bool { return err == nil },
		},
		{
			name: "close fails",
			path: filepath.Join(dir, "closed.json"),
			write: func(w io.Writer) error {
				return w.(*os.File).Close()
			},
			want: func(err error) bool { return errors.Is(err, os.ErrClosed) },
		},
		{
			name:  "write error wins",
			path:  filepath.Join(dir, "bad.json"),
			write: func(io.Writer) error { return errWrite },
			want:  func(err error) bool { return errors.Is(err, errWrite) },
		},
		{
			name:  "missing directory",
			path:  filepath.Join(dir, "nope", "state.yaml"),
			write: func(io.Writer) error { return nil },
			want:  func(err error) bool { return errors.Is(err, os.ErrNotExist) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := writeFile(tt.path, tt.write); !tt.want(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
