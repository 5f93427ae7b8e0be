package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	settings = viper.New()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewLogger(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "none", ""} {
		if _, err := newLogger(lvl); err != nil {
			t.Errorf("level %q: %v", lvl, err)
		}
	}
	if _, err := newLogger("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets", "--log-level", "none")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"sun_earth", "earth_moon", "solar_system"} {
		if !strings.Contains(out, name) {
			t.Errorf("presets output missing %s", name)
		}
	}
}

func TestRunSaveAndExport(t *testing.T) {
	data := t.TempDir()
	state := filepath.Join(t.TempDir(), "final.yaml")

	out, err := execute(t, "run", "earth_moon", "--days", "1", "--data", data,
		"--state-out", state, "--log-level", "none")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "steps: 24") || !strings.Contains(out, "energy_drift") {
		t.Errorf("unexpected run output:\n%s", out)
	}
	if _, err := os.Stat(state); err != nil {
		t.Errorf("state file not written: %v", err)
	}

	entries, err := os.ReadDir(data)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one saved run, got %v (%v)", entries, err)
	}
	runID := entries[0].Name()

	out, err = execute(t, "list", "--data", data, "--log-level", "none")
	if err != nil || !strings.Contains(out, "earth_moon") {
		t.Errorf("list: %v\n%s", err, out)
	}

	svg := filepath.Join(t.TempDir(), "run.svg")
	if _, err := execute(t, "export-svg", runID, "-o", svg, "--data", data, "--log-level", "none"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(svg)
	if err != nil || !bytes.Contains(b, []byte("<polyline")) {
		t.Errorf("svg export: %v", err)
	}

	out, err = execute(t, "export-json", runID, "--data", data, "--log-level", "none")
	if err != nil || !strings.Contains(out, `"scenario": "earth_moon"`) {
		t.Errorf("export-json: %v\n%s", err, out)
	}

	out, err = execute(t, "plot", runID, "--center", "Earth", "--data", data, "--log-level", "none")
	if err != nil || !strings.Contains(out, "Moon distance from Earth") {
		t.Errorf("plot: %v\n%s", err, out)
	}
}

func TestRunUnknownScenario(t *testing.T) {
	if _, err := execute(t, "run", "nowhere", "--save=false", "--log-level", "none"); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestCompareCommand(t *testing.T) {
	out, err := execute(t, "compare", "earth_moon", "pc", "euler", "--days", "1", "--log-level", "none")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "pc") || !strings.Contains(out, "euler") {
		t.Errorf("compare output:\n%s", out)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := execute(t, "analyze", "sun_earth", "--days", "400", "--dt", "86400", "--log-level", "none")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Earth about Sun", "orbital period", "lyapunov exponent", "phase portrait"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "analyze", "sun_earth", "--body", "Pluto", "--days", "1", "--log-level", "none"); err == nil {
		t.Error("expected error for unknown body")
	}
}

func TestTuneCommand(t *testing.T) {
	out, err := execute(t, "tune", "sun_earth", "--days", "30", "--param", "speed:Earth",
		"--from", "0.9", "--to", "1.1", "--points", "3", "--log-level", "none")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "best speed:Earth = 1 ") {
		t.Errorf("tune output:\n%s", out)
	}
}
