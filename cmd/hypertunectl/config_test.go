package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeConfig(t, `{
		"learner": "ridge",
		"strategy": "random",
		"iterations": 25,
		"folds": 4,
		"repeats": 2,
		"train_best": false,
		"accel": "pool",
		"workers": 3,
		"seed": 42,
		"data_points": 500,
		"data_noise": 0.25,
		"measures": ["mae"],
		"ranges": [
			{"name": "lambda", "min": 0.1, "max": 5.0, "step": 0.1}
		]
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Strategy != "random" || req.Iterations != 25 || req.Folds != 4 {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Repeats != 2 || req.TrainBest || req.Accel != "pool" || req.Workers != 3 {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Seed != 42 || req.DataPoints != 500 || req.DataNoise != 0.25 {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(req.Measures) != 1 || req.Measures[0] != "mae" {
		t.Fatalf("measures %v, want [mae]", req.Measures)
	}
	if len(req.Ranges) != 1 {
		t.Fatalf("ranges %v, want one entry", req.Ranges)
	}
	p := req.Ranges[0]
	if p.Name != "lambda" || p.Min != 0.1 || p.Max != 5.0 || p.Step != 0.1 {
		t.Fatalf("range %+v", p)
	}
}

func TestLoadRunRequestKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"iterations": 5}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := defaultRunRequest()
	if req.Iterations != 5 {
		t.Fatalf("iterations %d, want 5", req.Iterations)
	}
	if req.Learner != want.Learner || req.Strategy != want.Strategy || req.Folds != want.Folds {
		t.Fatalf("defaults not preserved: %+v", req)
	}
	if len(req.Ranges) != len(want.Ranges) {
		t.Fatalf("default ranges replaced: %+v", req.Ranges)
	}
}

func TestLoadRunRequestParsesExplicitValues(t *testing.T) {
	path := writeConfig(t, `{"ranges": [{"name": "lambda", "values": [0.1, 1, 10]}]}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(req.Ranges) != 1 || len(req.Ranges[0].Values) != 3 {
		t.Fatalf("ranges %+v", req.Ranges)
	}
	if req.Ranges[0].Values[2] != 10 {
		t.Fatalf("values %v", req.Ranges[0].Values)
	}
}

func TestLoadRunRequestRejectsBadInput(t *testing.T) {
	if _, err := loadRunRequestFromConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing file accepted")
	}

	path := writeConfig(t, `not json`)
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("malformed json accepted")
	}

	path = writeConfig(t, `{"ranges": [{"min": 0, "max": 1}]}`)
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("unnamed range accepted")
	}

	path = writeConfig(t, `{"ranges": ["lambda"]}`)
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("non-object range accepted")
	}
}
