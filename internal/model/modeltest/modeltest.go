// Package modeltest writes small, hand-checkable model bundles for tests.
//
// The default bundle scores on two features:
//
//	glucose <= 113             -> 0.10
//	glucose >  113, bmi <= 30  -> 0.50
//	glucose >  113, bmi >  30  -> 0.75
//
// With Forest set, a second tree that always yields 0.25 is averaged in.
package modeltest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// Columns is the base nine-column schema
var Columns = []string{
	"Age", "Gender", "BMI", "Blood_Pressure", "Glucose_Level",
	"Exercise_Hours_Per_Week", "Smoking_Status", "Alcohol_Consumption_Per_Week", "Stress_Level",
}

// Options selects bundle variants
type Options struct {
	Forest   bool
	Imputer  bool
	Manifest map[string]any // written as manifest.yaml when non-nil
	Columns  []string       // overrides the feature list only
	Skip     []string       // artifact file names not to write
}

// WriteBundle writes a bundle into dir
func WriteBundle(t testing.TB, dir string, opts Options) {
	t.Helper()

	mean := make([]float64, len(Columns))
	scale := make([]float64, len(Columns))
	for i := range scale {
		scale[i] = 1
	}
	mean[4], scale[4] = 100, 20 // glucose: (113-100)/20 = 0.65

	primary := map[string]any{"nodes": []map[string]any{
		{"feature": 4, "threshold": 0.65, "left": 1, "right": 2},
		{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": []float64{9, 1}},
		{"feature": 2, "threshold": 30, "left": 3, "right": 4},
		{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": []float64{1, 1}},
		{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": []float64{1, 3}},
	}}
	// fill in value for internal nodes the way the exporter does
	for _, n := range primary["nodes"].([]map[string]any) {
		if _, ok := n["value"]; !ok {
			n["value"] = []float64{0, 0}
		}
	}

	classifier := map[string]any{
		"kind":       "decision_tree",
		"n_features": len(Columns),
		"classes":    []int{0, 1},
		"estimators": []any{primary},
	}
	if opts.Forest {
		classifier["kind"] = "random_forest"
		classifier["estimators"] = []any{primary, map[string]any{"nodes": []map[string]any{
			{"feature": -2, "threshold": -2, "left": -1, "right": -1, "value": []float64{3, 1}},
		}}}
	}

	cols := Columns
	if opts.Columns != nil {
		cols = opts.Columns
	}

	skip := map[string]bool{}
	for _, s := range opts.Skip {
		skip[s] = true
	}

	writeJSON(t, dir, "diabetes_model.json", classifier, skip)
	writeJSON(t, dir, "scaler.json", map[string]any{"mean": mean, "scale": scale}, skip)
	if opts.Imputer {
		writeJSON(t, dir, "imputer.json", map[string]any{
			"strategy":   "median",
			"statistics": []float64{40, 0, 25, 120, 100, 3, 0, 2, 1},
		}, skip)
	}
	if !skip["feature_columns.txt"] {
		write(t, filepath.Join(dir, "feature_columns.txt"), []byte(strings.Join(cols, "\n")+"\n"))
	}
	if opts.Manifest != nil {
		data, err := yaml.Marshal(opts.Manifest)
		if err != nil {
			t.Fatalf("marshal manifest: %v", err)
		}
		write(t, filepath.Join(dir, "manifest.yaml"), data)
	}
}

func writeJSON(t testing.TB, dir, name string, v any, skip map[string]bool) {
	t.Helper()
	if skip[name] {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	write(t, filepath.Join(dir, name), data)
}

func write(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
