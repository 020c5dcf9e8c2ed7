package model

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the optional bundle descriptor inside a models directory
const ManifestFile = "manifest.yaml"

// supportedFormats is the range of bundle layouts this loader understands
const supportedFormats = "^1.0.0"

// Files names the artifacts inside a models directory
type Files struct {
	Model    string `yaml:"model"`
	Scaler   string `yaml:"scaler"`
	Imputer  string `yaml:"imputer,omitempty"`
	Features string `yaml:"features"`
}

// Manifest describes a trained bundle
type Manifest struct {
	FormatVersion string    `yaml:"format_version"`
	ModelName     string    `yaml:"model_name"`
	TrainedAt     string    `yaml:"trained_at,omitempty"`
	Files         Files     `yaml:"files"`
	AgeRiskEdges  []float64 `yaml:"age_risk_edges,omitempty"`
}

// DefaultManifest is used when a models directory carries no manifest.yaml
func DefaultManifest() Manifest {
	return Manifest{
		FormatVersion: "1.0.0",
		ModelName:     "diabetes_model",
		Files: Files{
			Model:    "diabetes_model.json",
			Scaler:   "scaler.json",
			Imputer:  "imputer.json",
			Features: "feature_columns.txt",
		},
	}
}

// readManifest parses path over the defaults so a manifest only has to name
// what differs.
func readManifest(path string) (Manifest, error) {
	m := DefaultManifest()
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := m.checkFormat(); err != nil {
		return m, err
	}
	return m, nil
}

func (m Manifest) checkFormat() error {
	v, err := semver.NewVersion(m.FormatVersion)
	if err != nil {
		return fmt.Errorf("invalid format_version %q: %w", m.FormatVersion, err)
	}
	c, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("format_version %s is not supported (want %s)", v, supportedFormats)
	}
	return nil
}
