// Package model loads the trained classifier and its preprocessing
// transforms, and evaluates them.
package model

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/locate"
)

// Bundle is a trained classifier with its transforms and feature schema.
// It is read-only after loading and safe to share between goroutines.
type Bundle struct {
	Dir        string
	Manifest   Manifest
	Classifier *Classifier
	Scaler     *Scaler
	Imputer    *Imputer // nil when the bundle was trained without imputation
	Columns    []string
}

// Width is the number of feature columns the bundle expects
func (b *Bundle) Width() int {
	return len(b.Columns)
}

// LoadError wraps a failure to read or validate one artifact
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("model: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{domain.ErrLoad, e.Err}
}

// Load finds the first existing models directory and loads it
func Load(loc locate.Locator) (*Bundle, error) {
	dir, err := loc.FindDir()
	if err != nil {
		return nil, err
	}
	return LoadDir(dir)
}

// LoadDir loads the bundle stored in dir
func LoadDir(dir string) (*Bundle, error) {
	manifest := DefaultManifest()
	if path := filepath.Join(dir, ManifestFile); locate.FileExists(path) {
		m, err := readManifest(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		manifest = m
	}

	b := &Bundle{Dir: dir, Manifest: manifest}

	modelPath, err := require(dir, "model", manifest.Files.Model)
	if err != nil {
		return nil, err
	}
	scalerPath, err := require(dir, "scaler", manifest.Files.Scaler)
	if err != nil {
		return nil, err
	}
	featuresPath, err := require(dir, "features", manifest.Files.Features)
	if err != nil {
		return nil, err
	}

	b.Classifier = &Classifier{}
	if err := readJSON(modelPath, b.Classifier); err != nil {
		return nil, err
	}
	if err := b.Classifier.validate(); err != nil {
		return nil, &LoadError{Path: modelPath, Err: err}
	}

	b.Scaler = &Scaler{}
	if err := readJSON(scalerPath, b.Scaler); err != nil {
		return nil, err
	}
	if err := b.Scaler.validate(); err != nil {
		return nil, &LoadError{Path: scalerPath, Err: err}
	}

	if manifest.Files.Imputer != "" {
		if path := filepath.Join(dir, manifest.Files.Imputer); locate.FileExists(path) {
			b.Imputer = &Imputer{}
			if err := readJSON(path, b.Imputer); err != nil {
				return nil, err
			}
			if err := b.Imputer.validate(); err != nil {
				return nil, &LoadError{Path: path, Err: err}
			}
		}
	}

	b.Columns, err = readColumns(featuresPath)
	if err != nil {
		return nil, &LoadError{Path: featuresPath, Err: err}
	}

	if err := b.checkWidths(); err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}
	return b, nil
}

// checkWidths makes sure every transform was fit on the same schema
func (b *Bundle) checkWidths() error {
	n := len(b.Columns)
	if b.Scaler.Width() != n {
		return fmt.Errorf("scaler expects %d columns, feature list has %d: %w", b.Scaler.Width(), n, domain.ErrSchemaMismatch)
	}
	if b.Imputer != nil && b.Imputer.Width() != n {
		return fmt.Errorf("imputer expects %d columns, feature list has %d: %w", b.Imputer.Width(), n, domain.ErrSchemaMismatch)
	}
	if b.Classifier.NFeatures != n {
		return fmt.Errorf("model expects %d columns, feature list has %d: %w", b.Classifier.NFeatures, n, domain.ErrSchemaMismatch)
	}
	return nil
}

func require(dir, kind, name string) (string, error) {
	path := filepath.Join(dir, name)
	if name == "" || !locate.FileExists(path) {
		return "", &locate.NotFoundError{Kind: kind, Probed: []string{path}}
	}
	return path, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

// readColumns reads one column name per line, ignoring blank lines
func readColumns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cols []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if c := strings.TrimSpace(sc.Text()); c != "" {
			cols = append(cols, c)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no feature columns")
	}
	return cols, nil
}
