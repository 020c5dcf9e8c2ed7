// Package locate finds files and directories by probing an ordered list of
// candidate paths and returning the first one that exists.
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diabetesguard/backend/internal/domain"
)

// NotFoundError reports every path that was probed without a match
type NotFoundError struct {
	Kind   string
	Probed []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("locate: %s not found in any of: %s", e.Kind, strings.Join(e.Probed, ", "))
}

func (e *NotFoundError) Unwrap() error {
	return domain.ErrArtifactNotFound
}

// Locator probes Candidates in order
type Locator struct {
	Kind       string
	Candidates []string
}

// FindDir returns the first candidate that is an existing directory
func (l Locator) FindDir() (string, error) {
	for _, c := range l.Candidates {
		if dirExists(c) {
			return c, nil
		}
	}
	return "", l.notFound()
}

// FindFile returns the first candidate that is an existing regular file
func (l Locator) FindFile() (string, error) {
	for _, c := range l.Candidates {
		if FileExists(c) {
			return c, nil
		}
	}
	return "", l.notFound()
}

func (l Locator) notFound() error {
	probed := make([]string, len(l.Candidates))
	copy(probed, l.Candidates)
	return &NotFoundError{Kind: l.Kind, Probed: probed}
}

// ModelDirs lists where a models directory may live. override comes first
// when set; the rest mirror the layouts the service is deployed with.
func ModelDirs(override string) Locator {
	var c []string
	if override != "" {
		c = append(c, override)
	}
	for _, root := range searchRoots() {
		c = append(c, filepath.Join(root, "models"))
	}
	return Locator{Kind: "models directory", Candidates: dedupe(c)}
}

// DatasetFiles lists where the dataset CSV may live.
func DatasetFiles(override string) Locator {
	var c []string
	if override != "" {
		c = append(c, override)
	}
	for _, root := range searchRoots() {
		c = append(c,
			filepath.Join(root, "data", "diabetes_dataset.csv"),
			filepath.Join(root, "diabetes_dataset.csv"),
		)
	}
	return Locator{Kind: "diabetes_dataset.csv", Candidates: dedupe(c)}
}

// searchRoots returns the working directory, its two parents and the
// executable's directory.
func searchRoots() []string {
	var roots []string
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd, filepath.Dir(wd), filepath.Dir(filepath.Dir(wd)))
	}
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	}
	return roots
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// FileExists reports whether path is an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
