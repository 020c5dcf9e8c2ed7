// Package dataset loads the diabetes CSV and computes descriptive
// statistics over it for the analytics dashboard.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/locate"
)

// ErrUnknownColumn is returned when a requested column is absent or has the wrong type
var ErrUnknownColumn = errors.New("dataset: unknown column")

// Cells read as missing, matching the defaults of common CSV tooling.
var naValues = map[string]bool{
	"": true, "NA": true, "N/A": true, "NaN": true, "nan": true, "null": true, "NULL": true,
}

// Column holds one CSV column. Exactly one of Values or Labels is set.
type Column struct {
	Name    string
	Numeric bool
	Values  []float64 // NaN marks a missing cell
	Labels  []string  // "" marks a missing cell
}

// Missing counts missing cells
func (c *Column) Missing() int {
	n := 0
	if c.Numeric {
		for _, v := range c.Values {
			if math.IsNaN(v) {
				n++
			}
		}
		return n
	}
	for _, l := range c.Labels {
		if l == "" {
			n++
		}
	}
	return n
}

// Dataset is an in-memory, read-only copy of the CSV
type Dataset struct {
	Path    string
	Rows    int
	Columns []*Column

	index map[string]int
}

// Column looks a column up by header name
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.Columns[i], true
}

// NumericColumns returns numeric column names in header order
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, c := range d.Columns {
		if c.Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// numeric returns the values of a numeric column or an ErrUnknownColumn error
func (d *Dataset) numeric(name string) ([]float64, error) {
	c, ok := d.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownColumn, name)
	}
	if !c.Numeric {
		return nil, fmt.Errorf("%w %q: not numeric", ErrUnknownColumn, name)
	}
	return c.Values, nil
}

// Find loads the first dataset file the locator finds
func Find(loc locate.Locator) (*Dataset, error) {
	path, err := loc.FindFile()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetUnavailable, err)
	}
	return Load(path)
}

// Load reads a CSV file from disk
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset: open %s: %w", domain.ErrDatasetUnavailable, path, err)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset: %s: %w", domain.ErrDatasetUnavailable, path, err)
	}
	d.Path = path
	return d, nil
}

// Read parses CSV with a header row. A column is numeric when every
// non-missing cell parses as a float.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("header column %d is blank", i+1)
		}
		if _, dup := index[h]; dup {
			return nil, fmt.Errorf("duplicate header %q", h)
		}
		header[i] = h
		index[h] = i
	}

	raw := make([][]string, len(header))
	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rows+2, err)
		}
		for i, cell := range rec {
			cell = strings.TrimSpace(cell)
			if naValues[cell] {
				cell = ""
			}
			raw[i] = append(raw[i], cell)
		}
		rows++
	}

	d := &Dataset{Rows: rows, Columns: make([]*Column, len(header)), index: index}
	for i, name := range header {
		d.Columns[i] = buildColumn(name, raw[i])
	}
	return d, nil
}

func buildColumn(name string, cells []string) *Column {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return &Column{Name: name, Labels: cells}
		}
		if math.IsInf(v, 0) {
			// inf, Infinity and overflowing literals count as missing
			v = math.NaN()
		}
		values[i] = v
	}
	return &Column{Name: name, Numeric: true, Values: values}
}
