// Package dataset loads point batches from CSV into the flat row-major
// layout the indexes are built over.
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
)

// ErrNonFinite is returned when a coordinate parses as NaN or an infinity.
var ErrNonFinite = errors.New("dataset: non-finite coordinate")

// ErrRagged is returned when a row has a different number of columns than
// the rows before it.
var ErrRagged = errors.New("dataset: ragged row")

// Dataset is a batch of points stored row-major in Data.
type Dataset struct {
	Data   []float64
	N      int
	Dims   int
	Header []string // nil when the input had no header row
}

// Row returns a view of the i-th point.
func (d *Dataset) Row(i int) []float64 {
	return d.Data[i*d.Dims : (i+1)*d.Dims : (i+1)*d.Dims]
}

// LoadCSV reads a dataset from the CSV file at path.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses one point per record. A first record that does not parse
// as numbers is taken as a header. NaN and infinite coordinates are rejected
// with ErrNonFinite. Blank lines and lines starting with '#' are skipped.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	ds := &Dataset{}
	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		lineNo, _ := cr.FieldPos(0)

		row, err := parseRecord(rec)
		if err != nil {
			if first && !errors.Is(err, ErrNonFinite) {
				ds.Header = trimAll(rec)
				ds.Dims = len(rec)
				continue
			}
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if ds.N == 0 && ds.Header == nil {
			ds.Dims = len(row)
		}
		if len(row) != ds.Dims {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrRagged, lineNo, len(row), ds.Dims)
		}
		ds.Data = append(ds.Data, row...)
		ds.N++
	}
	return ds, nil
}

func parseRecord(rec []string) ([]float64, error) {
	row := make([]float64, len(rec))
	for i, field := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: column %d is %q", ErrNonFinite, i+1, strings.TrimSpace(field))
		}
		row[i] = v
	}
	return row, nil
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, s := range rec {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// ParsePoint parses a comma-separated coordinate list such as "1.5,-2,0".
func ParsePoint(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("dataset: empty point")
	}
	fields := strings.Split(s, ",")
	pt, err := parseRecord(fields)
	if err != nil {
		return nil, fmt.Errorf("dataset: parsing point %q: %w", s, err)
	}
	return pt, nil
}
