package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
)

var ErrColumnCount = errors.New("column count mismatch")

// Frame is a CSV table held in memory. Every row has exactly len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// Read parses a CSV stream whose first record is the header. Short rows are padded
// with empty cells and long rows are cut to the header width. A leading UTF-8 BOM is dropped.
func Read(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(unicode.UTF8BOM.NewDecoder().Reader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err == io.EOF {
		return &Frame{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	f := &Frame{Columns: slices.Clone(header)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(f.Rows)+1, err)
		}
		f.Rows = append(f.Rows, fit(rec, len(header)))
	}
	return f, nil
}

// ReadCSV loads the CSV file at path.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Write encodes the frame as CSV, header first.
func (f *Frame) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(f.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCSV writes the frame to path, creating parent directories.
func (f *Frame) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// Index returns the position of the first column called name, or -1.
func (f *Frame) Index(name string) int {
	return slices.Index(f.Columns, name)
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, bool) {
	i := f.Index(name)
	if i < 0 {
		return nil, false
	}
	out := make([]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		out = append(out, row[i])
	}
	return out, true
}

// Project returns a frame with exactly the keep columns in keep order. Columns absent
// from f come back empty; columns not named in keep are dropped.
func (f *Frame) Project(keep []string) *Frame {
	src := make([]int, len(keep))
	for i, k := range keep {
		src[i] = f.Index(k)
	}
	out := &Frame{Columns: slices.Clone(keep), Rows: make([][]string, 0, len(f.Rows))}
	for _, row := range f.Rows {
		projected := make([]string, len(keep))
		for i, j := range src {
			if j >= 0 {
				projected[i] = row[j]
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// Relabel replaces the column names positionally.
func (f *Frame) Relabel(columns []string) error {
	if len(columns) != len(f.Columns) {
		return fmt.Errorf("%w: have %d columns, labels for %d", ErrColumnCount, len(f.Columns), len(columns))
	}
	f.Columns = slices.Clone(columns)
	return nil
}

// Append adds the rows of other, which must share f's columns.
func (f *Frame) Append(other *Frame) error {
	if !slices.Equal(f.Columns, other.Columns) {
		return fmt.Errorf("%w: cannot append frames with different columns", ErrColumnCount)
	}
	f.Rows = append(f.Rows, other.Rows...)
	return nil
}

// ReadTripFrame reads dataFile and labels its columns with the header template's
// columns by position. The result holds the template's rows followed by the data rows.
func ReadTripFrame(headerFile, dataFile string) (*Frame, error) {
	template, err := ReadCSV(headerFile)
	if err != nil {
		return nil, fmt.Errorf("header template: %w", err)
	}
	data, err := ReadCSV(dataFile)
	if err != nil {
		return nil, err
	}
	if err := data.Relabel(template.Columns); err != nil {
		return nil, fmt.Errorf("%s: %w", dataFile, err)
	}
	out := &Frame{Columns: slices.Clone(template.Columns), Rows: slices.Clone(template.Rows)}
	if err := out.Append(data); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenDataFrame loads a reconciled trip file and projects it onto keep.
func OpenDataFrame(path string, keep []string) (*Frame, error) {
	log.Infof("Processing file: %s", filepath.Base(path))
	f, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	var dropped []string
	for _, c := range f.Columns {
		if !slices.Contains(keep, c) {
			dropped = append(dropped, c)
		}
	}
	log.WithField("columns", f.Columns).Debug("source columns")
	if len(dropped) > 0 {
		log.Infof("Columns to drop: %v", dropped)
	}
	out := f.Project(keep)
	log.Infof("New columns: %v", out.Columns)
	return out, nil
}

func fit(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}
