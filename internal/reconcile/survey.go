package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/neckchi/tripsync/internal/frame"
)

// UniqueTripColumns returns every distinct header token across files in the order
// first seen, unsorted. Tokens are trimmed of surrounding spaces.
func UniqueTripColumns(files []string) ([]string, error) {
	seen := make(map[string]bool)
	var cols []string
	for _, p := range files {
		line, err := readHeaderLine(p)
		if err != nil {
			return nil, err
		}
		for _, tok := range strings.Split(line, ",") {
			tok = strings.TrimSpace(tok)
			if !seen[tok] {
				seen[tok] = true
				cols = append(cols, tok)
			}
		}
	}
	return cols, nil
}

// FindTripColumns is UniqueTripColumns sorted.
func FindTripColumns(files []string) ([]string, error) {
	cols, err := UniqueTripColumns(files)
	if err != nil {
		return nil, err
	}
	slices.Sort(cols)
	return cols, nil
}

// UniqueValues collects the distinct non-empty values of column across the files
// that carry it, sorted.
func UniqueValues(files []string, column string) ([]string, error) {
	seen := make(map[string]bool)
	for _, p := range files {
		f, err := frame.ReadCSV(p)
		if err != nil {
			return nil, err
		}
		values, ok := f.Column(column)
		if !ok {
			continue
		}
		for _, v := range values {
			if v != "" {
				seen[v] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out, nil
}

func readHeaderLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadBytes('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read header of %s: %w", path, err)
	}
	return decodeHeader(trimNewline(line))
}

func trimNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		return b[:n-1]
	}
	return b
}
