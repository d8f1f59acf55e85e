package files

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// stationMarker in a file's base name marks station metadata rather than trips.
const stationMarker = "Station"

// Listing partitions the CSV files found under a directory.
type Listing struct {
	CSV     []string
	Station []string
	Trip    []string
}

// ListFiles walks src recursively and returns absolute paths of every .csv file,
// split into station and trip files. Each list is sorted.
func ListFiles(src string) (Listing, error) {
	root, err := filepath.Abs(src)
	if err != nil {
		return Listing{}, fmt.Errorf("resolve %s: %w", src, err)
	}
	var listing Listing
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsCSV(path) {
			return nil
		}
		listing.CSV = append(listing.CSV, path)
		if IsStationFile(path) {
			listing.Station = append(listing.Station, path)
		} else {
			listing.Trip = append(listing.Trip, path)
		}
		return nil
	})
	if err != nil {
		return Listing{}, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(listing.CSV)
	sort.Strings(listing.Station)
	sort.Strings(listing.Trip)
	return listing, nil
}

// ListTripFiles returns the trip CSV files under src.
func ListTripFiles(src string) ([]string, error) {
	l, err := ListFiles(src)
	if err != nil {
		return nil, err
	}
	return l.Trip, nil
}

// ListStationFiles returns the station CSV files under src.
func ListStationFiles(src string) ([]string, error) {
	l, err := ListFiles(src)
	if err != nil {
		return nil, err
	}
	return l.Station, nil
}

func IsCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func IsStationFile(path string) bool {
	return strings.Contains(filepath.Base(path), stationMarker)
}
