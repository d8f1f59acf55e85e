package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(root, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("a,b\n1,2\n"), 0644))
	}
}

func TestListFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir,
		"Divvy_Trips_2019_Q1.csv",
		"Divvy_Stations_2017_Q1Q2.csv",
		"2020/202004-divvy-tripdata.csv",
		"2016/Divvy_Stations_2016_Q3.csv",
		"README.txt",
		"2016/notes.md",
	)

	l, err := ListFiles(tmpDir)
	require.NoError(t, err)

	rel := func(paths []string) []string {
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			assert.True(t, filepath.IsAbs(p), p)
			r, err := filepath.Rel(tmpDir, p)
			require.NoError(t, err)
			out = append(out, filepath.ToSlash(r))
		}
		return out
	}

	assert.Equal(t, []string{
		"2016/Divvy_Stations_2016_Q3.csv",
		"2020/202004-divvy-tripdata.csv",
		"Divvy_Stations_2017_Q1Q2.csv",
		"Divvy_Trips_2019_Q1.csv",
	}, rel(l.CSV))
	assert.Equal(t, []string{
		"2016/Divvy_Stations_2016_Q3.csv",
		"Divvy_Stations_2017_Q1Q2.csv",
	}, rel(l.Station))
	assert.Equal(t, []string{
		"2020/202004-divvy-tripdata.csv",
		"Divvy_Trips_2019_Q1.csv",
	}, rel(l.Trip))
}

func TestListTripAndStationFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, "a_Station.csv", "trips.csv", "Station/trips.csv")

	trips, err := ListTripFiles(tmpDir)
	require.NoError(t, err)
	assert.Len(t, trips, 2, "a Station directory does not make its files station files")

	stations, err := ListStationFiles(tmpDir)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "a_Station.csv", filepath.Base(stations[0]))
}

func TestListFilesMissingDir(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestListFilesEmptyDir(t *testing.T) {
	l, err := ListFiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, l.CSV)
	assert.Empty(t, l.Trip)
	assert.Empty(t, l.Station)
}
