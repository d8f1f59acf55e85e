package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neckchi/tripsync/external"
	"github.com/neckchi/tripsync/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestRewriteHeader(t *testing.T) {
	r := NewReconciler(schema.Columns())
	tests := []struct {
		name      string
		in        string
		want      string
		unmatched []string
	}{
		{
			name: "legacy names",
			in:   "trip_id,start_time",
			want: "ID,Start Time",
		},
		{
			name: "canonical names stay",
			in:   "ID,Start Time,Gender",
			want: "ID,Start Time,Gender",
		},
		{
			name: "quoted tokens stay quoted",
			in:   `"01 - Rental Details Rental ID","01 - Rental Details Local Start Time",bikeid`,
			want: `"ID","Start Time",Bike ID`,
		},
		{
			name: "substring names are not clobbered",
			in:   "start_station_id,start_station_name,start_lat",
			want: "From Station ID,From Station Name,Start Latitude",
		},
		{
			name:      "unknown tokens are kept and reported",
			in:        "trip_id,weather,starttime",
			want:      "ID,weather,Start Time",
			unmatched: []string{"weather"},
		},
		{
			name:      "empty token",
			in:        "trip_id,,bikeid",
			want:      "ID,,Bike ID",
			unmatched: []string{""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unmatched := r.RewriteHeader(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.unmatched, unmatched)
		})
	}
}

func TestRewriteHeaderSmallMapping(t *testing.T) {
	m := schema.MustMapping(
		schema.Synonyms{Canonical: "ID", Names: []string{"trip_id", "ride_id"}},
		schema.Synonyms{Canonical: "Start Time", Names: []string{"start_time"}},
	)
	got, unmatched := NewReconciler(m).RewriteHeader("trip_id,start_time")
	assert.Equal(t, "ID,Start Time", got)
	assert.Empty(t, unmatched)
}

func TestRewriteHeaderCaseFolding(t *testing.T) {
	r := NewReconciler(schema.Columns(), WithCaseFolding())
	got, unmatched := r.RewriteHeader("TRIP_ID,StartTime")
	assert.Equal(t, "ID,Start Time", got)
	assert.Empty(t, unmatched)
}

func TestConsistCols(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	a := writeFile(t, src, "a.csv", "trip_id,start_time\n1,2019-01-01 00:04:37\n2,2019-01-01 00:08:13\n")
	b := writeFile(t, src, "nested/b.csv", "\ufeffride_id,rideable_type,started_at\r\nX1,electric_bike,2020-04-26 17:45:14\r\n")

	changes, err := NewReconciler(schema.Columns()).ConsistCols([]string{a, b}, dest)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	got, err := os.ReadFile(filepath.Join(dest, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Start Time\n1,2019-01-01 00:04:37\n2,2019-01-01 00:08:13\n", string(got))

	got, err = os.ReadFile(filepath.Join(dest, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Bike Type,Start Time\r\nX1,electric_bike,2020-04-26 17:45:14\r\n", string(got))

	assert.Equal(t, external.DivvyRides, changes[1].Provider)
	assert.Equal(t, "ride_id,rideable_type,started_at", changes[1].Before)
	assert.Equal(t, filepath.Join(dest, "b.csv"), changes[1].Dest)

	original, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "trip_id,start_time\n1,2019-01-01 00:04:37\n2,2019-01-01 00:08:13\n", string(original))
}

func TestReconcileFileInPlace(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "only_header.csv", "bikeid,tripduration")

	change, err := NewReconciler(schema.Columns()).ReconcileFile(p, "")
	require.NoError(t, err)
	assert.Equal(t, p, change.Dest)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "Bike ID,Duration", string(got))
}

func TestConsistColsMissingFile(t *testing.T) {
	_, err := NewReconciler(schema.Columns()).ConsistCols([]string{filepath.Join(t.TempDir(), "gone.csv")}, t.TempDir())
	assert.Error(t, err)
}
