package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neckchi/tripsync/internal/dependencies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	newDependencies = dependencies.Build
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newBase(t *testing.T) string {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "data", "Divvy_Trips_2018_Q1.csv"),
		"trip_id,start_time,end_time,bikeid,usertype\n1,a,b,9,Subscriber\n2,c,d,8,Customer\n")
	writeFile(t, filepath.Join(base, "data", "Divvy_Stations_2017.csv"), "id,name\n1,x\n")
	return base
}

func runCmd(t *testing.T, base string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	full := append([]string{"-base", base, "-env", filepath.Join(base, ".env"), "-config", filepath.Join(base, "tripsync.yaml"), "-log-level", "error"}, args...)
	err := run(context.Background(), full, &out)
	return out.String(), err
}

func TestRunList(t *testing.T) {
	base := newBase(t)
	out, err := runCmd(t, base, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "trip files (1):")
	assert.Contains(t, out, "Divvy_Trips_2018_Q1.csv")
	assert.Contains(t, out, "station files (1):")
}

func TestRunReconcileThenValues(t *testing.T) {
	base := newBase(t)
	out, err := runCmd(t, base, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "ID,Start Time,End Time,Bike ID,User Type")

	clean, err := os.ReadFile(filepath.Join(base, "clean", "Divvy_Trips_2018_Q1.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(clean), "ID,Start Time,End Time,Bike ID,User Type\n1,a,b,9,Subscriber\n"))

	out, err = runCmd(t, base, "values", "-column", "User Type")
	require.NoError(t, err)
	assert.Equal(t, "Customer\nSubscriber\n", out)
}

func TestRunColumns(t *testing.T) {
	out, err := runCmd(t, newBase(t), "columns")
	require.NoError(t, err)
	assert.Equal(t, "bikeid\nend_time\nstart_time\ntrip_id\nusertype\n", out)
}

func TestRunFrame(t *testing.T) {
	base := newBase(t)
	writeFile(t, filepath.Join(base, "tripsync.yaml"), "keep_columns: [ID, User Type, Gender]\n")
	writeFile(t, filepath.Join(base, "clean", "t.csv"), "ID,Start Time,User Type\n1,a,Subscriber\n")

	out, err := runCmd(t, base, "frame", "-out", "-", "-file", filepath.Join(base, "clean", "t.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,User Type,Gender\n1,Subscriber,\n", out)

	staged := filepath.Join(base, "staged", "t.csv")
	out, err = runCmd(t, base, "frame", "-file", filepath.Join(base, "clean", "t.csv"))
	require.NoError(t, err)
	assert.Equal(t, staged+"\n", out)
	got, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "ID,User Type,Gender\n1,Subscriber,\n", string(got))
}

func TestRunTemplate(t *testing.T) {
	base := newBase(t)
	writeFile(t, filepath.Join(base, "header.csv"), "ID,Start Time\n")
	writeFile(t, filepath.Join(base, "raw.csv"), "x,y\n1,a\n")

	out, err := runCmd(t, base, "template", "-out", "-", "-file", filepath.Join(base, "raw.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Start Time\n1,a\n", out)

	_, err = runCmd(t, base, "template", "-file", filepath.Join(base, "raw.csv"))
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(base, "csv", "raw.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Start Time\n1,a\n", string(got))
}

func TestRunUserTypeAndHead(t *testing.T) {
	base := newBase(t)
	out, err := runCmd(t, base, "usertype", "member", "Customer", "robot")
	require.NoError(t, err)
	assert.Equal(t, "member\tM\nCustomer\tC\nrobot\t?\n", out)

	out, err = runCmd(t, base, "head", "-n", "1", "-file", filepath.Join(base, "data", "Divvy_Stations_2017.csv"))
	require.NoError(t, err)
	assert.Equal(t, "'id,name'\n", out)
}

func TestRunUsage(t *testing.T) {
	base := newBase(t)
	_, err := runCmd(t, base, "bogus")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, base, "download", "-bogus")
	assert.ErrorIs(t, err, errUsage)

	var out bytes.Buffer
	err = run(context.Background(), nil, &out)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, out.String(), "commands:")
}

func TestRunDBMissingCredentials(t *testing.T) {
	base := newBase(t)
	writeFile(t, filepath.Join(base, ".env"), "DB_CREDENTIALS="+filepath.Join(base, "my.txt")+"\n")
	_, err := runCmd(t, base, "db")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
