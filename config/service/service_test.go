package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neckchi/tripsync/config/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tripsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("header_file: template.csv\n"), 0o644))

	s := &ConfigService{Config: domain.Default(), Location: path}
	require.NoError(t, s.Reload())
	assert.Equal(t, "template.csv", s.Config.Settings().HeaderFile)
}

func TestReloadMissingFileKeepsDefaults(t *testing.T) {
	s := &ConfigService{Config: domain.Default(), Location: filepath.Join(t.TempDir(), "none.yaml")}
	require.NoError(t, s.Reload())
	assert.Equal(t, "header.csv", s.Config.Settings().HeaderFile)
}

func TestReloadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("header_file: \"\"\n"), 0o644))

	s := &ConfigService{Config: domain.Default(), Location: path}
	assert.ErrorContains(t, s.Reload(), path)
}
