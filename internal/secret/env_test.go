package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("DB_DRIVER", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	m, err := NewManager(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "mysql", *m.DbDriver)
	assert.Equal(t, 0, *m.DbPort)
	assert.Equal(t, 21, *m.FtpPort)
	assert.Equal(t, "", *m.RedisHost)
	assert.Equal(t, "6379", *m.RedisPort)
	assert.Equal(t, filepath.Join(home, ".config", "my.txt"), filepath.FromSlash(*m.DbCredentials))
}

func TestNewManagerFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte(`
# connection settings
DB_DRIVER=oracle
DB_PORT=1521
DB_SERVICE_NAME="XEPDB1"
REDIS_HOST=localhost
REDIS_DB=2
DB_CREDENTIALS=/etc/tripsync/db.txt
`), 0600))

	m, err := NewManager(p)
	require.NoError(t, err)
	assert.Equal(t, "oracle", *m.DbDriver)
	assert.Equal(t, 1521, *m.DbPort)
	assert.Equal(t, "XEPDB1", *m.DbServiceName)
	assert.Equal(t, "localhost", *m.RedisHost)
	assert.Equal(t, 2, *m.RedisDb)
	assert.Equal(t, "/etc/tripsync/db.txt", *m.DbCredentials)
}

func TestFileOverridesProcessEnvironment(t *testing.T) {
	t.Setenv("FTP_PORT", "2121")
	t.Setenv("DB_NAME", "divvy")
	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte("FTP_PORT=990\n"), 0600))

	m, err := NewManager(p)
	require.NoError(t, err)
	assert.Equal(t, 990, *m.FtpPort)
	assert.Equal(t, "divvy", *m.DbName)
}

func TestNewManagerErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"missing equals", "DB_DRIVER\n", ErrInvalidFormat},
		{"bad key", "1DB=x\n", ErrInvalidKey},
		{"bad int", "DB_PORT=abc\n", ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(p, []byte(tt.content), 0600))
			_, err := NewManager(p)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	assert.NoError(t, validateFilePath(".env"))
	assert.NoError(t, validateFilePath("/etc/tripsync/.env"))
	assert.NoError(t, validateFilePath("conf/..env"))
	assert.ErrorIs(t, validateFilePath("../.env"), ErrInvalidPath)
	assert.ErrorIs(t, validateFilePath(""), ErrInvalidPath)
}
