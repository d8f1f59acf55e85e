package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCredentials(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Credentials
		wantErr bool
	}{
		{"plain", "cs1:secret:db.example.com", Credentials{"cs1", "secret", "db.example.com"}, false},
		{"trailing newline", "cs1:secret:db.example.com\n", Credentials{"cs1", "secret", "db.example.com"}, false},
		{"ip host", "cs1:secret:10.0.0.7", Credentials{"cs1", "secret", "10.0.0.7"}, false},
		{"colon in password", "cs1:se:cr:et:localhost", Credentials{"cs1", "se:cr:et", "localhost"}, false},
		{"too few fields", "cs1:secret", Credentials{}, true},
		{"empty user", ":secret:localhost", Credentials{}, true},
		{"empty password", "cs1::localhost", Credentials{}, true},
		{"bad host", "cs1:secret:not a host", Credentials{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCredentials(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCredentials(t *testing.T) {
	p := filepath.Join(t.TempDir(), "my.txt")
	require.NoError(t, os.WriteFile(p, []byte("cs1:pw:localhost\n"), 0600))

	c, err := ReadCredentials(p)
	require.NoError(t, err)
	assert.Equal(t, "cs1", c.User)
	assert.Equal(t, "cs1@localhost", c.String())

	_, err = ReadCredentials(filepath.Join(t.TempDir(), "none.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultCredentialPath(t *testing.T) {
	assert.Equal(t, "~/.config/ftp.txt", DefaultCredentialPath("ftp.txt"))
}
