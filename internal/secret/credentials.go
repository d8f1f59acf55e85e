package env

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var credentialValidate = validator.New(validator.WithRequiredStructEnabled())

// Credentials is a login read from a colon delimited user:password:host file.
type Credentials struct {
	User     string `validate:"required"`
	Password string `validate:"required"`
	Host     string `validate:"required,hostname_rfc1123|ip"`
}

// DefaultCredentialPath is where credential files live unless configured otherwise.
func DefaultCredentialPath(name string) string {
	return filepath.ToSlash(filepath.Join("~", ".config", name))
}

// ParseCredentials splits user:password:host. The password may itself contain colons;
// the first field is the user and the last the host.
func ParseCredentials(text string) (Credentials, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) < 3 {
		return Credentials{}, fmt.Errorf("%w: expected user:password:host", ErrInvalidFormat)
	}
	c := Credentials{
		User:     strings.TrimSpace(parts[0]),
		Password: strings.Join(parts[1:len(parts)-1], ":"),
		Host:     strings.TrimSpace(parts[len(parts)-1]),
	}
	if err := credentialValidate.Struct(c); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return c, nil
}

// ReadCredentials parses the credential file at path.
func ReadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, err
	}
	c, err := ParseCredentials(string(data))
	if err != nil {
		return Credentials{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// String hides the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s@%s", c.User, c.Host)
}
