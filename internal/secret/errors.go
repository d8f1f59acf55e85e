package env

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrInvalidPath   = errors.New("invalid file path")
	ErrInvalidFormat = errors.New("invalid line format")
	ErrEmptyKey      = errors.New("empty key not allowed")
	ErrInvalidKey    = errors.New("invalid key")
	ErrInvalidValue  = errors.New("invalid value")
)

const maxValueLength = 64 * 1024

// validateFilePath refuses relative paths that climb out of the working directory.
func validateFilePath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) && (clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))) {
		return ErrInvalidPath
	}
	return nil
}

// validateKey accepts shell style names: a letter or underscore, then letters, digits or underscores.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	for i, char := range key {
		if i == 0 && !unicode.IsLetter(char) && char != '_' {
			return fmt.Errorf("%w: must start with letter or underscore", ErrInvalidKey)
		}
		if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
			return fmt.Errorf("%w: invalid character %q", ErrInvalidKey, char)
		}
	}
	return nil
}

func validateKeyValue(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if len(value) > maxValueLength {
		return fmt.Errorf("%w: maximum length is %d", ErrInvalidValue, maxValueLength)
	}
	return nil
}
