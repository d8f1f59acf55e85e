package domain

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/neckchi/tripsync/internal/schema"
	"gopkg.in/yaml.v3"
)

var configValidate = validator.New(validator.WithRequiredStructEnabled())

// Dirs names the working directories relative to the base directory.
type Dirs struct {
	Data     string `yaml:"data" validate:"required"`
	Archive  string `yaml:"archive" validate:"required"`
	Download string `yaml:"download" validate:"required"`
	Clean    string `yaml:"clean" validate:"required"`
	CSV      string `yaml:"csv" validate:"required"`
	Staged   string `yaml:"staged" validate:"required"`
}

type HTTP struct {
	Timeout    time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxRetries int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay time.Duration `yaml:"retry_delay" validate:"gte=0"`
	UserAgent  string        `yaml:"user_agent"`
}

// Settings is the on-disk shape of the config file.
type Settings struct {
	BaseDir     string            `yaml:"base_dir"`
	Dirs        Dirs              `yaml:"dirs" validate:"required"`
	HeaderFile  string            `yaml:"header_file" validate:"required"`
	IndexFile   string            `yaml:"index_file" validate:"required"`
	KeepColumns []string          `yaml:"keep_columns" validate:"omitempty,dive,required"`
	Columns     []schema.Synonyms `yaml:"columns" validate:"omitempty,dive"`
	CaseFold    bool              `yaml:"case_fold"`
	HTTP        HTTP              `yaml:"http"`
}

// Paths are the absolute locations derived from Settings and a base directory.
type Paths struct {
	Base       string
	Data       string
	Archive    string
	Download   string
	Clean      string
	CSV        string
	Staged     string
	HeaderFile string
	IndexFile  string
}

// Config guards the active Settings.
type Config struct {
	lock     sync.RWMutex
	settings Settings
}

func DefaultSettings() Settings {
	return Settings{
		BaseDir: ".",
		Dirs: Dirs{
			Data:     "data",
			Archive:  "archive",
			Download: "download",
			Clean:    "clean",
			CSV:      "csv",
			Staged:   "staged",
		},
		HeaderFile: "header.csv",
		IndexFile:  "aws_index.txt",
		HTTP: HTTP{
			Timeout:    5 * time.Minute,
			MaxRetries: 2,
			RetryDelay: 2 * time.Second,
			UserAgent:  "tripsync",
		},
	}
}

func Default() *Config {
	return &Config{settings: DefaultSettings()}
}

// SetFromBytes overlays the YAML document on the defaults and validates the result.
// The active settings are untouched when parsing or validation fails.
func (c *Config) SetFromBytes(data []byte) error {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return err
	}
	if err := configValidate.Struct(s); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(s.Columns) > 0 {
		if _, err := schema.NewMapping(s.Columns...); err != nil {
			return fmt.Errorf("invalid column mapping: %w", err)
		}
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.settings = s
	return nil
}

// Settings returns a copy of the active settings.
func (c *Config) Settings() Settings {
	c.lock.RLock()
	defer c.lock.RUnlock()
	s := c.settings
	s.KeepColumns = slices.Clone(s.KeepColumns)
	s.Columns = slices.Clone(s.Columns)
	return s
}

// Resolve places every directory under base. An empty base uses the configured base_dir.
func (c *Config) Resolve(base string) (Paths, error) {
	s := c.Settings()
	if base == "" {
		base = s.BaseDir
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return Paths{}, err
	}
	join := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(abs, p)
	}
	return Paths{
		Base:       abs,
		Data:       join(s.Dirs.Data),
		Archive:    join(s.Dirs.Archive),
		Download:   join(s.Dirs.Download),
		Clean:      join(s.Dirs.Clean),
		CSV:        join(s.Dirs.CSV),
		Staged:     join(s.Dirs.Staged),
		HeaderFile: join(s.HeaderFile),
		IndexFile:  join(s.IndexFile),
	}, nil
}

// Mapping is the configured column table, or the built-in one when none is set.
func (c *Config) Mapping() schema.Mapping {
	s := c.Settings()
	if len(s.Columns) == 0 {
		return schema.Columns()
	}
	// validated in SetFromBytes
	return schema.MustMapping(s.Columns...)
}

// KeepColumns is the configured keep-list, or the built-in one when none is set.
func (c *Config) KeepColumns() []string {
	s := c.Settings()
	if len(s.KeepColumns) == 0 {
		return schema.KeepColumns()
	}
	return s.KeepColumns
}
