package service

import (
	"errors"
	"fmt"
	"os"

	"github.com/neckchi/tripsync/config/domain"
	log "github.com/sirupsen/logrus"
)

type ConfigService struct {
	Config   *domain.Config
	Location string
}

// Reload reads the config file and applies it. A missing file keeps the defaults.
func (s *ConfigService) Reload() error {
	if s.Location == "" {
		return nil
	}
	data, err := os.ReadFile(s.Location)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("No config file at %s, using defaults", s.Location)
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.Config.SetFromBytes(data); err != nil {
		return fmt.Errorf("%s: %w", s.Location, err)
	}
	log.Infof("Loaded config from %s", s.Location)
	return nil
}
