package env

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Manager provides thread-safe access to environment variables and configuration settings.
// Values from the .env file take precedence over the process environment.
type Manager struct {
	envVars       map[string]string
	mutex         sync.RWMutex
	ToolEnvConfig // Embed ToolEnvConfig
}

type ToolEnvConfig struct {
	DbCredentials  *string
	DbDriver       *string
	DbPort         *int
	DbName         *string
	DbServiceName  *string
	FtpCredentials *string
	FtpPort        *int
	RedisHost      *string
	RedisPort      *string
	RedisDb        *int
	RedisUser      *string
	RedisPw        *string
	HttpProxy      *string
}

// NewManager loads filePath when it exists and populates ToolEnvConfig.
func NewManager(filePath string) (*Manager, error) {
	manager := &Manager{envVars: make(map[string]string)}
	if filePath != "" {
		err := manager.LoadEnvFile(filePath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}
	if err := manager.LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return manager, nil
}

// LoadConfig populates the embedded ToolEnvConfig fields, applying defaults for unset keys.
func (m *Manager) LoadConfig() error {
	dbCredentials, err := m.GetPathOrDefault("DB_CREDENTIALS", DefaultCredentialPath("my.txt"))
	if err != nil {
		return err
	}
	ftpCredentials, err := m.GetPathOrDefault("FTP_CREDENTIALS", DefaultCredentialPath("ftp.txt"))
	if err != nil {
		return err
	}
	dbDriver := m.GetOrDefault("DB_DRIVER", "mysql")
	dbName := m.GetOrDefault("DB_NAME", "")
	dbServiceName := m.GetOrDefault("DB_SERVICE_NAME", "")
	dbPort, err := m.GetIntOrDefault("DB_PORT", 0)
	if err != nil {
		return err
	}
	ftpPort, err := m.GetIntOrDefault("FTP_PORT", 21)
	if err != nil {
		return err
	}
	redisHost := m.GetOrDefault("REDIS_HOST", "")
	redisPort := m.GetOrDefault("REDIS_PORT", "6379")
	redisDB, err := m.GetIntOrDefault("REDIS_DB", 0)
	if err != nil {
		return err
	}
	redisUser := m.GetOrDefault("REDIS_USER", "")
	redisPw := m.GetOrDefault("REDIS_PW", "")
	httpProxy := m.GetOrDefault("HTTP_PROXY", "")

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.ToolEnvConfig = ToolEnvConfig{
		DbCredentials:  &dbCredentials,
		DbDriver:       &dbDriver,
		DbPort:         &dbPort,
		DbName:         &dbName,
		DbServiceName:  &dbServiceName,
		FtpCredentials: &ftpCredentials,
		FtpPort:        &ftpPort,
		RedisHost:      &redisHost,
		RedisPort:      &redisPort,
		RedisDb:        &redisDB,
		RedisUser:      &redisUser,
		RedisPw:        &redisPw,
		HttpProxy:      &httpProxy,
	}
	return nil
}

// LoadEnvFile loads environment variables from a file
func (m *Manager) LoadEnvFile(filePath string) error {
	if err := validateFilePath(filePath); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("could not open .env file: %w", err)
	}
	defer file.Close()

	tempVars := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := m.processLine(scanner.Text(), tempVars); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	m.mutex.Lock()
	m.envVars = tempVars
	m.mutex.Unlock()
	return nil
}

// Get retrieves a value from the .env file, falling back to the process environment
func (m *Manager) Get(key string) (string, bool) {
	m.mutex.RLock()
	value, exists := m.envVars[key]
	m.mutex.RUnlock()
	if exists {
		return value, true
	}
	return os.LookupEnv(key)
}

func (m *Manager) GetOrDefault(key, fallback string) string {
	if value, exists := m.Get(key); exists && value != "" {
		return value
	}
	return fallback
}

func (m *Manager) GetIntOrDefault(key string, fallback int) (int, error) {
	value, exists := m.Get(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidValue, key)
	}
	return n, nil
}

// GetPathOrDefault is GetOrDefault with a leading ~/ expanded to the home directory.
func (m *Manager) GetPathOrDefault(key, fallback string) (string, error) {
	value := m.GetOrDefault(key, fallback)
	if !strings.HasPrefix(value, "~/") {
		return value, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home + value[1:], nil
}

func (m *Manager) processLine(line string, tempVars map[string]string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, line)
	}

	key := strings.TrimSpace(parts[0])
	value := strings.Trim(strings.TrimSpace(parts[1]), `"`)

	if err := validateKeyValue(key, value); err != nil {
		return fmt.Errorf("invalid key-value pair: %w", err)
	}

	tempVars[key] = value
	return nil
}
