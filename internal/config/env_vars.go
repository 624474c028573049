package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	PortEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	publicDirEnvVar = "PUBLIC_DIR"
	envEnvVar       = "ENV"

	DefaultEnvFile = ".env"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(PortEnvVar, "3000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Mail Gateway")
}

// GetPublicDir returns the directory static assets are served from.
// Empty means the embedded default assets are used.
func (EnvVars) GetPublicDir() string {
	return GetEnv(publicDirEnvVar, "")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envEnvVar, "DEV")
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
// Variables that are already set are not overridden. A missing file is only
// an error when required is true.
func LoadEnvFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("[config LoadEnvFile] %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("[config LoadEnvFile] %s: %w", path, err)
	}
	return nil
}

func GetEnv(envVar, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value, ok := os.LookupEnv(envVar)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(envVar)
	if !ok {
		return defaultValue
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
