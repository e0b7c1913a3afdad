package env

import (
	"fmt"
	"os"
	"strconv"

	"prize_wheel/internal/config"
)

const (
	logModeEnvName  = "LOG_MODE"
	logLevelEnvName = "LOG_LEVEL"
	logDirEnvName   = "LOG_DIR"
	logFileEnvName  = "LOG_FILE"
)

type logConfig struct {
	mode  string
	level string
	dir   string
	file  bool
}

func NewLogConfig() (config.LogConfig, error) {
	cfg := &logConfig{
		mode:  os.Getenv(logModeEnvName),
		level: os.Getenv(logLevelEnvName),
		dir:   os.Getenv(logDirEnvName),
	}
	if len(cfg.mode) == 0 {
		cfg.mode = "dev"
	}
	if len(cfg.level) == 0 {
		cfg.level = "info"
	}
	if len(cfg.dir) == 0 {
		cfg.dir = "logs"
	}

	if raw := os.Getenv(logFileEnvName); len(raw) > 0 {
		file, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", logFileEnvName, err)
		}
		cfg.file = file
	}

	return cfg, nil
}

func (cfg *logConfig) Mode() string  { return cfg.mode }
func (cfg *logConfig) Level() string { return cfg.level }
func (cfg *logConfig) Dir() string   { return cfg.dir }
func (cfg *logConfig) File() bool    { return cfg.file }
