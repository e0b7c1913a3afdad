package env

import (
	"os"

	"prize_wheel/internal/config"
)

const (
	dsnName = "PG_DSN"
)

type pgConfig struct {
	dsn string
}

// NewPGConfig - a missing DSN is not an error, it disables spin history
func NewPGConfig() (config.PGConfig, error) {
	return &pgConfig{
		dsn: os.Getenv(dsnName),
	}, nil
}

func (cfg *pgConfig) DSN() string {
	return cfg.dsn
}

func (cfg *pgConfig) Enabled() bool {
	return len(cfg.dsn) > 0
}
