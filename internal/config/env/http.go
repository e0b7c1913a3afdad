package env

import (
	"fmt"
	"os"
	"time"

	"prize_wheel/internal/config"
)

const (
	httpAddressEnvName         = "HTTP_ADDRESS"
	httpShutdownTimeoutEnvName = "HTTP_SHUTDOWN_TIMEOUT"

	defaultHTTPAddress     = ":8080"
	defaultShutdownTimeout = 10 * time.Second
)

type httpConfig struct {
	address         string
	shutdownTimeout time.Duration
}

func NewHTTPConfig() (config.HTTPConfig, error) {
	address := os.Getenv(httpAddressEnvName)
	if len(address) == 0 {
		address = defaultHTTPAddress
	}

	timeout := defaultShutdownTimeout
	if raw := os.Getenv(httpShutdownTimeoutEnvName); len(raw) > 0 {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid http shutdown timeout: %w", err)
		}
		timeout = parsed
	}

	return &httpConfig{
		address:         address,
		shutdownTimeout: timeout,
	}, nil
}

func (cfg *httpConfig) Address() string {
	return cfg.address
}

func (cfg *httpConfig) ShutdownTimeout() time.Duration {
	return cfg.shutdownTimeout
}
