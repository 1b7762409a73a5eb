package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr            string
	DatabaseURL     string
	CatalogPath     string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	Debug           bool
}

type CLIConfig struct {
	APIBaseURL string
}

// LoadAPIFromEnv reads server configuration from the environment.
// DATABASE_URL is optional: without it the server runs on the in-memory
// store. CatalogPath empty means the embedded campaign.
func LoadAPIFromEnv() APIConfig {
	addr := strings.TrimSpace(os.Getenv("PORT"))
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("STACKUP_API_ADDR", ":8080")
	}

	return APIConfig{
		Addr:            addr,
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CatalogPath:     strings.TrimSpace(os.Getenv("STACKUP_CATALOG_PATH")),
		ShutdownTimeout: envDurationDefault("STACKUP_SHUTDOWN_TIMEOUT", 15*time.Second),
		RequestTimeout:  envDurationDefault("STACKUP_REQUEST_TIMEOUT", 60*time.Second),
		Debug:           envBoolDefault("STACKUP_DEBUG", false),
	}
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("SUP_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
