package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/hr-dashboard/internal/logging"
)

const envPrefix = "DASHBOARD_"

// ErrBackendNotConfigured is returned by RequireBackend when no backend URL is set.
var ErrBackendNotConfigured = errors.New("required environment variable is not set: " + envPrefix + "BACKEND_URL")

// Config captures environment driven configuration values for the dashboard.
type Config struct {
	HTTPPort           int
	BackendURL         string
	APIToken           string
	RequestTimeout     time.Duration
	CacheTTL           time.Duration
	CacheSize          int
	RedisAddr          string
	WeeklyTargetHours  float64
	MonthlyTargetHours float64
	DonutRadius        float64
	Location           *time.Location
	LogLevel           slog.Level
	FixtureDSN         string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Every malformed variable is reported
// in a single error so operators can fix them in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		RequestTimeout:     10 * time.Second,
		CacheTTL:           time.Minute,
		CacheSize:          256,
		WeeklyTargetHours:  40,
		MonthlyTargetHours: 160,
		DonutRadius:        80,
		Location:           time.Local,
		LogLevel:           slog.LevelInfo,
		FixtureDSN:         ":memory:",
	}

	invalid := make([]string, 0, 2)

	if value := lookup("HTTP_PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, envPrefix+"HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if value := lookup("BACKEND_URL"); value != "" {
		parsed, err := url.Parse(value)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			invalid = append(invalid, envPrefix+"BACKEND_URL")
		} else {
			cfg.BackendURL = value
		}
	}

	cfg.APIToken = lookup("API_TOKEN")
	cfg.RedisAddr = lookup("REDIS_ADDR")

	if value := lookup("FIXTURE_DSN"); value != "" {
		cfg.FixtureDSN = value
	}

	parseDuration("REQUEST_TIMEOUT", &cfg.RequestTimeout, &invalid)
	parseDuration("CACHE_TTL", &cfg.CacheTTL, &invalid)

	if value := lookup("CACHE_SIZE"); value != "" {
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			invalid = append(invalid, envPrefix+"CACHE_SIZE")
		} else {
			cfg.CacheSize = size
		}
	}

	parsePositiveFloat("WEEKLY_TARGET_HOURS", &cfg.WeeklyTargetHours, &invalid)
	parsePositiveFloat("MONTHLY_TARGET_HOURS", &cfg.MonthlyTargetHours, &invalid)
	parsePositiveFloat("DONUT_RADIUS", &cfg.DonutRadius, &invalid)

	if value := lookup("LOCATION"); value != "" {
		loc, err := time.LoadLocation(value)
		if err != nil {
			invalid = append(invalid, envPrefix+"LOCATION")
		} else {
			cfg.Location = loc
		}
	}

	if value := lookup("LOG_LEVEL"); value != "" {
		level, err := logging.ParseLevel(value)
		if err != nil {
			invalid = append(invalid, envPrefix+"LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// RequireBackend reports ErrBackendNotConfigured when commands that talk to
// the HR backend have no URL to use.
func (c Config) RequireBackend() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return ErrBackendNotConfigured
	}
	return nil
}

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

func parseDuration(name string, target *time.Duration, invalid *[]string) {
	value := lookup(name)
	if value == "" {
		return
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		*invalid = append(*invalid, envPrefix+name)
		return
	}
	*target = parsed
}

func parsePositiveFloat(name string, target *float64, invalid *[]string) {
	value := lookup(name)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		*invalid = append(*invalid, envPrefix+name)
		return
	}
	*target = parsed
}
