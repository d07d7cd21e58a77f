package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/hearth/internal/grocery"
	"github.com/dukerupert/hearth/internal/model"
)

// Config holds the service configuration read from HEARTH_* environment
// variables.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	// RandomSeed fixes the lottery source when HasSeed is set.
	RandomSeed uint64
	HasSeed    bool

	DietaryMatch    model.DietaryMatch
	GroceryScaling  grocery.Scaling
	GenerateTimeout time.Duration
	GenerateRate    int
	WeekStart       time.Weekday
}

// NewFromEnv creates a Config from the environment. Unset variables take
// their defaults; malformed ones are an error.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		Port:            envOr("HEARTH_PORT", "8080"),
		DBPath:          envOr("HEARTH_DB_PATH", "hearth.db"),
		LogLevel:        envOr("HEARTH_LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(envOr("HEARTH_LOG_FORMAT", "text")),
		DietaryMatch:    model.DietaryMatch(strings.ToLower(envOr("HEARTH_DIETARY_MATCH", string(model.MatchAny)))),
		GroceryScaling:  grocery.Scaling(strings.ToLower(envOr("HEARTH_GROCERY_SCALING", string(grocery.ScaleFlat)))),
		GenerateTimeout: 10 * time.Second,
		GenerateRate:    10,
		WeekStart:       time.Monday,
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("HEARTH_PORT must be a number, got %q", cfg.Port)
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("HEARTH_LOG_LEVEL must be debug, info, warn or error, got %q", cfg.LogLevel)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("HEARTH_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if v := os.Getenv("HEARTH_RANDOM_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("HEARTH_RANDOM_SEED must be an unsigned integer, got %q", v)
		}
		cfg.RandomSeed, cfg.HasSeed = seed, true
	}

	if !cfg.DietaryMatch.Valid() {
		return nil, fmt.Errorf("HEARTH_DIETARY_MATCH must be any or all, got %q", cfg.DietaryMatch)
	}

	if !cfg.GroceryScaling.Valid() {
		return nil, fmt.Errorf("HEARTH_GROCERY_SCALING must be flat or ratio, got %q", cfg.GroceryScaling)
	}

	if v := os.Getenv("HEARTH_GENERATE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("HEARTH_GENERATE_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.GenerateTimeout = d
	}

	if v := os.Getenv("HEARTH_GENERATE_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("HEARTH_GENERATE_RATE must be a positive integer, got %q", v)
		}
		cfg.GenerateRate = n
	}

	if v := os.Getenv("HEARTH_WEEK_START"); v != "" {
		day, ok := parseWeekday(v)
		if !ok {
			return nil, fmt.Errorf("HEARTH_WEEK_START must be a day of the week, got %q", v)
		}
		cfg.WeekStart = day
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}
