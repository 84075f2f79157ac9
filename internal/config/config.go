// Package config loads gramview configuration by layering:
// defaults < .env file < environment < flags. Only flags that
// were explicitly set override the lower layers.
package config

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/AyGoub/gramview/internal/session"
)

// Theme tagging strategies.
const (
	ThemeModulo = "modulo" // deterministic default
	ThemeRandom = "random" // demonstration baseline
)

// Config holds all application configuration.
type Config struct {
	Host      string
	Port      int
	NoBrowser bool

	// ArchivePath is the export to analyze: a zip file or an
	// extracted directory. Empty means start without data and
	// wait for an upload.
	ArchivePath string

	// Watch re-runs the analysis when a directory archive
	// changes on disk.
	Watch bool

	GapSeconds      int // inactivity gap that splits sessions
	TrailingSeconds int // allowance added per session
	MinEvents       int // minimum sample size for analysis
	ThemeStrategy   string
	ThemeSeed       int64 // seed for the random strategy
}

// Default returns a Config with default values.
func Default() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8080,
		GapSeconds:      int(session.DefaultGapThreshold.Seconds()),
		TrailingSeconds: int(session.DefaultTrailingAllowance.Seconds()),
		MinEvents:       10,
		ThemeStrategy:   ThemeModulo,
	}
}

// RegisterFlags registers the serve flags on fs.
func RegisterFlags(fs *flag.FlagSet) {
	d := Default()
	fs.String("host", d.Host, "host to bind to")
	fs.Int("port", d.Port, "port to listen on")
	fs.Bool("no-browser", false, "don't open browser on startup")
	fs.String("archive", "", "archive zip or directory to analyze")
	fs.Bool("watch", false, "re-analyze when the archive directory changes")
	fs.Int("gap-seconds", d.GapSeconds,
		"inactivity gap that starts a new session")
	fs.Int("trailing-seconds", d.TrailingSeconds,
		"trailing-activity allowance per session")
	fs.Int("min-events", d.MinEvents,
		"minimum total events required for analysis")
	fs.String("theme-strategy", d.ThemeStrategy,
		"theme tagging strategy: modulo or random")
	fs.Int64("theme-seed", 0, "seed for the random theme strategy")
}

// Load builds a Config from defaults, .env, environment, and the
// already-parsed FlagSet, then validates it.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg := Default()

	// .env is optional; when present its values act as extra
	// environment defaults.
	_ = godotenv.Load()

	cfg.loadEnv()
	cfg.applyFlags(fs)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) loadEnv() {
	envString("GRAMVIEW_HOST", &c.Host)
	envInt("GRAMVIEW_PORT", &c.Port)
	envString("GRAMVIEW_ARCHIVE", &c.ArchivePath)
	envInt("GRAMVIEW_GAP_SECONDS", &c.GapSeconds)
	envInt("GRAMVIEW_TRAILING_SECONDS", &c.TrailingSeconds)
	envInt("GRAMVIEW_MIN_EVENTS", &c.MinEvents)
	envString("GRAMVIEW_THEME_STRATEGY", &c.ThemeStrategy)
}

// applyFlags copies explicitly-set flags over the config.
func (c *Config) applyFlags(fs *flag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			c.Host = f.Value.String()
		case "port":
			c.Port, _ = strconv.Atoi(f.Value.String())
		case "no-browser":
			c.NoBrowser = f.Value.String() == "true"
		case "archive":
			c.ArchivePath = f.Value.String()
		case "watch":
			c.Watch = f.Value.String() == "true"
		case "gap-seconds":
			c.GapSeconds, _ = strconv.Atoi(f.Value.String())
		case "trailing-seconds":
			c.TrailingSeconds, _ = strconv.Atoi(f.Value.String())
		case "min-events":
			c.MinEvents, _ = strconv.Atoi(f.Value.String())
		case "theme-strategy":
			c.ThemeStrategy = f.Value.String()
		case "theme-seed":
			c.ThemeSeed, _ = strconv.ParseInt(f.Value.String(), 10, 64)
		}
	})
}

// Validate fails fast on configuration the pipeline would
// reject, before any archive is read.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.ThemeStrategy != ThemeModulo &&
		c.ThemeStrategy != ThemeRandom {
		return fmt.Errorf(
			"unknown theme strategy %q (want %s or %s)",
			c.ThemeStrategy, ThemeModulo, ThemeRandom,
		)
	}
	return c.SessionOptions().Validate()
}

// SessionOptions converts the configured thresholds into
// pipeline options.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		GapThreshold:      time.Duration(c.GapSeconds) * time.Second,
		TrailingAllowance: time.Duration(c.TrailingSeconds) * time.Second,
		MinEvents:         c.MinEvents,
	}
}

// Tagger builds the configured theme tagger. The random
// strategy is seeded from ThemeSeed when set, so runs can be
// made reproducible.
func (c Config) Tagger() session.Tagger {
	if c.ThemeStrategy == ThemeRandom {
		seed := c.ThemeSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return session.RandomTagger{
			Rand: rand.New(rand.NewSource(seed)),
		}
	}
	return session.ModuloTagger{}
}
