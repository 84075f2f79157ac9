package config

import (
	"flag"
	"testing"
	"time"

	"github.com/AyGoub/gramview/internal/session"
)

func parseFlags(t *testing.T, args ...string) *flag.FlagSet {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return fs
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Host != "127.0.0.1" || cfg.Port != 8080 {
		t.Errorf("default bind = %s:%d, want 127.0.0.1:8080",
			cfg.Host, cfg.Port)
	}
	if cfg.GapSeconds != 1800 {
		t.Errorf("GapSeconds = %d, want 1800", cfg.GapSeconds)
	}
	if cfg.TrailingSeconds != 300 {
		t.Errorf("TrailingSeconds = %d, want 300", cfg.TrailingSeconds)
	}
	if cfg.MinEvents != 10 {
		t.Errorf("MinEvents = %d, want 10", cfg.MinEvents)
	}
	if cfg.ThemeStrategy != ThemeModulo {
		t.Errorf("ThemeStrategy = %q, want %q",
			cfg.ThemeStrategy, ThemeModulo)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadLayering(t *testing.T) {
	t.Setenv("GRAMVIEW_PORT", "9000")
	t.Setenv("GRAMVIEW_GAP_SECONDS", "600")
	t.Setenv("GRAMVIEW_ARCHIVE", "/tmp/export")

	// Flags beat the environment, but only when explicitly set.
	fs := parseFlags(t, "-port", "9999")
	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want flag value 9999", cfg.Port)
	}
	if cfg.GapSeconds != 600 {
		t.Errorf("GapSeconds = %d, want env value 600", cfg.GapSeconds)
	}
	if cfg.ArchivePath != "/tmp/export" {
		t.Errorf("ArchivePath = %q, want env value", cfg.ArchivePath)
	}
	if cfg.MinEvents != 10 {
		t.Errorf("MinEvents = %d, want default 10", cfg.MinEvents)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero port", func(c *Config) { c.Port = 0 }, false},
		{"huge port", func(c *Config) { c.Port = 70000 }, false},
		{"zero gap", func(c *Config) { c.GapSeconds = 0 }, false},
		{"negative trailing",
			func(c *Config) { c.TrailingSeconds = -5 }, false},
		{"zero min events", func(c *Config) { c.MinEvents = 0 }, false},
		{"bad strategy",
			func(c *Config) { c.ThemeStrategy = "ml" }, false},
		{"random strategy",
			func(c *Config) { c.ThemeStrategy = ThemeRandom }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := Default()
	cfg.GapSeconds = 900
	cfg.TrailingSeconds = 60
	cfg.MinEvents = 5

	opts := cfg.SessionOptions()
	if opts.GapThreshold != 15*time.Minute {
		t.Errorf("GapThreshold = %s, want 15m", opts.GapThreshold)
	}
	if opts.TrailingAllowance != time.Minute {
		t.Errorf("TrailingAllowance = %s, want 1m", opts.TrailingAllowance)
	}
	if opts.MinEvents != 5 {
		t.Errorf("MinEvents = %d, want 5", opts.MinEvents)
	}
}

func TestTagger(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.Tagger().(session.ModuloTagger); !ok {
		t.Errorf("default Tagger() = %T, want ModuloTagger", cfg.Tagger())
	}

	cfg.ThemeStrategy = ThemeRandom
	cfg.ThemeSeed = 7
	rt, ok := cfg.Tagger().(session.RandomTagger)
	if !ok {
		t.Fatalf("random Tagger() = %T, want RandomTagger", cfg.Tagger())
	}

	// A fixed seed makes the strategy reproducible.
	themes := []string{"A", "B", "C", "D", "E"}
	other := cfg.Tagger().(session.RandomTagger)
	for i := 0; i < 20; i++ {
		s := session.Session{ID: i}
		if rt.Tag(s, themes) != other.Tag(s, themes) {
			t.Fatal("same seed produced different tag sequences")
		}
	}
}
