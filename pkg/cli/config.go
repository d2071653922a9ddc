package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Fepozopo/canvasfill/pkg/canvas"
	"github.com/Fepozopo/canvasfill/pkg/paint"
)

// Config holds the canvas settings read from config.toml and the
// environment.
type Config struct {
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	Background      string `toml:"background"`
	StrokeColor     string `toml:"stroke_color"`
	LineWidth       int    `toml:"line_width"`
	BucketTolerance int    `toml:"bucket_tolerance"`
	Strategy        string `toml:"strategy"`
	Preview         bool   `toml:"preview"`
}

const configFile = "config.toml"

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Width:       800,
		Height:      600,
		Background:  "white",
		StrokeColor: "black",
		LineWidth:   canvas.DefaultLineWidth,
		Strategy:    paint.StrategyPixel.String(),
		Preview:     true,
	}
}

// ConfigDir is $XDG_CONFIG_HOME/canvasfill, falling back to
// ~/.config/canvasfill.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, "canvasfill")
}

// DefaultConfigPath is the config file inside ConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), configFile)
}

// LoadEnv reads a .env file from the working directory if one exists.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// LoadConfig reads path over DefaultConfig. A missing file is not an
// error. Unknown keys are reported on stderr and otherwise ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath()
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			debugf("no config file at %s", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("couldn't read config file %s: %w", path, err)
	}
	for _, k := range md.Undecoded() {
		fmt.Fprintf(os.Stderr, "config: ignoring unknown key %q in %s\n", k.String(), path)
	}
	debugf("loaded config from %s", path)
	return cfg, nil
}

// WriteConfig writes cfg to path, creating the directory if needed.
func WriteConfig(path string, cfg Config) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("couldn't create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("couldn't encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("couldn't write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with CANVASFILL_WIDTH, CANVASFILL_HEIGHT,
// CANVASFILL_BACKGROUND, CANVASFILL_STROKE, CANVASFILL_TOLERANCE and
// CANVASFILL_STRATEGY when they are set.
func (cfg *Config) ApplyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"CANVASFILL_WIDTH", &cfg.Width},
		{"CANVASFILL_HEIGHT", &cfg.Height},
		{"CANVASFILL_TOLERANCE", &cfg.BucketTolerance},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: expected integer, got %q", e.key, v)
		}
		*e.dst = n
	}
	if v := os.Getenv("CANVASFILL_BACKGROUND"); v != "" {
		cfg.Background = v
	}
	if v := os.Getenv("CANVASFILL_STROKE"); v != "" {
		cfg.StrokeColor = v
	}
	if v := os.Getenv("CANVASFILL_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	return nil
}

// CanvasOptions validates cfg and converts it for canvas.New.
func (cfg Config) CanvasOptions() (canvas.Options, error) {
	opts := canvas.Options{
		Width:           cfg.Width,
		Height:          cfg.Height,
		LineWidth:       cfg.LineWidth,
		BucketTolerance: cfg.BucketTolerance,
	}
	var err error
	if cfg.Background != "" {
		if opts.Background, err = paint.ParseColor(cfg.Background); err != nil {
			return opts, fmt.Errorf("config background: %w", err)
		}
	}
	if cfg.StrokeColor != "" {
		if opts.StrokeColor, err = paint.ParseColor(cfg.StrokeColor); err != nil {
			return opts, fmt.Errorf("config stroke_color: %w", err)
		}
	}
	if opts.Strategy, err = paint.ParseStrategy(cfg.Strategy); err != nil {
		return opts, fmt.Errorf("config strategy: %w", err)
	}
	return opts, nil
}
