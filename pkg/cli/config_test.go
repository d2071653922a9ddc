package cli

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Fepozopo/canvasfill/pkg/paint"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
width = 320
height = 200
background = "#102030"
bucket_tolerance = 8
strategy = "span"
preview = false
unknown_key = 1
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.Width, want.Height = 320, 200
	want.Background = "#102030"
	want.BucketTolerance = 8
	want.Strategy = "span"
	want.Preview = false
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("width = \"wide\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected type error")
	}
}

func TestWriteConfigCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "canvasfill", "config.toml")
	cfg := DefaultConfig()
	cfg.Width = 42
	if err := WriteConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 42 {
		t.Fatalf("expected width 42 after write, got %d", got.Width)
	}
}

func TestConfigDirXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigPath(); got != "/tmp/xdg/canvasfill/config.toml" {
		t.Fatalf("unexpected config path %q", got)
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/someone")
	if got := ConfigDir(); got != "/home/someone/.config/canvasfill" {
		t.Fatalf("unexpected fallback dir %q", got)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CANVASFILL_WIDTH", "640")
	t.Setenv("CANVASFILL_HEIGHT", "")
	t.Setenv("CANVASFILL_BACKGROUND", "navy")
	t.Setenv("CANVASFILL_TOLERANCE", "3")
	t.Setenv("CANVASFILL_STRATEGY", "span")
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 640 || cfg.Height != 600 || cfg.Background != "navy" || cfg.BucketTolerance != 3 || cfg.Strategy != "span" {
		t.Fatalf("unexpected config after env: %+v", cfg)
	}

	t.Setenv("CANVASFILL_HEIGHT", "tall")
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatalf("expected error for non-integer height")
	}
}

func TestCanvasOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = "10,20,30"
	cfg.Strategy = "span"
	opts, err := cfg.CanvasOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Background != (color.NRGBA{10, 20, 30, 255}) || opts.Strategy != paint.StrategySpan {
		t.Fatalf("unexpected options %+v", opts)
	}

	cfg.StrokeColor = "#12"
	if _, err := cfg.CanvasOptions(); err == nil {
		t.Fatalf("expected stroke color error")
	}
	cfg.StrokeColor = "black"
	cfg.Strategy = "zigzag"
	if _, err := cfg.CanvasOptions(); err == nil {
		t.Fatalf("expected strategy error")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	if err := LoadEnv(); err != nil {
		t.Fatalf("missing .env should not fail: %v", err)
	}
	const key = "CANVASFILL_DOTENV_TEST"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(key) })
	if err := LoadEnv(); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}
