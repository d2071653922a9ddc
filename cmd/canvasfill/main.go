package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Fepozopo/canvasfill/pkg/canvas"
	"github.com/Fepozopo/canvasfill/pkg/cli"
)

const helpBanner = `Canvas Fill %s

A terminal drawing canvas with a bucket fill tool.

Usage: canvasfill [flags] [image]
`

var (
	configPath  = flag.String("config", "", "Config file (default $XDG_CONFIG_HOME/canvasfill/config.toml)")
	width       = flag.Int("width", 0, "Canvas width, overrides the config")
	height      = flag.Int("height", 0, "Canvas height, overrides the config")
	tolerance   = flag.Int("tolerance", -1, "Bucket tolerance, overrides the config")
	noPreview   = flag.Bool("no-preview", false, "Disable inline terminal previews")
	writeConfig = flag.Bool("write-config", false, "Write the effective config file and exit")
	debug       = flag.Bool("debug", false, "Log fills and diagnostics to stderr")
	version     = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, cli.Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println(cli.Version)
		return
	}

	if err := cli.LoadEnv(); err != nil {
		log.Fatal(err)
	}
	if *debug || cli.DebugFromEnv() {
		cli.SetDebug(true)
		canvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := cli.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatal(err)
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *tolerance >= 0 {
		cfg.BucketTolerance = *tolerance
	}
	if *noPreview {
		cfg.Preview = false
	}

	if *writeConfig {
		if err := cli.WriteConfig(*configPath, cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.RunCLI(ctx, cfg, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "canvasfill: %v\n", err)
		stop()
		os.Exit(1)
	}
}
