// Command meshfair loads a triangle mesh, runs one fairing operation
// described by a gcfg configuration file and writes the resulting mesh,
// a color coded curvature preview and a curvature histogram.
//
// Usage:
//
//	meshfair -example > fair.cfg
//	meshfair -config fair.cfg
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soypat/meshfair"
	"github.com/soypat/meshfair/render"
)

func main() {
	var (
		configPath string
		example    bool
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "Configuration file describing the input mesh, operation and outputs.")
	flag.BoolVar(&example, "example", false, "Print an example configuration file to stdout and exit.")
	flag.BoolVar(&verbose, "v", false, "Log debug diagnostics such as per-iteration smoothing progress.")
	flag.Parse()

	if example {
		fmt.Println(meshfair.ExampleConfig)
		return
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "meshfair: -config is required, use -example for a template")
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	meshfair.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(configPath); err != nil {
		meshfair.Logger().Error("meshfair failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := meshfair.ReadConfig(configPath)
	if err != nil {
		return err
	}
	p, err := meshfair.Load(cfg.Mesh.Input)
	if err != nil {
		return err
	}
	p.WithSolvers(cfg.Solver.Solvers())

	start := time.Now()
	if err := p.Apply(cfg.Fairing); err != nil {
		return fmt.Errorf("%s: %w", cfg.Fairing.Operation, err)
	}
	log := meshfair.Logger()
	log.Info("operation done", "op", cfg.Fairing.Operation, "elapsed", time.Since(start).Round(time.Millisecond))

	if cfg.Mesh.Output != "" {
		if err := p.Save(cfg.Mesh.Output); err != nil {
			return err
		}
		log.Info("mesh written", "path", cfg.Mesh.Output)
	}
	if cfg.Output.Preview == "" && cfg.Output.Histogram == "" {
		return nil
	}

	field, clip, err := meshfair.Field(p.Curvatures(), cfg.Output.Field, cfg.Output.Clip)
	if err != nil {
		return err
	}
	if cfg.Output.Preview != "" {
		view := render.DefaultView
		view.Width, view.Height = cfg.Output.Width, cfg.Output.Height
		colors := render.Rainbow.Field(field, clip)
		if err := render.SavePreview(cfg.Output.Preview, p.Mesh(), colors, view); err != nil {
			return err
		}
		log.Info("preview written", "path", cfg.Output.Preview, "field", cfg.Output.Field)
	}
	if cfg.Output.Histogram != "" {
		if err := render.SaveHistogram(cfg.Output.Histogram, field, cfg.Output.Bins, clip, cfg.Output.Field+" curvature"); err != nil {
			return err
		}
		log.Info("histogram written", "path", cfg.Output.Histogram)
	}
	return nil
}
