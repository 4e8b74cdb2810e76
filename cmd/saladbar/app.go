package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tezigudo/SaladBarOntology/config"
	"github.com/Tezigudo/SaladBarOntology/declaration"
	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/metrics"
	"github.com/Tezigudo/SaladBarOntology/pipeline"
)

type globalFlags struct {
	configPath   string
	graphPath    string
	format       string
	out          string
	outFormat    string
	dryRun       bool
	logLevel     string
	repairUnits  bool
	unitPolicy   string
	declarations []string
	metricsFile  string
}

// app carries what every subcommand needs: the resolved config, the logger
// and the metrics recorder.
type app struct {
	flags   globalFlags
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func (a *app) init(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	// Logging is configured twice: once so config loading can log, then
	// again once log.level is known.
	a.logger = newLogger(a.flags.logLevel)
	loader := config.NewLoader(a.logger)
	if a.flags.configPath != "" {
		loader.WithFile(a.flags.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.logger = newLogger(cfg.Log.Level)
	slog.SetDefault(a.logger)
	if cfg.Metrics.File != "" {
		a.metrics = metrics.New()
	}
	return nil
}

// applyFlags layers command-line flags over the loaded configuration.
func (a *app) applyFlags(cfg *config.Config) {
	f := a.flags
	if f.graphPath != "" {
		cfg.Ontology.Path = f.graphPath
		// A graph given on the command line carries its own format.
		cfg.Ontology.Format = ""
	}
	if f.format != "" {
		cfg.Ontology.Format = f.format
	}
	if f.out != "" {
		cfg.Ontology.Output = f.out
	}
	if f.outFormat != "" {
		cfg.Ontology.OutputFormat = f.outFormat
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.repairUnits {
		cfg.Repair.NormalizeUnits = true
	}
	if f.unitPolicy != "" {
		cfg.Aggregate.UnknownUnitPolicy = f.unitPolicy
	}
	if len(f.declarations) > 0 {
		cfg.Declarations = f.declarations
	}
	if f.metricsFile != "" {
		cfg.Metrics.File = f.metricsFile
	}
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func (a *app) inputFormat() (graph.Format, error) {
	if a.cfg.Ontology.Format != "" {
		return graph.ParseFormat(a.cfg.Ontology.Format)
	}
	return graph.FormatFromPath(a.cfg.Ontology.Path)
}

func (a *app) loadGraph() (*graph.Graph, error) {
	format, err := a.inputFormat()
	if err != nil {
		return nil, err
	}
	g, err := graph.Load(a.cfg.Ontology.Path, format)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Loaded graph",
		slog.String("path", a.cfg.Ontology.Path),
		slog.String("format", string(format)),
		slog.Int("triples", g.Len()))
	return g, nil
}

func (a *app) loadDeclarations() (*declaration.Set, error) {
	if len(a.cfg.Declarations) == 0 {
		return nil, nil
	}
	decl, err := declaration.Load(a.cfg.Declarations)
	if err != nil {
		return nil, fmt.Errorf("load declarations: %w", err)
	}
	a.logger.Debug("Loaded declarations",
		slog.Int("files", len(decl.Files())),
		slog.Int("pairs", decl.Len()))
	return decl, nil
}

func (a *app) newPipeline(g *graph.Graph) (*pipeline.Pipeline, error) {
	decl, err := a.loadDeclarations()
	if err != nil {
		return nil, err
	}
	opts := []pipeline.Option{
		pipeline.WithLogger(a.logger),
		pipeline.WithUnitPolicy(a.cfg.UnitPolicy()),
		pipeline.WithRepair(a.cfg.Repair.NormalizeUnits),
		pipeline.WithMetrics(a.metrics),
	}
	if decl != nil {
		opts = append(opts, pipeline.WithDeclarations(decl))
	}
	return pipeline.New(g, opts...), nil
}

// outputTarget picks where and how the updated graph is written. Without an
// explicit output the input file is overwritten, which requires a writable
// input format.
func (a *app) outputTarget() (string, graph.Format, error) {
	path := a.cfg.Ontology.Output
	if path == "" {
		in, err := a.inputFormat()
		if err != nil {
			return "", "", err
		}
		if !in.Writable() {
			return "", "", fmt.Errorf("input format %s is read-only; set --out to a turtle or ntriples file", in)
		}
		return a.cfg.Ontology.Path, in, nil
	}
	if f, err := graph.FormatFromPath(path); err == nil && f.Writable() {
		return path, f, nil
	}
	f, err := graph.ParseFormat(a.cfg.Ontology.OutputFormat)
	if err != nil {
		return "", "", err
	}
	return path, f, nil
}

// persist saves g unless this is a dry run, then flushes metrics.
func (a *app) persist(g *graph.Graph, changes graph.Stats) error {
	if a.flags.dryRun {
		a.logger.Info("Dry run, graph not written",
			slog.Int("added", changes.Added),
			slog.Int("removed", changes.Removed))
		return a.flushMetrics()
	}
	path, format, err := a.outputTarget()
	if err != nil {
		return err
	}
	if err := graph.Save(path, g, format); err != nil {
		return err
	}
	a.logger.Info("Wrote graph",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("triples", g.Len()))
	return a.flushMetrics()
}

func (a *app) flushMetrics() error {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.WriteTextfile(a.cfg.Metrics.File)
}

// printValue writes v as yaml or json.
func printValue(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}
