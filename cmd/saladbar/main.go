// Package main provides the saladbar binary entry point.
// Saladbar keeps a salad bar ontology consistent: it derives missing links
// from identifier naming conventions, recomputes per-salad nutrient totals
// and audits the graph for inconsistencies.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "saladbar"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Salad bar ontology consistency engine",
		Long: `Saladbar maintains a salad bar knowledge graph.

It provides:
- Link resolution from identifier naming conventions
- Per-salad nutrient aggregation with unit normalization
- Consistency audits (missing data, unit mismatches, orphans)
- Competency queries and RDF export`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&a.flags.configPath, "config", "c", "", "Config file path (YAML)")
	f.StringVarP(&a.flags.graphPath, "graph", "g", "", "Ontology file to read")
	f.StringVar(&a.flags.format, "format", "", "Input format (rdfxml, turtle, ntriples)")
	f.StringVarP(&a.flags.out, "out", "o", "", "Where to write the updated graph")
	f.StringVar(&a.flags.outFormat, "out-format", "", "Output format (turtle, ntriples)")
	f.BoolVar(&a.flags.dryRun, "dry-run", false, "Report changes without writing the graph")
	f.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.BoolVar(&a.flags.repairUnits, "repair-units", false, "Rewrite substance and portion units to canonical form")
	f.StringVar(&a.flags.unitPolicy, "unit-policy", "", "Portions in unknown units: scale-one or skip")
	f.StringSliceVar(&a.flags.declarations, "declarations", nil, "Salad declaration files (glob patterns)")
	f.StringVar(&a.flags.metricsFile, "metrics-file", "", "Write prometheus metrics to this textfile")

	cmd.AddCommand(
		runCmd(a),
		resolveCmd(a),
		aggregateCmd(a),
		auditCmd(a),
		clearTotalsCmd(a),
		exportCmd(a),
		queryCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}
