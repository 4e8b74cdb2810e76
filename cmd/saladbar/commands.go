package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Tezigudo/SaladBarOntology/aggregate"
	"github.com/Tezigudo/SaladBarOntology/export"
	"github.com/Tezigudo/SaladBarOntology/query"
)

func runCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Repair, resolve, aggregate and audit the graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			p, err := a.newPipeline(g)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sum, err := p.Run(ctx)
			if err != nil {
				return fmt.Errorf("consistency run: %w", err)
			}
			if err := printValue(cmd.OutOrStdout(), output, sum); err != nil {
				return err
			}
			return a.persist(g, sum.Changes)
		},
	}
	cmd.Flags().StringVar(&output, "output", "yaml", "Summary format (yaml, json)")
	return cmd
}

func resolveCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Derive missing links from identifier naming conventions",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			p, err := a.newPipeline(g)
			if err != nil {
				return err
			}
			if a.cfg.Repair.NormalizeUnits {
				p.Repair()
			}
			res := p.Resolve()
			if err := printValue(cmd.OutOrStdout(), output, res); err != nil {
				return err
			}
			return a.persist(g, p.Changes())
		},
	}
	cmd.Flags().StringVar(&output, "output", "yaml", "Result format (yaml, json)")
	return cmd
}

func aggregateCmd(a *app) *cobra.Command {
	var (
		saladName string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Recompute per-salad nutrient totals",
		Long: `Recompute per-salad nutrient totals from resolved links.

Run resolve first (or use run) so portions are linked to their
ingredients and dressings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			p, err := a.newPipeline(g)
			if err != nil {
				return err
			}

			var results map[string]aggregate.SaladResult
			if saladName != "" {
				res, err := p.AggregateSalad(saladName)
				if err != nil {
					return err
				}
				results = map[string]aggregate.SaladResult{saladName: res}
			} else {
				results = p.Aggregate()
			}

			if output == "text" {
				renderTotals(cmd.OutOrStdout(), results)
			} else if err := printValue(cmd.OutOrStdout(), output, results); err != nil {
				return err
			}
			return a.persist(g, p.Changes())
		},
	}
	cmd.Flags().StringVar(&saladName, "salad", "", "Aggregate only this salad (local name)")
	cmd.Flags().StringVar(&output, "output", "text", "Result format (text, yaml, json)")
	return cmd
}

func renderTotals(w io.Writer, results map[string]aggregate.SaladResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SALAD\tSUBSTANCE\tTOTAL\tUNIT")
	for _, name := range sortedNames(results) {
		res := results[name]
		for _, substance := range sortedNames(res.Totals) {
			t := res.Totals[substance]
			fmt.Fprintf(tw, "%s\t%s\t%g\t%s\n", name, substance, t.Amount, t.Unit)
		}
	}
	_ = tw.Flush()
}

func auditCmd(a *app) *cobra.Command {
	var (
		output string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report consistency issues without modifying the graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			auditOnce := func() error {
				g, err := a.loadGraph()
				if err != nil {
					return err
				}
				p, err := a.newPipeline(g)
				if err != nil {
					return err
				}
				if err := p.Audit().Render(cmd.OutOrStdout(), output); err != nil {
					return err
				}
				return a.flushMetrics()
			}

			if err := auditOnce(); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchFile(ctx, a.cfg.Ontology.Path, defaultDebounce, a.logger, func() {
				if err := auditOnce(); err != nil {
					a.logger.Error("Audit failed", "error", err)
				}
			})
		},
	}
	cmd.Flags().StringVar(&output, "output", "text", "Report format (text, json, yaml)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-audit whenever the graph file changes")
	return cmd
}

func clearTotalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-totals",
		Short: "Remove every derived nutrient total",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			p, err := a.newPipeline(g)
			if err != nil {
				return err
			}
			res := p.ClearDerived()
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d derived nodes (%d triples)\n", res.Nodes, res.Triples)
			return a.persist(g, p.Changes())
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var (
		profile string
		format  string
		dest    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Serialize the graph, or a profile of it, as Turtle, N-Triples or JSON-LD",
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := export.ParseProfile(profile)
			if err != nil {
				return err
			}
			f := export.Format(format)
			if format == "" && dest != "" {
				if f, err = export.FormatFromPath(dest); err != nil {
					return err
				}
			} else if format == "" {
				f = export.FormatTurtle
			}

			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			exporter := export.NewRDFExporter(prof, a.logger)
			exporter.SetBaseIRI(a.cfg.Ontology.Namespace)
			res, err := exporter.Export(g, f)
			if err != nil {
				return err
			}

			if dest == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), res.Output)
				return err
			}
			if err := os.WriteFile(dest, []byte(res.Output), 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			a.logger.Info("Exported graph", "path", dest, "triples", res.Triples, "mime", res.MIMEType)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", string(export.ProfileFull), "Export profile (full, composition, derived)")
	cmd.Flags().StringVar(&format, "export-format", "", "Export format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVar(&dest, "dest", "", "Write the export to this file instead of stdout")
	return cmd
}

func queryCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer competency questions over a resolved and aggregated graph",
	}
	cmd.PersistentFlags().StringVar(&output, "output", "text", "Result format (text, yaml, json)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "contains",
			Short: "Which substances each salad contains",
			RunE: func(cmd *cobra.Command, args []string) error {
				g, err := a.loadGraph()
				if err != nil {
					return err
				}
				res := query.SubstancesBySalad(g)
				if output != "text" {
					return printValue(cmd.OutOrStdout(), output, res)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, name := range sortedNames(res) {
					fmt.Fprintf(tw, "%s\t%v\n", name, res[name])
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "levels",
			Short: "High, normal or low salad totals per substance",
			RunE: func(cmd *cobra.Command, args []string) error {
				g, err := a.loadGraph()
				if err != nil {
					return err
				}
				res := query.Levels(g, a.cfg.Thresholds())
				if output != "text" {
					return printValue(cmd.OutOrStdout(), output, res)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SALAD\tSUBSTANCE\tTOTAL\tUNIT\tLEVEL")
				for _, l := range res {
					fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%s\n", l.Salad, l.Substance, l.Amount, l.Unit, l.Level)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "similar",
			Short: "Ingredients and dressings whose substances contain another's",
			RunE: func(cmd *cobra.Command, args []string) error {
				g, err := a.loadGraph()
				if err != nil {
					return err
				}
				res := query.SimilarEntities(g)
				if output != "text" {
					return printValue(cmd.OutOrStdout(), output, res)
				}
				for _, s := range res {
					fmt.Fprintf(cmd.OutOrStdout(), "%s ⊆ %s\n", s.Subset, s.Superset)
				}
				return nil
			},
		},
	)
	return cmd
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
