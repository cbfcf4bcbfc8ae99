package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"expdata/internal/loader"
	"expdata/internal/logging"
	"expdata/internal/pipeline"
	"expdata/internal/record"
	"expdata/internal/report"
)

var scalabilityCmd = &cobra.Command{
	Use:   "scalability [file]",
	Short: "Analyze the scalability sweep",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScalability,
}

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Analyze every size-tagged topology result file",
	Args:  cobra.NoArgs,
	RunE:  runTopology,
}

var baselineCmd = &cobra.Command{
	Use:   "baseline [file]",
	Short: "Compare DRFE-R against the baseline protocols",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBaseline,
}

var churnCmd = &cobra.Command{
	Use:   "churn [file]",
	Short: "Show churn robustness results",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChurn,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Generate the ablation LaTeX tables and hop analysis",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

// inputPath returns the positional file argument or the configured default.
func inputPath(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Input(def)
}

func runScalability(cmd *cobra.Command, args []string) error {
	log := logging.New("scalability")
	ds, recs, err := pipeline.LoadFamily(log, record.Scalability, inputPath(args, cfg.Files.Scalability), loader.ShapeResults)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Scalability(ds.Header, recs))
	return nil
}

func runTopology(cmd *cobra.Command, _ []string) error {
	log := logging.New("topology")
	batches, err := pipeline.LoadTopologies(log, cfg.InputDir, cfg.TopologyGlob)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(batches) == 0 {
		fmt.Fprintf(out, "No topology experiment files found matching %s in %s\n", cfg.TopologyGlob, cfg.InputDir)
		return nil
	}
	sets := make([]report.SizedRecords, len(batches))
	for i, b := range batches {
		sets[i] = report.SizedRecords{Size: b.Size, Records: b.Records}
	}
	fmt.Fprint(out, report.Topology(sets))
	return nil
}

func runBaseline(cmd *cobra.Command, args []string) error {
	log := logging.New("baseline")
	_, recs, err := pipeline.LoadFamily(log, record.Baseline, inputPath(args, cfg.Files.Baseline), loader.ShapeResults)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Baseline(recs))
	return nil
}

func runChurn(cmd *cobra.Command, args []string) error {
	log := logging.New("churn")
	_, recs, err := pipeline.LoadFamily(log, record.Churn, inputPath(args, cfg.Files.Churn), loader.ShapeRuns)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Churn(recs))
	return nil
}

func runTables(cmd *cobra.Command, _ []string) error {
	written, err := pipeline.PaperTables(cfg, logging.New("tables"))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range written {
		fmt.Fprintf(out, "Generated %s\n", p)
	}
	return nil
}
