package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"expdata/internal/logging"
	"expdata/internal/pipeline"
)

var organizeFlags struct {
	archive     string
	metricsFile string
}

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Run the full pipeline over every experiment family",
	Long: "Loads, normalizes and aggregates every family, then writes CSV exports,\n" +
		"per-family summaries, the master summary, the experimental setup document\n" +
		"and the data index. Missing families are skipped.",
	Args: cobra.NoArgs,
	RunE: runOrganize,
}

func init() {
	f := organizeCmd.Flags()
	f.StringVar(&organizeFlags.archive, "archive", "", "SQLite archive file name inside the output dir")
	f.StringVar(&organizeFlags.metricsFile, "metrics-file", "", "Prometheus textfile name inside the output dir")
}

func runOrganize(cmd *cobra.Command, _ []string) error {
	c := cfg
	if organizeFlags.archive != "" {
		c.Archive = organizeFlags.archive
	}
	if organizeFlags.metricsFile != "" {
		c.MetricsFile = organizeFlags.metricsFile
	}
	res, err := pipeline.New(pipeline.Options{Config: c, Log: logging.New("organize")}).Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Console())
	return nil
}
