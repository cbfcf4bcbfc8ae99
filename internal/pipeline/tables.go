package pipeline

import (
	"fmt"
	"log/slog"

	"expdata/internal/config"
	"expdata/internal/export"
	"expdata/internal/loader"
	"expdata/internal/record"
	"expdata/internal/report"
)

// Paper table artifacts.
const (
	SuccessRateTableFile = "success_rate_table.tex"
	AvgHopsTableFile     = "avg_hops_table.tex"
	ModeTableFile        = "mode_distribution_table.tex"
	SummaryAnalysisFile  = "summary_analysis.md"
	HopRatiosFile        = "hop_ratios.csv"
)

// PaperTables renders the ablation LaTeX tables and the hop analysis from
// the ablation CSV. It returns the paths written.
func PaperTables(cfg config.Config, log *slog.Logger) ([]string, error) {
	_, recs, err := LoadFamily(log, record.Ablation, cfg.Input(cfg.Files.Ablation), loader.ShapeList)
	if err != nil {
		return nil, err
	}
	tables, err := export.NewStore(cfg.Input(cfg.TablesDir))
	if err != nil {
		return nil, fmt.Errorf("pipeline: tables: %w", err)
	}
	hops, err := export.NewStore(cfg.Input(cfg.HopAnalysisDir))
	if err != nil {
		return nil, fmt.Errorf("pipeline: tables: %w", err)
	}

	grid := report.NewAblationGrid(recs)
	texts := []struct {
		store *export.Store
		name  string
		text  string
	}{
		{tables, SuccessRateTableFile, report.SuccessRateTable(grid)},
		{tables, AvgHopsTableFile, report.AvgHopsTable(grid)},
		{tables, ModeTableFile, report.ModeDistributionTable(recs)},
		{hops, SummaryAnalysisFile, report.SummaryAnalysis(recs)},
	}
	var written []string
	for _, t := range texts {
		path, err := t.store.SaveText(t.name, t.text)
		if err != nil {
			return written, fmt.Errorf("pipeline: tables: %w", err)
		}
		log.Info("table written", slog.String("path", path))
		written = append(written, path)
	}

	path := hops.Path(HopRatiosFile)
	if err := export.WriteCSV(path, report.HopRatios(recs)); err != nil {
		log.Warn("hop ratios not written", slog.String("error", err.Error()))
		return written, nil
	}
	return append(written, path), nil
}
