package export

import (
	"expdata/internal/aggregate"
	"expdata/internal/record"
)

// Summary is the per-family document the pipeline persists. Aggregates
// keep full precision; Report holds the fixed-precision strings meant for
// people.
type Summary struct {
	Experiment     string              `json:"experiment"`
	Family         record.Family       `json:"family"`
	Sources        []string            `json:"sources"`
	ConfigSnapshot *record.Object      `json:"config_snapshot,omitempty"`
	RecordCount    int                 `json:"record_count"`
	DroppedCount   int                 `json:"dropped_count"`
	GroupedBy      []string            `json:"grouped_by"`
	AggregateRows  []aggregate.Row     `json:"aggregate_rows"`
	Extrema        []aggregate.Extreme `json:"extrema"`
	Report         *record.Object      `json:"report,omitempty"`
}

// SummaryFile is the file name of a family's summary document.
func SummaryFile(f record.Family) string { return string(f) + "_summary.json" }

// CSVFile is the file name of a family's tabular export.
func CSVFile(f record.Family) string {
	switch f {
	case record.Scalability:
		return "scalability_results.csv"
	case record.Topology:
		return "topology_results_all.csv"
	case record.Baseline:
		return "baseline_comparison.csv"
	case record.Ablation:
		return "ablation_results.csv"
	case record.Churn:
		return "churn_results.csv"
	}
	return string(f) + ".csv"
}
