// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in console tables, LaTeX captions and markdown docs.
// Keep raw codes for JSON fields, CSV headers, map keys and comparisons.
package display

import "strings"

// --- Experiment families ---

var families = map[string]string{
	"scalability": "Scalability Analysis",
	"topology":    "Topology Experiments",
	"baseline":    "Baseline Comparison",
	"ablation":    "Embedding Ablation Study",
	"churn":       "Churn Robustness",
}

// Family returns the human-readable experiment name for a family code.
// Unknown codes are returned as-is.
func Family(code string) string {
	if name, ok := families[code]; ok {
		return name
	}
	return code
}

// --- Topologies ---

// shortTopologies are the lower-case codes used by the ablation CSV.
var shortTopologies = map[string]string{
	"ba":       "BA",
	"ws":       "WS",
	"er":       "ER",
	"grid":     "Grid",
	"line":     "Line",
	"lollipop": "Lollipop",
	"random":   "Random",
}

// TopologyLabel returns the table label for a short topology code.
// Known acronyms are upper-cased ("ba" -> "BA"); other codes are capitalized
// ("lollipop" -> "Lollipop").
func TopologyLabel(code string) string {
	if name, ok := shortTopologies[code]; ok {
		return name
	}
	if code == "" {
		return ""
	}
	return strings.ToUpper(code[:1]) + code[1:]
}

// --- Metrics ---

var metrics = map[string]string{
	"success_rate":    "Success Rate",
	"avg_hops":        "Average Hops",
	"stretch_ratio":   "Stretch Ratio",
	"latency_or_time": "Latency (μs)",
	"memory":          "Memory (MB)",
	"max_stretch":     "Max Stretch",
	"tz_pct":          "TZ Fallback %",
	"total_tests":     "Total Tests",
	"num_edges":       "Edges",
	"removal_rate":    "Removal Rate %",
}

// Metric returns the human-readable name for a canonical metric name.
// "avg_hops" -> "Average Hops".
func Metric(name string) string {
	if label, ok := metrics[name]; ok {
		return label
	}
	return name
}

// --- Pipeline stages ---

var stages = map[string]string{
	"loading":     "Loading",
	"normalizing": "Normalizing",
	"aggregating": "Aggregating",
	"exporting":   "Exporting",
	"reporting":   "Reporting",
	"indexing":    "Indexing",
}

// Stage returns the human-readable name for a pipeline stage code.
func Stage(code string) string {
	if name, ok := stages[code]; ok {
		return name
	}
	return code
}

// StagePath converts a slice of stage codes to a human-readable path.
// ["loading", "normalizing"] -> "Loading → Normalizing"
func StagePath(codes []string) string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = Stage(c)
	}
	return strings.Join(names, " → ")
}

// Mark returns "✓" for true and "✗" for false.
func Mark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
