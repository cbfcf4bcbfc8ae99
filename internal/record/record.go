// Package record holds the data model shared by every pipeline stage:
// ordered raw records as found in result files, and the canonical,
// family-tagged measurement row the normalizer produces from them.
package record

// Family identifies one category of recorded experiment results.
type Family string

const (
	Scalability Family = "scalability"
	Topology    Family = "topology"
	Baseline    Family = "baseline"
	Ablation    Family = "ablation"
	Churn       Family = "churn"
)

// Families returns every known family in pipeline order.
func Families() []Family {
	return []Family{Scalability, Topology, Baseline, Ablation, Churn}
}

// Canonical metric names. Family-specific metrics keep their raw names.
const (
	SuccessRate   = "success_rate"
	AvgHops       = "avg_hops"
	StretchRatio  = "stretch_ratio"
	LatencyOrTime = "latency_or_time"
	Memory        = "memory"
)

// Label field names accepted by Canonical.Label.
const (
	FieldFamily      = "family"
	FieldProtocol    = "protocol"
	FieldTopology    = "topology"
	FieldEmbedding   = "embedding"
	FieldStrategy    = "strategy"
	FieldSelection   = "selection"
	FieldNetworkSize = "network_size"
)

// Provenance records where a canonical record came from.
type Provenance struct {
	Family        Family `json:"family"`
	Source        string `json:"source"`
	Index         int    `json:"index"`
	SchemaVersion string `json:"schema_version,omitempty"`
	// SizeFromContext is set when NetworkSize was injected by the caller
	// (topology files) rather than read from the record.
	SizeFromContext bool `json:"size_from_context,omitempty"`
}

// ModeCounts is the per-mode routing hop breakdown. Normalized is set when
// the source already reports ratios (ablation) instead of hop counts.
type ModeCounts struct {
	Gravity    float64 `json:"gravity"`
	Pressure   float64 `json:"pressure"`
	Tree       float64 `json:"tree"`
	Normalized bool    `json:"normalized,omitempty"`
}

// Shares returns the gravity, pressure and tree percentages. Hop counts are
// divided by their sum; a zero sum yields 0, 0, 0. Pre-normalized ratios are
// scaled to percent as-is.
func (m ModeCounts) Shares() (gravity, pressure, tree float64) {
	if m.Normalized {
		return m.Gravity * 100, m.Pressure * 100, m.Tree * 100
	}
	total := m.Gravity + m.Pressure + m.Tree
	if total <= 0 {
		return 0, 0, 0
	}
	return m.Gravity / total * 100, m.Pressure / total * 100, m.Tree / total * 100
}

// Canonical is a normalized measurement row. Labels are empty strings when
// the family does not carry them; NetworkSize is 0 when unknown. Metrics
// holds only the values that were present and finite in the source, so a
// missing key means "absent", never zero.
type Canonical struct {
	Family      Family             `json:"family"`
	Protocol    string             `json:"protocol,omitempty"`
	Topology    string             `json:"topology,omitempty"`
	Embedding   string             `json:"embedding,omitempty"`
	Strategy    string             `json:"strategy,omitempty"`
	Selection   string             `json:"selection,omitempty"`
	NetworkSize int                `json:"network_size,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
	Modes       *ModeCounts        `json:"mode_counts,omitempty"`
	Provenance  Provenance         `json:"provenance"`
}

// Metric returns a metric value and whether it was present.
func (c Canonical) Metric(name string) (float64, bool) {
	v, ok := c.Metrics[name]
	return v, ok
}

// MetricOr returns the metric or def when absent. Use only for display:
// aggregation must skip absent values instead.
func (c Canonical) MetricOr(name string, def float64) float64 {
	if v, ok := c.Metrics[name]; ok {
		return v
	}
	return def
}

// Label returns a string-valued field by name. The boolean is false when
// the field is unknown or empty.
func (c Canonical) Label(field string) (string, bool) {
	var v string
	switch field {
	case FieldFamily:
		v = string(c.Family)
	case FieldProtocol:
		v = c.Protocol
	case FieldTopology:
		v = c.Topology
	case FieldEmbedding:
		v = c.Embedding
	case FieldStrategy:
		v = c.Strategy
	case FieldSelection:
		v = c.Selection
	}
	return v, v != ""
}

// SetMetric stores a metric value.
func (c *Canonical) SetMetric(name string, v float64) {
	if c.Metrics == nil {
		c.Metrics = make(map[string]float64)
	}
	c.Metrics[name] = v
}
