// Package normalize maps family-specific raw records onto the canonical
// record shape. Every family's schema is a lookup table: for each canonical
// field an ordered list of candidate raw keys, tried first to last. The
// order encodes schema drift between upstream producers and must not be
// reshuffled.
package normalize

import "expdata/internal/record"

// Requirement defines whether a field is required or optional.
type Requirement string

const (
	Required Requirement = "required"
	Optional Requirement = "optional"
)

// Kind is the value type a field must coerce to.
type Kind int

const (
	Number Kind = iota
	Integer
	Text
)

// Mode-count targets. They are not metrics; they fill Canonical.Modes.
const (
	ModeGravity  = "mode_counts.gravity"
	ModePressure = "mode_counts.pressure"
	ModeTree     = "mode_counts.tree"
)

// FieldSpec describes one canonical field: where to look for it in a raw
// record, what type it must have, and whether its absence drops the record.
type FieldSpec struct {
	Name        string      `json:"name"`
	Keys        []string    `json:"keys"`
	Kind        Kind        `json:"kind"`
	Requirement Requirement `json:"requirement"`
}

// Version names one upstream schema revision, identified by a marker key.
type Version struct {
	Name   string `json:"name"`
	Marker string `json:"marker"`
}

// Schema is the closed description of one family's raw record shape.
type Schema struct {
	Family   record.Family `json:"family"`
	Versions []Version     `json:"versions"`
	Fields   []FieldSpec   `json:"fields"`
	// InjectSize makes the caller-declared network size authoritative
	// over any size found in the record.
	InjectSize bool `json:"inject_size,omitempty"`
	// RatioModes marks mode fields as pre-normalized ratios.
	RatioModes bool `json:"ratio_modes,omitempty"`
}

// RequiredFields returns only the fields marked as Required.
func (s Schema) RequiredFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range s.Fields {
		if f.Requirement == Required {
			out = append(out, f)
		}
	}
	return out
}

// DetectVersion returns the first version whose marker key is present, or
// "" when none matches.
func (s Schema) DetectVersion(raw *record.Object) string {
	for _, v := range s.Versions {
		if raw.Has(v.Marker) {
			return v.Name
		}
	}
	return ""
}

// Resolve returns the value of the first candidate key present in raw with
// a non-null value, and the key it came from.
func (f FieldSpec) Resolve(raw *record.Object) (any, string, bool) {
	for _, k := range f.Keys {
		v, ok := raw.Get(k)
		if ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

func req(name string, kind Kind, keys ...string) FieldSpec {
	if len(keys) == 0 {
		keys = []string{name}
	}
	return FieldSpec{Name: name, Keys: keys, Kind: kind, Requirement: Required}
}

func opt(name string, kind Kind, keys ...string) FieldSpec {
	if len(keys) == 0 {
		keys = []string{name}
	}
	return FieldSpec{Name: name, Keys: keys, Kind: kind, Requirement: Optional}
}

var schemas = map[record.Family]Schema{
	record.Scalability: {
		Family:   record.Scalability,
		Versions: []Version{{Name: "v1", Marker: "avg_routing_time_us"}},
		Fields: []FieldSpec{
			req(record.FieldNetworkSize, Integer),
			req(record.SuccessRate, Number),
			req(record.AvgHops, Number),
			opt(record.StretchRatio, Number, "avg_stretch", "stretch_ratio"),
			opt(record.LatencyOrTime, Number, "avg_routing_time_us"),
			opt(record.Memory, Number, "total_memory_mb"),
			opt("avg_degree", Number),
			opt("memory_per_node_bytes", Number),
			opt("embedding_time_ms", Number),
			opt("num_edges", Number),
			opt("embedding_complexity_per_edge", Number),
			opt("median_hops", Number),
			opt("p95_hops", Number),
			opt("max_hops", Number),
			opt(ModeGravity, Number, "gravity_hops"),
			opt(ModePressure, Number, "pressure_hops"),
			opt(ModeTree, Number, "tree_hops"),
		},
	},
	record.Topology: {
		Family: record.Topology,
		Versions: []Version{
			{Name: "v2", Marker: "topology"},
			{Name: "v1", Marker: "topology_type"},
		},
		Fields: []FieldSpec{
			opt(record.FieldTopology, Text, "topology", "topology_type"),
			opt(record.FieldNetworkSize, Integer),
			req(record.SuccessRate, Number),
			req(record.AvgHops, Number),
			opt(record.StretchRatio, Number, "stretch_ratio", "avg_stretch"),
			opt("num_edges", Number),
			opt("avg_degree", Number),
			opt(ModeGravity, Number, "gravity_hops"),
			opt(ModePressure, Number, "pressure_hops"),
			opt(ModeTree, Number, "tree_hops"),
		},
		InjectSize: true,
	},
	record.Baseline: {
		Family:   record.Baseline,
		Versions: []Version{{Name: "v1", Marker: "protocol"}},
		Fields: []FieldSpec{
			req(record.FieldProtocol, Text),
			opt(record.FieldNetworkSize, Integer),
			opt(record.FieldTopology, Text),
			req(record.SuccessRate, Number),
			req(record.AvgHops, Number),
			opt(record.LatencyOrTime, Number, "avg_latency_us"),
			opt("total_tests", Integer),
		},
	},
	record.Ablation: {
		Family:   record.Ablation,
		Versions: []Version{{Name: "csv", Marker: "embedding"}},
		Fields: []FieldSpec{
			req(record.FieldTopology, Text),
			req(record.FieldNetworkSize, Integer, "n", "network_size"),
			req(record.FieldEmbedding, Text),
			req(record.SuccessRate, Number),
			req(record.AvgHops, Number),
			opt(record.StretchRatio, Number, "stretch", "stretch_ratio"),
			opt(ModeGravity, Number, "gravity_ratio"),
			opt(ModePressure, Number, "pressure_ratio"),
			opt(ModeTree, Number, "tree_ratio"),
		},
		RatioModes: true,
	},
	record.Churn: {
		Family:   record.Churn,
		Versions: []Version{{Name: "v1", Marker: "tz_pct"}},
		Fields: []FieldSpec{
			req(record.FieldStrategy, Text),
			req(record.FieldSelection, Text),
			req("removal_rate", Number),
			req(record.SuccessRate, Number),
			opt(record.AvgHops, Number),
			opt(record.StretchRatio, Number, "avg_stretch", "stretch_ratio"),
			opt("max_stretch", Number),
			opt("tz_pct", Number),
		},
	},
}

// SchemaFor returns the schema of a family.
func SchemaFor(f record.Family) (Schema, bool) {
	s, ok := schemas[f]
	return s, ok
}
