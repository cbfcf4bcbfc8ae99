package pipeline

import (
	"encoding/json"

	"expdata/internal/aggregate"
	"expdata/internal/config"
	"expdata/internal/format"
	"expdata/internal/loader"
	"expdata/internal/record"
)

// Source is one raw result file of a family. NetworkSize is set when the
// file's records inherit their size from the file itself.
type Source struct {
	Path        string
	NetworkSize int
}

// Extremum selects the best group of one metric.
type Extremum struct {
	Metric string
	Max    bool
}

// FamilySpec describes how one experiment family flows through a run.
type FamilySpec struct {
	Family  record.Family
	Shape   loader.Shape
	Sources []Source
	GroupBy []string
	Metrics []string
	Extrema []Extremum
	// Report builds the fixed-precision section of the summary.
	Report func(b *Batch) *record.Object
	Setup  SetupText
}

// SetupText is the prose describing a family in the setup document.
type SetupText struct {
	Purpose       string
	Configuration []string
	Metrics       []string
}

// Specs returns the family specs for cfg in pipeline order.
func Specs(cfg config.Config) []FamilySpec {
	var topo []Source
	for _, t := range cfg.Topology {
		topo = append(topo, Source{Path: cfg.Input(t.File), NetworkSize: t.NetworkSize})
	}
	return []FamilySpec{
		{
			Family:  record.Scalability,
			Shape:   loader.ShapeResults,
			Sources: []Source{{Path: cfg.Input(cfg.Files.Scalability)}},
			GroupBy: []string{record.FieldNetworkSize},
			Metrics: []string{record.SuccessRate, record.AvgHops, record.StretchRatio, record.LatencyOrTime, record.Memory},
			Extrema: []Extremum{{record.SuccessRate, true}, {record.AvgHops, false}, {record.StretchRatio, false}},
			Report:  scalabilityReport,
			Setup: SetupText{
				Purpose:       "Evaluate routing performance as network size increases",
				Configuration: []string{"Topology: Barabási-Albert (scale-free)", "Average degree: ~6", "Max TTL: 200 hops", "Random seed: 42"},
				Metrics:       []string{"Success rate (%)", "Average hop count", "Stretch ratio (actual hops / optimal hops)", "Routing time (microseconds)", "Memory usage per node (bytes)", "Mode distribution (Gravity/Pressure/Tree)"},
			},
		},
		{
			Family:  record.Topology,
			Shape:   loader.ShapeList,
			Sources: topo,
			GroupBy: []string{record.FieldTopology, record.FieldNetworkSize},
			Metrics: []string{record.SuccessRate, record.AvgHops, record.StretchRatio},
			Extrema: []Extremum{{record.SuccessRate, true}, {record.AvgHops, false}},
			Report:  topologyReport,
			Setup: SetupText{
				Purpose:       "Evaluate routing performance across different network topologies",
				Configuration: []string{"Barabási-Albert (BA): scale-free, m=3", "Watts-Strogatz (WS): small-world, k=6, beta=0.1", "Grid: 2D lattice", "Random (Erdős-Rényi): p=0.05", "Real-World: community-structured", "Max TTL: 100 hops"},
				Metrics:       []string{"Success rate (%)", "Average hop count", "Stretch ratio", "Edge count"},
			},
		},
		{
			Family:  record.Baseline,
			Shape:   loader.ShapeResults,
			Sources: []Source{{Path: cfg.Input(cfg.Files.Baseline)}},
			GroupBy: []string{record.FieldProtocol},
			Metrics: []string{record.SuccessRate, record.AvgHops, record.LatencyOrTime},
			Extrema: []Extremum{{record.SuccessRate, true}, {record.AvgHops, false}, {record.LatencyOrTime, false}},
			Report:  baselineReport,
			Setup: SetupText{
				Purpose:       "Compare DRFE-R with established routing protocols",
				Configuration: []string{"Protocols: DRFE-R, Chord DHT, Kademlia DHT", "Topologies: BA, Random, Grid", "Tests per configuration: 100 routing tests"},
				Metrics:       []string{"Success rate (%)", "Average hop count", "Average latency (microseconds)"},
			},
		},
		{
			Family:  record.Ablation,
			Shape:   loader.ShapeList,
			Sources: []Source{{Path: cfg.Input(cfg.Files.Ablation)}},
			GroupBy: []string{record.FieldTopology, record.FieldNetworkSize, record.FieldEmbedding},
			Metrics: []string{record.SuccessRate, record.AvgHops, record.StretchRatio},
			Extrema: []Extremum{{record.SuccessRate, true}, {record.AvgHops, false}},
			Report:  ablationReport,
			Setup: SetupText{
				Purpose:       "Isolate the contribution of the coordinate embedding by substitution",
				Configuration: []string{"Embeddings: PIE, Random, Ricci-Broken, Ricci-Fixed", "Topologies: ba, ws, grid, line, lollipop", "Network sizes: 50, 100, 200, 300 nodes"},
				Metrics:       []string{"Success rate (%)", "Average hop count", "Stretch ratio", "Gravity/Pressure/Tree ratios"},
			},
		},
		{
			Family:  record.Churn,
			Shape:   loader.ShapeRuns,
			Sources: []Source{{Path: cfg.Input(cfg.Files.Churn)}},
			GroupBy: []string{record.FieldStrategy, record.FieldSelection, "removal_rate"},
			Metrics: []string{record.SuccessRate, record.StretchRatio, "max_stretch", "tz_pct"},
			Extrema: []Extremum{{record.SuccessRate, true}, {record.StretchRatio, false}},
			Report:  churnReport,
			Setup: SetupText{
				Purpose:       "Measure robustness to node removal under different removal strategies",
				Configuration: []string{"Removal strategies and node selection policies", "Removal rates as percent of nodes"},
				Metrics:       []string{"Success rate (%)", "Average and maximum stretch", "Tree-fallback share (%)"},
			},
		},
	}
}

func scalabilityReport(b *Batch) *record.Object {
	o := record.NewObject()
	if tests, ok := intValue(configObject(b.Header()), "num_routing_tests"); ok {
		o.Set("total_tests", b.RawCount()*tests)
	}
	var lines []*record.Object
	for _, c := range b.Records {
		lines = append(lines, record.ObjectOf(
			record.FieldNetworkSize, c.NetworkSize,
			record.SuccessRate, format.Percent(c.MetricOr(record.SuccessRate, 0), 1),
			record.AvgHops, format.Decimal(c.MetricOr(record.AvgHops, 0), 2),
			record.StretchRatio, format.Decimal(c.MetricOr(record.StretchRatio, 0), 2),
			"routing_time_us", format.Decimal(c.MetricOr(record.LatencyOrTime, 0), 1),
			"memory_mb", format.Decimal(c.MetricOr(record.Memory, 0), 3),
		))
	}
	o.Set("results_summary", lines)
	return o
}

func topologyReport(b *Batch) *record.Object {
	byTopology := record.NewObject()
	for _, g := range aggregate.Partition(b.Records, aggregate.By(record.FieldTopology)) {
		var entries []*record.Object
		for _, c := range g.Records {
			entries = append(entries, record.ObjectOf(
				record.FieldNetworkSize, c.NetworkSize,
				record.SuccessRate, c.MetricOr(record.SuccessRate, 0),
				record.AvgHops, c.MetricOr(record.AvgHops, 0),
				record.StretchRatio, c.MetricOr(record.StretchRatio, 0),
				"num_edges", c.MetricOr("num_edges", 0),
			))
		}
		byTopology.Set(g.Key.Text(record.FieldTopology), entries)
	}
	var sizes []int
	for _, s := range b.Spec.Sources {
		sizes = append(sizes, s.NetworkSize)
	}
	return record.ObjectOf(
		"topologies", byTopology.Keys(),
		"network_sizes", sizes,
		"total_configurations", len(b.Records),
		"by_topology", byTopology,
	)
}

func baselineReport(b *Batch) *record.Object {
	protocols := record.NewObject()
	for _, g := range aggregate.Partition(b.Records, aggregate.By(record.FieldProtocol)) {
		// Every configuration row counts once, whatever its total_tests.
		avgSuccess, _ := aggregate.Mean(g.Records, record.SuccessRate)
		avgHops, _ := aggregate.Mean(g.Records, record.AvgHops)

		var entries []*record.Object
		for _, c := range g.Records {
			entries = append(entries, record.ObjectOf(
				record.FieldNetworkSize, c.NetworkSize,
				record.FieldTopology, c.Topology,
				record.SuccessRate, c.MetricOr(record.SuccessRate, 0),
				record.AvgHops, c.MetricOr(record.AvgHops, 0),
				"avg_latency_us", c.MetricOr(record.LatencyOrTime, 0),
			))
		}
		protocols.Set(g.Key.Text(record.FieldProtocol), record.ObjectOf(
			"total_tests", int64(aggregate.Sum(g.Records, "total_tests")),
			"avg_success_rate", avgSuccess,
			"avg_hops", avgHops,
			"configurations", entries,
		))
	}
	return record.ObjectOf(
		"protocols", protocols,
		"total_configurations", len(b.Records),
	)
}

func ablationReport(b *Batch) *record.Object {
	byEmbedding := record.NewObject()
	rows := aggregate.GroupBy(b.Records, aggregate.By(record.FieldEmbedding),
		record.SuccessRate, record.AvgHops, record.StretchRatio)
	for _, r := range rows {
		byEmbedding.Set(r.Key.Text(record.FieldEmbedding), record.ObjectOf(
			record.SuccessRate, format.Percent(r.MeanOr(record.SuccessRate, 0), 1),
			record.AvgHops, format.Decimal(r.MeanOr(record.AvgHops, 0), 2),
			record.StretchRatio, format.Decimal(r.MeanOr(record.StretchRatio, 0), 3),
			"configurations", r.SampleCount,
		))
	}
	return record.ObjectOf("by_embedding", byEmbedding)
}

func churnReport(b *Batch) *record.Object {
	var lines []*record.Object
	for _, r := range b.Aggregates {
		lines = append(lines, record.ObjectOf(
			record.FieldStrategy, r.Key.Text(record.FieldStrategy),
			record.FieldSelection, r.Key.Text(record.FieldSelection),
			"removal_rate", r.Key.Text("removal_rate")+"%",
			record.SuccessRate, format.Percent(r.MeanOr(record.SuccessRate, 0), 1),
			"avg_stretch", format.Decimal(r.MeanOr(record.StretchRatio, 0), 3),
			"max_stretch", format.Decimal(r.MeanOr("max_stretch", 0), 1),
			"tz_pct", format.Decimal(r.MeanOr("tz_pct", 0), 1)+"%",
		))
	}
	return record.ObjectOf("by_condition", lines)
}

func configObject(header *record.Object) *record.Object {
	if header == nil {
		return record.NewObject()
	}
	v, _ := header.Get("config")
	if obj, ok := v.(*record.Object); ok {
		return obj
	}
	return record.NewObject()
}

func intValue(o *record.Object, key string) (int, bool) {
	v, ok := o.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}
