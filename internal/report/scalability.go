package report

import (
	"fmt"
	"strings"

	"expdata/internal/aggregate"
	"expdata/internal/format"
	"expdata/internal/record"
)

// Scalability renders the scalability analysis: run header, summary,
// complexity, mode distribution and hop statistics tables, the paper
// table and key insights. Records are shown in file order.
func Scalability(header *record.Object, recs []record.Canonical) string {
	var b strings.Builder
	b.WriteString("DRFE-R Scalability Analysis\n")
	b.WriteString(format.Rule("=", 50) + "\n")

	fmt.Fprintf(&b, "\nExperiment Timestamp: %s\n", rawText(headerValue(header, "timestamp")))
	fmt.Fprintf(&b, "Network Sizes: %s\n", rawText(configValue(header, "network_sizes")))
	fmt.Fprintf(&b, "Tests per Size: %s\n", rawText(configValue(header, "num_routing_tests")))
	fmt.Fprintf(&b, "Max TTL: %s\n", rawText(configValue(header, "max_ttl")))
	fmt.Fprintf(&b, "Random Seed: %s\n", rawText(configValue(header, "seed")))

	section(&b, "Scalability Summary Table")
	b.WriteString(scalabilitySummary(recs))
	section(&b, "Complexity Analysis")
	b.WriteString(complexity(recs))
	section(&b, "Routing Mode Distribution")
	b.WriteString(modeDistribution(recs))
	section(&b, "Hop Count Statistics")
	b.WriteString(hopStatistics(recs))
	section(&b, "LaTeX Table for Paper")
	b.WriteString(ScalabilityLaTeX(recs))
	section(&b, "Key Insights")
	b.WriteString(scalabilityInsights(recs))
	return b.String()
}

func scalabilitySummary(recs []record.Canonical) string {
	tb := format.NewTable(format.ASCII)
	tb.Header("Size", "Success%", "Avg Hops", "Stretch", "Time(μs)", "Memory(MB)")
	tb.Columns(format.Fixed(1, 8), format.Fixed(2, 10), format.Fixed(3, 10),
		format.Fixed(4, 10), format.Fixed(5, 12), format.Fixed(6, 12))
	for _, c := range recs {
		tb.Row(c.NetworkSize,
			format.Decimal(c.MetricOr(record.SuccessRate, 0)*100, 2),
			format.Decimal(c.MetricOr(record.AvgHops, 0), 2),
			format.Decimal(c.MetricOr(record.StretchRatio, 0), 3),
			format.Decimal(c.MetricOr(record.LatencyOrTime, 0), 2),
			format.Decimal(c.MetricOr(record.Memory, 0), 2),
		)
	}
	return tb.String() + "\n"
}

func complexity(recs []record.Canonical) string {
	var b strings.Builder

	b.WriteString("Routing Complexity (O(k) per hop):\n")
	tb := format.NewTable(format.ASCII)
	tb.Header("Size", "Avg Hops", "Avg Degree", "Ratio")
	tb.Columns(format.Fixed(1, 8), format.Fixed(2, 12), format.Fixed(3, 12), format.Fixed(4, 10))
	for _, c := range recs {
		hops := c.MetricOr(record.AvgHops, 0)
		deg := c.MetricOr("avg_degree", 0)
		tb.Row(c.NetworkSize, format.Decimal(hops, 2), format.Decimal(deg, 2), format.Decimal(perDegree(hops, deg), 2))
	}
	b.WriteString(tb.String() + "\n")

	b.WriteString("\nMemory Complexity (O(k) per node):\n")
	tb = format.NewTable(format.ASCII)
	tb.Header("Size", "Mem/Node", "Avg Degree", "Bytes/Neighbor")
	tb.Columns(format.Fixed(1, 8), format.Fixed(2, 12), format.Fixed(3, 12), format.Fixed(4, 15))
	for _, c := range recs {
		mem := c.MetricOr("memory_per_node_bytes", 0)
		deg := c.MetricOr("avg_degree", 0)
		tb.Row(c.NetworkSize, num(mem), format.Decimal(deg, 2), format.Decimal(perDegree(mem, deg), 1))
	}
	b.WriteString(tb.String() + "\n")

	b.WriteString("\nEmbedding Complexity (O(|E|)):\n")
	tb = format.NewTable(format.ASCII)
	tb.Header("Size", "Time(ms)", "Edges", "ms/edge")
	tb.Columns(format.Fixed(1, 8), format.Fixed(2, 12), format.Fixed(3, 10), format.Fixed(4, 12))
	for _, c := range recs {
		tb.Row(c.NetworkSize,
			num(c.MetricOr("embedding_time_ms", 0)),
			num(c.MetricOr("num_edges", 0)),
			format.Decimal(c.MetricOr("embedding_complexity_per_edge", 0), 6),
		)
	}
	b.WriteString(tb.String() + "\n")
	return b.String()
}

// perDegree divides by the average degree; a zero degree yields 0.
func perDegree(v, degree float64) float64 {
	if degree > 0 {
		return v / degree
	}
	return 0
}

func modeDistribution(recs []record.Canonical) string {
	tb := format.NewTable(format.ASCII)
	tb.Header("Size", "Gravity%", "Pressure%", "Tree%")
	tb.Columns(format.Fixed(1, 8), format.Fixed(2, 12), format.Fixed(3, 12), format.Fixed(4, 12))
	for _, c := range recs {
		g, p, t := ModeShares(c)
		tb.Row(c.NetworkSize, format.Decimal(g, 1), format.Decimal(p, 1), format.Decimal(t, 1))
	}
	return tb.String() + "\n"
}

func hopStatistics(recs []record.Canonical) string {
	tb := format.NewTable(format.ASCII)
	tb.Header("Size", "Avg", "Median", "P95", "Max")
	tb.Columns(format.Fixed(1, 8), format.Fixed(2, 10), format.Fixed(3, 10), format.Fixed(4, 10), format.Fixed(5, 10))
	for _, c := range recs {
		tb.Row(c.NetworkSize,
			format.Decimal(c.MetricOr(record.AvgHops, 0), 2),
			num(c.MetricOr("median_hops", 0)),
			num(c.MetricOr("p95_hops", 0)),
			num(c.MetricOr("max_hops", 0)),
		)
	}
	return tb.String() + "\n"
}

// ScalabilityLaTeX renders the scalability results as a LaTeX table.
func ScalabilityLaTeX(recs []record.Canonical) string {
	var b strings.Builder
	b.WriteString("\\begin{table}[h]\n")
	b.WriteString("\\centering\n")
	b.WriteString("\\caption{Scalability Experiment Results}\n")
	b.WriteString("\\label{tab:scalability}\n")
	b.WriteString("\\begin{tabular}{rrrrrr}\n")
	b.WriteString("\\hline\n")
	b.WriteString("Size & Success & Avg Hops & Stretch & Time ($\\mu$s) & Memory (MB) \\\\\n")
	b.WriteString("\\hline\n")
	for _, c := range recs {
		fmt.Fprintf(&b, "%d & %s\\%% & %s & %s & %s & %s \\\\\n",
			c.NetworkSize,
			format.Decimal(c.MetricOr(record.SuccessRate, 0)*100, 1),
			format.Decimal(c.MetricOr(record.AvgHops, 0), 2),
			format.Decimal(c.MetricOr(record.StretchRatio, 0), 2),
			format.Decimal(c.MetricOr(record.LatencyOrTime, 0), 1),
			format.Decimal(c.MetricOr(record.Memory, 0), 2),
		)
	}
	b.WriteString("\\hline\n")
	b.WriteString("\\end{tabular}\n")
	b.WriteString("\\end{table}\n")
	return b.String()
}

func scalabilityInsights(recs []record.Canonical) string {
	var b strings.Builder
	if lo, hi, ok := aggregate.Range(recs, record.SuccessRate); ok {
		fmt.Fprintf(&b, "Success Rate Range: %s - %s\n", format.Percent(lo, 1), format.Percent(hi, 1))
	}
	if lo, hi, ok := aggregate.Range(recs, record.StretchRatio); ok {
		fmt.Fprintf(&b, "Stretch Ratio Range: %sx - %sx\n", format.Decimal(lo, 2), format.Decimal(hi, 2))
	}
	fmt.Fprintf(&b, "Total Memory Across All Experiments: %s MB\n", format.Decimal(aggregate.Sum(recs, record.Memory), 2))

	if len(recs) == 0 {
		return b.String()
	}
	first, last := recs[0], recs[len(recs)-1]
	t0, ok0 := first.Metric(record.LatencyOrTime)
	t1, ok1 := last.Metric(record.LatencyOrTime)
	if !ok0 || !ok1 || t0 == 0 || first.NetworkSize == 0 {
		return b.String()
	}
	timeRatio := t1 / t0
	sizeRatio := float64(last.NetworkSize) / float64(first.NetworkSize)
	fmt.Fprintf(&b, "Routing Time Scaling: %sx for %sx network size\n", format.Decimal(timeRatio, 2), format.Decimal(sizeRatio, 0))
	fmt.Fprintf(&b, "  (Sub-linear scaling: %s)\n", format.Decimal(timeRatio/sizeRatio, 2))
	return b.String()
}
