package report

import (
	"fmt"
	"strings"

	"expdata/internal/aggregate"
	"expdata/internal/format"
	"expdata/internal/record"
)

// Protocols compared against DRFE-R in the comparison summary.
var referenceProtocols = []string{"Chord", "Kademlia"}

const ownProtocol = "DRFE-R"

var baselineMetrics = []string{record.SuccessRate, record.AvgHops, record.LatencyOrTime}

// Baseline renders the protocol comparison: per protocol, per topology,
// per network size, then the overall comparison summary. Every average is
// the plain mean over configuration rows; total_tests plays no part.
func Baseline(recs []record.Canonical) string {
	var b strings.Builder
	b.WriteString("\n")
	byProtocol := aggregate.GroupBy(recs, aggregate.By(record.FieldProtocol), baselineMetrics...)

	banner(&b, "=", 80, "ANALYSIS BY PROTOCOL")
	b.WriteString("\n")
	for _, r := range byProtocol {
		fmt.Fprintf(&b, "%s:\n", r.Key.Text(record.FieldProtocol))
		fmt.Fprintf(&b, "  Average Success Rate: %s\n", format.Percent(r.MeanOr(record.SuccessRate, 0), 2))
		fmt.Fprintf(&b, "  Average Hop Count: %s\n", format.Decimal(r.MeanOr(record.AvgHops, 0), 2))
		fmt.Fprintf(&b, "  Average Latency: %s μs\n\n", format.Decimal(r.MeanOr(record.LatencyOrTime, 0), 2))
	}

	banner(&b, "=", 80, "ANALYSIS BY TOPOLOGY")
	b.WriteString("\n")
	byTopology := aggregate.GroupBy(recs, aggregate.By(record.FieldTopology, record.FieldProtocol), baselineMetrics...)
	var current string
	for i, r := range byTopology {
		topo := r.Key.Text(record.FieldTopology)
		if i == 0 || topo != current {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s Topology:\n\n", strings.ToUpper(topo))
			current = topo
		}
		fmt.Fprintf(&b, "  %s:\n", r.Key.Text(record.FieldProtocol))
		fmt.Fprintf(&b, "    Success Rate: %s\n", format.Percent(r.MeanOr(record.SuccessRate, 0), 2))
		fmt.Fprintf(&b, "    Avg Hops: %s\n", format.Decimal(r.MeanOr(record.AvgHops, 0), 2))
		fmt.Fprintf(&b, "    Avg Latency: %s μs\n", format.Decimal(r.MeanOr(record.LatencyOrTime, 0), 2))
	}
	if len(byTopology) > 0 {
		b.WriteString("\n")
	}

	banner(&b, "=", 80, "SCALABILITY ANALYSIS")
	b.WriteString("\n")
	tb := format.NewTable(format.ASCII)
	tb.Header("Size", "Protocol", "Success %", "Avg Hops", "Avg Latency(μs)")
	tb.Columns(format.Fixed(1, 10), format.Fixed(2, 12), format.Fixed(3, 12), format.Fixed(4, 12), format.Fixed(5, 15))
	bySize := aggregate.GroupBy(recs, aggregate.By(record.FieldNetworkSize, record.FieldProtocol), baselineMetrics...)
	for _, r := range bySize {
		tb.Row(r.Key.Text(record.FieldNetworkSize), r.Key.Text(record.FieldProtocol),
			format.Decimal(r.MeanOr(record.SuccessRate, 0)*100, 2),
			format.Decimal(r.MeanOr(record.AvgHops, 0), 2),
			format.Decimal(r.MeanOr(record.LatencyOrTime, 0), 2),
		)
	}
	b.WriteString(tb.String() + "\n\n")

	b.WriteString(comparisonSummary(byProtocol))
	return b.String()
}

func comparisonSummary(byProtocol []aggregate.Row) string {
	var b strings.Builder
	banner(&b, "=", 80, "COMPARISON SUMMARY")
	b.WriteString("\nOverall Performance (averaged across all tests):\n\n")

	tb := format.NewTable(format.ASCII)
	tb.Header("Protocol", "Success %", "Avg Hops", "Avg Latency(μs)")
	tb.Columns(format.Fixed(1, 12), format.Fixed(2, 12), format.Fixed(3, 12), format.Fixed(4, 15))
	for _, r := range byProtocol {
		tb.Row(r.Key.Text(record.FieldProtocol),
			format.Decimal(r.MeanOr(record.SuccessRate, 0)*100, 2),
			format.Decimal(r.MeanOr(record.AvgHops, 0), 2),
			format.Decimal(r.MeanOr(record.LatencyOrTime, 0), 2),
		)
	}
	b.WriteString(tb.String() + "\n\nKey Findings:\n\n")

	if best, ok := aggregate.Max(byProtocol, record.SuccessRate); ok {
		fmt.Fprintf(&b, "1. Highest Success Rate: %s (%s)\n", best.Key.Text(record.FieldProtocol), format.Percent(best.Value, 2))
	}
	if best, ok := aggregate.Min(byProtocol, record.AvgHops); ok {
		fmt.Fprintf(&b, "2. Lowest Hop Count: %s (%s hops)\n", best.Key.Text(record.FieldProtocol), format.Decimal(best.Value, 2))
	}
	if best, ok := aggregate.Min(byProtocol, record.LatencyOrTime); ok {
		fmt.Fprintf(&b, "3. Lowest Latency: %s (%s μs)\n", best.Key.Text(record.FieldProtocol), format.Decimal(best.Value, 2))
	}
	b.WriteString("\n")

	own, ok := findProtocol(byProtocol, ownProtocol)
	if ok {
		b.WriteString("DRFE-R Performance:\n")
		fmt.Fprintf(&b, "  - Success Rate: %s\n", format.Percent(own.MeanOr(record.SuccessRate, 0), 2))
		fmt.Fprintf(&b, "  - Average Hops: %s\n", format.Decimal(own.MeanOr(record.AvgHops, 0), 2))
		fmt.Fprintf(&b, "  - Average Latency: %s μs\n\n", format.Decimal(own.MeanOr(record.LatencyOrTime, 0), 2))
		for _, name := range referenceProtocols {
			ref, ok := findProtocol(byProtocol, name)
			if !ok {
				continue
			}
			if diff, ok := RelativeDiff(own.MeanOr(record.AvgHops, 0), ref.MeanOr(record.AvgHops, 0)); ok {
				fmt.Fprintf(&b, "  vs %s: %s%% hops\n", name, format.Signed(diff, 1))
			}
		}
	}
	b.WriteString("\n")
	return b.String()
}

// RelativeDiff returns (v-ref)/ref in percent; false when ref is zero.
func RelativeDiff(v, ref float64) (float64, bool) {
	if ref == 0 {
		return 0, false
	}
	return (v - ref) / ref * 100, true
}

func findProtocol(rows []aggregate.Row, name string) (aggregate.Row, bool) {
	for _, r := range rows {
		if r.Key.Text(record.FieldProtocol) == name {
			return r, true
		}
	}
	return aggregate.Row{}, false
}
