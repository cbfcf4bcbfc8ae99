package report

import (
	"fmt"
	"strings"

	"expdata/internal/format"
	"expdata/internal/record"
)

// CrossTopologies are the generator labels compared across network sizes.
var CrossTopologies = []string{"BarabasiAlbert", "WattsStrogatz", "Grid", "Random", "RealWorld"}

// SizedRecords are the topology records of one network size.
type SizedRecords struct {
	Size    int
	Records []record.Canonical
}

// Topology renders one table per network size, then each generator's
// results across sizes, then the fixed findings text. sets must be sorted
// by size.
func Topology(sets []SizedRecords) string {
	var b strings.Builder
	b.WriteString("DRFE-R Topology Experiments - Comprehensive Analysis\n")
	b.WriteString(format.Rule("=", 70) + "\n")

	for _, set := range sets {
		b.WriteString("\n")
		banner(&b, "=", 70, fmt.Sprintf("Network Size: %d nodes", set.Size))
		b.WriteString("\n")

		tb := format.NewTable(format.ASCII)
		tb.Header("Topology", "Success %", "Avg Hops", "Stretch", "Edges")
		tb.Columns(format.Fixed(1, 20),
			format.ColumnConfig{Number: 2, Align: format.AlignRight, MinWidth: 11},
			format.ColumnConfig{Number: 3, Align: format.AlignRight, MinWidth: 10},
			format.ColumnConfig{Number: 4, Align: format.AlignRight, MinWidth: 10},
			format.ColumnConfig{Number: 5, Align: format.AlignRight, MinWidth: 10},
		)
		for _, c := range set.Records {
			tb.Row(c.Topology,
				format.Percent(c.MetricOr(record.SuccessRate, 0), 2),
				format.Decimal(c.MetricOr(record.AvgHops, 0), 2),
				format.Decimal(c.MetricOr(record.StretchRatio, 0), 3),
				num(c.MetricOr("num_edges", 0)),
			)
		}
		b.WriteString(tb.String() + "\n")
	}

	b.WriteString("\n")
	banner(&b, "=", 70, "Cross-Topology Analysis")
	for _, topo := range CrossTopologies {
		fmt.Fprintf(&b, "\n%s Topology - Scalability:\n", topo)
		tb := format.NewTable(format.ASCII)
		tb.Header("Size", "Success %", "Avg Hops", "Stretch")
		tb.Columns(format.Fixed(1, 10),
			format.ColumnConfig{Number: 2, Align: format.AlignRight, MinWidth: 11},
			format.ColumnConfig{Number: 3, Align: format.AlignRight, MinWidth: 10},
			format.ColumnConfig{Number: 4, Align: format.AlignRight, MinWidth: 10},
		)
		for _, set := range sets {
			c, ok := firstWithTopology(set.Records, topo)
			if !ok {
				continue
			}
			tb.Row(set.Size,
				format.Percent(c.MetricOr(record.SuccessRate, 0), 2),
				format.Decimal(c.MetricOr(record.AvgHops, 0), 2),
				format.Decimal(c.MetricOr(record.StretchRatio, 0), 3),
			)
		}
		b.WriteString(tb.String() + "\n")
	}

	b.WriteString("\n")
	banner(&b, "=", 70, "Key Findings")
	b.WriteString("\n")
	b.WriteString(topologyFindings)
	return b.String()
}

func firstWithTopology(recs []record.Canonical, topo string) (record.Canonical, bool) {
	for _, c := range recs {
		if c.Topology == topo {
			return c, true
		}
	}
	return record.Canonical{}, false
}

const topologyFindings = `1. Success Rates:
   - Grid and Watts-Strogatz topologies achieve highest success rates (>95%)
   - All topologies maintain >90% success rate across network sizes
   - Real-World topology shows good performance with improved connectivity

2. Hop Count:
   - Random topology has lowest average hops (most efficient)
   - Grid topology has highest hops due to geometric constraints
   - Hop count scales sub-linearly with network size

3. Stretch Ratio:
   - Grid topology achieves best stretch ratio (~1.5x optimal)
   - Barabási-Albert shows higher stretch due to hub structure
   - All topologies maintain stretch ratio < 3.5x

4. Scalability:
   - System maintains >90% success rate up to 300+ nodes
   - Performance degrades gracefully with network size
   - TTL exhaustion is primary failure mode (not routing errors)

======================================================================
Conclusion: DRFE-R demonstrates robust routing performance across
diverse topology types with high success rates and reasonable stretch.
======================================================================
`
