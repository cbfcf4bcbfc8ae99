package report

import (
	"maps"
	"slices"
	"strings"

	"expdata/internal/aggregate"
	"expdata/internal/format"
	"expdata/internal/record"
)

// realisticMinSize is the smallest network size in the summary analysis.
const realisticMinSize = 100

const gravityShare = "gravity_pct"

// SummaryAnalysis renders the per-embedding markdown summary over the
// realistic topologies at n >= 100. Embeddings without results show zeros.
func SummaryAnalysis(recs []record.Canonical) string {
	var subset []record.Canonical
	for _, c := range recs {
		if !slices.Contains(mainTopologies, c.Topology) || c.NetworkSize < realisticMinSize {
			continue
		}
		if c.Modes != nil {
			g, _, _ := ModeShares(c)
			c.Metrics = maps.Clone(c.Metrics)
			c.SetMetric(gravityShare, g)
		}
		subset = append(subset, c)
	}
	rows := aggregate.GroupBy(subset, aggregate.By(record.FieldEmbedding),
		record.SuccessRate, record.AvgHops, gravityShare)

	tb := format.NewTable(format.Markdown)
	tb.Header("Embedding", "Avg Success", "Avg Hops", "Avg Gravity %")
	for _, emb := range Embeddings {
		var r aggregate.Row
		for _, row := range rows {
			if row.Key.Text(record.FieldEmbedding) == emb {
				r = row
				break
			}
		}
		tb.Row(emb,
			format.Percent(r.MeanOr(record.SuccessRate, 0), 1),
			format.Decimal(r.MeanOr(record.AvgHops, 0), 1),
			format.Decimal(r.MeanOr(gravityShare, 0), 1)+"%",
		)
	}

	var b strings.Builder
	b.WriteString("## Summary Analysis for Paper\n\n")
	b.WriteString(tb.String())
	b.WriteString("\n")
	return b.String()
}

// HopRatios returns one row per ablation result with mode shares in
// percent at one decimal, ready for tabular export.
func HopRatios(recs []record.Canonical) []*record.Object {
	rows := make([]*record.Object, 0, len(recs))
	for _, c := range recs {
		g, p, t := ModeShares(c)
		rows = append(rows, record.ObjectOf(
			"topology", c.Topology,
			"n", c.NetworkSize,
			"embedding", c.Embedding,
			"gravity_pct", format.Decimal(g, 1),
			"pressure_pct", format.Decimal(p, 1),
			"tree_pct", format.Decimal(t, 1),
		))
	}
	return rows
}
