package report

import (
	"fmt"
	"slices"
	"strings"

	"expdata/internal/aggregate"
	"expdata/internal/display"
	"expdata/internal/format"
	"expdata/internal/record"
)

// Embeddings compared in the ablation tables, in column order.
var Embeddings = []string{"PIE", "Random", "Ricci-Broken", "Ricci-Fixed"}

var (
	successTopologies = []string{"ba", "ws", "grid", "line", "lollipop"}
	successScales     = []int{50, 100, 200, 300}
	mainTopologies    = []string{"ba", "ws", "grid"}
	hopScales         = []int{100, 200, 300}
)

// modeScale is the network size shown in the mode distribution table.
const modeScale = 300

var ablationMetrics = []string{record.SuccessRate, record.AvgHops, record.StretchRatio}

// AblationGrid indexes ablation results by topology, size and embedding.
// Duplicate configurations are averaged.
type AblationGrid struct {
	rows []aggregate.Row
}

// NewAblationGrid aggregates ablation records into a lookup grid.
func NewAblationGrid(recs []record.Canonical) *AblationGrid {
	key := aggregate.By(record.FieldTopology, record.FieldNetworkSize, record.FieldEmbedding)
	return &AblationGrid{rows: aggregate.GroupBy(recs, key, ablationMetrics...)}
}

// Cell returns the aggregate of one configuration.
func (g *AblationGrid) Cell(topology string, n int, embedding string) (aggregate.Row, bool) {
	for _, r := range g.rows {
		if r.Key.Text(record.FieldTopology) == topology &&
			r.Key.Int(record.FieldNetworkSize) == n &&
			r.Key.Text(record.FieldEmbedding) == embedding {
			return r, true
		}
	}
	return aggregate.Row{}, false
}

// Line returns every configuration of one topology and size, sorted by
// embedding.
func (g *AblationGrid) Line(topology string, n int) []aggregate.Row {
	var out []aggregate.Row
	for _, r := range g.rows {
		if r.Key.Text(record.FieldTopology) == topology && r.Key.Int(record.FieldNetworkSize) == n {
			out = append(out, r)
		}
	}
	return out
}

// RowMinHops is the lowest mean hop count among configurations of the line
// whose success rate exceeds HopCandidateMinSuccess, or 0 when none does.
func RowMinHops(line []aggregate.Row) float64 {
	var candidates []aggregate.Row
	for _, r := range line {
		if r.MeanOr(record.SuccessRate, 0) > HopCandidateMinSuccess {
			candidates = append(candidates, r)
		}
	}
	if best, ok := aggregate.Min(candidates, record.AvgHops); ok {
		return best.Value
	}
	return 0
}

const tableHead = `\begin{table}[htbp]
\centering
\caption{%s}
\label{%s}
\begin{tabular}{%s}
\toprule
%s \\
\midrule
`

const tableFoot = `\bottomrule
\end{tabular}
\end{table}
`

func embeddingHeader() string {
	return "Topology & N & " + strings.Join(Embeddings, " & ")
}

// SuccessRateTable renders success rates per topology, size and
// embedding. Effectively-maximal rates are bold; missing cells are "--".
func SuccessRateTable(g *AblationGrid) string {
	var b strings.Builder
	fmt.Fprintf(&b, tableHead, "Routing Success Rate by Topology and Embedding Strategy",
		"tab:success-rate", "llcccc", embeddingHeader())
	for _, topo := range successTopologies {
		for _, n := range successScales {
			if len(g.Line(topo, n)) == 0 {
				continue
			}
			line := fmt.Sprintf("%s & %d", display.TopologyLabel(topo), n)
			for _, emb := range Embeddings {
				r, ok := g.Cell(topo, n, emb)
				sr, has := r.Mean(record.SuccessRate)
				if !ok || !has {
					line += " & --"
					continue
				}
				cell := format.Decimal(sr*100, 1) + `\%`
				if IsBestSuccess(sr) {
					cell = `\textbf{` + cell + `}`
				}
				line += " & " + cell
			}
			line += ` \\`
			if n == 300 {
				line += `\midrule`
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(tableFoot)
	return b.String()
}

// AvgHopsTable renders mean hop counts for the main topologies, bolding
// every cell tied with the row minimum.
func AvgHopsTable(g *AblationGrid) string {
	var b strings.Builder
	fmt.Fprintf(&b, tableHead, "Average Hop Count by Topology and Embedding Strategy",
		"tab:avg-hops", "llcccc", embeddingHeader())
	for _, topo := range mainTopologies {
		for _, n := range hopScales {
			lineRows := g.Line(topo, n)
			if len(lineRows) == 0 {
				continue
			}
			rowMin := RowMinHops(lineRows)
			line := fmt.Sprintf("%s & %d", display.TopologyLabel(topo), n)
			for _, emb := range Embeddings {
				r, ok := g.Cell(topo, n, emb)
				hops, has := r.Mean(record.AvgHops)
				if !ok || !has {
					line += " & --"
					continue
				}
				cell := format.Decimal(hops, 1)
				if IsBestHops(hops, rowMin) {
					cell = `\textbf{` + cell + `}`
				}
				line += " & " + cell
			}
			line += ` \\`
			if n == 300 && topo != "grid" {
				line += `\midrule`
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(tableFoot)
	return b.String()
}

// ModeDistributionTable renders gravity, pressure and tree shares at the
// largest network size, one block per main topology.
func ModeDistributionTable(recs []record.Canonical) string {
	var b strings.Builder
	fmt.Fprintf(&b, tableHead, fmt.Sprintf("Routing Mode Distribution (N=%d)", modeScale),
		"tab:mode-distribution", "llccc", `Topology & Embedding & Gravity \% & Pressure \% & Tree \%`)
	for _, topo := range mainTopologies {
		var line []record.Canonical
		for _, c := range recs {
			if c.Topology == topo && c.NetworkSize == modeScale {
				line = append(line, c)
			}
		}
		if len(line) == 0 {
			continue
		}
		groups := aggregate.Partition(line, aggregate.By(record.FieldEmbedding))
		slices.SortStableFunc(groups, func(a, b aggregate.Group) int { return a.Key.Compare(b.Key) })
		for i, grp := range groups {
			label := ""
			if i == 0 {
				label = display.TopologyLabel(topo)
			}
			for _, c := range grp.Records {
				g, p, t := ModeShares(c)
				fmt.Fprintf(&b, "%s & %s & %s\\%% & %s\\%% & %s\\%% \\\\\n",
					label, c.Embedding, format.Decimal(g, 1), format.Decimal(p, 1), format.Decimal(t, 1))
				label = ""
			}
		}
		b.WriteString(`\midrule` + "\n")
	}
	b.WriteString(tableFoot)
	return b.String()
}
