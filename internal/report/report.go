// Package report renders aggregated results for people: fixed-width
// console tables per experiment family, LaTeX tables for the paper, and
// markdown analysis notes.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"expdata/internal/format"
	"expdata/internal/record"
)

// Highlighting tolerances. Success rates are near-certain values that
// should not be compared with 1.0 exactly; hop counts within HopTolerance
// of the row minimum count as tied for best.
const (
	SuccessBoldThreshold = 0.999
	HopTolerance         = 0.01
	// HopCandidateMinSuccess excludes embeddings that mostly fail from
	// the row minimum of the hop table.
	HopCandidateMinSuccess = 0.8
)

// IsBestSuccess reports whether a success rate is effectively maximal.
func IsBestSuccess(rate float64) bool { return rate >= SuccessBoldThreshold }

// IsBestHops reports whether hops ties the row minimum.
func IsBestHops(hops, rowMin float64) bool { return math.Abs(hops-rowMin) < HopTolerance }

// ModeShares returns the gravity, pressure and tree percentages of a
// record, all zero when it carries no mode breakdown.
func ModeShares(c record.Canonical) (gravity, pressure, tree float64) {
	if c.Modes == nil {
		return 0, 0, 0
	}
	return c.Modes.Shares()
}

func banner(b *strings.Builder, ch string, width int, title string) {
	b.WriteString(format.Rule(ch, width) + "\n")
	b.WriteString(title + "\n")
	b.WriteString(format.Rule(ch, width) + "\n")
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n=== %s ===\n\n", title)
}

// rawText renders a raw header value the way it appeared in the file.
func rawText(v any) string {
	switch t := v.(type) {
	case nil:
		return "N/A"
	case string:
		return t
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = rawText(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

// num renders a number without trailing zeros, integers without a point.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func configValue(header *record.Object, key string) any {
	if header == nil {
		return nil
	}
	cfg, ok := header.Get("config")
	if !ok {
		return nil
	}
	obj, ok := cfg.(*record.Object)
	if !ok {
		return nil
	}
	v, _ := obj.Get(key)
	return v
}

func headerValue(header *record.Object, key string) any {
	if header == nil {
		return nil
	}
	v, _ := header.Get(key)
	return v
}
