package report

import (
	"fmt"
	"strings"

	"expdata/internal/format"
	"expdata/internal/record"
)

// Churn renders one line per churn result in file order.
func Churn(recs []record.Canonical) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-10s %-5s %-10s %-10s %-10s %-8s\n",
		"Strategy", "Selection", "Rem%", "Success", "Stretch", "MaxStr", "TZ%")
	b.WriteString(format.Rule("-", 70) + "\n")
	for _, c := range recs {
		fmt.Fprintf(&b, "%-20s %-10s %5.0f%% %9.1f%% %10.3f %10.1f %7.1f%%\n",
			c.Strategy, c.Selection,
			c.MetricOr("removal_rate", 0),
			c.MetricOr(record.SuccessRate, 0)*100,
			c.MetricOr(record.StretchRatio, 0),
			c.MetricOr("max_stretch", 0),
			c.MetricOr("tz_pct", 0),
		)
	}
	return b.String()
}
