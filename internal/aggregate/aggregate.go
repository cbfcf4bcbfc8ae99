package aggregate

import (
	"encoding/json"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"expdata/internal/record"
)

// Row is one group's reduction: the key, the mean of every requested
// metric that had at least one value, and how many values fed each mean.
type Row struct {
	Key         GroupKey
	Metrics     []string
	Means       map[string]float64
	Counts      map[string]int
	SampleCount int
}

// Mean returns the group mean of a metric.
func (r Row) Mean(metric string) (float64, bool) {
	v, ok := r.Means[metric]
	return v, ok
}

// MeanOr returns the group mean or def when no record carried the metric.
func (r Row) MeanOr(metric string, def float64) float64 {
	if v, ok := r.Means[metric]; ok {
		return v
	}
	return def
}

// MarshalJSON writes key parts, then means in request order, then the
// sample count.
func (r Row) MarshalJSON() ([]byte, error) {
	o := r.Key.Object()
	for _, m := range r.Metrics {
		if v, ok := r.Means[m]; ok {
			o.Set(m, v)
		}
	}
	o.Set("sample_count", r.SampleCount)
	return json.Marshal(o)
}

// GroupBy partitions records by key and averages each metric over the
// records that carry it. Rows come back sorted by key.
func GroupBy(recs []record.Canonical, key KeyFunc, metrics ...string) []Row {
	type bucket struct {
		key    GroupKey
		n      int
		values map[string][]float64
	}
	var buckets []*bucket
	index := make(map[string]*bucket)
	for _, c := range recs {
		k := key(c)
		id := k.id()
		b, ok := index[id]
		if !ok {
			b = &bucket{key: k, values: make(map[string][]float64)}
			index[id] = b
			buckets = append(buckets, b)
		}
		b.n++
		for _, m := range metrics {
			if v, ok := c.Metric(m); ok {
				b.values[m] = append(b.values[m], v)
			}
		}
	}

	rows := make([]Row, 0, len(buckets))
	for _, b := range buckets {
		row := Row{
			Key:         b.key,
			Metrics:     metrics,
			Means:       make(map[string]float64),
			Counts:      make(map[string]int),
			SampleCount: b.n,
		}
		for _, m := range metrics {
			vals := b.values[m]
			if len(vals) == 0 {
				continue
			}
			row.Means[m] = stat.Mean(vals, nil)
			row.Counts[m] = len(vals)
		}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b Row) int { return a.Key.Compare(b.Key) })
	return rows
}

// Extreme is the group holding the largest or smallest mean of a metric.
type Extreme struct {
	Metric string   `json:"metric"`
	Key    GroupKey `json:"key"`
	Value  float64  `json:"value"`
}

// Max returns the row with the highest mean; the first row wins ties.
func Max(rows []Row, metric string) (Extreme, bool) {
	return pick(rows, metric, func(v, best float64) bool { return v > best })
}

// Min returns the row with the lowest mean; the first row wins ties.
func Min(rows []Row, metric string) (Extreme, bool) {
	return pick(rows, metric, func(v, best float64) bool { return v < best })
}

func pick(rows []Row, metric string, better func(v, best float64) bool) (Extreme, bool) {
	var out Extreme
	found := false
	for _, r := range rows {
		v, ok := r.Means[metric]
		if !ok {
			continue
		}
		if !found || better(v, out.Value) {
			out = Extreme{Metric: metric, Key: r.Key, Value: v}
			found = true
		}
	}
	return out, found
}

// Range returns the smallest and largest raw value of a metric.
func Range(recs []record.Canonical, metric string) (lo, hi float64, ok bool) {
	vals := Values(recs, metric)
	if len(vals) == 0 {
		return 0, 0, false
	}
	return floats.Min(vals), floats.Max(vals), true
}

// Values collects the present values of a metric in record order.
func Values(recs []record.Canonical, metric string) []float64 {
	var vals []float64
	for _, c := range recs {
		if v, ok := c.Metric(metric); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// Mean averages the present values of a metric over records.
func Mean(recs []record.Canonical, metric string) (float64, bool) {
	vals := Values(recs, metric)
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}

// Sum adds the present values of a metric over records.
func Sum(recs []record.Canonical, metric string) float64 {
	vals := Values(recs, metric)
	if len(vals) == 0 {
		return 0
	}
	return floats.Sum(vals)
}

// Group is one partition of records sharing a key.
type Group struct {
	Key     GroupKey
	Records []record.Canonical
}

// Partition splits records by key preserving first-seen order of groups
// and record order within each group.
func Partition(recs []record.Canonical, key KeyFunc) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, c := range recs {
		k := key(c)
		id := k.id()
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Records = append(groups[i].Records, c)
	}
	return groups
}
