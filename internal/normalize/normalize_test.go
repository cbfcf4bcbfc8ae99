package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"expdata/internal/record"
)

func obj(t *testing.T, s string) *record.Object {
	t.Helper()
	v, err := record.Decode([]byte(s))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	o, ok := v.(*record.Object)
	if !ok {
		t.Fatalf("got %T, want *record.Object", v)
	}
	return o
}

func TestSchema_RequiredFields(t *testing.T) {
	s, ok := SchemaFor(record.Baseline)
	if !ok {
		t.Fatal("baseline schema missing")
	}
	var names []string
	for _, f := range s.RequiredFields() {
		names = append(names, f.Name)
	}
	want := []string{record.FieldProtocol, record.SuccessRate, record.AvgHops}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("required fields (-want +got):\n%s", diff)
	}
}

func TestSchemaFor_EveryFamily(t *testing.T) {
	for _, f := range record.Families() {
		s, ok := SchemaFor(f)
		if !ok {
			t.Errorf("no schema for %s", f)
			continue
		}
		if s.Family != f {
			t.Errorf("schema %s tagged %s", f, s.Family)
		}
	}
}

func TestFieldSpec_ResolveOrder(t *testing.T) {
	f := FieldSpec{Name: record.FieldTopology, Keys: []string{"topology", "topology_type"}}
	tests := []struct {
		name    string
		raw     string
		wantVal any
		wantKey string
		wantOK  bool
	}{
		{"first key wins", `{"topology_type":"ws","topology":"ba"}`, "ba", "topology", true},
		{"fallback", `{"topology_type":"ws"}`, "ws", "topology_type", true},
		{"null skipped", `{"topology":null,"topology_type":"er"}`, "er", "topology_type", true},
		{"absent", `{"n":1}`, nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, key, ok := f.Resolve(obj(t, tt.raw))
			if ok != tt.wantOK || key != tt.wantKey || v != tt.wantVal {
				t.Errorf("Resolve = (%v, %q, %v), want (%v, %q, %v)", v, key, ok, tt.wantVal, tt.wantKey, tt.wantOK)
			}
		})
	}
}

func TestDetectVersion(t *testing.T) {
	s, _ := SchemaFor(record.Topology)
	if got := s.DetectVersion(obj(t, `{"topology":"ba"}`)); got != "v2" {
		t.Errorf("version = %q, want v2", got)
	}
	if got := s.DetectVersion(obj(t, `{"topology_type":"ba"}`)); got != "v1" {
		t.Errorf("version = %q, want v1", got)
	}
	if got := s.DetectVersion(obj(t, `{}`)); got != "" {
		t.Errorf("version = %q, want empty", got)
	}
}

func TestOne_Scalability(t *testing.T) {
	n := New(nil)
	raw := obj(t, `{"network_size":100,"success_rate":0.97,"avg_hops":5.3,"avg_stretch":1.82,
		"avg_routing_time_us":12.4,"total_memory_mb":0.512,"gravity_hops":40,"pressure_hops":8,"tree_hops":2,"p95_hops":9}`)
	c, err := n.One(raw, 3, Context{Family: record.Scalability, Source: "scalability_results.json"})
	if err != nil {
		t.Fatalf("One: %v", err)
	}
	want := record.Canonical{
		Family:      record.Scalability,
		NetworkSize: 100,
		Metrics: map[string]float64{
			record.SuccessRate:   0.97,
			record.AvgHops:       5.3,
			record.StretchRatio:  1.82,
			record.LatencyOrTime: 12.4,
			record.Memory:        0.512,
			"p95_hops":           9,
		},
		Modes: &record.ModeCounts{Gravity: 40, Pressure: 8, Tree: 2},
		Provenance: record.Provenance{
			Family:        record.Scalability,
			Source:        "scalability_results.json",
			Index:         3,
			SchemaVersion: "v1",
		},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("canonical mismatch (-want +got):\n%s", diff)
	}
}

func TestOne_TopologyInjectsSize(t *testing.T) {
	n := New(nil)
	c, err := n.One(obj(t, `{"topology_type":"ws","network_size":999,"success_rate":"0.9","avg_hops":4}`), 0,
		Context{Family: record.Topology, Source: "topology_experiments_n200.json", NetworkSize: 200})
	if err != nil {
		t.Fatalf("One: %v", err)
	}
	if c.NetworkSize != 200 || !c.Provenance.SizeFromContext {
		t.Errorf("size = %d (from context %v), want 200 from context", c.NetworkSize, c.Provenance.SizeFromContext)
	}
	if c.Topology != "ws" {
		t.Errorf("topology = %q, want ws", c.Topology)
	}
	if got := c.Metrics[record.SuccessRate]; got != 0.9 {
		t.Errorf("success_rate = %v, want 0.9 from string", got)
	}
	if _, ok := c.Metric(record.StretchRatio); ok {
		t.Error("stretch_ratio should be absent")
	}
}

func TestOne_AblationRatiosAreNormalized(t *testing.T) {
	n := New(nil)
	raw := obj(t, `{"topology":"ba","n":"300","embedding":"hyperbolic","success_rate":"1.0","avg_hops":"3.2",
		"stretch":"1.1","gravity_ratio":"0.7","pressure_ratio":"0.2","tree_ratio":"0.1"}`)
	c, err := n.One(raw, 0, Context{Family: record.Ablation})
	if err != nil {
		t.Fatalf("One: %v", err)
	}
	if c.NetworkSize != 300 || c.Embedding != "hyperbolic" {
		t.Errorf("got size %d embedding %q", c.NetworkSize, c.Embedding)
	}
	if c.Modes == nil || !c.Modes.Normalized {
		t.Fatalf("modes = %+v, want normalized ratios", c.Modes)
	}
}

func TestOne_Drops(t *testing.T) {
	tests := []struct {
		name   string
		family record.Family
		raw    string
		field  string
	}{
		{"missing required metric", record.Scalability, `{"network_size":100,"avg_hops":5}`, record.SuccessRate},
		{"uncoercible", record.Scalability, `{"network_size":100,"success_rate":"n/a","avg_hops":5}`, record.SuccessRate},
		{"non-finite", record.Baseline, `{"protocol":"p","success_rate":"NaN","avg_hops":5}`, record.SuccessRate},
		{"fractional size", record.Ablation, `{"topology":"ba","n":"100.5","embedding":"e","success_rate":1,"avg_hops":2}`, "n"},
		{"missing label", record.Baseline, `{"success_rate":1,"avg_hops":2}`, record.FieldProtocol},
		{"rate out of range", record.Baseline, `{"protocol":"p","success_rate":97,"avg_hops":2}`, record.SuccessRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil).One(obj(t, tt.raw), 7, Context{Family: tt.family})
			if !errors.Is(err, ErrDropped) {
				t.Fatalf("err = %v, want ErrDropped", err)
			}
			var de *DropError
			if !errors.As(err, &de) || de.Field != tt.field || de.Index != 7 {
				t.Errorf("drop = %+v, want field %q index 7", de, tt.field)
			}
		})
	}
}

func TestOne_OptionalCoercionFailureIsAbsent(t *testing.T) {
	n := New(nil)
	c, err := n.One(obj(t, `{"protocol":"p","success_rate":1,"avg_hops":2,"avg_latency_us":"fast"}`), 0,
		Context{Family: record.Baseline})
	if err != nil {
		t.Fatalf("One: %v", err)
	}
	if _, ok := c.Metric(record.LatencyOrTime); ok {
		t.Error("latency should be absent")
	}
	if n.Coercions(record.Baseline) != 1 {
		t.Errorf("coercions = %d, want 1", n.Coercions(record.Baseline))
	}
}

func TestOne_PartialModesAbsent(t *testing.T) {
	c, err := New(nil).One(obj(t, `{"network_size":100,"success_rate":1,"avg_hops":2,"gravity_hops":3}`), 0,
		Context{Family: record.Scalability})
	if err != nil {
		t.Fatalf("One: %v", err)
	}
	if c.Modes != nil {
		t.Errorf("modes = %+v, want nil", c.Modes)
	}
}

func TestAll_CountsDropsAndKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	n := New(slog.New(slog.NewTextHandler(&buf, nil)))
	raws := []*record.Object{
		obj(t, `{"protocol":"a","success_rate":1,"avg_hops":2}`),
		obj(t, `{"protocol":"b","success_rate":"x","avg_hops":2}`),
		obj(t, `{"protocol":"c","success_rate":0.5,"avg_hops":3}`),
	}
	got := n.All(raws, Context{Family: record.Baseline, Source: "baseline_comparison.json"})
	if len(got) != 2 || got[0].Protocol != "a" || got[1].Protocol != "c" {
		t.Fatalf("got %+v", got)
	}
	if got[1].Provenance.Index != 2 {
		t.Errorf("index = %d, want 2", got[1].Provenance.Index)
	}
	if n.Dropped(record.Baseline) != 1 {
		t.Errorf("dropped = %d, want 1", n.Dropped(record.Baseline))
	}
	if !strings.Contains(buf.String(), "record dropped") {
		t.Errorf("missing drop warning in log: %s", buf.String())
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in      any
		kind    Kind
		want    any
		wantErr bool
	}{
		{json.Number("1.5"), Number, 1.5, false},
		{" 2 ", Number, 2.0, false},
		{3.0, Integer, 3.0, false},
		{json.Number("3.5"), Integer, nil, true},
		{true, Number, nil, true},
		{"Inf", Number, nil, true},
		{json.Number("100"), Text, "100", false},
		{"ba", Text, "ba", false},
		{1.0, Text, nil, true},
	}
	for _, tt := range tests {
		got, err := coerce(tt.in, tt.kind)
		if (err != nil) != tt.wantErr {
			t.Errorf("coerce(%v) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("coerce(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
