package display

import "testing"

func TestFamily(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"scalability", "Scalability Analysis"},
		{"topology", "Topology Experiments"},
		{"baseline", "Baseline Comparison"},
		{"ablation", "Embedding Ablation Study"},
		{"churn", "Churn Robustness"},
		{"unknown", "unknown"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Family(tc.code); got != tc.want {
			t.Errorf("Family(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestTopologyLabel(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"ba", "BA"},
		{"ws", "WS"},
		{"grid", "Grid"},
		{"line", "Line"},
		{"lollipop", "Lollipop"},
		{"torus", "Torus"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := TopologyLabel(tc.code); got != tc.want {
			t.Errorf("TopologyLabel(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestMetric(t *testing.T) {
	if got := Metric("avg_hops"); got != "Average Hops" {
		t.Errorf("got %q", got)
	}
	if got := Metric("p95_hops"); got != "p95_hops" {
		t.Errorf("got %q", got)
	}
}

func TestStagePath(t *testing.T) {
	got := StagePath([]string{"loading", "normalizing", "indexing"})
	want := "Loading → Normalizing → Indexing"
	if got != want {
		t.Errorf("StagePath = %q, want %q", got, want)
	}
}

func TestMark(t *testing.T) {
	if Mark(true) != "✓" || Mark(false) != "✗" {
		t.Error("unexpected marks")
	}
}
