package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expdata/internal/aggregate"
	"expdata/internal/loader"
	"expdata/internal/record"
)

func decodeObj(t *testing.T, s string) *record.Object {
	t.Helper()
	v, err := record.Decode([]byte(s))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return v.(*record.Object)
}

func TestEncodeCSV_ColumnOrderFromFirstRecord(t *testing.T) {
	rows := []*record.Object{
		decodeObj(t, `{"network_size":100,"success_rate":0.97,"avg_hops":5.3,"avg_stretch":1.8,"avg_routing_time_us":120.4,"total_memory_mb":0.512}`),
	}
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	want := "network_size,success_rate,avg_hops,avg_stretch,avg_routing_time_us,total_memory_mb\n" +
		"100,0.97,5.3,1.8,120.4,0.512\n"
	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestEncodeCSV_LaterRecordsDoNotReflow(t *testing.T) {
	rows := []*record.Object{
		decodeObj(t, `{"a":1,"b":2}`),
		decodeObj(t, `{"b":3,"c":4}`),
	}
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	want := "a,b\n1,2\n,3\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteCSV_NoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSV(path, nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written for empty input")
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	rows := []*record.Object{
		decodeObj(t, `{"topology":"ba","n":100,"success_rate":0.999,"note":"a, \"quoted\" cell"}`),
		decodeObj(t, `{"topology":"ws","n":200,"success_rate":1}`),
	}
	path := filepath.Join(t.TempDir(), "rt.csv")
	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	ds, err := loader.LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(ds.Records) != len(rows) {
		t.Fatalf("records = %d, want %d", len(ds.Records), len(rows))
	}
	cols := Columns(rows)
	for i, r := range rows {
		for _, c := range cols {
			want, _ := r.Get(c)
			got, _ := ds.Records[i].Get(c)
			if Cell(want) != got {
				t.Errorf("row %d %s = %v, want %q", i, c, got, Cell(want))
			}
		}
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{json.Number("0.1000"), "0.1000"},
		{true, "true"},
		{42, "42"},
		{0.5, "0.5"},
		{[]any{json.Number("1"), "a"}, `[1,"a"]`},
		{record.ObjectOf("k", "v"), `{"k":"v"}`},
	}
	for _, tt := range tests {
		if got := Cell(tt.in); got != tt.want {
			t.Errorf("Cell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteJSON_IndentedNoEscape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := WriteJSON(path, map[string]string{"label": "a<b"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, _ := os.ReadFile(path)
	want := "{\n  \"label\": \"a<b\"\n}\n"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestStore_Summary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	sum := &Summary{Experiment: "Baseline Comparison", Family: record.Baseline, Sources: []string{"baseline_comparison.json"}}
	path, err := s.SaveSummary(sum)
	if err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}
	if filepath.Base(path) != "baseline_summary.json" {
		t.Errorf("path = %s", path)
	}
	if _, err := s.SaveText("notes.md", "# x\n"); err != nil {
		t.Fatalf("SaveText: %v", err)
	}

	data, _ := os.ReadFile(path)
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back["experiment"] != "Baseline Comparison" || back["family"] != "baseline" {
		t.Errorf("summary = %v", back)
	}
	if _, ok := back["config_snapshot"]; ok {
		t.Error("nil config_snapshot should be omitted")
	}
}

func TestCSVFile(t *testing.T) {
	if got := CSVFile(record.Topology); got != "topology_results_all.csv" {
		t.Errorf("CSVFile(topology) = %s", got)
	}
	if !strings.HasSuffix(SummaryFile(record.Churn), "_summary.json") {
		t.Errorf("SummaryFile(churn) = %s", SummaryFile(record.Churn))
	}
}

func TestArchive_RecordsAndAggregates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")
	a, err := OpenArchive(ctx, path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer a.Close()

	recs := []record.Canonical{
		{Family: record.Baseline, Protocol: "Chord", NetworkSize: 100,
			Metrics: map[string]float64{record.SuccessRate: 1, record.AvgHops: 4}},
		{Family: record.Baseline, Protocol: "Chord", NetworkSize: 200,
			Metrics: map[string]float64{record.SuccessRate: 0.9, record.AvgHops: 6}},
	}
	if err := a.PutRecords(ctx, recs); err != nil {
		t.Fatalf("PutRecords: %v", err)
	}
	rows := aggregate.GroupBy(recs, aggregate.By(record.FieldProtocol), record.AvgHops)
	if err := a.PutRows(ctx, record.Baseline, rows); err != nil {
		t.Fatalf("PutRows: %v", err)
	}

	n, err := a.RecordCount(ctx, record.Baseline)
	if err != nil || n != 2 {
		t.Errorf("RecordCount = %d, %v; want 2", n, err)
	}
	mean, err := a.Mean(ctx, record.Baseline, "Chord", record.AvgHops)
	if err != nil || mean != 5 {
		t.Errorf("Mean = %v, %v; want 5", mean, err)
	}
}

func TestArchive_ReopenResets(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")
	a, err := OpenArchive(ctx, path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	if err := a.PutRecords(ctx, []record.Canonical{{Family: record.Churn, Metrics: map[string]float64{}}}); err != nil {
		t.Fatalf("PutRecords: %v", err)
	}
	a.Close()

	b, err := OpenArchive(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if n, _ := b.RecordCount(ctx, record.Churn); n != 0 {
		t.Errorf("RecordCount after reopen = %d, want 0", n)
	}
}
