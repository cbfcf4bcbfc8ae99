package manifest

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"expdata/internal/record"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "a.json", "12345")

	got := Inspect(p)
	if !got.Found || got.Size != 5 || got.Err != nil {
		t.Errorf("Inspect(existing) = %+v", got)
	}
	got = Inspect(filepath.Join(dir, "missing.json"))
	if got.Found || got.Err != nil {
		t.Errorf("Inspect(missing) = %+v", got)
	}
	got = Inspect(dir)
	if got.Found {
		t.Error("a directory is not a found file")
	}
}

func TestBuild_KeepsMissingEntries(t *testing.T) {
	dir := t.TempDir()
	csv := write(t, dir, "scalability_results.csv", "a,b\n1,2\n")
	m := Build(quiet, Plan{
		CSVExports: []string{csv, filepath.Join(dir, "churn_results.csv")},
	})
	want := []Entry{
		{Path: csv, SizeBytes: 8, Exists: true},
		{Path: filepath.Join(dir, "churn_results.csv")},
	}
	if diff := cmp.Diff(want, m.CSVExports); diff != "" {
		t.Errorf("csv entries (-want +got):\n%s", diff)
	}
	if m.RawData == nil || len(m.RawData) != 0 {
		t.Errorf("raw data = %#v, want empty non-nil", m.RawData)
	}
}

func TestBuildMaster_MissingFamilyOmitted(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "scalability_summary.json", `{"experiment":"Scalability Analysis"}`)
	write(t, dir, "baseline_summary.json", `{"experiment":"Baseline Comparison"}`)
	write(t, dir, "churn_summary.json", `{broken`)

	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	m := BuildMaster(quiet, dir, "DRFE-R Experimental Data", record.Families(), now)

	if diff := cmp.Diff([]string{"scalability", "baseline"}, m.Families()); diff != "" {
		t.Errorf("families (-want +got):\n%s", diff)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"project":"DRFE-R Experimental Data","generated":"2025-03-01T09:30:00","experiments":{"scalability":{"experiment":"Scalability Analysis"},"baseline":{"experiment":"Baseline Comparison"}}}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func TestListing(t *testing.T) {
	out := Listing(Manifest{
		Summaries: []Entry{
			{Path: "out/scalability_summary.json", SizeBytes: 2048, Exists: true},
			{Path: "out/churn_summary.json"},
		},
	})
	for _, want := range []string{"Data index", "scalability_summary.json", "2.0 kB", "✓", "✗"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestCountFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.csv", "")
	write(t, dir, "b.csv", "")
	write(t, dir, "c.json", "")
	write(t, dir, "d.md", "")
	write(t, dir, "e.db", "")
	if err := os.Mkdir(filepath.Join(dir, "x.csv"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := CountFiles(dir)
	if err != nil {
		t.Fatalf("CountFiles: %v", err)
	}
	if diff := cmp.Diff(FileCounts{CSV: 2, JSON: 1, Markdown: 1}, got); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}
}

func TestRenderSetup(t *testing.T) {
	out, err := RenderSetup(Setup{
		Project:   "DRFE-R",
		OutputDir: "experimental_data",
		Families: []SetupFamily{{
			Name:          "Scalability Analysis",
			Purpose:       "Evaluate routing performance as network size increases",
			Configuration: []string{"Max TTL: 200 hops"},
			Metrics:       []string{"Success rate (%)"},
			Raw:           []string{"scalability_results.json"},
			CSV:           "experimental_data/scalability_results.csv",
			Summary:       "experimental_data/scalability_summary.json",
		}},
		Outputs: []string{"scalability_results.csv", "master_summary.json"},
	}, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RenderSetup: %v", err)
	}
	for _, want := range []string{
		"# DRFE-R: Experimental Setup",
		"### 1. Scalability Analysis",
		"- Max TTL: 200 hops",
		"- Raw data: `scalability_results.json`",
		"├── master_summary.json",
		"Generated: 2025-03-01 09:30:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
