// Package pipeline runs every experiment family through
// Loading → Normalizing → Aggregating → Exporting → Reporting → Indexing
// and leaves the derived artifacts in the output directory.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"expdata/internal/aggregate"
	"expdata/internal/config"
	"expdata/internal/display"
	"expdata/internal/export"
	"expdata/internal/format"
	"expdata/internal/loader"
	"expdata/internal/manifest"
	"expdata/internal/metrics"
	"expdata/internal/record"
)

// Artifact names the pipeline writes besides the per-family files.
const (
	MasterFile = "master_summary.json"
	IndexFile  = "data_index.json"
	SetupFile  = "experimental_setup.md"
)

// Options configures a Runner.
type Options struct {
	Config  config.Config
	Log     *slog.Logger
	Metrics *metrics.Recorder
	// Now is the clock stamped into generated documents. Defaults to
	// time.Now.
	Now func() time.Time
}

// Runner executes one pipeline run.
type Runner struct {
	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// New creates a Runner.
func New(opts Options) *Runner {
	r := &Runner{cfg: opts.Config, log: opts.Log, metrics: opts.Metrics, now: opts.Now}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// SourceData is one loaded source file of a family.
type SourceData struct {
	Source  Source
	Dataset *loader.Dataset
}

// Batch is everything a run derived for one family.
type Batch struct {
	Spec       FamilySpec
	Sources    []SourceData
	Records    []record.Canonical
	Dropped    int
	Aggregates []aggregate.Row
	Extrema    []aggregate.Extreme
	Summary    *export.Summary
}

// Header returns the top-level header of the first source that has one.
func (b *Batch) Header() *record.Object {
	for _, s := range b.Sources {
		if s.Dataset.Header != nil {
			return s.Dataset.Header
		}
	}
	return nil
}

// RawCount is the number of raw records read, before any were dropped.
func (b *Batch) RawCount() int {
	n := 0
	for _, s := range b.Sources {
		n += len(s.Dataset.Records)
	}
	return n
}

// Rows returns the raw rows of every source in load order, as exported to
// CSV. Rows of sources with a declared network size carry that size.
func (b *Batch) Rows() []*record.Object {
	var out []*record.Object
	for _, s := range b.Sources {
		for _, raw := range s.Dataset.Records {
			if s.Source.NetworkSize > 0 {
				raw = raw.Clone()
				raw.Set(record.FieldNetworkSize, s.Source.NetworkSize)
			}
			out = append(out, raw)
		}
	}
	return out
}

// paths lists the sources that were found.
func (b *Batch) paths() []string {
	var out []string
	for _, s := range b.Sources {
		if s.Dataset.Found {
			out = append(out, s.Source.Path)
		}
	}
	return out
}

// Result is the outcome of a run.
type Result struct {
	OutputDir string
	State     *RunState
	Batches   []*Batch
	Written   []string
	Master    *manifest.Master
	Index     manifest.Index
	Counts    manifest.FileCounts
}

// Batch returns the batch of family f.
func (r *Result) Batch(f record.Family) (*Batch, bool) {
	for _, b := range r.Batches {
		if b.Spec.Family == f {
			return b, true
		}
	}
	return nil, false
}

// Run executes all stages. Per-family problems are logged and skipped;
// only an unusable output directory fails the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	store, err := export.NewStore(r.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	res := &Result{OutputDir: r.cfg.OutputDir, State: InitState()}
	for _, spec := range Specs(r.cfg) {
		res.Batches = append(res.Batches, &Batch{Spec: spec})
	}

	steps := map[Stage]func() string{
		StageLoading:     func() string { return r.load(res.Batches) },
		StageNormalizing: func() string { return r.normalize(res.Batches) },
		StageAggregating: func() string { return r.aggregate(res.Batches) },
		StageExporting:   func() string { return r.export(ctx, store, res) },
		StageReporting:   func() string { return r.report(store, res) },
		StageIndexing:    func() string { return r.index(store, res) },
	}
	outcome := "started"
	for _, stage := range Stages() {
		Advance(res.State, stage, outcome, r.now())
		start := time.Now()
		outcome = steps[stage]()
		r.metrics.ObserveStage(string(stage), time.Since(start))
		r.log.Info("stage complete",
			slog.String("stage", display.Stage(string(stage))),
			slog.String("outcome", outcome),
		)
	}
	Advance(res.State, StageDone, outcome, r.now())

	counts, err := manifest.CountFiles(r.cfg.OutputDir)
	if err != nil {
		r.log.Warn("cannot count output files", slog.String("error", err.Error()))
	}
	res.Counts = counts

	r.metrics.Finish(r.now())
	if r.cfg.MetricsFile != "" {
		if err := r.metrics.WriteTextfile(r.cfg.Output(r.cfg.MetricsFile)); err != nil {
			r.log.Warn("metrics textfile not written", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

// Console renders the end-of-run overview printed by the organize command.
func (r *Result) Console() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("Experimental data organization complete\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Output directory: %s\n", r.OutputDir)
	fmt.Fprintf(&b, "Stages: %s\n\n", display.StagePath(r.State.Path()))
	b.WriteString(manifest.Listing(r.Index.Files))
	b.WriteString("\nSummary statistics:\n")
	fmt.Fprintf(&b, "  CSV files: %d\n", r.Counts.CSV)
	fmt.Fprintf(&b, "  JSON files: %d\n", r.Counts.JSON)
	fmt.Fprintf(&b, "  Markdown files: %d\n", r.Counts.Markdown)
	b.WriteString("\nBest groups:\n")
	for _, bt := range r.Batches {
		for _, e := range bt.Extrema {
			fmt.Fprintf(&b, "  %s: best %s = %s (%s)\n",
				display.Family(string(bt.Spec.Family)), display.Metric(e.Metric), format.Decimal(e.Value, 4), e.Key)
		}
	}
	if r.Master != nil {
		b.WriteString("\nExperiments included:\n")
		for _, f := range r.Master.Families() {
			fmt.Fprintf(&b, "  - %s\n", display.Family(f))
		}
	}
	return b.String()
}
