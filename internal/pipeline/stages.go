package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expdata/internal/aggregate"
	"expdata/internal/display"
	"expdata/internal/export"
	"expdata/internal/loader"
	"expdata/internal/logging"
	"expdata/internal/manifest"
	"expdata/internal/normalize"
	"expdata/internal/record"
)

func (r *Runner) load(batches []*Batch) string {
	files, raws := 0, 0
	for _, b := range batches {
		f := string(b.Spec.Family)
		log := logging.ForFamily(r.log, f)
		for _, src := range b.Spec.Sources {
			ds := loader.Tolerant(log, src.Path, b.Spec.Shape)
			if !ds.Found {
				r.metrics.FilesMissing.WithLabelValues(f).Inc()
			} else {
				files++
			}
			raws += len(ds.Records)
			r.metrics.RecordsLoaded.WithLabelValues(f).Add(float64(len(ds.Records)))
			b.Sources = append(b.Sources, SourceData{Source: src, Dataset: ds})
		}
	}
	return fmt.Sprintf("%d files, %d raw records", files, raws)
}

func (r *Runner) normalize(batches []*Batch) string {
	n := normalize.New(r.log)
	kept, dropped := 0, 0
	for _, b := range batches {
		f := b.Spec.Family
		raw := 0
		for _, s := range b.Sources {
			raw += len(s.Dataset.Records)
			b.Records = append(b.Records, n.All(s.Dataset.Records, normalize.Context{
				Family:      f,
				Source:      s.Source.Path,
				NetworkSize: s.Source.NetworkSize,
			})...)
		}
		b.Dropped = n.Dropped(f)
		r.metrics.RecordsDropped.WithLabelValues(string(f)).Add(float64(b.Dropped))
		if raw > 0 && len(b.Records) == 0 {
			r.log.Warn("no records left after normalization",
				slog.String("family", string(f)),
				slog.Int("dropped", b.Dropped),
			)
		}
		kept += len(b.Records)
		dropped += b.Dropped
	}
	return fmt.Sprintf("%d records, %d dropped", kept, dropped)
}

func (r *Runner) aggregate(batches []*Batch) string {
	groups := 0
	for _, b := range batches {
		if len(b.Records) == 0 {
			r.log.Info("no records, aggregation skipped", slog.String("family", string(b.Spec.Family)))
			continue
		}
		b.Aggregates = aggregate.GroupBy(b.Records, aggregate.By(b.Spec.GroupBy...), b.Spec.Metrics...)
		for _, e := range b.Spec.Extrema {
			pick := aggregate.Min
			if e.Max {
				pick = aggregate.Max
			}
			if x, ok := pick(b.Aggregates, e.Metric); ok {
				b.Extrema = append(b.Extrema, x)
			}
		}
		groups += len(b.Aggregates)
	}
	return fmt.Sprintf("%d groups", groups)
}

func (r *Runner) export(ctx context.Context, store *export.Store, res *Result) string {
	before := len(res.Written)
	for _, b := range res.Batches {
		f := b.Spec.Family
		log := logging.ForFamily(r.log, string(f))

		path, err := store.SaveTable(f, b.Rows())
		switch {
		case err == nil:
			r.wrote(res, "csv", path)
		case errors.Is(err, export.ErrNoData):
			log.Info("csv export skipped, no data")
		default:
			log.Warn("csv export failed", slog.String("error", err.Error()))
		}

		if len(b.Records) == 0 {
			log.Info("summary skipped, no records")
			continue
		}
		b.Summary = &export.Summary{
			Experiment:     display.Family(string(f)),
			Family:         f,
			Sources:        b.paths(),
			ConfigSnapshot: snapshot(b.Header()),
			RecordCount:    len(b.Records),
			DroppedCount:   b.Dropped,
			GroupedBy:      b.Spec.GroupBy,
			AggregateRows:  b.Aggregates,
			Extrema:        b.Extrema,
			Report:         b.Spec.Report(b),
		}
		path, err = store.SaveSummary(b.Summary)
		if err != nil {
			log.Warn("summary not written", slog.String("error", err.Error()))
			continue
		}
		r.wrote(res, "summary", path)
	}
	if r.cfg.Archive != "" {
		if err := r.archive(ctx, res); err != nil {
			r.log.Warn("archive not written", slog.String("error", err.Error()))
		} else {
			r.wrote(res, "archive", r.cfg.Output(r.cfg.Archive))
		}
	}
	return fmt.Sprintf("%d artifacts", len(res.Written)-before)
}

func (r *Runner) archive(ctx context.Context, res *Result) error {
	a, err := export.OpenArchive(ctx, r.cfg.Output(r.cfg.Archive))
	if err != nil {
		return err
	}
	defer a.Close()
	for _, b := range res.Batches {
		if len(b.Records) == 0 {
			continue
		}
		if err := a.PutRecords(ctx, b.Records); err != nil {
			return err
		}
		if err := a.PutRows(ctx, b.Spec.Family, b.Aggregates); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) report(store *export.Store, res *Result) string {
	setup := manifest.Setup{Project: r.cfg.Project, OutputDir: r.cfg.OutputDir}
	for _, b := range res.Batches {
		f := b.Spec.Family
		sf := manifest.SetupFamily{
			Name:          display.Family(string(f)),
			Purpose:       b.Spec.Setup.Purpose,
			Configuration: b.Spec.Setup.Configuration,
			Metrics:       b.Spec.Setup.Metrics,
			CSV:           export.CSVFile(f),
			Summary:       export.SummaryFile(f),
		}
		for _, s := range b.Spec.Sources {
			sf.Raw = append(sf.Raw, s.Path)
		}
		setup.Families = append(setup.Families, sf)
		setup.Outputs = append(setup.Outputs, export.CSVFile(f), export.SummaryFile(f))
	}
	setup.Outputs = append(setup.Outputs, MasterFile, IndexFile)
	if r.cfg.Archive != "" {
		setup.Outputs = append(setup.Outputs, r.cfg.Archive)
	}

	text, err := manifest.RenderSetup(setup, r.now())
	if err != nil {
		r.log.Warn("setup document not rendered", slog.String("error", err.Error()))
		return "setup failed"
	}
	path, err := store.SaveText(SetupFile, text)
	if err != nil {
		r.log.Warn("setup document not written", slog.String("error", err.Error()))
		return "setup failed"
	}
	r.wrote(res, "markdown", path)
	return SetupFile
}

func (r *Runner) index(store *export.Store, res *Result) string {
	res.Master = manifest.BuildMaster(r.log, r.cfg.OutputDir, r.cfg.Project, record.Families(), r.now())
	if path, err := store.SaveJSON(MasterFile, res.Master); err != nil {
		r.log.Warn("master summary not written", slog.String("error", err.Error()))
	} else {
		r.wrote(res, "summary", path)
	}

	var plan manifest.Plan
	for _, b := range res.Batches {
		for _, s := range b.Spec.Sources {
			plan.RawData = append(plan.RawData, s.Path)
		}
		plan.CSVExports = append(plan.CSVExports, store.Path(export.CSVFile(b.Spec.Family)))
		plan.Summaries = append(plan.Summaries, store.Path(export.SummaryFile(b.Spec.Family)))
	}
	plan.Summaries = append(plan.Summaries, store.Path(MasterFile))
	for _, doc := range r.cfg.AnalysisDocs {
		plan.AnalysisDocs = append(plan.AnalysisDocs, r.cfg.Input(doc))
	}
	plan.AnalysisDocs = append(plan.AnalysisDocs, store.Path(SetupFile))

	res.Index = manifest.Index{
		Generated: r.now().Format(manifest.TimeLayout),
		Files:     manifest.Build(r.log, plan),
	}
	if path, err := store.SaveJSON(IndexFile, res.Index); err != nil {
		r.log.Warn("data index not written", slog.String("error", err.Error()))
	} else {
		r.wrote(res, "index", path)
	}
	return fmt.Sprintf("%d experiments", len(res.Master.Families()))
}

func (r *Runner) wrote(res *Result, kind, path string) {
	res.Written = append(res.Written, path)
	r.metrics.ArtifactsWritten.WithLabelValues(kind).Inc()
}

// snapshot copies the run header of a source file: its timestamp and the
// config object it was produced with.
func snapshot(header *record.Object) *record.Object {
	if header == nil {
		return nil
	}
	o := record.NewObject()
	for _, k := range []string{"timestamp", "config"} {
		if v, ok := header.Get(k); ok {
			o.Set(k, v)
		}
	}
	if o.Len() == 0 {
		return nil
	}
	return o
}
