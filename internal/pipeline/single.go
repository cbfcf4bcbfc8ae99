package pipeline

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"expdata/internal/loader"
	"expdata/internal/normalize"
	"expdata/internal/record"
)

// LoadFamily reads one primary input strictly and normalizes it. It is
// used by the single-file analysis commands, for which a missing or
// unparseable input has no fallback.
func LoadFamily(log *slog.Logger, f record.Family, path string, shape loader.Shape) (*loader.Dataset, []record.Canonical, error) {
	ds, err := loader.Load(path, shape)
	if err != nil {
		return ds, nil, fmt.Errorf("pipeline: load %s: %w", f, err)
	}
	n := normalize.New(log)
	recs := n.All(ds.Records, normalize.Context{Family: f, Source: path})
	if d := n.Dropped(f); d > 0 {
		log.Warn("records dropped", slog.String("family", string(f)), slog.Int("dropped", d))
	}
	return ds, recs, nil
}

// LoadTopologies discovers the size-tagged topology files in dir and
// normalizes each with the size from its name. Unreadable files are
// skipped with a warning; the result is ordered by size.
func LoadTopologies(log *slog.Logger, dir, pattern string) ([]SizedBatch, error) {
	files, err := loader.Discover(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	n := normalize.New(log)
	var out []SizedBatch
	for _, sf := range files {
		ds, err := loader.Load(sf.Path, loader.ShapeList)
		if err != nil {
			log.Warn("topology file skipped", slog.String("path", sf.Path), slog.String("error", err.Error()))
			continue
		}
		recs := n.All(ds.Records, normalize.Context{Family: record.Topology, Source: sf.Path, NetworkSize: sf.Size})
		out = append(out, SizedBatch{Size: sf.Size, Path: sf.Path, Records: recs})
	}
	slices.SortStableFunc(out, func(a, b SizedBatch) int { return cmp.Compare(a.Size, b.Size) })
	return out, nil
}

// SizedBatch is the normalized content of one topology file.
type SizedBatch struct {
	Size    int
	Path    string
	Records []record.Canonical
}
