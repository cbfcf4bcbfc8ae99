package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expdata/internal/display"
	"expdata/internal/export"
	"expdata/internal/format"
	"expdata/internal/record"
)

// TimeLayout is the timestamp format of generated documents.
const TimeLayout = "2006-01-02T15:04:05"

// Plan lists the paths the inventory inspects, per group.
type Plan struct {
	RawData      []string
	CSVExports   []string
	Summaries    []string
	AnalysisDocs []string
}

// Manifest is the file inventory of one run.
type Manifest struct {
	RawData      []Entry `json:"raw_data"`
	CSVExports   []Entry `json:"csv_exports"`
	Summaries    []Entry `json:"summaries"`
	AnalysisDocs []Entry `json:"analysis_docs"`
}

// Index is the data_index.json document.
type Index struct {
	Generated string   `json:"generated"`
	Files     Manifest `json:"files"`
}

// Build inspects every planned path. Missing files stay in the inventory
// with exists=false.
func Build(log *slog.Logger, plan Plan) Manifest {
	inspectAll := func(paths []string) []Entry {
		entries := make([]Entry, 0, len(paths))
		for _, p := range paths {
			o := Inspect(p)
			if o.Err != nil {
				log.Warn("cannot inspect file", slog.String("path", p), slog.String("error", o.Err.Error()))
			}
			entries = append(entries, EntryOf(o))
		}
		return entries
	}
	return Manifest{
		RawData:      inspectAll(plan.RawData),
		CSVExports:   inspectAll(plan.CSVExports),
		Summaries:    inspectAll(plan.Summaries),
		AnalysisDocs: inspectAll(plan.AnalysisDocs),
	}
}

// Master is the master_summary.json document.
type Master struct {
	Project     string         `json:"project"`
	Generated   string         `json:"generated"`
	Experiments *record.Object `json:"experiments"`
}

// Families returns the experiment keys present in the master summary.
func (m *Master) Families() []string {
	if m.Experiments == nil {
		return nil
	}
	return m.Experiments.Keys()
}

// BuildMaster reads each family's summary back from dir and nests it
// under the family name. A missing or invalid summary omits that family.
func BuildMaster(log *slog.Logger, dir, project string, families []record.Family, now time.Time) *Master {
	m := &Master{
		Project:     project,
		Generated:   now.Format(TimeLayout),
		Experiments: record.NewObject(),
	}
	for _, f := range families {
		path := filepath.Join(dir, export.SummaryFile(f))
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debug("summary not present", slog.String("family", string(f)), slog.String("path", path))
			continue
		}
		if !json.Valid(data) {
			log.Warn("summary unreadable, omitting", slog.String("family", string(f)), slog.String("path", path))
			continue
		}
		m.Experiments.Set(string(f), json.RawMessage(data))
	}
	return m
}

// Listing renders the inventory as a console table.
func Listing(m Manifest) string {
	tb := format.NewTable(format.ASCII)
	tb.Title("Data index")
	tb.Header("Group", "File", "Size", "")
	tb.Columns(format.Fixed(1, 14), format.Fixed(2, 40), format.ColumnConfig{Number: 3, Align: format.AlignRight, MinWidth: 10})
	groups := []struct {
		name    string
		entries []Entry
	}{
		{"raw data", m.RawData},
		{"csv exports", m.CSVExports},
		{"summaries", m.Summaries},
		{"analysis", m.AnalysisDocs},
	}
	for _, g := range groups {
		if len(g.entries) == 0 {
			continue
		}
		tb.Separator()
		for _, e := range g.entries {
			size := "-"
			if e.Exists {
				size = format.Bytes(e.SizeBytes)
			}
			tb.Row(g.name, e.Path, size, display.Mark(e.Exists))
		}
	}
	return tb.String() + "\n"
}

// FileCounts counts the .csv, .json and .md files directly inside dir.
type FileCounts struct {
	CSV      int
	JSON     int
	Markdown int
}

// CountFiles tallies generated files by extension.
func CountFiles(dir string) (FileCounts, error) {
	var c FileCounts
	entries, err := os.ReadDir(dir)
	if err != nil {
		return c, fmt.Errorf("manifest: count files: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(e.Name(), ".csv"):
			c.CSV++
		case strings.HasSuffix(e.Name(), ".json"):
			c.JSON++
		case strings.HasSuffix(e.Name(), ".md"):
			c.Markdown++
		}
	}
	return c, nil
}
