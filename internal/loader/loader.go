// Package loader reads raw experiment result files into ordered record
// sequences. It tolerates missing and malformed files and resolves the
// top-level shape variance between result producers. It never validates
// record contents; that is the normalizer's job.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"expdata/internal/record"
)

// ErrFileMissing reports that a result file does not exist.
var ErrFileMissing = errors.New("loader: file missing")

// ErrParse reports a malformed payload. Use errors.As with *ParseError for
// the decoder diagnostic.
var ErrParse = errors.New("loader: malformed payload")

// ParseError carries the path and decoder diagnostic of a malformed file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("loader: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParse) true for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Shape is the top-level layout a caller expects from a JSON result file.
type Shape int

const (
	// ShapeList is a bare array of records, or an object wrapping "results".
	ShapeList Shape = iota
	// ShapeResults is an object with a "results" array (or a bare array).
	ShapeResults
	// ShapeRuns is an object with a "runs" array whose entries each wrap a
	// "results" array; records of all runs are concatenated in order.
	ShapeRuns
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeResults:
		return "object-with-results"
	case ShapeRuns:
		return "object-with-runs"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Dataset is the ordered raw content of one result file.
type Dataset struct {
	Path  string
	Found bool
	// Header is the top-level object minus its record list, e.g. the
	// scalability "timestamp" and "config". Nil for bare lists and CSV.
	Header  *record.Object
	Records []*record.Object
	// Skipped counts record-list entries that were not objects.
	Skipped int
}

// Empty reports whether the dataset has no records.
func (d *Dataset) Empty() bool { return d == nil || len(d.Records) == 0 }

// Load reads path. Files ending in .csv are read as tables, everything else
// as JSON with the given shape. On error the returned Dataset is still
// non-nil and empty, with Found set when the file existed.
func Load(path string, shape Shape) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return LoadCSV(path)
	}
	return LoadJSON(path, shape)
}

// LoadJSON reads a JSON result file.
func LoadJSON(path string, shape Shape) (*Dataset, error) {
	ds := &Dataset{Path: path}
	data, err := readFile(path)
	if err != nil {
		return ds, err
	}
	ds.Found = true

	root, err := record.Decode(data)
	if err != nil {
		return ds, &ParseError{Path: path, Err: err}
	}
	items, header := extract(root, shape)
	ds.Header = header
	for _, it := range items {
		obj, ok := it.(*record.Object)
		if !ok {
			ds.Skipped++
			continue
		}
		ds.Records = append(ds.Records, obj)
	}
	return ds, nil
}

// Tolerant loads path and degrades every failure to an empty dataset with a
// warning, for stages that must continue with the remaining families.
func Tolerant(log *slog.Logger, path string, shape Shape) *Dataset {
	ds, err := Load(path, shape)
	switch {
	case errors.Is(err, ErrFileMissing):
		log.Warn("result file not found, skipping", slog.String("path", path))
	case err != nil:
		log.Warn("result file unreadable, skipping",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
	if err != nil {
		ds.Records = nil
		ds.Header = nil
		return ds
	}
	if ds.Skipped > 0 {
		log.Warn("non-object entries ignored",
			slog.String("path", path),
			slog.Int("skipped", ds.Skipped),
		)
	}
	log.Debug("result file loaded",
		slog.String("path", path),
		slog.Int("records", len(ds.Records)),
	)
	return ds
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return data, nil
}

// extract resolves shape variance with one explicit check: an array root is
// the record list; otherwise the list lives under "results" (or under each
// "runs" entry for ShapeRuns) and defaults to empty.
func extract(root any, shape Shape) ([]any, *record.Object) {
	if arr, ok := root.([]any); ok {
		return arr, nil
	}
	obj, ok := root.(*record.Object)
	if !ok {
		return nil, nil
	}

	listKey := "results"
	if shape == ShapeRuns {
		listKey = "runs"
	}
	header := NewHeader(obj, listKey)

	raw, _ := obj.Get(listKey)
	list, _ := raw.([]any)
	if shape != ShapeRuns {
		return list, header
	}

	var items []any
	for _, r := range list {
		run, ok := r.(*record.Object)
		if !ok {
			continue
		}
		res, _ := run.Get("results")
		if rs, ok := res.([]any); ok {
			items = append(items, rs...)
		}
	}
	return items, header
}

// NewHeader copies every top-level key of obj except the record list.
func NewHeader(obj *record.Object, listKey string) *record.Object {
	h := record.NewObject()
	for _, k := range obj.Keys() {
		if k == listKey {
			continue
		}
		v, _ := obj.Get(k)
		h.Set(k, v)
	}
	return h
}
