// Package export writes pipeline results to storage: flat CSV tables of raw
// rows, indented JSON documents, and an optional SQLite archive.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"expdata/internal/record"
)

// ErrNoData is returned when a tabular export is asked to write zero rows.
var ErrNoData = errors.New("export: no data")

// Columns returns the column set of a table: the keys of the first row in
// insertion order. Later rows never change it.
func Columns(rows []*record.Object) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Keys()
}

// EncodeCSV writes rows as CSV with a header. A later row missing one of
// the columns gets an empty cell; keys it adds are not exported.
func EncodeCSV(w io.Writer, rows []*record.Object) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	cols := Columns(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	line := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			v, _ := r.Get(c)
			line[i] = Cell(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("export: csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV overwrites path with the CSV encoding of rows. Nothing is
// written for an empty input.
func WriteCSV(path string, rows []*record.Object) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// Cell renders one raw value as CSV text. Numbers keep the exact text they
// were read with; nested values are written as compact JSON.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
