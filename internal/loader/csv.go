package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"expdata/internal/record"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// LoadCSV reads a header-first CSV table. Cell values stay strings; a short
// row leaves its trailing columns absent and extra cells are ignored.
func LoadCSV(path string) (*Dataset, error) {
	ds := &Dataset{Path: path}
	data, err := readFile(path)
	if err != nil {
		return ds, err
	}
	ds.Found = true

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return ds, nil
	}
	if err != nil {
		return ds, &ParseError{Path: path, Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ds.Records = nil
			return ds, &ParseError{Path: path, Err: err}
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		obj := record.NewObject()
		for i, col := range header {
			if i >= len(row) {
				break
			}
			obj.Set(col, row[i])
		}
		ds.Records = append(ds.Records, obj)
	}
	return ds, nil
}
