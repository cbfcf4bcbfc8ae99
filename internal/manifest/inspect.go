// Package manifest assembles the terminal artifacts of a run: the master
// summary read back from per-family summaries on disk, the file inventory,
// and the experimental setup document.
package manifest

import (
	"errors"
	"io/fs"
	"os"
)

// Outcome is the tagged result of inspecting one path: Found with a size, or
// Missing.
type Outcome struct {
	Path  string
	Found bool
	Size  int64
	// Err is set when the path exists but could not be inspected.
	Err error
}

// Inspect stats path once and captures the result.
func Inspect(path string) Outcome {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Mode().IsRegular():
		return Outcome{Path: path, Found: true, Size: info.Size()}
	case err == nil:
		return Outcome{Path: path}
	case errors.Is(err, fs.ErrNotExist):
		return Outcome{Path: path}
	default:
		return Outcome{Path: path, Err: err}
	}
}

// Entry is one inventory line.
type Entry struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Exists    bool   `json:"exists"`
}

// EntryOf converts an inspection outcome to an inventory entry.
func EntryOf(o Outcome) Entry {
	return Entry{Path: o.Path, SizeBytes: o.Size, Exists: o.Found}
}
