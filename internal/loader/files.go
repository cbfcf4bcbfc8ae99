package loader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SizeFromFilename extracts the network size encoded in a result file name
// by the "<prefix>_n<size>.<ext>" convention, e.g.
// "topology_experiments_n200.json" -> 200.
func SizeFromFilename(path string) (int, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	i := strings.LastIndex(stem, "_n")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(stem[i+2:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// SizedFile is a result file paired with the network size it declares.
type SizedFile struct {
	Path string
	Size int
}

// Discover globs pattern inside dir and returns the matches that follow the
// size naming convention, ordered by path.
func Discover(dir, pattern string) ([]SizedFile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("loader: glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	var out []SizedFile
	for _, m := range matches {
		if n, ok := SizeFromFilename(m); ok {
			out = append(out, SizedFile{Path: m, Size: n})
		}
	}
	return out, nil
}
