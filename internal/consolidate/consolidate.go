// Package consolidate is the result-store maintenance pass: it finds
// directories holding many fine-grained point files and collapses each
// into a single consolidated file, keeping the store's file count
// manageable at sweep scale.
package consolidate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qecbench/montesweep/internal/result"
)

// MinFiles is the eligibility threshold: consolidating a directory with
// fewer fine-grained files than this saves nothing.
const MinFiles = 2

// Scan walks root and counts fine-grained point files per containing
// directory. An already-consolidated file never counts toward its
// directory.
func Scan(root string) (map[string]int, error) {
	counts := make(map[string]int)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") || d.Name() == result.ConsolidatedName {
			return nil
		}
		counts[filepath.Dir(path)]++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return counts, nil
}

// Eligible returns the directories worth consolidating, sorted, along
// with the total file-count reduction consolidation would achieve.
func Eligible(counts map[string]int) (dirs []string, reduction int) {
	for dir, n := range counts {
		if n >= MinFiles {
			dirs = append(dirs, dir)
			reduction += n - 1
		}
	}
	sort.Strings(dirs)
	return dirs, reduction
}

// Consolidate merges every fine-grained point file in dir, together with
// any previously consolidated file, into one consolidated file, then
// removes the fine-grained files. No point is lost: the consolidated set
// is the union of everything present, deduplicated by point key.
// Idempotent — on an already-consolidated directory it is a no-op.
func Consolidate(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", dir, err)
	}

	byKey := make(map[string]*result.RunResult)
	consolidatedPath := filepath.Join(dir, result.ConsolidatedName)
	if _, err := os.Stat(consolidatedPath); err == nil {
		prior, err := result.ReadConsolidated(consolidatedPath)
		if err != nil {
			return 0, err
		}
		for _, r := range prior {
			byKey[r.Point.Key()] = r
		}
	}

	var fineGrained []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || e.Name() == result.ConsolidatedName {
			continue
		}
		path := filepath.Join(dir, e.Name())
		r, err := result.ReadPoint(path)
		if err != nil {
			return 0, err
		}
		byKey[r.Point.Key()] = r
		fineGrained = append(fineGrained, path)
	}
	if len(fineGrained) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	merged := make([]*result.RunResult, len(keys))
	for i, k := range keys {
		merged[i] = byKey[k]
	}

	if err := result.WriteConsolidated(consolidatedPath, merged); err != nil {
		return 0, err
	}
	// Remove only after the consolidated file is durably in place.
	for _, path := range fineGrained {
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return len(fineGrained), nil
}
