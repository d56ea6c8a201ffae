package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConsolidatedName is the single file a points directory collapses into
// once the maintenance pass has run. Its presence marks the directory as
// already consolidated.
const ConsolidatedName = "aggregated.json"

func SweepDir(baseDir, sweepName string) string {
	return filepath.Join(baseDir, sweepName)
}

func PointsDir(sweepDir string) string {
	return filepath.Join(sweepDir, "points")
}

// WritePoint records one RunResult as a fine-grained file named by its
// point key.
func WritePoint(pointsDir string, r *RunResult) error {
	if err := os.MkdirAll(pointsDir, 0o755); err != nil {
		return fmt.Errorf("creating points dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return WriteFileAtomic(filepath.Join(pointsDir, r.Point.Key()+".json"), data)
}

func ReadPoint(path string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result: %w", err)
	}
	var r RunResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return &r, nil
}

// LoadPoints reads every recorded result under a points directory, both
// fine-grained files and an already-consolidated file, keyed by point. A
// missing directory is an empty store, not an error.
func LoadPoints(pointsDir string) (map[string]*RunResult, error) {
	results := make(map[string]*RunResult)
	entries, err := os.ReadDir(pointsDir)
	if os.IsNotExist(err) {
		return results, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading points dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(pointsDir, e.Name())
		if e.Name() == ConsolidatedName {
			rs, err := ReadConsolidated(path)
			if err != nil {
				return nil, err
			}
			for _, r := range rs {
				results[r.Point.Key()] = r
			}
			continue
		}
		r, err := ReadPoint(path)
		if err != nil {
			return nil, err
		}
		results[r.Point.Key()] = r
	}
	return results, nil
}

// ReadConsolidated reads a consolidated file: a JSON array of RunResults.
func ReadConsolidated(path string) ([]*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading consolidated file: %w", err)
	}
	var rs []*RunResult
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing consolidated file %s: %w", path, err)
	}
	return rs, nil
}

// WriteConsolidated writes the full result set of a directory as one file.
func WriteConsolidated(path string, rs []*RunResult) error {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling consolidated results: %w", err)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file in the destination directory
// and renames it into place, so a crash never leaves a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
