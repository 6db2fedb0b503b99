package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
)

// Changes classifies tracked files that drifted from the recorded manifest.
type Changes struct {
	// Changed lists installDir-relative slash paths, sorted, whose live
	// content is missing or hashes differently than the manifest recorded.
	Changed []string
}

// HasChanges reports whether any tracked file drifted.
func (c Changes) HasChanges() bool {
	return len(c.Changed) > 0
}

// Detect compares the live filesystem under installDir against m. Only paths
// recorded in the manifest are inspected; files outside the tracked set are
// never reported. Callers check manifest existence first; with no manifest
// there is nothing to compare and Detect is not called at all.
func Detect(installDir string, m *Manifest) (Changes, error) {
	changed := make([]string, 0)
	for rel, recorded := range m.Files {
		live, err := HashFile(filepath.Join(installDir, filepath.FromSlash(rel)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				changed = append(changed, rel)
				continue
			}
			return Changes{}, err
		}
		if live != recorded {
			changed = append(changed, rel)
		}
	}
	sort.Strings(changed)
	return Changes{Changed: changed}, nil
}
