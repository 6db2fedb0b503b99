package profiles

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/tilework-tech/nori/internal/messages"
)

//go:embed bundles
var embeddedBundles embed.FS

// fsSource serves bundles from the top-level directories of a filesystem.
type fsSource struct {
	fsys fs.FS
	// describe names the source in error messages, e.g. "embedded" or a
	// directory path.
	describe string
}

// Embedded returns the Source over the profile bundles compiled into the
// binary.
func Embedded() Source {
	sub, err := fs.Sub(embeddedBundles, "bundles")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return &fsSource{fsys: sub, describe: "embedded"}
}

// Dir returns a Source over a local directory of bundles, one bundle per
// subdirectory.
func Dir(path string) Source {
	return &fsSource{fsys: os.DirFS(path), describe: path}
}

// List returns metadata for every bundle in the source, sorted by name.
// Subdirectories without a profile.toml are not bundles and are skipped.
func (s *fsSource) List() ([]Meta, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list profiles in %s: %w", s.describe, err)
	}
	var metas []Meta
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.readMeta(entry.Name())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })
	return metas, nil
}

// Open returns the named bundle, or an error naming the profiles command
// when no such bundle exists.
func (s *fsSource) Open(name string) (*Profile, error) {
	meta, err := s.readMeta(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf(messages.InstallUnknownProfileFmt, name)
		}
		return nil, err
	}
	sub, err := fs.Sub(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("open bundle %s: %w", name, err)
	}
	return &Profile{meta: meta, fsys: sub}, nil
}

func (s *fsSource) readMeta(dirName string) (Meta, error) {
	path := dirName + "/" + MetaFileName
	data, err := fs.ReadFile(s.fsys, path)
	if err != nil {
		return Meta{}, err
	}
	return parseMeta(data, dirName, s.describe+"/"+path)
}
