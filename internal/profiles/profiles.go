// Package profiles resolves installable profile bundles.
//
// A bundle is a directory holding a profile.toml metadata file plus the
// content files an install copies verbatim into the install directory
// (CLAUDE.md, skills, agents, commands). Sources abstract where bundles
// come from: compiled into the binary or a local directory.
package profiles

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/sumdb/dirhash"

	"github.com/tilework-tech/nori/internal/messages"
)

// MetaFileName is the metadata file every bundle must carry at its root.
const MetaFileName = "profile.toml"

// MetaSchemaVersion is the only profile.toml schema this build understands.
const MetaSchemaVersion = 1

// Meta is the decoded profile.toml.
type Meta struct {
	SchemaVersion int    `toml:"schema_version"`
	Name          string `toml:"name"`
	Description   string `toml:"description"`
}

// Source lists and opens profile bundles.
type Source interface {
	List() ([]Meta, error)
	Open(name string) (*Profile, error)
}

// Profile is one opened bundle rooted at its own directory.
type Profile struct {
	meta Meta
	fsys fs.FS
}

// Meta returns the bundle's validated metadata.
func (p *Profile) Meta() Meta {
	return p.meta
}

// Name returns the bundle name from its metadata.
func (p *Profile) Name() string {
	return p.meta.Name
}

// Files returns the bundle's content files as sorted slash-separated
// relative paths. The metadata file is not content and is excluded.
func (p *Profile) Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(p.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == MetaFileName {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk bundle %s: %w", p.meta.Name, err)
	}
	sort.Strings(files)
	return files, nil
}

// Read returns the content of one bundle file by slash-separated relative
// path.
func (p *Profile) Read(rel string) ([]byte, error) {
	data, err := fs.ReadFile(p.fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("read bundle file %s: %w", rel, err)
	}
	return data, nil
}

// Digest returns the h1: directory hash over the bundle's content files.
// Two bundles with identical file names and bytes share a digest regardless
// of where they are stored.
func (p *Profile) Digest() (string, error) {
	files, err := p.Files()
	if err != nil {
		return "", err
	}
	digest, err := dirhash.Hash1(files, func(name string) (io.ReadCloser, error) {
		return p.fsys.Open(name)
	})
	if err != nil {
		return "", fmt.Errorf("hash bundle %s: %w", p.meta.Name, err)
	}
	return digest, nil
}

// parseMeta decodes and validates a bundle's profile.toml. dirName is the
// bundle directory the metadata must agree with; source names the file in
// error messages.
func parseMeta(data []byte, dirName string, source string) (Meta, error) {
	var meta Meta
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&meta); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return Meta{}, fmt.Errorf(messages.ProfileMetaUnknownKeysFmt, source, err)
		}
		return Meta{}, fmt.Errorf(messages.ProfileMetaDecodeFmt, source, err)
	}
	if meta.SchemaVersion != MetaSchemaVersion {
		return Meta{}, fmt.Errorf(messages.ProfileMetaSchemaFmt, source, meta.SchemaVersion)
	}
	if strings.TrimSpace(meta.Name) == "" {
		return Meta{}, fmt.Errorf("%s: %s", source, messages.ProfileMetaNameRequired)
	}
	if meta.Name != dirName {
		return Meta{}, fmt.Errorf(messages.ProfileMetaNameMismatchFmt, meta.Name, dirName)
	}
	return meta, nil
}
