// Package manifest records content hashes for installed profile files and
// detects local drift against that record before destructive operations.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tilework-tech/nori/internal/fsutil"
	"github.com/tilework-tech/nori/internal/messages"
)

const (
	// SchemaVersion is the manifest schema this tool reads and writes.
	SchemaVersion = 1
	// DirName is the state directory under an install directory.
	DirName = ".nori"
	// FileName is the manifest file name under DirName.
	FileName = "installed-manifest.json"
)

// Manifest records, for one installed profile, the content hash of every
// tracked file. It is created after a successful profile installation and
// superseded after the next successful switch; absence is a valid state
// meaning nothing was ever tracked (first install).
type Manifest struct {
	Version     int    `json:"version"`
	CreatedAt   string `json:"createdAt"`
	ProfileName string `json:"profileName"`
	// Files maps installDir-relative slash paths to content-hash hex strings.
	Files map[string]string `json:"files"`
}

// ReadError reports a manifest that exists but cannot be used. Callers treat
// it as equivalent to "no manifest" rather than failing the operation.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read manifest %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Path returns the manifest path for installDir.
func Path(installDir string) string {
	return filepath.Join(installDir, DirName, FileName)
}

// Build hashes every relative path under installDir and returns a manifest
// for profileName stamped with the current UTC time.
func Build(installDir string, profileName string, relativePaths []string) (*Manifest, error) {
	if strings.TrimSpace(installDir) == "" {
		return nil, errors.New(messages.ManifestInstallDirRequired)
	}
	if strings.TrimSpace(profileName) == "" {
		return nil, errors.New(messages.ManifestProfileNameRequired)
	}
	files := make(map[string]string, len(relativePaths))
	for _, rel := range relativePaths {
		hash, err := HashFile(filepath.Join(installDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		files[filepath.ToSlash(rel)] = hash
	}
	return &Manifest{
		Version:     SchemaVersion,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		ProfileName: profileName,
		Files:       files,
	}, nil
}

// Write persists m atomically under installDir, creating the state directory
// as needed.
func Write(installDir string, m *Manifest) error {
	path := Path(installDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf(messages.InstallFailedCreateDirFmt, filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.ManifestFailedEncodeFmt, err)
	}
	data = append(data, '\n')
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ManifestFailedWriteFmt, path, err)
	}
	return nil
}

// Load reads the manifest for installDir. An absent manifest yields
// (nil, nil). A present but unparseable or wrong-schema manifest yields a
// *ReadError the caller degrades on.
func Load(installDir string) (*Manifest, error) {
	path := Path(installDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if m.Version != SchemaVersion {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("unsupported schema version %d", m.Version)}
	}
	return &m, nil
}
