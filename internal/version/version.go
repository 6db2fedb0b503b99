// Package version provides semver parsing and comparison helpers.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Parse returns the parsed semver for raw, rejecting empty and malformed
// values. A leading "v" prefix is accepted and stripped.
func Parse(raw string) (*semver.Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("version is required")
	}
	parsed, err := semver.StrictNewVersion(strings.TrimPrefix(trimmed, "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	return parsed, nil
}

// Normalize returns raw as a canonical X.Y.Z string (prerelease and build
// metadata preserved), or an error when raw is not valid semver.
func Normalize(raw string) (string, error) {
	parsed, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// Compare returns -1, 0, or 1 when a is older than, equal to, or newer than b.
func Compare(a string, b string) (int, error) {
	parsedA, err := Parse(a)
	if err != nil {
		return 0, err
	}
	parsedB, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return parsedA.Compare(parsedB), nil
}
