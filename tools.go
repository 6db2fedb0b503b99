//go:build tools

package tools

// Pin test tooling versions in go.mod without shipping them in the binary.
import (
	_ "gotest.tools/gotestsum"
)
