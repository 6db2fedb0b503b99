package migrate

import "fmt"

// ValidationError reports invalid pipeline input. It is raised before any
// filesystem access, so no state has been mutated when the caller sees one.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// SideEffectError reports a failed migration filesystem step. The pipeline
// aborts immediately and returns no config, so the caller cannot persist a
// document past the last fully-completed migration.
type SideEffectError struct {
	Version string
	Err     error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("migration %s side effect failed: %v", e.Version, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}
