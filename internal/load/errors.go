package load

import "fmt"

// InitError reports a failed database initialization after bounded retries.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("database initialization failed: %v", e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// InsertionError reports a failed storm insertion. When the failure is tied
// to a specific storm it carries that storm's identity.
type InsertionError struct {
	StormID string
	Name    string
	Err     error
}

func (e *InsertionError) Error() string {
	if e.StormID == "" {
		return fmt.Sprintf("database insertion failed: %v", e.Err)
	}
	return fmt.Sprintf("failed to insert storm %s (%s): %v", e.Name, e.StormID, e.Err)
}

func (e *InsertionError) Unwrap() error { return e.Err }

// ValidationError reports a failed post-load validation analysis. It never
// unwinds an already committed load.
type ValidationError struct {
	Analysis string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Analysis, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
