package manager

import "fmt"

// LoadError reports a failure to read a document from the source.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// ValidationError reports that a document parsed but at least one of its
// properties was rejected by the validator.
type ValidationError struct {
	Path   string
	Errors int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %d error(s)", e.Path, e.Errors)
}
