package script

import "fmt"

// PathError reports a script path that cannot be loaded: missing, a
// directory, or otherwise not statable.
type PathError struct {
	Path   string
	Reason string
	Err    error
}

func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("script %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("script %s: %s", e.Path, e.Reason)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
