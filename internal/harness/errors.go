package harness

import "fmt"

// LaunchError reports that the target process could not be started at all.
type LaunchError struct {
	Target string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Target, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IOError reports a stream read or write failure mid-session.
type IOError struct {
	Stream string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s stream: %v", e.Stream, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
