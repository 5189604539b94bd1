package domain

import "fmt"

// FetchError reports a failed call to the time-tracking service.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("toggl %s: %v", e.Op, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports date text that could not be resolved.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot parse date %q", e.Input)
	}
	return fmt.Sprintf("cannot parse date %q: %v", e.Input, e.Err)
}
func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a malformed action token.
type ValidationError struct {
	Token  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action %q: %s", e.Token, e.Reason)
}
