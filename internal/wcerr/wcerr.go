// Package wcerr classifies the errors the Driver can fail with and maps them
// to the CLI's exit codes.
//
// Policy miss is deliberately absent from Kind: it is recovered locally by
// package heuristic and never surfaces here. Empty series is also absent: it
// is a warning logged by the Driver, not a fatal condition.
package wcerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind names one of the three fatal error categories that abort the
// pipeline and determine the process exit code.
type Kind int

const (
	// Configuration covers missing required options or invalid ranges.
	// Fatal at startup. Exit code 1.
	Configuration Kind = iota
	// Host covers the symbolic-execution backend reporting an internal
	// error. Fatal; aborts the current phase. Exit code 2.
	Host
	// PolicyIO covers a serialized policy trie that cannot be written or
	// read. Fatal. Exit code 3.
	PolicyIO
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Host:
		return "host"
	case PolicyIO:
		return "policy I/O"
	default:
		return fmt.Sprintf("wcerr.Kind(%d)", int(k))
	}
}

// ExitCode returns the process exit code associated with k.
func (k Kind) ExitCode() int {
	switch k {
	case Configuration:
		return 1
	case Host:
		return 2
	case PolicyIO:
		return 3
	default:
		return 2
	}
}

// Error wraps an underlying error with the Kind that classifies it.
type Error struct {
	Kind Kind
	Err  error
}

// New wraps err as a classified Error of the given Kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf builds a classified Error from a format string, in the style of
// github.com/pkg/errors.Errorf.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for err: 0 if err is nil, the
// classified Kind's code if err is (or wraps) an *Error, and 2 (host
// failure, the most common unclassified failure mode) otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind.ExitCode()
	}
	return 2
}
