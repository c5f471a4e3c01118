package cmd

import (
	"errors"
	"fmt"
)

const (
	exitError = 1
	exitUsage = 2
)

// errShowHelp is returned by readInput when there is no file argument and
// nothing on stdin.
var errShowHelp = errors.New("no input provided")

// cliError carries the process exit code for an error returned by Execute.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &cliError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func runError(err error) error {
	return &cliError{code: exitError, err: err}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitError
}
