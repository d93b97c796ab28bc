package cmd

import (
	"errors"
	"os/exec"
)

// exitError ends the process with code. A nil err exits silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// ErrorMessage is what main prints for err, empty for silent exits.
func ErrorMessage(err error) string {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.Error()
	}
	return "Error: " + err.Error()
}

// commandStatus is the exit status of a failed child process, or 1.
func commandStatus(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() > 0 {
		return ee.ExitCode()
	}
	return 1
}
