// Command mapikit inspects and edits a local message store through the
// mapikit access layer and the SQLite provider.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "mapikit:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitError carries the exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by the command line rather than the system.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// userCodes are provider codes that report a bad request.
var userCodes = map[types.SCode]bool{
	types.MAPI_E_NOT_FOUND:         true,
	types.MAPI_E_COLLISION:         true,
	types.MAPI_E_NO_ACCESS:         true,
	types.MAPI_E_LOGON_FAILED:      true,
	types.MAPI_E_INVALID_PARAMETER: true,
	types.MAPI_E_INVALID_ENTRYID:   true,
	types.MAPI_E_COMPUTED:          true,
	types.MAPI_E_BAD_VALUE:         true,
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, types.ErrKeyNotFound),
		errors.Is(err, types.ErrNoDefault),
		errors.Is(err, types.ErrTypeMismatch):
		return exitUserError
	}
	if code, ok := types.CodeOf(err); ok && userCodes[code] {
		return exitUserError
	}
	return exitSysError
}
