package cli

import (
	"errors"
	"fmt"

	"github.com/gdbtap/gdbtap/internal/domain"
	"github.com/gdbtap/gdbtap/internal/output"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so tooling always gets machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s", code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.Stderr, " (hint: %s)", hint[0])
		}
		fmt.Fprintln(globals.Stderr)
	}
	return errors.New(message)
}

// outputRequestError renders a request failure with its error kind as the
// code and a kind-specific hint.
func outputRequestError(globals *Globals, err error) error {
	kind := domain.KindOf(err)
	if kind == "" {
		kind = domain.KindCommandFailed
	}
	return outputErrorCommon(globals, string(kind), err.Error(), hintFor(kind))
}

func hintFor(kind domain.ErrorKind) string {
	switch kind {
	case domain.KindNotAvailable:
		return "is gdb running at a prompt in a tmux pane?"
	case domain.KindTimeout:
		return "the debugger may be busy or stopped; try a longer --timeout"
	case domain.KindInvalidInput:
		return "run with --help for accepted arguments"
	default:
		return ""
	}
}
