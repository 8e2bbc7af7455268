package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/gdbtap/gdbtap/internal/correlator"
	"github.com/gdbtap/gdbtap/internal/domain"
	"github.com/gdbtap/gdbtap/internal/output"
	"github.com/gdbtap/gdbtap/internal/reconcile"
)

// ToggleCmd flips the breakpoint at a source location
type ToggleCmd struct {
	Location string `arg:"" help:"Source location as FILE:LINE, e.g. main.c:42"`
}

// Run executes the toggle command
func (c *ToggleCmd) Run(globals *Globals) error {
	rt, err := openRuntime(globals)
	if err != nil {
		return outputRequestError(globals, err)
	}
	defer rt.Close()
	return runToggle(globals, rt.corr, rt.opts, c.Location)
}

func runToggle(globals *Globals, runner reconcile.Runner, opts correlator.Options, location string) error {
	file, line, err := parseLocation(location)
	if err != nil {
		return outputRequestError(globals, err)
	}

	globals.Debug("Toggling breakpoint at %s:%d", file, line)
	r := reconcile.New(runner, opts, globals.logger.Sugar())
	action, bp, err := r.Toggle(context.Background(), file, line)
	if err != nil {
		return outputRequestError(globals, err)
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteToggle(action, bp)
	}
	if !globals.Quiet {
		output.NewTextWriter(globals.Stdout).Toggle(action, bp)
	}
	return nil
}

// BreakpointsCmd lists the current breakpoint table
type BreakpointsCmd struct{}

// Run executes the breakpoints command
func (c *BreakpointsCmd) Run(globals *Globals) error {
	rt, err := openRuntime(globals)
	if err != nil {
		return outputRequestError(globals, err)
	}
	defer rt.Close()
	return runBreakpoints(globals, rt.corr, rt.opts)
}

func runBreakpoints(globals *Globals, runner reconcile.Runner, opts correlator.Options) error {
	r := reconcile.New(runner, opts, globals.logger.Sugar())
	bps, err := r.List(context.Background())
	if err != nil {
		return outputRequestError(globals, err)
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteBreakpoints(bps)
	}
	output.NewTextWriter(globals.Stdout).Breakpoints(bps)
	return nil
}

// parseLocation splits FILE:LINE. The last colon separates the line number so
// paths containing colons still parse.
func parseLocation(location string) (string, int, error) {
	idx := strings.LastIndex(location, ":")
	if idx <= 0 || idx == len(location)-1 {
		return "", 0, domain.NewRequestError(domain.KindInvalidInput, "",
			"location must be FILE:LINE, got %q", location)
	}
	line, err := strconv.Atoi(location[idx+1:])
	if err != nil || line <= 0 {
		return "", 0, domain.NewRequestError(domain.KindInvalidInput, "",
			"line must be a positive integer, got %q", location[idx+1:])
	}
	return location[:idx], line, nil
}
