package cli

import (
	"github.com/gdbtap/gdbtap/internal/output"
	"github.com/gdbtap/gdbtap/internal/tmux"
)

// StatusCmd reports whether a debugger session can be located
type StatusCmd struct{}

// Run executes the status command
func (c *StatusCmd) Run(globals *Globals) error {
	rt, err := openRuntime(globals)
	if err != nil {
		return outputRequestError(globals, err)
	}
	defer rt.Close()
	return runStatus(globals, rt.manager)
}

// paneLocator is the slice of the manager the status command needs.
type paneLocator interface {
	Locate() (tmux.Handle, bool)
}

func runStatus(globals *Globals, locator paneLocator) error {
	h, active := locator.Locate()
	paneID := ""
	if active {
		paneID = h.PaneID
	}
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteStatus(active, paneID)
	}
	output.NewTextWriter(globals.Stdout).Status(active, paneID)
	return nil
}
