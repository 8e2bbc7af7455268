package cli

import (
	"context"
	"strings"

	"github.com/gdbtap/gdbtap/internal/correlator"
	"github.com/gdbtap/gdbtap/internal/gdb"
	"github.com/gdbtap/gdbtap/internal/output"
	"github.com/gdbtap/gdbtap/internal/reconcile"
)

// EvalCmd evaluates an expression and prints its value
type EvalCmd struct {
	Expr []string `arg:"" help:"Expression to evaluate"`
}

// Run executes the eval command
func (c *EvalCmd) Run(globals *Globals) error {
	rt, err := openRuntime(globals)
	if err != nil {
		return outputRequestError(globals, err)
	}
	defer rt.Close()
	return runValueCommand(globals, rt.corr, rt.opts, gdb.PrintCommand(strings.Join(c.Expr, " ")))
}

// AddrCmd prints the address of an expression
type AddrCmd struct {
	Expr []string `arg:"" help:"Expression to take the address of"`
}

// Run executes the addr command
func (c *AddrCmd) Run(globals *Globals) error {
	rt, err := openRuntime(globals)
	if err != nil {
		return outputRequestError(globals, err)
	}
	defer rt.Close()
	return runValueCommand(globals, rt.corr, rt.opts, gdb.PrintAddressCommand(strings.Join(c.Expr, " ")))
}

// SetCmd assigns a new value to a variable
type SetCmd struct {
	Name  string   `arg:"" help:"Variable name"`
	Value []string `arg:"" help:"New value"`
}

// Run executes the set command
func (c *SetCmd) Run(globals *Globals) error {
	rt, err := openRuntime(globals)
	if err != nil {
		return outputRequestError(globals, err)
	}
	defer rt.Close()
	cmd := gdb.SetVariableCommand(c.Name, strings.Join(c.Value, " "))
	return runReplyCommand(globals, rt.corr, rt.opts, cmd)
}

// ExamineCmd dumps memory at an address
type ExamineCmd struct {
	Address string `arg:"" help:"Address or address expression, e.g. 0x1000 or &buf"`
	Count   int    `short:"n" default:"8" help:"Number of units to read"`
	Format  string `short:"f" default:"x" help:"Display format (x, d, u, t, c, s, i)"`
	Unit    string `short:"u" default:"b" help:"Unit size (b, h, w, g)"`
}

// Run executes the examine command
func (c *ExamineCmd) Run(globals *Globals) error {
	if err := validateExamineFlags(globals, c.Count, c.Format, c.Unit); err != nil {
		return err
	}
	rt, err := openRuntime(globals)
	if err != nil {
		return outputRequestError(globals, err)
	}
	defer rt.Close()
	cmd := gdb.ExamineCommand(c.Count, c.Format, c.Unit, c.Address)
	return runReplyCommand(globals, rt.corr, rt.opts, cmd)
}

// SendCmd passes a raw command through and prints whatever comes back
type SendCmd struct {
	Command []string `arg:"" help:"Debugger command to send verbatim"`
}

// Run executes the send command
func (c *SendCmd) Run(globals *Globals) error {
	rt, err := openRuntime(globals)
	if err != nil {
		return outputRequestError(globals, err)
	}
	defer rt.Close()
	return runReplyCommand(globals, rt.corr, rt.opts, strings.Join(c.Command, " "))
}

// runValueCommand runs cmd and renders its reply as a single extracted value.
func runValueCommand(globals *Globals, runner reconcile.Runner, opts correlator.Options, cmd string) error {
	globals.Debug("Evaluating: %s", cmd)
	reply, err := runner.Do(context.Background(), cmd, opts)
	if err != nil {
		return outputRequestError(globals, err)
	}
	if err := gdb.ReplyError(cmd, reply); err != nil {
		return outputRequestError(globals, err)
	}
	value, ok := gdb.ExtractValue(reply)
	if !ok {
		return outputErrorCommon(globals, "command_failed", "reply contained no value")
	}
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteValue(cmd, value)
	}
	output.NewTextWriter(globals.Stdout).Value(value)
	return nil
}

// runReplyCommand runs cmd and renders its raw reply lines.
func runReplyCommand(globals *Globals, runner reconcile.Runner, opts correlator.Options, cmd string) error {
	globals.Debug("Sending: %s", cmd)
	reply, err := runner.Do(context.Background(), cmd, opts)
	if err != nil {
		return outputRequestError(globals, err)
	}
	if err := gdb.ReplyError(cmd, reply); err != nil {
		return outputRequestError(globals, err)
	}
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteReply(cmd, reply)
	}
	output.NewTextWriter(globals.Stdout).Reply(reply)
	return nil
}
