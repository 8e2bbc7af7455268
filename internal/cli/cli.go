// Package cli defines the command surface. Every command resolves the
// debugger pane, runs one or more REPL exchanges through the correlator, and
// renders the result as text or NDJSON.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/gdbtap/gdbtap/internal/config"
	"github.com/gdbtap/gdbtap/internal/correlator"
)

// CLI is the top-level command structure for kong
type CLI struct {
	Format       string `help:"Output format (text, ndjson)" enum:"text,ndjson" default:"${config_format}"`
	Quiet        bool   `short:"q" help:"Suppress non-essential output"`
	Verbose      bool   `short:"v" help:"Enable verbose debug logging"`
	Timeout      string `help:"How long to wait for a reply" default:"${config_timeout}"`
	PollInterval string `name:"poll-interval" help:"How often to re-read the scrollback" default:"${config_poll_interval}"`
	MaxLines     int    `name:"max-lines" help:"Most scrollback lines scanned per poll" default:"${config_max_lines}"`
	Session      string `short:"s" help:"Tmux session to scan for the debugger" default:"${config_session}"`

	Toggle      ToggleCmd      `cmd:"" help:"Toggle a breakpoint at FILE:LINE"`
	Breakpoints BreakpointsCmd `cmd:"" help:"List current breakpoints"`
	Eval        EvalCmd        `cmd:"" help:"Evaluate an expression and print its value"`
	Addr        AddrCmd        `cmd:"" help:"Print the address of an expression"`
	Set         SetCmd         `cmd:"" help:"Set a variable to a new value"`
	Examine     ExamineCmd     `cmd:"" help:"Examine memory at an address"`
	Send        SendCmd        `cmd:"" help:"Send a raw command and print its reply"`
	Status      StatusCmd      `cmd:"" help:"Show debugger session status"`
	Schema      SchemaCmd      `cmd:"" help:"Output JSON Schema for NDJSON output types"`
	Config      ConfigCmd      `cmd:"" help:"Show effective configuration and its source"`
}

// Globals carries cross-command state resolved from flags and config
type Globals struct {
	Format       string
	Quiet        bool
	Verbose      bool
	Timeout      string
	PollInterval string
	MaxLines     int
	Session      string
	Stdout       io.Writer
	Stderr       io.Writer
	Config       *config.Config

	logger *debugLogger
}

// NewGlobalsWithConfig builds Globals from parsed flags, falling back to
// loaded configuration
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:       c.Format,
		Quiet:        c.Quiet,
		Verbose:      c.Verbose,
		Timeout:      c.Timeout,
		PollInterval: c.PollInterval,
		MaxLines:     c.MaxLines,
		Session:      c.Session,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Config:       cfg,
	}
	g.logger = newDebugLogger(g)
	return g
}

// Debug logs a formatted message when verbose mode is on
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Debug(format, args...)
	}
}

// requestOptions resolves per-request timing from flags with config
// fallbacks. Malformed flag values fall back rather than fail: a bad
// --timeout should not mask the command the user actually asked for.
func (g *Globals) requestOptions() correlator.Options {
	cfg := g.Config
	if cfg == nil {
		cfg = config.Default()
	}
	opts := correlator.Options{
		Timeout:      cfg.TimeoutDuration(),
		PollInterval: cfg.PollIntervalDuration(),
		MaxLines:     cfg.MaxLines,
	}
	if d, err := time.ParseDuration(g.Timeout); err == nil && d > 0 {
		opts.Timeout = d
	}
	if d, err := time.ParseDuration(g.PollInterval); err == nil && d > 0 {
		opts.PollInterval = d
	}
	if g.MaxLines > 0 {
		opts.MaxLines = g.MaxLines
	}
	return opts
}
