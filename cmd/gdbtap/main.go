package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/gdbtap/gdbtap/internal/cli"
	"github.com/gdbtap/gdbtap/internal/config"
)

const quickStart = `gdbtap - drive a gdb session running in tmux

Quick start:
  gdbtap status                         Find the debugger pane
  gdbtap toggle main.c:42               Toggle a breakpoint
  gdbtap eval counter                   Evaluate an expression
  gdbtap send "info locals"             Send any command

For help:
  gdbtap --help                         All commands and flags
  gdbtap schema                         Machine-readable output schemas
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":        cfg.Format,
		"config_timeout":       cfg.Timeout,
		"config_poll_interval": cfg.PollInterval,
		"config_max_lines":     strconv.Itoa(cfg.MaxLines),
		"config_session":       cfg.Session.Tmux,
	}

	ctx := kong.Parse(&c,
		kong.Name("gdbtap"),
		kong.Description("gdbtap: toggle breakpoints, evaluate expressions and inspect memory in a gdb session hosted by tmux"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
