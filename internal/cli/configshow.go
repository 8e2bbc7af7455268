package cli

import (
	"encoding/json"
	"fmt"

	"github.com/gdbtap/gdbtap/internal/config"
	"github.com/gdbtap/gdbtap/internal/output"
)

// ConfigCmd shows the effective configuration and which file it came from
type ConfigCmd struct{}

// Run executes the config command
func (c *ConfigCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		enc := json.NewEncoder(globals.Stdout)
		return enc.Encode(map[string]interface{}{
			"type":          "config",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
			"format":        cfg.Format,
			"timeout":       cfg.Timeout,
			"poll_interval": cfg.PollInterval,
			"max_lines":     cfg.MaxLines,
			"session": map[string]interface{}{
				"tmux":          cfg.Session.Tmux,
				"process_names": cfg.Session.ProcessNames,
				"ttl":           cfg.Session.TTL,
			},
		})
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found (using defaults)")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}
	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintf(globals.Stdout, "  format: %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  timeout: %s\n", cfg.Timeout)
	fmt.Fprintf(globals.Stdout, "  poll_interval: %s\n", cfg.PollInterval)
	fmt.Fprintf(globals.Stdout, "  max_lines: %d\n", cfg.MaxLines)
	fmt.Fprintf(globals.Stdout, "  session.tmux: %s\n", cfg.Session.Tmux)
	fmt.Fprintf(globals.Stdout, "  session.process_names: %v\n", cfg.Session.ProcessNames)
	fmt.Fprintf(globals.Stdout, "  session.ttl: %s\n", cfg.Session.TTL)
	return nil
}
