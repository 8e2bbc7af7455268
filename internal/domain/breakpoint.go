package domain

import "fmt"

// Breakpoint is one row of the debugger's breakpoint table. The debugger
// process is the source of truth; breakpoints are re-queried on demand and
// never persisted locally.
type Breakpoint struct {
	ID      int    `json:"id"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Enabled bool   `json:"enabled"`
}

// Location returns the breakpoint position as FILE:LINE.
func (b Breakpoint) Location() string {
	return fmt.Sprintf("%s:%d", b.File, b.Line)
}

// ToggleAction describes what a breakpoint toggle did.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)
