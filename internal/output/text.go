package output

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/gdbtap/gdbtap/internal/domain"
)

var (
	addedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	removedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TextWriter renders results for humans. Styling is applied only when the
// destination is a terminal.
type TextWriter struct {
	w     io.Writer
	color bool
}

// NewTextWriter creates a text writer over w, detecting terminal capability.
func NewTextWriter(w io.Writer) *TextWriter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &TextWriter{w: w, color: color}
}

func (t *TextWriter) styled(s lipgloss.Style, text string) string {
	if !t.color {
		return text
	}
	return s.Render(text)
}

// Value prints one evaluated expression result.
func (t *TextWriter) Value(value string) {
	fmt.Fprintln(t.w, value)
}

// Reply prints raw reply lines.
func (t *TextWriter) Reply(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(t.w, line)
	}
}

// Toggle prints a breakpoint toggle outcome.
func (t *TextWriter) Toggle(action domain.ToggleAction, bp domain.Breakpoint) {
	switch action {
	case domain.ToggleAdded:
		fmt.Fprintf(t.w, "%s breakpoint %d at %s\n", t.styled(addedStyle, "Added"), bp.ID, bp.Location())
	case domain.ToggleRemoved:
		fmt.Fprintf(t.w, "%s breakpoint %d at %s\n", t.styled(removedStyle, "Removed"), bp.ID, bp.Location())
	}
}

// Breakpoints prints the breakpoint table.
func (t *TextWriter) Breakpoints(bps []domain.Breakpoint) {
	if len(bps) == 0 {
		fmt.Fprintln(t.w, t.styled(dimStyle, "No breakpoints set."))
		return
	}
	table := tablewriter.NewWriter(t.w)
	table.Header("Num", "Location", "Enabled")
	for _, bp := range bps {
		enabled := "yes"
		if !bp.Enabled {
			enabled = "no"
		}
		table.Append([]string{strconv.Itoa(bp.ID), bp.Location(), enabled})
	}
	table.Render()
}

// Status prints session discovery state.
func (t *TextWriter) Status(active bool, paneID string) {
	if active {
		fmt.Fprintf(t.w, "Debugger session active in pane %s\n", paneID)
		return
	}
	fmt.Fprintln(t.w, "No debugger session found.")
}
