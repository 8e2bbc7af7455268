package tmux

import (
	"fmt"
	"strings"
)

// SessionActive reports whether a debugger pane can currently be resolved.
func (m *Manager) SessionActive() bool {
	_, ok := m.Locate()
	return ok
}

// WriteCommand sends one line of input to the debugger pane. The text is sent
// literally (-l) so tmux does not interpret key names, followed by Enter. A
// failed write invalidates the cached handle.
func (m *Manager) WriteCommand(text string) error {
	h, ok := m.Locate()
	if !ok {
		return ErrNoPaneAvailable
	}
	if _, err := m.tmux.Command("send-keys", "-t", h.PaneID, "-l", text); err != nil {
		m.Invalidate()
		return fmt.Errorf("failed to send command: %w", err)
	}
	if _, err := m.tmux.Command("send-keys", "-t", h.PaneID, "Enter"); err != nil {
		m.Invalidate()
		return fmt.Errorf("failed to send newline: %w", err)
	}
	return nil
}

// LineCount returns the current number of scrollback lines, used by the
// correlator to snapshot a baseline before writing a command.
func (m *Manager) LineCount() (int, error) {
	lines, err := m.captureAll()
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// ReadLines returns up to max lines appended at or after offset from. A read
// failure invalidates the cached handle.
func (m *Manager) ReadLines(from, max int) ([]string, error) {
	lines, err := m.captureAll()
	if err != nil {
		return nil, err
	}
	if from < 0 {
		from = 0
	}
	if from >= len(lines) {
		return nil, nil
	}
	out := lines[from:]
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// captureAll reads the full pane scrollback. Trailing blank screen rows are
// stripped so line counts stay stable as the cursor moves.
func (m *Manager) captureAll() ([]string, error) {
	h, ok := m.Locate()
	if !ok {
		return nil, ErrNoPaneAvailable
	}
	out, err := m.tmux.Command("capture-pane", "-p", "-J", "-t", h.PaneID, "-S", "-")
	if err != nil {
		m.Invalidate()
		return nil, fmt.Errorf("failed to capture pane: %w", err)
	}
	lines := strings.Split(out, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
