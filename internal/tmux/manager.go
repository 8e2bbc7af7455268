// Package tmux locates the pane hosting the debugger REPL and exposes it as
// a line-oriented process channel: write one command, read appended
// scrollback. The pane handle is cached with a short TTL and re-verified
// against tmux before every use; anything that smells stale invalidates the
// cache so the next call re-scans.
package tmux

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/GianlucaP106/gotmux/gotmux"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// ErrNoPaneAvailable is returned when no pane looks like a debugger REPL.
var ErrNoPaneAvailable = errors.New("no debugger pane available")

// DefaultTTL bounds how long a located pane is trusted without re-scanning.
const DefaultTTL = 5 * time.Second

// Handle identifies the pane that currently hosts the debugger scrollback.
// Owned exclusively by the Manager; callers treat it as opaque.
type Handle struct {
	PaneID     string
	VerifiedAt time.Time
}

// Config controls pane discovery.
type Config struct {
	// Session restricts the scan to one tmux session name. Empty scans all.
	Session string
	// ProcessNames are pane_current_command values treated as the debugger.
	ProcessNames []string
	// TTL is how long a located handle is trusted before re-verification.
	TTL time.Duration
}

// runner is the slice of the tmux client the manager needs. gotmux.Tmux
// satisfies it; tests substitute a scripted fake.
type runner interface {
	Command(args ...string) (string, error)
}

// Manager owns the cached pane handle and the tmux transport. It is safe for
// concurrent use, though the correlator serializes all access in practice.
type Manager struct {
	mu     sync.Mutex
	tmux   runner
	cfg    Config
	clock  clock.Clock
	log    *zap.SugaredLogger
	cached *Handle
}

// IsAvailable reports whether the tmux binary is on PATH.
func IsAvailable() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// NewManager connects to the default tmux server.
func NewManager(cfg *Config, log *zap.SugaredLogger) (*Manager, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tmux: %w", err)
	}
	return newManager(t, cfg, clock.New(), log), nil
}

func newManager(r runner, cfg *Config, clk clock.Clock, log *zap.SugaredLogger) *Manager {
	c := Config{TTL: DefaultTTL, ProcessNames: []string{"gdb"}}
	if cfg != nil {
		c.Session = cfg.Session
		if cfg.TTL > 0 {
			c.TTL = cfg.TTL
		}
		if len(cfg.ProcessNames) > 0 {
			c.ProcessNames = cfg.ProcessNames
		}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{tmux: r, cfg: c, clock: clk, log: log}
}

// Locate returns the pane currently hosting the debugger. The cached handle
// is reused while fresh and live; otherwise all panes are re-scanned and the
// first match is cached. found=false is not an error by itself.
func (m *Manager) Locate() (Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil {
		if m.clock.Now().Sub(m.cached.VerifiedAt) < m.cfg.TTL && m.paneAlive(m.cached.PaneID) {
			return *m.cached, true
		}
		m.cached = nil
	}

	id, ok := m.scan()
	if !ok {
		return Handle{}, false
	}
	m.cached = &Handle{PaneID: id, VerifiedAt: m.clock.Now()}
	m.log.Debugw("located debugger pane", "pane_id", id)
	return *m.cached, true
}

// Invalidate clears the cached handle unconditionally. Called whenever a
// write or read discovers the handle is wrong.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = nil
}

// scan walks every pane looking for one whose foreground process matches a
// known debugger name; failing that, one whose recent scrollback shows the
// idle prompt. Caller holds m.mu.
func (m *Manager) scan() (string, bool) {
	out, err := m.tmux.Command("list-panes", "-a", "-F", "#{pane_id}\t#{session_name}\t#{pane_current_command}")
	if err != nil {
		m.log.Debugw("pane scan failed", "error", err)
		return "", false
	}

	var candidates []string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}
		paneID, session, command := fields[0], fields[1], fields[2]
		if m.cfg.Session != "" && session != m.cfg.Session {
			continue
		}
		for _, name := range m.cfg.ProcessNames {
			if strings.EqualFold(command, name) {
				return paneID, true
			}
		}
		candidates = append(candidates, paneID)
	}

	// Fall back to a content heuristic: a pane whose tail shows the prompt.
	for _, paneID := range candidates {
		tail, err := m.tmux.Command("capture-pane", "-p", "-t", paneID, "-S", "-5")
		if err != nil {
			continue
		}
		if strings.Contains(tail, "(gdb)") {
			return paneID, true
		}
	}
	return "", false
}

// paneAlive verifies the pane still exists. Caller holds m.mu.
func (m *Manager) paneAlive(paneID string) bool {
	out, err := m.tmux.Command("display-message", "-p", "-t", paneID, "#{pane_id}")
	return err == nil && strings.TrimSpace(out) == paneID
}
