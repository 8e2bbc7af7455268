// Package reconcile turns the debugger's breakpoint table into a desired
// state operation: toggle-at-location. The debugger itself is the source of
// truth; every toggle re-reads the live table rather than trusting any local
// copy of it.
package reconcile

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/gdbtap/gdbtap/internal/correlator"
	"github.com/gdbtap/gdbtap/internal/domain"
	"github.com/gdbtap/gdbtap/internal/gdb"
)

// Runner executes one debugger command and returns its reply lines.
// *correlator.Correlator satisfies it.
type Runner interface {
	Do(ctx context.Context, command string, opts correlator.Options) ([]string, error)
}

// Reconciler drives breakpoint state through the REPL.
type Reconciler struct {
	runner Runner
	opts   correlator.Options
	log    *zap.SugaredLogger
}

// New builds a reconciler over runner. opts apply to every command it issues.
func New(runner Runner, opts correlator.Options, log *zap.SugaredLogger) *Reconciler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reconciler{runner: runner, opts: opts, log: log}
}

// List returns the current breakpoint table. An empty table is an empty
// slice, not an error.
func (r *Reconciler) List(ctx context.Context) ([]domain.Breakpoint, error) {
	lines, err := r.runner.Do(ctx, gdb.InfoBreakpointsCommand(), r.opts)
	if err != nil {
		return nil, err
	}
	if gdb.IsEmptyBreakpointTable(lines) {
		return []domain.Breakpoint{}, nil
	}
	return gdb.ParseBreakpoints(lines), nil
}

// Toggle flips the breakpoint at file:line: removes it when one exists there,
// creates one otherwise. The returned breakpoint describes what was added or
// removed.
func (r *Reconciler) Toggle(ctx context.Context, file string, line int) (domain.ToggleAction, domain.Breakpoint, error) {
	if strings.TrimSpace(file) == "" || line <= 0 {
		return "", domain.Breakpoint{}, domain.NewRequestError(domain.KindInvalidInput, "",
			"breakpoint location must be FILE:LINE with a positive line")
	}
	// Clean strips ./ and redundant separators so the request compares
	// against table rows the same way the debugger printed them. Paths stay
	// relative: the debugger reports compile-time paths, not our cwd.
	file = filepath.Clean(strings.TrimSpace(file))

	existing := r.snapshot(ctx)
	match, found := lo.Find(existing, func(bp domain.Breakpoint) bool {
		return bp.Line == line && sameFile(bp.File, file)
	})
	if found {
		return r.remove(ctx, match)
	}
	return r.add(ctx, file, line)
}

// snapshot reads the live table, treating any failure as an empty table so a
// toggle against a fresh session still creates the breakpoint.
func (r *Reconciler) snapshot(ctx context.Context) []domain.Breakpoint {
	lines, err := r.runner.Do(ctx, gdb.InfoBreakpointsCommand(), r.opts)
	if err != nil {
		r.log.Debugw("breakpoint listing failed, assuming empty table", "error", err)
		return nil
	}
	if gdb.IsEmptyBreakpointTable(lines) {
		return nil
	}
	return gdb.ParseBreakpoints(lines)
}

func (r *Reconciler) remove(ctx context.Context, bp domain.Breakpoint) (domain.ToggleAction, domain.Breakpoint, error) {
	cmd := gdb.DeleteCommand(bp.ID)
	if _, err := r.runner.Do(ctx, cmd, r.opts); err != nil {
		return "", domain.Breakpoint{}, err
	}
	r.log.Debugw("breakpoint removed", "id", bp.ID, "location", bp.Location())
	return domain.ToggleRemoved, bp, nil
}

func (r *Reconciler) add(ctx context.Context, file string, line int) (domain.ToggleAction, domain.Breakpoint, error) {
	cmd := gdb.BreakCommand(file, line)
	reply, err := r.runner.Do(ctx, cmd, r.opts)
	if err != nil {
		return "", domain.Breakpoint{}, err
	}
	id := gdb.CreatedBreakpointID(reply)
	if id == 0 {
		msg := strings.TrimSpace(strings.Join(reply, " "))
		if msg == "" {
			msg = "debugger did not confirm the breakpoint"
		}
		return "", domain.Breakpoint{}, domain.NewRequestError(gdb.ClassifyError(msg), cmd, "%s", msg)
	}
	bp := domain.Breakpoint{ID: id, File: file, Line: line, Enabled: true}
	r.log.Debugw("breakpoint added", "id", id, "location", bp.Location())
	return domain.ToggleAdded, bp, nil
}

// sameFile matches a table entry against a requested path, tolerating the
// debugger printing basenames where the caller gave a fuller path (and the
// reverse).
func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasSuffix(a, "/"+b) || strings.HasSuffix(b, "/"+a)
}
