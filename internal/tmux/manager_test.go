package tmux

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts tmux replies keyed by the leading subcommand and
// records every invocation.
type fakeRunner struct {
	replies map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Command(args ...string) (string, error) {
	key := args[0]
	f.calls = append(f.calls, strings.Join(args, " "))
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.replies[key], nil
}

func (f *fakeRunner) callCount(sub string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, sub) {
			n++
		}
	}
	return n
}

func newTestManager(f *fakeRunner, clk clock.Clock, cfg *Config) *Manager {
	return newManager(f, cfg, clk, nil)
}

func TestLocate(t *testing.T) {
	t.Run("finds pane by foreground process name", func(t *testing.T) {
		f := &fakeRunner{replies: map[string]string{
			"list-panes": "%0\tmain\tzsh\n%1\tmain\tgdb\n",
		}}
		m := newTestManager(f, clock.NewMock(), nil)
		h, ok := m.Locate()
		require.True(t, ok)
		assert.Equal(t, "%1", h.PaneID)
	})

	t.Run("session filter excludes other sessions", func(t *testing.T) {
		f := &fakeRunner{replies: map[string]string{
			"list-panes": "%1\tother\tgdb\n%2\tdebug\tgdb\n",
		}}
		m := newTestManager(f, clock.NewMock(), &Config{Session: "debug"})
		h, ok := m.Locate()
		require.True(t, ok)
		assert.Equal(t, "%2", h.PaneID)
	})

	t.Run("falls back to prompt content heuristic", func(t *testing.T) {
		f := &fakeRunner{replies: map[string]string{
			"list-panes":   "%0\tmain\tzsh\n",
			"capture-pane": "Reading symbols...\n(gdb)\n",
		}}
		m := newTestManager(f, clock.NewMock(), nil)
		h, ok := m.Locate()
		require.True(t, ok)
		assert.Equal(t, "%0", h.PaneID)
	})

	t.Run("not found is not an error", func(t *testing.T) {
		f := &fakeRunner{replies: map[string]string{
			"list-panes":   "%0\tmain\tzsh\n",
			"capture-pane": "$ ls\n",
		}}
		m := newTestManager(f, clock.NewMock(), nil)
		_, ok := m.Locate()
		assert.False(t, ok)
	})

	t.Run("cached handle is reused within ttl", func(t *testing.T) {
		clk := clock.NewMock()
		f := &fakeRunner{replies: map[string]string{
			"list-panes":      "%1\tmain\tgdb\n",
			"display-message": "%1\n",
		}}
		m := newTestManager(f, clk, &Config{TTL: 5 * time.Second})

		_, ok := m.Locate()
		require.True(t, ok)
		_, ok = m.Locate()
		require.True(t, ok)
		assert.Equal(t, 1, f.callCount("list-panes"))
	})

	t.Run("expired handle triggers rescan", func(t *testing.T) {
		clk := clock.NewMock()
		f := &fakeRunner{replies: map[string]string{
			"list-panes":      "%1\tmain\tgdb\n",
			"display-message": "%1\n",
		}}
		m := newTestManager(f, clk, &Config{TTL: 5 * time.Second})

		_, ok := m.Locate()
		require.True(t, ok)
		clk.Add(6 * time.Second)
		_, ok = m.Locate()
		require.True(t, ok)
		assert.Equal(t, 2, f.callCount("list-panes"))
	})

	t.Run("dead pane is dropped even within ttl", func(t *testing.T) {
		clk := clock.NewMock()
		f := &fakeRunner{replies: map[string]string{
			"list-panes":      "%1\tmain\tgdb\n",
			"display-message": "%9\n", // pane id no longer matches
		}}
		m := newTestManager(f, clk, &Config{TTL: time.Hour})

		_, ok := m.Locate()
		require.True(t, ok)
		clk.Add(time.Second)
		_, ok = m.Locate()
		require.True(t, ok)
		assert.Equal(t, 2, f.callCount("list-panes"))
	})

	t.Run("invalidate clears the cache", func(t *testing.T) {
		f := &fakeRunner{replies: map[string]string{
			"list-panes": "%1\tmain\tgdb\n",
		}}
		m := newTestManager(f, clock.NewMock(), nil)

		_, ok := m.Locate()
		require.True(t, ok)
		m.Invalidate()
		_, ok = m.Locate()
		require.True(t, ok)
		assert.Equal(t, 2, f.callCount("list-panes"))
	})
}

func TestWriteCommand(t *testing.T) {
	t.Run("sends literal text then enter", func(t *testing.T) {
		f := &fakeRunner{replies: map[string]string{
			"list-panes": "%1\tmain\tgdb\n",
		}}
		m := newTestManager(f, clock.NewMock(), nil)

		require.NoError(t, m.WriteCommand("print x"))
		assert.Contains(t, f.calls, "send-keys -t %1 -l print x")
		assert.Contains(t, f.calls, "send-keys -t %1 Enter")
	})

	t.Run("write failure invalidates the handle", func(t *testing.T) {
		f := &fakeRunner{
			replies: map[string]string{"list-panes": "%1\tmain\tgdb\n"},
			errs:    map[string]error{"send-keys": errors.New("pane gone")},
		}
		m := newTestManager(f, clock.NewMock(), nil)

		err := m.WriteCommand("print x")
		require.Error(t, err)
		m.mu.Lock()
		assert.Nil(t, m.cached)
		m.mu.Unlock()
	})

	t.Run("no pane yields ErrNoPaneAvailable", func(t *testing.T) {
		f := &fakeRunner{replies: map[string]string{"list-panes": ""}}
		m := newTestManager(f, clock.NewMock(), nil)
		assert.ErrorIs(t, m.WriteCommand("print x"), ErrNoPaneAvailable)
	})
}

func TestReadLines(t *testing.T) {
	scrollback := "(gdb) print x\n$1 = 42\n(gdb)\n\n\n"
	f := &fakeRunner{replies: map[string]string{
		"list-panes":   "%1\tmain\tgdb\n",
		"capture-pane": scrollback,
	}}
	m := newTestManager(f, clock.NewMock(), nil)

	t.Run("line count strips trailing blanks", func(t *testing.T) {
		n, err := m.LineCount()
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("reads from offset", func(t *testing.T) {
		lines, err := m.ReadLines(1, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"$1 = 42", "(gdb)"}, lines)
	})

	t.Run("bounds by max", func(t *testing.T) {
		lines, err := m.ReadLines(0, 2)
		require.NoError(t, err)
		assert.Len(t, lines, 2)
	})

	t.Run("offset past end yields nothing", func(t *testing.T) {
		lines, err := m.ReadLines(10, 0)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}
