package correlator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdbtap/gdbtap/internal/domain"
)

// fakeChannel is a scripted scrollback. Writing a command appends its echo
// plus whatever reply generates, mimicking a REPL that answers instantly.
// A nil reply leaves the command unanswered forever.
type fakeChannel struct {
	mu       sync.Mutex
	active   bool
	lines    []string
	writes   []string
	writeErr error
	countErr error
	readErr  error
	reply    func(cmd string) []string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		active: true,
		lines:  []string{"GNU gdb 13.1", "(gdb)"},
	}
}

func (f *fakeChannel) SessionActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeChannel) WriteCommand(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, text)
	f.lines = append(f.lines, "(gdb) "+text)
	if f.reply != nil {
		f.lines = append(f.lines, f.reply(text)...)
		f.lines = append(f.lines, "(gdb)")
	}
	return nil
}

func (f *fakeChannel) LineCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.lines), nil
}

func (f *fakeChannel) ReadLines(from, max int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if from >= len(f.lines) {
		return nil, nil
	}
	out := f.lines[from:]
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return append([]string(nil), out...), nil
}

// collect captures a single completion for assertions.
type collect struct {
	count atomic.Int32
	mu    sync.Mutex
	lines []string
	err   error
}

func (c *collect) fn(lines []string, err error) {
	c.mu.Lock()
	c.lines = lines
	c.err = err
	c.mu.Unlock()
	c.count.Add(1)
}

func (c *collect) done() bool { return c.count.Load() > 0 }

func (c *collect) result() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines, c.err
}

func TestSendSuccess(t *testing.T) {
	clk := clock.NewMock()
	ch := newFakeChannel()
	ch.reply = func(string) []string { return []string{"$1 = 42"} }
	c := newCorrelator(ch, clk, nil)
	defer c.Close()

	var got collect
	c.Send("print x", Options{Timeout: time.Second, PollInterval: 50 * time.Millisecond}, got.fn)

	require.Eventually(t, func() bool { return c.liveTickerCount() == 1 },
		time.Second, time.Millisecond)
	clk.Add(50 * time.Millisecond)

	require.Eventually(t, got.done, time.Second, time.Millisecond)
	lines, err := got.result()
	require.NoError(t, err)
	assert.Equal(t, []string{"$1 = 42"}, lines)
	assert.Equal(t, []string{"print x"}, ch.writes)
}

func TestSendTimeout(t *testing.T) {
	clk := clock.NewMock()
	ch := newFakeChannel()
	// No reply script: the command echoes but never answers.
	c := newCorrelator(ch, clk, nil)
	defer c.Close()

	const (
		timeout = 100 * time.Millisecond
		poll    = 20 * time.Millisecond
	)

	start := clk.Now()
	var doneAt time.Time
	var got collect
	c.Send("print x", Options{Timeout: timeout, PollInterval: poll}, func(lines []string, err error) {
		doneAt = clk.Now()
		got.fn(lines, err)
	})

	require.Eventually(t, func() bool { return c.liveTickerCount() == 1 },
		time.Second, time.Millisecond)
	for i := 0; i < 10 && !got.done(); i++ {
		clk.Add(poll)
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, got.done, time.Second, time.Millisecond)
	_, err := got.result()
	require.Error(t, err)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
	assert.Contains(t, err.Error(), "100ms")

	// Fires at the first poll tick at or past the deadline, never later than
	// one full interval past it.
	elapsed := doneAt.Sub(start)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+poll)

	// Further ticks must not re-fire the callback.
	clk.Add(5 * poll)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), got.count.Load())
}

func TestSendCancel(t *testing.T) {
	clk := clock.NewMock()
	ch := newFakeChannel()
	c := newCorrelator(ch, clk, nil)
	defer c.Close()

	var got collect
	req := c.Send("print x", Options{Timeout: time.Minute, PollInterval: 20 * time.Millisecond}, got.fn)

	require.Eventually(t, func() bool { return c.liveTickerCount() == 1 },
		time.Second, time.Millisecond)
	req.Cancel()

	require.Eventually(t, got.done, time.Second, time.Millisecond)
	_, err := got.result()
	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))

	// Idempotent: a second cancel after completion does nothing.
	req.Cancel()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, int32(1), got.count.Load())
}

func TestSendValidation(t *testing.T) {
	t.Run("empty command", func(t *testing.T) {
		ch := newFakeChannel()
		c := newCorrelator(ch, clock.NewMock(), nil)
		defer c.Close()

		var got collect
		c.Send("   ", Options{}, got.fn)
		require.Eventually(t, got.done, time.Second, time.Millisecond)
		_, err := got.result()
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
		assert.Empty(t, ch.writes)
	})

	t.Run("denied command", func(t *testing.T) {
		ch := newFakeChannel()
		c := newCorrelator(ch, clock.NewMock(), nil)
		defer c.Close()

		var got collect
		c.Send("quit", Options{}, got.fn)
		require.Eventually(t, got.done, time.Second, time.Millisecond)
		_, err := got.result()
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
		assert.Empty(t, ch.writes)
	})

	t.Run("inactive session", func(t *testing.T) {
		ch := newFakeChannel()
		ch.active = false
		c := newCorrelator(ch, clock.NewMock(), nil)
		defer c.Close()

		var got collect
		c.Send("print x", Options{}, got.fn)
		require.Eventually(t, got.done, time.Second, time.Millisecond)
		_, err := got.result()
		assert.Equal(t, domain.KindNotAvailable, domain.KindOf(err))
	})

	t.Run("baseline snapshot failure", func(t *testing.T) {
		ch := newFakeChannel()
		ch.countErr = errors.New("pane gone")
		c := newCorrelator(ch, clock.NewMock(), nil)
		defer c.Close()

		var got collect
		c.Send("print x", Options{}, got.fn)
		require.Eventually(t, got.done, time.Second, time.Millisecond)
		_, err := got.result()
		assert.Equal(t, domain.KindNotAvailable, domain.KindOf(err))
	})

	t.Run("write failure", func(t *testing.T) {
		ch := newFakeChannel()
		ch.writeErr = errors.New("send-keys failed")
		c := newCorrelator(ch, clock.NewMock(), nil)
		defer c.Close()

		var got collect
		c.Send("print x", Options{}, got.fn)
		require.Eventually(t, got.done, time.Second, time.Millisecond)
		_, err := got.result()
		assert.Equal(t, domain.KindCommandFailed, domain.KindOf(err))
		assert.ErrorIs(t, err, ch.writeErr)
	})
}

func TestFIFOOrdering(t *testing.T) {
	ch := newFakeChannel()
	ch.reply = func(cmd string) []string { return []string{"ok: " + cmd} }
	c := New(ch, nil)
	defer c.Close()

	var mu sync.Mutex
	var order []string
	var wg sync.WaitGroup
	commands := []string{"print a", "print b", "print c", "print d"}
	for _, cmd := range commands {
		wg.Add(1)
		cmd := cmd
		c.Send(cmd, Options{PollInterval: MinPollInterval}, func([]string, error) {
			mu.Lock()
			order = append(order, cmd)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()
	assert.Equal(t, commands, order)
}

func TestDo(t *testing.T) {
	t.Run("returns reply lines", func(t *testing.T) {
		ch := newFakeChannel()
		ch.reply = func(string) []string { return []string{"$2 = 7"} }
		c := New(ch, nil)
		defer c.Close()

		lines, err := c.Do(context.Background(), "print y", Options{PollInterval: MinPollInterval})
		require.NoError(t, err)
		assert.Equal(t, []string{"$2 = 7"}, lines)
	})

	t.Run("context cancellation cancels the request", func(t *testing.T) {
		ch := newFakeChannel()
		c := New(ch, nil)
		defer c.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err := c.Do(ctx, "print y", Options{Timeout: time.Minute, PollInterval: MinPollInterval})
		require.Error(t, err)
		assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
	})
}

func TestCloseFailsPending(t *testing.T) {
	ch := newFakeChannel()
	c := New(ch, nil)
	c.Close()

	var got collect
	c.Send("print x", Options{}, got.fn)
	require.Eventually(t, got.done, time.Second, time.Millisecond)
	_, err := got.result()
	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
}

// Exercises every exit path many times and proves no poll ticker survives its
// request. A mock clock driven from a side goroutine keeps wall time short.
func TestNoTickerLeaks(t *testing.T) {
	clk := clock.NewMock()
	ch := newFakeChannel()
	var answer atomic.Bool
	ch.reply = func(cmd string) []string {
		if !answer.Load() {
			return nil
		}
		return []string{"done"}
	}
	c := newCorrelator(ch, clk, nil)

	stop := make(chan struct{})
	var driver sync.WaitGroup
	driver.Add(1)
	go func() {
		defer driver.Done()
		for {
			select {
			case <-stop:
				return
			default:
				clk.Add(10 * time.Millisecond)
				time.Sleep(200 * time.Microsecond)
			}
		}
	}()

	const total = 1000
	var completed atomic.Int32
	onDone := func([]string, error) { completed.Add(1) }

	for i := 0; i < total; i++ {
		switch i % 3 {
		case 0: // answered
			answer.Store(true)
			c.Send("print x", Options{Timeout: 500 * time.Millisecond, PollInterval: 10 * time.Millisecond}, onDone)
		case 1: // never answered, times out
			answer.Store(false)
			c.Send("print x", Options{Timeout: 30 * time.Millisecond, PollInterval: 10 * time.Millisecond}, onDone)
		case 2: // cancelled straight away
			answer.Store(false)
			req := c.Send("print x", Options{Timeout: 500 * time.Millisecond, PollInterval: 10 * time.Millisecond}, onDone)
			req.Cancel()
		}
	}

	require.Eventually(t, func() bool { return completed.Load() == total },
		30*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(0), c.liveTickerCount())

	close(stop)
	driver.Wait()
	c.Close()
	assert.Equal(t, int64(0), c.liveTickerCount())
}
