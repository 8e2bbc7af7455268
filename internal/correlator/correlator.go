// Package correlator matches commands written to the debugger REPL with the
// replies that later appear in its scrollback. There is no framed protocol:
// a command is written, the scrollback grows, and the reply is recognized by
// polling for the next idle prompt. The correlator owns the timeout,
// cancellation and exactly-once completion semantics around that heuristic.
//
// Requests are serialized FIFO through a single worker goroutine, so two
// commands can never poll overlapping scrollback regions and misattribute
// each other's output.
package correlator

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/gdbtap/gdbtap/internal/domain"
	"github.com/gdbtap/gdbtap/internal/gdb"
)

const (
	// DefaultTimeout bounds how long a reply is waited for.
	DefaultTimeout = 3 * time.Second
	// DefaultPollInterval is how often the scrollback is re-read.
	DefaultPollInterval = 50 * time.Millisecond
	// MinPollInterval is the enforced floor; polling never runs faster.
	MinPollInterval = 5 * time.Millisecond
	// DefaultMaxLines bounds how many lines past the baseline are scanned.
	DefaultMaxLines = 80

	queueDepth = 64
)

// Channel is the process I/O surface the correlator drives. One concrete
// implementation (the tmux pane manager) is selected at startup; tests
// substitute scripted fakes.
type Channel interface {
	// SessionActive reports whether a debugger session is currently running.
	SessionActive() bool
	// WriteCommand sends one line of input to the debugger process.
	WriteCommand(text string) error
	// LineCount returns the current scrollback length.
	LineCount() (int, error)
	// ReadLines returns up to max lines appended at or after offset from.
	ReadLines(from, max int) ([]string, error)
}

// Options tunes one request. Zero values fall back to defaults.
type Options struct {
	Timeout      time.Duration
	PollInterval time.Duration
	MaxLines     int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.PollInterval < MinPollInterval {
		o.PollInterval = MinPollInterval
	}
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	return o
}

// Request is one in-flight command. Its callback runs exactly once: never
// zero times, never twice. Cancel is idempotent and a no-op after completion.
type Request struct {
	command string
	opts    Options
	onDone  func([]string, error)

	mu        sync.Mutex
	completed bool

	cancelOnce sync.Once
	cancelled  chan struct{}
}

// Cancel withdraws interest in the request. Safe to call from any goroutine,
// repeatedly, and after completion.
func (r *Request) Cancel() {
	r.cancelOnce.Do(func() { close(r.cancelled) })
}

func (r *Request) isCancelled() bool {
	select {
	case <-r.cancelled:
		return true
	default:
		return false
	}
}

// finish runs the completion callback, exactly once.
func (r *Request) finish(lines []string, err error) {
	r.mu.Lock()
	if r.completed {
		r.mu.Unlock()
		return
	}
	r.completed = true
	r.mu.Unlock()
	r.onDone(lines, err)
}

// Correlator serializes command/reply exchanges against one debugger session.
type Correlator struct {
	ch    Channel
	clock clock.Clock
	log   *zap.SugaredLogger

	queue   chan *Request
	quit    chan struct{}
	closeMu sync.RWMutex
	closed  bool
	wg      sync.WaitGroup

	// liveTickers counts poll tickers that have been created and not yet
	// stopped; it must read zero whenever no request is in flight.
	liveTickers atomic.Int64
}

// New builds a correlator over ch and starts its worker.
func New(ch Channel, log *zap.SugaredLogger) *Correlator {
	return newCorrelator(ch, clock.New(), log)
}

func newCorrelator(ch Channel, clk clock.Clock, log *zap.SugaredLogger) *Correlator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Correlator{
		ch:    ch,
		clock: clk,
		log:   log,
		queue: make(chan *Request, queueDepth),
		quit:  make(chan struct{}),
	}
	c.wg.Add(1)
	go c.worker()
	return c
}

// Close stops the worker. Requests still queued complete with a cancelled
// error; Close is idempotent.
func (c *Correlator) Close() {
	c.closeMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.quit)
	}
	c.closeMu.Unlock()
	c.wg.Wait()
}

// Send enqueues command and returns a handle that can cancel it. The
// completion callback receives either the reply lines (possibly empty) or a
// *domain.RequestError, exactly once.
func (c *Correlator) Send(command string, opts Options, onDone func([]string, error)) *Request {
	req := &Request{
		command:   strings.TrimSpace(command),
		opts:      opts.withDefaults(),
		onDone:    onDone,
		cancelled: make(chan struct{}),
	}
	// The read lock orders enqueue against Close: the worker drains the
	// queue only after closed is set, so a request admitted here is always
	// either processed or drained.
	c.closeMu.RLock()
	if c.closed {
		c.closeMu.RUnlock()
		req.finish(nil, domain.NewRequestError(domain.KindCancelled, req.command, "correlator is closed"))
		return req
	}
	c.queue <- req
	c.closeMu.RUnlock()
	return req
}

// Do is the blocking form of Send. Context cancellation cancels the request
// and waits for its terminal callback.
func (c *Correlator) Do(ctx context.Context, command string, opts Options) ([]string, error) {
	type outcome struct {
		lines []string
		err   error
	}
	outCh := make(chan outcome, 1)
	req := c.Send(command, opts, func(lines []string, err error) {
		outCh <- outcome{lines: lines, err: err}
	})
	select {
	case out := <-outCh:
		return out.lines, out.err
	case <-ctx.Done():
		req.Cancel()
		out := <-outCh
		return out.lines, out.err
	}
}

func (c *Correlator) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.quit:
			c.drain()
			return
		case req := <-c.queue:
			c.process(req)
		}
	}
}

// drain fails whatever is still queued after Close.
func (c *Correlator) drain() {
	for {
		select {
		case req := <-c.queue:
			req.finish(nil, domain.NewRequestError(domain.KindCancelled, req.command, "correlator is closed"))
		default:
			return
		}
	}
}

// process runs one request start to finish. Exactly one finish call happens
// on every path out of here.
func (c *Correlator) process(req *Request) {
	if req.isCancelled() {
		req.finish(nil, domain.NewRequestError(domain.KindCancelled, req.command, "request cancelled"))
		return
	}

	// Fail fast before any I/O: empty input and destructive meta-commands
	// never reach the process.
	if req.command == "" {
		req.finish(nil, domain.NewRequestError(domain.KindInvalidInput, "", "command is empty"))
		return
	}
	if gdb.Denied(req.command) {
		req.finish(nil, domain.NewRequestError(domain.KindInvalidInput, req.command, "command is not allowed"))
		return
	}

	if !c.ch.SessionActive() {
		req.finish(nil, domain.NewRequestError(domain.KindNotAvailable, req.command, "no active debugger session"))
		return
	}

	baseline, err := c.ch.LineCount()
	if err != nil {
		req.finish(nil, domain.NewRequestError(domain.KindNotAvailable, req.command, "failed to snapshot scrollback").WithCause(err))
		return
	}

	if err := c.ch.WriteCommand(req.command); err != nil {
		req.finish(nil, domain.NewRequestError(domain.KindCommandFailed, req.command, "failed to write command").WithCause(err))
		return
	}

	c.log.Debugw("command sent", "command", req.command, "baseline", baseline)
	c.poll(req, baseline)
}

// poll watches the scrollback past baseline until a reply boundary appears,
// the timeout elapses, or the request is cancelled. The ticker is stopped on
// every exit path.
func (c *Correlator) poll(req *Request, baseline int) {
	start := c.clock.Now()
	ticker := c.clock.Ticker(req.opts.PollInterval)
	c.liveTickers.Add(1)
	defer func() {
		ticker.Stop()
		c.liveTickers.Add(-1)
	}()

	for {
		select {
		case <-req.cancelled:
			req.finish(nil, domain.NewRequestError(domain.KindCancelled, req.command, "request cancelled"))
			return
		case <-c.quit:
			req.finish(nil, domain.NewRequestError(domain.KindCancelled, req.command, "correlator is closed"))
			return
		case <-ticker.C:
			if c.clock.Now().Sub(start) >= req.opts.Timeout {
				req.finish(nil, domain.NewRequestError(domain.KindTimeout, req.command,
					"no reply within %s", req.opts.Timeout))
				return
			}
			window, err := c.ch.ReadLines(baseline, req.opts.MaxLines)
			if err != nil {
				req.finish(nil, domain.NewRequestError(domain.KindNotAvailable, req.command,
					"failed to read scrollback").WithCause(err))
				return
			}
			if reply, ok := gdb.ReplyBoundary(req.command, window); ok {
				c.log.Debugw("reply recognized", "command", req.command, "lines", len(reply))
				req.finish(reply, nil)
				return
			}
		}
	}
}

// liveTickerCount is exported to tests only; it proves no ticker outlives
// its request.
func (c *Correlator) liveTickerCount() int64 {
	return c.liveTickers.Load()
}
