package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gridstream/synchro-go/pkg/log"
)

// Client settings.
const (
	// Continuous is the ReceiveInterval of a client that reads the whole
	// resource in one pass as soon as it connects.
	Continuous time.Duration = -1

	// UnlimitedAttempts retries the open until it succeeds or is cancelled.
	UnlimitedAttempts = -1

	// DefaultChunkSize is the number of bytes read per chunk.
	DefaultChunkSize = 4096
)

// Client reads a resource in chunks and reports its lifecycle through
// callbacks. Lifecycle operations may be called from any goroutine.
type Client struct {
	id     uuid.UUID
	opener Opener

	// opMu serializes Connect, CancelConnect, Disconnect and Close.
	opMu sync.Mutex

	// mu guards everything below. Callbacks are never run with mu held.
	mu sync.Mutex

	state    State
	closed   bool
	attempts int
	gen      uint64

	connStr         string
	source          string
	receiveOnDemand bool
	receiveInterval time.Duration
	startingOffset  int64
	maxAttempts     int
	chunkSize       int
	backoff         BackoffConfig

	logger  *slog.Logger
	capture log.Logger
	rawSink io.Writer

	// Open loop
	connectCancel context.CancelFunc
	connectDone   chan struct{}

	// Receive worker
	recvCancel  context.CancelFunc
	recvDone    chan struct{}
	triggers    chan struct{}
	reconfigure chan struct{}
	passing     atomic.Bool

	cb callbacks

	// Number of callbacks currently running.
	inCallback atomic.Int32
}

// callbacks holds the notification handlers.
type callbacks struct {
	onStateChange        func(oldState, newState State)
	onConnecting         func(attempt int)
	onConnected          func()
	onConnectingFailed   func(attempt int, err error)
	onConnectingCanceled func()
	onDisconnected       func()
	onDataReceived       func(Chunk)
	onEndOfStream        func()
	onReadFault          func(err error)
}

// NewClient creates an idle client. A nil opener opens local files.
func NewClient(opener Opener) *Client {
	if opener == nil {
		opener = FileOpener{}
	}
	c := &Client{
		id:              uuid.New(),
		opener:          opener,
		state:           StateIdle,
		receiveInterval: Continuous,
		maxAttempts:     UnlimitedAttempts,
		chunkSize:       DefaultChunkSize,
		backoff:         DefaultBackoffConfig(),
		capture:         log.NoopLogger{},
	}
	c.logger = slog.Default().With("stream_id", c.ID())
	return c
}

// ID returns the stream identity tagged onto chunks and capture events.
func (c *Client) ID() string { return c.id.String() }

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected returns true if the resource is open.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Attempts returns the number of failed attempts of the current or last
// connection cycle.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Source returns the resource of the last accepted connection string.
func (c *Client) Source() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// SetLogger sets the operational logger. Nil restores slog.Default().
func (c *Client) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger.With("stream_id", c.ID())
}

// SetCapture sets the protocol capture logger. Nil disables capture.
func (c *Client) SetCapture(capture log.Logger) {
	if capture == nil {
		capture = log.NoopLogger{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capture = capture
}

// SetRawSink routes chunks to w instead of OnDataReceived. The slice passed
// to Write is reused and only valid during the call. Nil restores callback
// delivery.
func (c *Client) SetRawSink(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rawSink = w
}

// SetConnectionString stores the connection string parsed by the next
// Connect.
func (c *Client) SetConnectionString(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connStr = s
}

// ConnectionString returns the stored connection string.
func (c *Client) ConnectionString() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connStr
}

// SetReceiveOnDemand selects on-demand reception. Enabling it sets the
// receive interval to Continuous.
func (c *Client) SetReceiveOnDemand(onDemand bool) {
	c.mu.Lock()
	c.receiveOnDemand = onDemand
	if onDemand {
		c.receiveInterval = Continuous
	}
	c.mu.Unlock()
	c.signalReconfigure()
}

// ReceiveOnDemand reports whether on-demand reception is selected.
func (c *Client) ReceiveOnDemand() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receiveOnDemand
}

// SetReceiveInterval sets the delay between interval passes. It must be
// Continuous or positive; a positive interval disables on-demand reception.
func (c *Client) SetReceiveInterval(d time.Duration) error {
	if err := checkReceiveInterval(d); err != nil {
		return err
	}
	c.mu.Lock()
	c.receiveInterval = d
	if d > 0 {
		c.receiveOnDemand = false
	}
	c.mu.Unlock()
	c.signalReconfigure()
	return nil
}

// ReceiveInterval returns the receive interval, or Continuous.
func (c *Client) ReceiveInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receiveInterval
}

// SetStartingOffset sets the resource position reading starts from.
func (c *Client) SetStartingOffset(offset int64) error {
	if err := checkStartingOffset(offset); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startingOffset = offset
	return nil
}

// StartingOffset returns the resource position reading starts from.
func (c *Client) StartingOffset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startingOffset
}

// SetMaxConnectionAttempts limits the open attempts of a connection cycle.
// It must be UnlimitedAttempts or positive.
func (c *Client) SetMaxConnectionAttempts(n int) error {
	if err := checkMaxConnectionAttempts(n); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxAttempts = n
	return nil
}

// MaxConnectionAttempts returns the attempt limit, or UnlimitedAttempts.
func (c *Client) MaxConnectionAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxAttempts
}

// SetChunkSize sets the number of bytes read per chunk. The next pass
// uses the new size.
func (c *Client) SetChunkSize(n int) error {
	if err := checkChunkSize(n); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunkSize = n
	return nil
}

// ChunkSize returns the number of bytes read per chunk.
func (c *Client) ChunkSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chunkSize
}

// SetBackoff sets the delay between connection attempts.
func (c *Client) SetBackoff(cfg BackoffConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backoff = cfg
}

// Connect starts a connection cycle and returns without waiting for it.
//
// Connect parses the connection string, applies its settings and checks
// that the resource exists; those failures are returned. Open failures are
// retried in the background and reported through OnConnectingFailed.
// Connect is a no-op while connecting or connected.
func (c *Client) Connect(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	connStr := c.connStr
	c.mu.Unlock()

	cs, err := ParseConnectionString(connStr)
	if err != nil {
		return err
	}
	if err := cs.apply(c); err != nil {
		return err
	}
	source := cs.Source()

	exists, err := c.opener.Exists(ctx, source)
	if err != nil {
		return &IOError{Op: "stat", Source: source, Err: err}
	}
	if !exists {
		return &ResourceNotFoundError{Source: source}
	}

	// Release the finished loop of the previous cycle.
	c.stopConnectLoop()

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.source = source
	c.attempts = 0
	c.gen++
	plan := connectPlan{
		gen:         c.gen,
		source:      source,
		offset:      c.startingOffset,
		maxAttempts: c.maxAttempts,
		backoff:     c.backoff,
	}
	c.connectCancel = cancel
	c.connectDone = done
	c.mu.Unlock()

	c.transition(StateConnecting, "connect")
	go c.connectLoop(loopCtx, plan, done)
	return nil
}

// CancelConnect cancels an in-progress connection cycle and waits for it
// to stop. The client ends in StateAborted. It is a no-op when not
// connecting. Called while a callback runs, it returns without waiting.
func (c *Client) CancelConnect() {
	if c.inCallback.Load() > 0 {
		c.detach("", false)
		return
	}
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.stopConnectLoop()
}

// Disconnect cancels any connection cycle, waits for an in-flight pass to
// finish and closes the resource. It is a no-op when not connected.
// Called while a callback runs, it stops further reads and returns; the
// transition to StateDisconnected follows on another goroutine.
func (c *Client) Disconnect() {
	if c.inCallback.Load() > 0 {
		c.detach("disconnect", true)
		return
	}
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.stopConnectLoop()
	c.teardown(0, "disconnect")
}

// Close disconnects and releases the client. Later Connect calls return
// ErrClosed.
func (c *Client) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.stopConnectLoop()
	c.teardown(0, "close")
	return nil
}

// ReceiveData starts a one-chunk pass. It only has an effect when the
// client is connected, on demand, and no pass is running, and reports
// whether a pass was started.
func (c *Client) ReceiveData() bool {
	c.mu.Lock()
	ready := c.state == StateConnected && c.receiveOnDemand
	triggers := c.triggers
	c.mu.Unlock()

	if !ready || triggers == nil || !c.passing.CompareAndSwap(false, true) {
		return false
	}
	select {
	case triggers <- struct{}{}:
	default:
		c.passing.Store(false)
		return false
	}
	c.record(log.Event{
		Layer:    log.LayerClient,
		Category: log.CategoryControl,
		Control:  &log.ControlEvent{Type: log.ControlReceive},
	})
	return true
}

// OnStateChange sets a callback for state transitions.
func (c *Client) OnStateChange(fn func(oldState, newState State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onStateChange = fn
}

// OnConnecting sets a callback run before each open attempt.
func (c *Client) OnConnecting(fn func(attempt int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onConnecting = fn
}

// OnConnected sets a callback for an established connection.
func (c *Client) OnConnected(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onConnected = fn
}

// OnConnectingFailed sets a callback for failed open attempts, numbered
// from 1 within a connection cycle.
func (c *Client) OnConnectingFailed(fn func(attempt int, err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onConnectingFailed = fn
}

// OnConnectingCanceled sets a callback for a cancelled connection cycle.
func (c *Client) OnConnectingCanceled(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onConnectingCanceled = fn
}

// OnDisconnected sets a callback for a closed connection.
func (c *Client) OnDisconnected(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onDisconnected = fn
}

// OnDataReceived sets a callback for chunks when no raw sink is set.
func (c *Client) OnDataReceived(fn func(Chunk)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onDataReceived = fn
}

// OnEndOfStream sets a callback for a pass that reached the end of the
// resource.
func (c *Client) OnEndOfStream(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onEndOfStream = fn
}

// OnReadFault sets a callback for read errors. The error is an *IOError.
// The connection is dropped after the callback.
func (c *Client) OnReadFault(fn func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb.onReadFault = fn
}

// connectPlan is the snapshot of settings a connection cycle runs with.
type connectPlan struct {
	gen         uint64
	source      string
	offset      int64
	maxAttempts int
	backoff     BackoffConfig
}

// connectLoop opens the resource, retrying with backoff.
func (c *Client) connectLoop(ctx context.Context, plan connectPlan, done chan struct{}) {
	defer close(done)

	backoff := NewBackoff(plan.backoff)
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			c.connectAborted()
			return
		}

		c.record(log.Event{
			Layer:    log.LayerClient,
			Category: log.CategoryControl,
			Control:  &log.ControlEvent{Type: log.ControlAttempt, Attempt: attempt},
		})
		if fn := c.handlers().onConnecting; fn != nil {
			c.notify(func() { fn(attempt) })
		}

		res, err := c.open(ctx, plan)
		if ctx.Err() != nil {
			if res != nil {
				_ = res.Close()
			}
			c.connectAborted()
			return
		}
		if err == nil {
			c.connected(ctx, plan, res)
			return
		}

		c.mu.Lock()
		c.attempts = attempt
		logger := c.logger
		c.mu.Unlock()

		exhausted := plan.maxAttempts != UnlimitedAttempts && attempt >= plan.maxAttempts
		var delay time.Duration
		attrs := []any{"source", plan.source, "attempt", attempt, "error", err}
		if !exhausted {
			delay = backoff.Next()
			attrs = append(attrs, "retry_in", delay)
		}
		logger.Warn("connection attempt failed", attrs...)
		c.record(log.Event{
			Layer:    log.LayerClient,
			Category: log.CategoryError,
			Error:    &log.ErrorEventData{Layer: log.LayerTransport, Message: err.Error(), Attempt: attempt, Context: "connect"},
		})
		if fn := c.handlers().onConnectingFailed; fn != nil {
			c.notify(func() { fn(attempt, err) })
		}

		if exhausted {
			c.transition(StateIdle, "connection attempts exhausted")
			return
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.connectAborted()
			return
		case <-timer.C:
		}
	}
}

// open opens the resource and seeks to the starting offset.
func (c *Client) open(ctx context.Context, plan connectPlan) (io.ReadSeekCloser, error) {
	res, err := c.opener.Open(ctx, plan.source)
	if err != nil {
		return nil, &IOError{Op: "open", Source: plan.source, Err: err}
	}
	if plan.offset > 0 {
		if _, err := res.Seek(plan.offset, io.SeekStart); err != nil {
			_ = res.Close()
			return nil, &IOError{Op: "seek", Source: plan.source, Err: err}
		}
	}
	return res, nil
}

// connected publishes an open resource and starts the receive worker.
func (c *Client) connected(ctx context.Context, plan connectPlan, res io.ReadSeekCloser) {
	recvCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		cancel()
		_ = res.Close()
		c.connectAborted()
		return
	}
	r := &receiver{
		res:    res,
		source: plan.source,
		offset: plan.offset,
	}
	done := make(chan struct{})
	triggers := make(chan struct{}, 1)
	reconfigure := make(chan struct{}, 1)
	c.recvCancel = cancel
	c.recvDone = done
	c.triggers = triggers
	c.reconfigure = reconfigure
	c.passing.Store(false)
	logger := c.logger
	c.mu.Unlock()

	c.transition(StateConnected, "opened")
	logger.Info("stream connected", "source", plan.source, "offset", plan.offset)
	if fn := c.handlers().onConnected; fn != nil {
		c.notify(fn)
	}

	go c.receiveLoop(recvCtx, plan.gen, r, triggers, reconfigure, done)
}

// connectAborted finishes a cancelled connection cycle.
func (c *Client) connectAborted() {
	c.transition(StateAborted, ErrAborted.Error())
	c.record(log.Event{
		Layer:    log.LayerClient,
		Category: log.CategoryControl,
		Control:  &log.ControlEvent{Type: log.ControlCancel},
	})
	if fn := c.handlers().onConnectingCanceled; fn != nil {
		c.notify(fn)
	}
}

// stopConnectLoop cancels the open loop and waits for it to exit.
// Caller must hold opMu.
func (c *Client) stopConnectLoop() {
	c.mu.Lock()
	cancel, done := c.connectCancel, c.connectDone
	c.connectCancel, c.connectDone = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// teardown stops the receive worker and moves a connected client to
// StateDisconnected. A non-zero gen only tears down that connection.
// Caller must hold opMu.
func (c *Client) teardown(gen uint64, reason string) {
	c.mu.Lock()
	if c.state != StateConnected || (gen != 0 && gen != c.gen) {
		c.mu.Unlock()
		return
	}
	cancel, done := c.recvCancel, c.recvDone
	c.recvCancel, c.recvDone = nil, nil
	c.triggers, c.reconfigure = nil, nil
	logger := c.logger
	c.mu.Unlock()

	// The worker closes the resource on exit.
	cancel()
	<-done

	c.transition(StateDisconnected, reason)
	logger.Info("stream disconnected", "reason", reason)
	if fn := c.handlers().onDisconnected; fn != nil {
		c.notify(fn)
	}
}

// detach cancels the connection cycle, and the receive worker when
// disconnect is set, without waiting for them. The wait and the state
// transition run on a new goroutine and only touch the current connection.
func (c *Client) detach(reason string, disconnect bool) {
	c.mu.Lock()
	gen := c.gen
	if c.connectCancel != nil {
		c.connectCancel()
	}
	if disconnect && c.state == StateConnected && c.recvCancel != nil {
		c.recvCancel()
	}
	c.mu.Unlock()

	go func() {
		c.opMu.Lock()
		defer c.opMu.Unlock()

		c.mu.Lock()
		current := c.gen == gen
		c.mu.Unlock()
		if !current {
			return
		}
		c.stopConnectLoop()
		if disconnect {
			c.teardown(gen, reason)
		}
	}()
}

// dropConnection tears down connection gen after a read fault.
func (c *Client) dropConnection(gen uint64) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.teardown(gen, "read fault")
}

// signalReconfigure asks the receive worker to re-read the receive mode.
func (c *Client) signalReconfigure() {
	c.mu.Lock()
	ch := c.reconfigure
	c.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
		// Already pending
	}
}

// receiveMode returns the settings the worker schedules passes with.
func (c *Client) receiveMode() (onDemand bool, interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receiveOnDemand, c.receiveInterval
}

// receiveLoop schedules passes until ctx is cancelled or a read faults.
func (c *Client) receiveLoop(ctx context.Context, gen uint64, r *receiver, triggers, reconfigure <-chan struct{}, done chan struct{}) {
	defer close(done)
	defer r.close()

	var ticker *time.Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	// arm applies the receive mode and reports whether it is continuous.
	arm := func() bool {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		onDemand, interval := c.receiveMode()
		if !onDemand && interval > 0 {
			ticker = time.NewTicker(interval)
			tick = ticker.C
		}
		return !onDemand && interval == Continuous
	}

	// A continuous pass runs once per connection.
	finished := false
	runContinuous := func() bool {
		if finished || !c.passing.CompareAndSwap(false, true) {
			return true
		}
		finished = true
		return c.runPass(ctx, gen, r, 0)
	}

	if arm() && !runContinuous() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-reconfigure:
			if arm() && !runContinuous() {
				return
			}
		case <-tick:
			if c.passing.CompareAndSwap(false, true) && !c.runPass(ctx, gen, r, 1) {
				return
			}
		case <-triggers:
			if !c.runPass(ctx, gen, r, 1) {
				return
			}
		}
	}
}

// runPass reads up to limit chunks, or to the end of the resource when
// limit is zero. It returns false after a read fault. The caller must have
// set passing.
func (c *Client) runPass(ctx context.Context, gen uint64, r *receiver, limit int) bool {
	defer c.passing.Store(false)

	buf := r.buffer(c.ChunkSize())
	for n := 0; limit == 0 || n < limit; n++ {
		if ctx.Err() != nil {
			return true
		}

		read, err := io.ReadFull(r.res, buf)
		if read > 0 {
			c.deliver(r, buf[:read])
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			c.endOfStream(r)
			return true
		default:
			c.readFault(r, err)
			go c.dropConnection(gen)
			return false
		}
	}
	return true
}

// deliver hands one chunk to the raw sink or the data callback.
func (c *Client) deliver(r *receiver, data []byte) {
	r.seq++
	offset := r.offset
	r.offset += int64(len(data))

	c.record(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryData,
		Chunk:    log.NewChunkEvent(r.seq, offset, data),
	})

	c.mu.Lock()
	sink := c.rawSink
	fn := c.cb.onDataReceived
	logger := c.logger
	c.mu.Unlock()

	if sink != nil {
		if _, err := sink.Write(data); err != nil {
			logger.Debug("raw sink write failed", "error", err)
		}
		return
	}
	if fn != nil {
		chunk := Chunk{
			StreamID: c.ID(),
			Source:   r.source,
			Sequence: r.seq,
			Offset:   offset,
			Data:     append([]byte(nil), data...),
		}
		c.notify(func() { fn(chunk) })
	}
}

func (c *Client) endOfStream(r *receiver) {
	c.mu.Lock()
	logger := c.logger
	c.mu.Unlock()

	logger.Debug("end of stream", "source", r.source, "offset", r.offset)
	c.record(log.Event{
		Layer:    log.LayerClient,
		Category: log.CategoryControl,
		Control:  &log.ControlEvent{Type: log.ControlEndOfStream},
	})
	if fn := c.handlers().onEndOfStream; fn != nil {
		c.notify(fn)
	}
}

func (c *Client) readFault(r *receiver, err error) {
	ioErr := &IOError{Op: "read", Source: r.source, Err: err}

	c.mu.Lock()
	logger := c.logger
	c.mu.Unlock()

	logger.Error("read fault", "source", r.source, "offset", r.offset, "error", err)
	c.record(log.Event{
		Layer:    log.LayerClient,
		Category: log.CategoryError,
		Error:    &log.ErrorEventData{Layer: log.LayerTransport, Message: ioErr.Error(), Context: "receive"},
	})
	if fn := c.handlers().onReadFault; fn != nil {
		c.notify(func() { fn(ioErr) })
	}
}

// transition sets the state and reports a change.
func (c *Client) transition(s State, reason string) {
	c.mu.Lock()
	old := c.state
	c.state = s
	fn := c.cb.onStateChange
	logger := c.logger
	c.mu.Unlock()

	if old == s {
		return
	}
	logger.Debug("state change", "old", old.String(), "new", s.String(), "reason", reason)
	c.record(log.Event{
		Layer:       log.LayerClient,
		Category:    log.CategoryState,
		StateChange: &log.StateChangeEvent{OldState: old.String(), NewState: s.String(), Reason: reason},
	})
	if fn != nil {
		c.notify(func() { fn(old, s) })
	}
}

// notify runs a user callback. Disconnect and CancelConnect check the
// count to avoid waiting on the goroutine that called them.
func (c *Client) notify(fn func()) {
	c.inCallback.Add(1)
	defer c.inCallback.Add(-1)
	fn()
}

// handlers returns a snapshot of the callbacks.
func (c *Client) handlers() callbacks {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cb
}

// record sends a capture event tagged with the stream identity.
func (c *Client) record(ev log.Event) {
	c.mu.Lock()
	capture := c.capture
	source := c.source
	c.mu.Unlock()

	if _, ok := capture.(log.NoopLogger); ok {
		return
	}
	ev.Timestamp = time.Now()
	ev.StreamID = c.ID()
	ev.Source = source
	capture.Log(ev)
}

// receiver is the per-connection read state owned by the receive worker.
type receiver struct {
	res    io.ReadSeekCloser
	source string
	offset int64
	seq    uint64
	buf    []byte
}

// buffer returns a reusable read buffer of size n.
func (r *receiver) buffer(n int) []byte {
	if cap(r.buf) < n {
		r.buf = make([]byte, n)
	}
	return r.buf[:n]
}

func (r *receiver) close() {
	_ = r.res.Close()
}
