// Package transport is the bidirectional message channel to the draft
// service: one websocket, JSON text frames, ordered delivery.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

var (
	ErrNotOpen      = errors.New("channel not open")
	ErrClosed       = errors.New("channel closed")
	ErrBackpressure = errors.New("outbox full")
	ErrDial         = errors.New("dial failed")
)

type State int

const (
	StateIdle State = iota
	StateOpening
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type EventKind int

const (
	EventOpen EventKind = iota + 1
	EventMessage
	EventClosed
)

// Event is delivered to the Sink. Channel identifies which channel produced
// it so a consumer can ignore events from a channel it already replaced.
type Event struct {
	Channel string
	Kind    EventKind
	Data    []byte
	// Err and Clean are set on EventClosed. Err is nil for a clean close.
	Err   error
	Clean bool
}

// Sink receives every event of a channel in order. It is called from the
// channel's goroutines and must not call back into the channel synchronously.
type Sink func(Event)

type Option func(*Channel)

func WithDialTimeout(d time.Duration) Option {
	return func(c *Channel) { c.dialTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Channel) { c.writeTimeout = d }
}

// WithKeepalive sends a keepalive frame every d while open. Zero disables it.
func WithKeepalive(d time.Duration) Option {
	return func(c *Channel) { c.keepalive = d }
}

func WithOutboxSize(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.outboxSize = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Channel) {
		if log != nil {
			c.log = log
		}
	}
}

type Channel struct {
	id   string
	url  string
	sink Sink
	log  *zap.Logger

	dialTimeout  time.Duration
	writeTimeout time.Duration
	keepalive    time.Duration
	outboxSize   int

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	outbox chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

var keepaliveFrame = []byte(`{"action":"keepalive"}`)

func New(url string, sink Sink, opts ...Option) *Channel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		id:           uuid.NewString(),
		url:          url,
		sink:         sink,
		log:          zap.NewNop(),
		dialTimeout:  10 * time.Second,
		writeTimeout: 3 * time.Second,
		keepalive:    30 * time.Second,
		outboxSize:   32,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.outbox = make(chan []byte, c.outboxSize)
	c.log = c.log.With(zap.String("channel", c.id))
	return c
}

func (c *Channel) ID() string { return c.id }

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the closed event has been delivered.
func (c *Channel) Done() <-chan struct{} { return c.done }

// Open dials the service. It is a no-op while opening or open. A failed dial
// closes the channel and delivers EventClosed.
func (c *Channel) Open(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateOpening, StateOpen:
		c.mu.Unlock()
		return nil
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = StateOpening
	c.mu.Unlock()

	dctx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	conn, _, err := websocket.Dial(dctx, c.url, nil)
	cancel()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrDial, err)
		c.log.Warn("dial failed", zap.String("url", c.url), zap.Error(err))
		c.shutdown(err, false, false)
		return err
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		return ErrClosed
	}
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	c.log.Debug("channel open", zap.String("url", c.url))
	c.sink(Event{Channel: c.id, Kind: EventOpen})

	go c.readLoop(conn)
	go c.writeLoop(conn)
	return nil
}

// Send serializes v and queues it for writing. It never blocks.
func (c *Channel) Send(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateOpen:
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotOpen
	}

	select {
	case c.outbox <- payload:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close closes the channel. The closed event is delivered asynchronously so
// Close may be called from the goroutine that consumes the sink.
func (c *Channel) Close() {
	c.shutdown(nil, true, true)
}

func (c *Channel) shutdown(cause error, clean, async bool) {
	c.once.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		conn := c.conn
		c.mu.Unlock()

		finish := func() {
			if conn != nil {
				code := websocket.StatusNormalClosure
				if !clean {
					code = websocket.StatusInternalError
				}
				_ = conn.Close(code, "")
			}
			c.cancel()
			c.log.Debug("channel closed", zap.Bool("clean", clean), zap.Error(cause))
			c.sink(Event{Channel: c.id, Kind: EventClosed, Err: cause, Clean: clean})
			close(c.done)
		}
		if async {
			go finish()
			return
		}
		finish()
	})
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		typ, data, err := conn.Read(c.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				c.shutdown(nil, true, false)
			default:
				c.shutdown(err, false, false)
			}
			return
		}
		if typ != websocket.MessageText {
			c.log.Debug("ignoring binary frame", zap.Int("bytes", len(data)))
			continue
		}
		c.sink(Event{Channel: c.id, Kind: EventMessage, Data: data})
	}
}

func (c *Channel) writeLoop(conn *websocket.Conn) {
	var tick <-chan time.Time
	if c.keepalive > 0 {
		t := time.NewTicker(c.keepalive)
		defer t.Stop()
		tick = t.C
	}

	for {
		var payload []byte
		select {
		case <-c.ctx.Done():
			return
		case payload = <-c.outbox:
		case <-tick:
			payload = keepaliveFrame
		}

		ctx, cancel := context.WithTimeout(c.ctx, c.writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			if c.ctx.Err() == nil {
				c.shutdown(fmt.Errorf("write: %w", err), false, false)
			}
			return
		}
	}
}
