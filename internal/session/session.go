// Package session owns the client's view of one draft lobby. A single
// goroutine applies user actions, inbound service messages, timer ticks and
// pending-control expiry in arrival order, then publishes the rendered view.
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/hub"
	"github.com/DoyleJ11/wuwa-draft-client/internal/metrics"
	"github.com/DoyleJ11/wuwa-draft-client/internal/render"
	"github.com/DoyleJ11/wuwa-draft-client/internal/scoring"
	"github.com/DoyleJ11/wuwa-draft-client/internal/store"
	"github.com/DoyleJ11/wuwa-draft-client/internal/timer"
	"github.com/DoyleJ11/wuwa-draft-client/internal/transport"
	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

var (
	ErrStopped           = errors.New("session stopped")
	ErrNotConnected      = errors.New("not connected to the draft service")
	ErrNoLobby           = errors.New("not in a lobby")
	ErrNotHost           = errors.New("only the host can do that")
	ErrNotPlayer         = errors.New("no player slot assigned")
	ErrNameRequired      = errors.New("name is required")
	ErrLobbyIDRequired   = errors.New("lobby id is required")
	ErrInvalidSlot       = errors.New("invalid player slot")
	ErrInvalidScreen     = errors.New("invalid screen")
	ErrInvalidLevel      = errors.New("invalid ownership level")
	ErrUnknownAction     = errors.New("unknown action")
	ErrNothingSelectable = errors.New("nothing selectable")
)

// Channel is the transport the session talks through.
type Channel interface {
	ID() string
	Open(ctx context.Context) error
	Send(v any) error
	Close()
}

// Dialer builds a fresh, unopened channel delivering its events to sink.
type Dialer func(sink transport.Sink) Channel

type chanState int

const (
	chanNone chanState = iota
	chanOpening
	chanOpen
)

const closedNotice = "Connection closed. You may need to rejoin."

type Session struct {
	inbox   chan Msg
	dial    Dialer
	cat     *catalog.Catalog
	hub     *hub.Hub
	ledger  *scoring.Ledger
	metrics *metrics.Manager
	log     *zap.Logger

	actionTimeout time.Duration
	banSlots      int
	timerOpts     []timer.Option
	warning       string

	identity  render.Identity
	name      string
	snapshot  *types.DraftSnapshot
	screen    render.Screen
	filters   render.Filters
	pending   map[string]uint64
	pendGen   uint64
	notice    string
	ownership scoring.Ownership
	submitted bool
	countdown *timer.Countdown

	ch      Channel
	chState chanState
	queued  []types.Intent

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Session)

func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Session) { s.metrics = m }
}

func WithLedger(l *scoring.Ledger) Option {
	return func(s *Session) { s.ledger = l }
}

// WithActionTimeout sets how long a clicked control stays disabled without
// a new snapshot.
func WithActionTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.actionTimeout = d
		}
	}
}

func WithBanSlots(n int) Option {
	return func(s *Session) { s.banSlots = n }
}

func WithTimerOptions(opts ...timer.Option) Option {
	return func(s *Session) { s.timerOpts = append(s.timerOpts, opts...) }
}

// WithWarning shows a persistent warning, e.g. a catalog fallback.
func WithWarning(w string) Option {
	return func(s *Session) { s.warning = w }
}

func New(parent context.Context, dial Dialer, cat *catalog.Catalog, h *hub.Hub, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(parent)
	if cat == nil {
		cat = catalog.Sentinel()
	}
	s := &Session{
		inbox:         make(chan Msg, 64),
		dial:          dial,
		cat:           cat,
		hub:           h,
		log:           zap.NewNop(),
		actionTimeout: 5 * time.Second,
		screen:        render.ScreenWelcome,
		pending:       map[string]uint64{},
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ledger == nil {
		s.ledger = scoring.NewLedger(store.NewMemory(), cat, s.log)
	}
	s.ownership = scoring.Defaults(cat)
	s.countdown = timer.New(func(t timer.Tick) { s.post(timerFired{tick: t}) }, s.timerOpts...)

	s.publish()
	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) Done() <-chan struct{} { return s.done }

// Do runs a and waits for its result.
func (s *Session) Do(ctx context.Context, a Action) error {
	reply := make(chan error, 1)
	if !s.postCtx(ctx, Do{Action: a, Reply: reply}) {
		return ErrStopped
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStopped
	}
}

// View renders the current state.
func (s *Session) View(ctx context.Context) (render.View, error) {
	reply := make(chan render.View, 1)
	if !s.postCtx(ctx, GetView{Reply: reply}) {
		return render.View{}, ErrStopped
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return render.View{}, ctx.Err()
	case <-s.done:
		return render.View{}, ErrStopped
	}
}

func (s *Session) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	if !s.postCtx(ctx, GetStats{Reply: reply}) {
		return Stats{}, ErrStopped
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	case <-s.done:
		return Stats{}, ErrStopped
	}
}

func (s *Session) post(m Msg) bool { return s.postCtx(context.Background(), m) }

func (s *Session) postCtx(ctx context.Context, m Msg) bool {
	select {
	case s.inbox <- m:
		return true
	case <-s.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Do:
				err := s.handleAction(msg.Action)
				if err != nil {
					s.log.Debug("action rejected", zap.String("kind", string(msg.Action.Kind)), zap.Error(err))
				}
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case GetView:
				msg.Reply <- s.render()
				continue

			case GetStats:
				msg.Reply <- Stats{
					Connected:    s.chState == chanOpen,
					Lobby:        s.identity.LobbyID,
					Screen:       string(s.screen),
					TimerRunning: s.countdown.Running(),
					TimerGen:     s.countdown.Gen(),
					Pending:      len(s.pending),
				}
				continue

			case fromTransport:
				s.handleEvent(msg.ev)

			case timerFired:
				s.handleTick(msg.tick)

			case pendingExpired:
				if s.pending[msg.key] != msg.gen {
					continue
				}
				delete(s.pending, msg.key)

			case Shutdown:
				s.shutdown()
				return
			}
			s.publish()
		}
	}
}

func (s *Session) shutdown() {
	s.countdown.Stop()
	if s.ch != nil {
		s.ch.Close()
		s.ch = nil
	}
	s.cancel()
}

func (s *Session) render() render.View {
	return render.Render(render.Input{
		Screen:    s.screen,
		Identity:  s.identity,
		Snapshot:  s.snapshot,
		Catalog:   s.cat,
		Filters:   s.filters,
		Pending:   s.pendingSet(),
		Timer:     s.countdown.Display(),
		Notice:    s.notice,
		Warning:   s.warning,
		BanSlots:  s.banSlots,
		Ownership: s.ownership,
		Submitted: s.submitted,
	})
}

func (s *Session) publish() {
	if s.hub == nil {
		return
	}
	s.hub.Send(hub.Publish{View: s.render()})
}

func (s *Session) pendingSet() map[string]bool {
	if len(s.pending) == 0 {
		return nil
	}
	out := make(map[string]bool, len(s.pending))
	for k := range s.pending {
		out[k] = true
	}
	return out
}

// markPending disables a control until the next snapshot or the action
// timeout, whichever comes first.
func (s *Session) markPending(key string) {
	s.pendGen++
	gen := s.pendGen
	s.pending[key] = gen
	time.AfterFunc(s.actionTimeout, func() { s.post(pendingExpired{key: key, gen: gen}) })
}

func (s *Session) clearPending() {
	clear(s.pending)
}

// clearLobby forgets everything tied to the current lobby lifetime.
func (s *Session) clearLobby() {
	s.identity = render.Identity{}
	s.snapshot = nil
	s.submitted = false
	s.clearPending()
	s.countdown.Reset()
}

func (s *Session) setScreen(next render.Screen) {
	prev := s.screen
	if next == render.ScreenScore && prev != render.ScreenScore {
		s.ownership = s.ledger.Prefill(s.ctx)
	}
	s.screen = next

	switch {
	case prev == render.ScreenDraft && next != render.ScreenDraft:
		s.countdown.Stop()
	case prev != render.ScreenDraft && next == render.ScreenDraft:
		s.armCountdown()
	}
}
