// Package timer derives the turn countdown from the snapshot's absolute
// expiry and decides when the local client owes the service a turnTimeout.
//
// A Countdown is driven from a single goroutine (the session loop). While
// running it owns one ticker goroutine that posts Tick values tagged with the
// countdown's generation; ticks from an older generation are ignored, so a
// superseded countdown can never emit an intent.
package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

// Placeholder is shown while no countdown runs.
const Placeholder = "--:--"

type Display struct {
	Text    string `json:"text"`
	Low     bool   `json:"low"`
	Running bool   `json:"running"`
}

func Idle() Display { return Display{Text: Placeholder} }

// Arm describes the turn a countdown belongs to.
type Arm struct {
	LobbyID string
	Expiry  time.Time
	Owner   types.Slot
	Phase   string
	// Local is the slot this client held when the countdown started.
	Local types.Slot
}

type key struct {
	lobby  string
	expiry int64
	owner  types.Slot
	phase  string
	local  types.Slot
}

func keyOf(a Arm) key {
	return key{lobby: a.LobbyID, expiry: a.Expiry.UnixMilli(), owner: a.Owner, phase: a.Phase, local: a.Local}
}

// Tick is what the ticker goroutine posts.
type Tick struct {
	Gen uint64
}

type run struct {
	gen    uint64
	arm    Arm
	key    key
	cancel context.CancelFunc
}

type Countdown struct {
	now      func() time.Time
	interval time.Duration
	low      time.Duration
	post     func(Tick)

	gen     uint64
	cur     *run
	expired *key
	display Display
}

type Option func(*Countdown)

func WithClock(now func() time.Time) Option {
	return func(c *Countdown) {
		if now != nil {
			c.now = now
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLowThreshold sets when the display switches to low styling.
func WithLowThreshold(d time.Duration) Option {
	return func(c *Countdown) {
		if d >= 0 {
			c.low = d
		}
	}
}

// New returns an idle countdown. post receives ticks from the ticker
// goroutine; with a nil post no goroutine is started and the caller drives
// Tick itself.
func New(post func(Tick), opts ...Option) *Countdown {
	c := &Countdown{
		now:      time.Now,
		interval: time.Second,
		low:      10 * time.Second,
		post:     post,
		display:  Idle(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start arms a countdown for a, cancelling any running one first. Arming the
// turn that is already running, or the turn whose countdown already expired,
// is a no-op. It reports whether a new countdown started.
func (c *Countdown) Start(a Arm) bool {
	k := keyOf(a)
	if c.cur != nil && c.cur.key == k {
		return false
	}
	if c.expired != nil && *c.expired == k {
		return false
	}

	c.cancel()
	c.gen++
	ctx, cancel := context.WithCancel(context.Background())
	c.cur = &run{gen: c.gen, arm: a, key: k, cancel: cancel}
	c.display = c.render(a.Expiry.Sub(c.now()))

	if c.post != nil {
		go c.pump(ctx, c.gen)
	}
	return true
}

// Stop cancels the running countdown and resets the display.
func (c *Countdown) Stop() {
	c.cancel()
	c.display = Idle()
}

// Reset stops and forgets the last expired turn, for a new lobby lifetime.
func (c *Countdown) Reset() {
	c.Stop()
	c.expired = nil
}

// Tick advances the countdown. On expiry it goes idle and returns a
// turnTimeout intent iff the local slot owned the turn when this countdown
// started. Ticks from other generations change nothing.
func (c *Countdown) Tick(t Tick) (Display, *types.Intent) {
	if c.cur == nil || t.Gen != c.cur.gen {
		return c.display, nil
	}

	remaining := c.cur.arm.Expiry.Sub(c.now())
	if remaining > 0 {
		c.display = c.render(remaining)
		return c.display, nil
	}

	arm, k := c.cur.arm, c.cur.key
	c.cancel()
	c.expired = &k
	c.display = Display{Text: "00:00", Low: true}

	if !arm.Local.Valid() || arm.Local != arm.Owner {
		return c.display, nil
	}
	return c.display, &types.Intent{
		Action:        types.ActionTurnTimeout,
		LobbyID:       arm.LobbyID,
		ExpectedPhase: arm.Phase,
		ExpectedTurn:  arm.Owner,
	}
}

func (c *Countdown) Display() Display { return c.display }

func (c *Countdown) Running() bool { return c.cur != nil }

// Gen is the generation of the newest countdown.
func (c *Countdown) Gen() uint64 { return c.gen }

func (c *Countdown) cancel() {
	if c.cur != nil {
		c.cur.cancel()
		c.cur = nil
	}
}

func (c *Countdown) render(remaining time.Duration) Display {
	if remaining <= 0 {
		return Display{Text: "00:00", Low: true, Running: true}
	}
	secs := int((remaining + time.Second - 1) / time.Second)
	return Display{
		Text:    fmt.Sprintf("%02d:%02d", secs/60, secs%60),
		Low:     remaining <= c.low,
		Running: true,
	}
}

func (c *Countdown) pump(ctx context.Context, gen uint64) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			select {
			case <-ctx.Done():
				return
			default:
			}
			c.post(Tick{Gen: gen})
		}
	}
}
