package timer

import (
	"testing"
	"time"

	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newManual(clock *fakeClock) *Countdown {
	return New(nil, WithClock(clock.Now))
}

func arm(clock *fakeClock, in time.Duration, owner, local types.Slot) Arm {
	return Arm{LobbyID: "L1", Expiry: clock.Now().Add(in), Owner: owner, Phase: types.PhaseBan1, Local: local}
}

func TestCountdown_ExpiryEmitsExactlyOneTimeout(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	c := newManual(clock)

	if !c.Start(arm(clock, 5*time.Second, types.SlotP1, types.SlotP1)) {
		t.Fatalf("first Start should arm")
	}
	if got := c.Display(); got.Text != "00:05" || !got.Low || !got.Running {
		t.Fatalf("initial display: got %+v", got)
	}

	gen := c.Gen()
	intents := 0
	for i := 0; i < 8; i++ {
		clock.Advance(time.Second)
		_, intent := c.Tick(Tick{Gen: gen})
		if intent != nil {
			intents++
			if intent.Action != types.ActionTurnTimeout || intent.ExpectedTurn != types.SlotP1 ||
				intent.ExpectedPhase != types.PhaseBan1 || intent.LobbyID != "L1" {
				t.Fatalf("unexpected intent %+v", intent)
			}
		}
	}
	if intents != 1 {
		t.Fatalf("want exactly one timeout intent, got %d", intents)
	}
	if got := c.Display(); got.Text != "00:00" || !got.Low || got.Running {
		t.Fatalf("after expiry: got %+v", got)
	}
	if c.Running() {
		t.Fatalf("countdown should be idle after expiry")
	}
}

func TestCountdown_NoTimeoutWhenNotOwner(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := newManual(clock)

	c.Start(arm(clock, time.Second, types.SlotP2, types.SlotP1))
	clock.Advance(2 * time.Second)
	if _, intent := c.Tick(Tick{Gen: c.Gen()}); intent != nil {
		t.Fatalf("observer of the opponent's turn must not emit, got %+v", intent)
	}

	c.Start(arm(clock, time.Second, types.SlotP1, types.SlotNone))
	clock.Advance(2 * time.Second)
	if _, intent := c.Tick(Tick{Gen: c.Gen()}); intent != nil {
		t.Fatalf("host observer must not emit, got %+v", intent)
	}
}

func TestCountdown_SupersededTimerNeverFires(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := newManual(clock)

	c.Start(arm(clock, 2*time.Second, types.SlotP1, types.SlotP1))
	first := c.Gen()

	c.Start(arm(clock, 30*time.Second, types.SlotP2, types.SlotP1))
	second := c.Gen()
	if second == first {
		t.Fatalf("new turn should bump the generation")
	}

	clock.Advance(5 * time.Second)
	if _, intent := c.Tick(Tick{Gen: first}); intent != nil {
		t.Fatalf("stale tick emitted %+v", intent)
	}
	if !c.Running() {
		t.Fatalf("second countdown should still run")
	}
	if d, _ := c.Tick(Tick{Gen: second}); d.Text != "00:25" || d.Low {
		t.Fatalf("second countdown display: got %+v", d)
	}
}

func TestCountdown_SameTurnIsIdempotent(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := newManual(clock)

	a := arm(clock, 20*time.Second, types.SlotP1, types.SlotP1)
	c.Start(a)
	gen := c.Gen()

	// Same expiry parsed again into a different *time.Location.
	again := a
	again.Expiry = a.Expiry.In(time.FixedZone("", 0))
	if c.Start(again) {
		t.Fatalf("re-arming the running turn should be a no-op")
	}
	if c.Gen() != gen {
		t.Fatalf("generation changed on duplicate arm")
	}

	clock.Advance(21 * time.Second)
	if _, intent := c.Tick(Tick{Gen: gen}); intent == nil {
		t.Fatalf("expected a timeout")
	}
	if c.Start(a) {
		t.Fatalf("a duplicate snapshot for an expired turn must not re-arm")
	}

	c.Reset()
	if !c.Start(a) {
		t.Fatalf("after Reset the same turn may arm again")
	}
}

func TestCountdown_StopResetsDisplay(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := newManual(clock)

	c.Start(arm(clock, 95*time.Second, types.SlotP1, types.SlotP1))
	if d := c.Display(); d.Text != "01:35" || d.Low {
		t.Fatalf("display: got %+v", d)
	}
	gen := c.Gen()
	c.Stop()
	if d := c.Display(); d != Idle() {
		t.Fatalf("stopped display: got %+v", d)
	}
	clock.Advance(time.Hour)
	if _, intent := c.Tick(Tick{Gen: gen}); intent != nil {
		t.Fatalf("stopped countdown emitted %+v", intent)
	}
}

func TestCountdown_LowThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := New(nil, WithClock(clock.Now), WithLowThreshold(3*time.Second))

	c.Start(arm(clock, 5*time.Second, types.SlotP1, types.SlotP1))
	if c.Display().Low {
		t.Fatalf("5s left with a 3s threshold should not be low")
	}
	clock.Advance(2 * time.Second)
	if d, _ := c.Tick(Tick{Gen: c.Gen()}); !d.Low || d.Text != "00:03" {
		t.Fatalf("3s left: got %+v", d)
	}
}

func TestCountdown_TickerPostsCurrentGeneration(t *testing.T) {
	ticks := make(chan Tick, 16)
	c := New(func(t Tick) { ticks <- t }, WithInterval(10*time.Millisecond))

	c.Start(Arm{Expiry: time.Now().Add(time.Minute), Owner: types.SlotP1, Local: types.SlotP1})
	first := c.Gen()
	select {
	case tk := <-ticks:
		if tk.Gen != first {
			t.Fatalf("tick gen: got %d, want %d", tk.Gen, first)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for tick")
	}

	c.Stop()
	// Drain anything already in flight, then expect silence.
	time.Sleep(30 * time.Millisecond)
	for len(ticks) > 0 {
		<-ticks
	}
	select {
	case tk := <-ticks:
		t.Fatalf("ticker kept running after Stop: %+v", tk)
	case <-time.After(60 * time.Millisecond):
	}
}
