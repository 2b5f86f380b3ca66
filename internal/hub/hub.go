// Package hub fans rendered views out to presentation subscribers.
package hub

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/DoyleJ11/wuwa-draft-client/internal/render"
)

type HubMsg interface{ isHubMsg() }

// Frame is one published view. Seq increases only when the rendered bytes
// change.
type Frame struct {
	Seq  int
	View render.View
	JSON []byte
}

type Subscribe struct {
	ID     string
	Outbox chan Frame
}

type Unsubscribe struct {
	ID string
}

type Publish struct {
	View render.View
}

type Stats struct {
	Subscribers int
	Seq         int
}

type GetStats struct {
	Reply chan Stats
}

type Latest struct {
	Reply chan Frame
}

type ShutdownHub struct{}

func (Subscribe) isHubMsg()   {}
func (Unsubscribe) isHubMsg() {}
func (Publish) isHubMsg()     {}
func (GetStats) isHubMsg()    {}
func (Latest) isHubMsg()      {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	subs   map[string]chan Frame
	last   Frame
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		subs:   make(map[string]chan Frame),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed after the hub has closed every subscriber outbox.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Send posts m unless the hub has stopped.
func (h *Hub) Send(m HubMsg) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				h.subs[msg.ID] = msg.Outbox
				// New subscribers start from the current view.
				if h.last.JSON != nil {
					h.deliver(msg.ID, msg.Outbox, h.last)
				}

			case Unsubscribe:
				if ch, ok := h.subs[msg.ID]; ok {
					close(ch)
					delete(h.subs, msg.ID)
				}

			case Publish:
				payload, err := json.Marshal(msg.View)
				if err != nil {
					h.log.Error("encode view", zap.Error(err))
					break
				}
				if bytes.Equal(payload, h.last.JSON) {
					break
				}
				h.last = Frame{Seq: h.last.Seq + 1, View: msg.View, JSON: payload}
				for id, ch := range h.subs {
					h.deliver(id, ch, h.last)
				}

			case GetStats:
				msg.Reply <- Stats{Subscribers: len(h.subs), Seq: h.last.Seq}

			case Latest:
				msg.Reply <- h.last

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// deliver never blocks: a subscriber whose outbox is full is dropped.
func (h *Hub) deliver(id string, ch chan Frame, f Frame) {
	select {
	case ch <- f:
	default:
		h.log.Warn("dropping slow subscriber", zap.String("subscriber", id))
		close(ch)
		delete(h.subs, id)
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
	h.cancel()
}
