package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/DoyleJ11/wuwa-draft-client/internal/hub"
	"github.com/DoyleJ11/wuwa-draft-client/internal/session"
)

const writeTimeout = 3 * time.Second

type viewFrame struct {
	Type string          `json:"type"`
	Seq  int             `json:"seq"`
	View json.RawMessage `json:"view"`
}

type actionResult struct {
	Type  string       `json:"type"`
	Kind  session.Kind `json:"kind,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Stream pushes every changed view to the client and runs actions it sends.
func Stream(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: d.OriginPatterns})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		id := uuid.NewString()
		log := d.Log.With(zap.String("subscriber", id))
		out := make(chan hub.Frame, 8)
		if !d.Hub.Send(hub.Subscribe{ID: id, Outbox: out}) {
			conn.Close(websocket.StatusTryAgainLater, "shutting down")
			return
		}
		defer d.Hub.Send(hub.Unsubscribe{ID: id})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine
		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case f, ok := <-out:
					if !ok {
						// Dropped by the hub: too slow or shutting down.
						conn.Close(websocket.StatusTryAgainLater, "view stream closed")
						return
					}
					payload, _ := json.Marshal(viewFrame{Type: "view", Seq: f.Seq, View: f.JSON})
					if err := write(ctx, conn, payload); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("view stream read", zap.Error(err))
				}
				return
			}

			var a session.Action
			if err := json.Unmarshal(data, &a); err != nil {
				_ = write(ctx, conn, []byte(`{"type":"error","error":"bad json"}`))
				continue
			}
			res := actionResult{Type: "result", Kind: a.Kind}
			actx, acancel := context.WithTimeout(ctx, requestTimeout)
			if err := d.Session.Do(actx, a); err != nil {
				res.Error = err.Error()
			}
			acancel()
			payload, _ := json.Marshal(res)
			if err := write(ctx, conn, payload); err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
