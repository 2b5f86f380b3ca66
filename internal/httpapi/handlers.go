package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/draft"
	"github.com/DoyleJ11/wuwa-draft-client/internal/session"
)

const requestTimeout = 3 * time.Second

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Healthz(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		st, err := s.Stats(ctx)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func GetView(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		v, err := s.View(ctx)
		if err != nil {
			writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func PostAction(s Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a session.Action
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad json"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		if err := s.Do(ctx, a); err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				log.Warn("action failed", zap.String("kind", string(a.Kind)), zap.Error(err))
			}
			writeJSON(w, status, errorBody{Error: err.Error()})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// statusFor maps session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNameRequired),
		errors.Is(err, session.ErrLobbyIDRequired),
		errors.Is(err, session.ErrInvalidSlot),
		errors.Is(err, session.ErrInvalidScreen),
		errors.Is(err, session.ErrInvalidLevel),
		errors.Is(err, session.ErrUnknownAction),
		errors.Is(err, catalog.ErrUnknownItem):
		return http.StatusBadRequest

	case errors.Is(err, session.ErrNoLobby),
		errors.Is(err, session.ErrNotHost),
		errors.Is(err, session.ErrNotPlayer),
		errors.Is(err, session.ErrNothingSelectable),
		errors.Is(err, draft.ErrNotYourTurn),
		errors.Is(err, draft.ErrNotSelectable),
		errors.Is(err, draft.ErrAlreadyTaken),
		errors.Is(err, draft.ErrNoSelection):
		return http.StatusConflict

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, session.ErrStopped),
		errors.Is(err, session.ErrNotConnected):
		return http.StatusServiceUnavailable

	default:
		return http.StatusBadGateway
	}
}
