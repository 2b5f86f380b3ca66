package session

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/wuwa-draft-client/internal/draft"
	"github.com/DoyleJ11/wuwa-draft-client/internal/metrics"
	"github.com/DoyleJ11/wuwa-draft-client/internal/render"
	"github.com/DoyleJ11/wuwa-draft-client/internal/timer"
	"github.com/DoyleJ11/wuwa-draft-client/internal/transport"
	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

func (s *Session) handleEvent(ev transport.Event) {
	if s.ch == nil || ev.Channel != s.ch.ID() {
		s.log.Debug("event from replaced channel", zap.String("channel", ev.Channel))
		return
	}

	switch ev.Kind {
	case transport.EventOpen:
		s.chState = chanOpen
		s.metrics.TransportOpened()
		queued := s.queued
		s.queued = nil
		for _, in := range queued {
			_ = s.send(in)
		}

	case transport.EventMessage:
		s.onMessage(ev.Data)

	case transport.EventClosed:
		if ev.Err != nil {
			s.log.Warn("channel closed", zap.Error(ev.Err))
		} else {
			s.log.Info("channel closed")
		}
		wasOpen := s.chState == chanOpen
		s.ch = nil
		s.chState = chanNone
		s.queued = nil
		if wasOpen {
			s.metrics.TransportClosed()
		}
		s.clearLobby()
		s.setScreen(render.ScreenWelcome)
		s.notice = closedNotice
	}
}

func (s *Session) onMessage(data []byte) {
	env, err := types.Decode(data)
	if err != nil {
		s.log.Warn("dropping malformed message", zap.Error(err), zap.ByteString("raw", truncate(data, 256)))
		s.metrics.MessageDropped(metrics.DropMalformed)
		return
	}

	switch env.Type {
	case types.MsgLobbyCreated, types.MsgLobbyJoined:
		s.clearLobby()
		s.identity = render.Identity{
			LobbyID: env.LobbyID,
			Slot:    env.AssignedSlot,
			Host:    env.IsHost,
			Name:    s.name,
		}
		s.notice = ""
		s.setScreen(render.ScreenWaiting)

	case types.MsgLobbyStateUpdate:
		s.reconcile(env.Snapshot)

	case types.MsgSlotAssigned:
		if !s.identity.Joined() {
			s.metrics.MessageDropped(metrics.DropStale)
			return
		}
		if env.LobbyID != "" && env.LobbyID != s.identity.LobbyID {
			s.metrics.MessageDropped(metrics.DropStale)
			return
		}
		s.identity.Slot = env.AssignedSlot
		if s.screen == render.ScreenDraft {
			s.armCountdown()
		}

	case types.MsgKicked, types.MsgLobbyDeleted:
		if env.LobbyID != "" && env.LobbyID != s.identity.LobbyID {
			s.metrics.MessageDropped(metrics.DropStale)
			return
		}
		s.clearLobby()
		s.setScreen(render.ScreenWelcome)
		s.notice = env.Message
		if s.notice == "" {
			if env.Type == types.MsgKicked {
				s.notice = "You were removed from the lobby."
			} else {
				s.notice = "The lobby was deleted."
			}
		}

	case types.MsgError:
		s.log.Info("service error", zap.String("message", env.Message))
		s.notice = env.Message
		s.clearPending()

	case types.MsgEcho:
		s.log.Debug("echo", zap.ByteString("raw", truncate(data, 256)))

	default:
		s.log.Info("ignoring unknown message type", zap.String("type", string(env.Type)))
		s.metrics.MessageDropped(metrics.DropUnknown)
	}
}

// reconcile applies an authoritative snapshot. It replaces the stored one
// wholesale; applying the same snapshot twice changes nothing.
func (s *Session) reconcile(snap *types.DraftSnapshot) {
	if snap == nil {
		return
	}
	if !s.identity.Joined() || snap.LobbyID != s.identity.LobbyID {
		s.log.Debug("dropping snapshot for another lobby",
			zap.String("lobby", snap.LobbyID), zap.String("current", s.identity.LobbyID))
		s.metrics.MessageDropped(metrics.DropStale)
		return
	}
	if !draft.Consistent(snap) {
		s.log.Warn("snapshot lists an item as both taken and available", zap.String("lobby", snap.LobbyID))
	}

	s.snapshot = snap
	s.clearPending()
	s.metrics.SnapshotApplied()

	switch {
	case draft.Started(snap):
		s.setScreen(render.ScreenDraft)
	case s.screen == render.ScreenScore:
	default:
		s.setScreen(render.ScreenWaiting)
	}

	s.armCountdown()
}

// armCountdown runs the countdown for the stored snapshot's turn while the
// draft screen is shown, and stops it otherwise.
func (s *Session) armCountdown() {
	snap := s.snapshot
	if snap == nil || snap.TurnExpiresAt == nil || draft.Complete(snap) || s.screen != render.ScreenDraft {
		s.countdown.Stop()
		return
	}
	s.countdown.Start(timer.Arm{
		LobbyID: snap.LobbyID,
		Expiry:  *snap.TurnExpiresAt,
		Owner:   snap.CurrentTurn,
		Phase:   snap.CurrentPhase,
		Local:   s.identity.Slot,
	})
}

func (s *Session) handleTick(t timer.Tick) {
	_, intent := s.countdown.Tick(t)
	if intent == nil {
		return
	}
	if s.identity.Slot != intent.ExpectedTurn {
		s.log.Debug("turn expired for a slot no longer held",
			zap.String("turn", string(intent.ExpectedTurn)), zap.String("slot", string(s.identity.Slot)))
		return
	}
	s.log.Info("turn expired locally",
		zap.String("phase", intent.ExpectedPhase), zap.String("turn", string(intent.ExpectedTurn)))
	if err := s.send(*intent); err == nil {
		s.metrics.TimeoutEmitted()
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
