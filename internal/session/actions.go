package session

import (
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/draft"
	"github.com/DoyleJ11/wuwa-draft-client/internal/render"
	"github.com/DoyleJ11/wuwa-draft-client/internal/scoring"
	"github.com/DoyleJ11/wuwa-draft-client/internal/transport"
	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

// NormalizeLobbyID trims and upper-cases a typed lobby id.
func NormalizeLobbyID(id string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(id))
}

func (s *Session) handleAction(a Action) error {
	s.notice = ""

	switch a.Kind {
	case KindConnect:
		s.connect()
		return nil

	case KindDisconnect:
		if s.ch != nil {
			s.ch.Close()
		}
		return nil

	case KindCreate:
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return ErrNameRequired
		}
		s.name = name
		return s.sendOrQueue(types.Intent{
			Action:              types.ActionCreateLobby,
			Name:                name,
			EnableEquilibration: a.EnableEquilibration,
		})

	case KindJoin:
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return ErrNameRequired
		}
		id := NormalizeLobbyID(a.LobbyID)
		if id == "" {
			return ErrLobbyIDRequired
		}
		s.name = name
		return s.sendOrQueue(types.Intent{Action: types.ActionJoinLobby, LobbyID: id, Name: name})

	case KindLeave:
		if !s.identity.Joined() {
			return ErrNoLobby
		}
		err := s.send(types.Intent{Action: types.ActionLeaveLobby, LobbyID: s.identity.LobbyID})
		s.clearLobby()
		s.setScreen(render.ScreenWelcome)
		return err

	case KindDelete:
		return s.hostIntent(types.Intent{Action: types.ActionDeleteLobby})

	case KindKick:
		if !a.Slot.Valid() {
			return ErrInvalidSlot
		}
		return s.hostIntent(types.Intent{Action: types.ActionKickPlayer, PlayerSlot: a.Slot})

	case KindHostJoinSlot:
		if !a.Slot.Valid() {
			return ErrInvalidSlot
		}
		return s.hostIntent(types.Intent{Action: types.ActionHostJoinSlot, PlayerSlot: a.Slot})

	case KindHostLeaveSlot:
		return s.hostIntent(types.Intent{Action: types.ActionHostLeaveSlot})

	case KindStartDraft:
		return s.hostIntent(types.Intent{Action: types.ActionHostStartDraft})

	case KindResetDraft:
		return s.hostIntent(types.Intent{Action: types.ActionResetDraft})

	case KindReady:
		if !s.identity.Joined() {
			return ErrNoLobby
		}
		if !s.identity.Slot.Valid() {
			return ErrNotPlayer
		}
		return s.lobbyIntent(types.Intent{Action: types.ActionPlayerReady})

	case KindSelect:
		return s.selectItem(a.Item)

	case KindRandomize:
		return s.randomize()

	case KindSetFilter:
		if a.Filters == nil {
			s.filters = render.Filters{}
			return nil
		}
		s.filters = *a.Filters
		return nil

	case KindNavigate:
		return s.navigate(a.Screen)

	case KindSetLevel:
		return s.setLevel(a.Item, a.Level)

	case KindSubmitScore:
		return s.submitScore(a.Ownership)

	case KindResetScores:
		own, err := s.ledger.Reset(s.ctx)
		s.ownership = own
		s.submitted = false
		return err

	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
}

// connect opens a channel unless one is already opening or open.
func (s *Session) connect() {
	if s.ch != nil {
		return
	}
	ch := s.dial(func(ev transport.Event) { s.post(fromTransport{ev: ev}) })
	s.ch = ch
	s.chState = chanOpening
	go func() {
		if err := ch.Open(s.ctx); err != nil {
			s.log.Warn("open channel", zap.String("channel", ch.ID()), zap.Error(err))
		}
	}()
}

// sendOrQueue sends in, opening a channel first and holding in until it is
// open when needed.
func (s *Session) sendOrQueue(in types.Intent) error {
	if s.chState == chanOpen {
		if err := s.send(in); err != nil {
			return err
		}
		s.markPending(render.ActionKey(in.Action))
		return nil
	}
	s.connect()
	s.queued = append(s.queued, in)
	s.markPending(render.ActionKey(in.Action))
	return nil
}

// send is fire-and-forget: failures surface as a notice and are never
// retried.
func (s *Session) send(in types.Intent) error {
	if s.ch == nil || s.chState != chanOpen {
		s.notice = "Cannot send message: not connected to server."
		s.metrics.IntentFailed(string(in.Action))
		return ErrNotConnected
	}
	if err := s.ch.Send(in); err != nil {
		s.log.Warn("send intent", zap.String("action", string(in.Action)), zap.Error(err))
		s.notice = "Cannot send message: " + err.Error()
		s.metrics.IntentFailed(string(in.Action))
		return fmt.Errorf("send %s: %w", in.Action, err)
	}
	s.metrics.IntentSent(string(in.Action))
	return nil
}

func (s *Session) lobbyIntent(in types.Intent) error {
	if !s.identity.Joined() {
		return ErrNoLobby
	}
	in.LobbyID = s.identity.LobbyID
	if err := s.send(in); err != nil {
		return err
	}
	s.markPending(render.ActionKey(in.Action))
	return nil
}

func (s *Session) hostIntent(in types.Intent) error {
	if !s.identity.Joined() {
		return ErrNoLobby
	}
	if !s.identity.Host {
		return ErrNotHost
	}
	return s.lobbyIntent(in)
}

// selectItem sends a pick or ban for name. A repeated click while the first
// is pending is ignored.
func (s *Session) selectItem(name string) error {
	if !s.identity.Joined() {
		return ErrNoLobby
	}
	if _, ok := s.pending[name]; ok {
		return nil
	}
	if err := draft.Check(s.snapshot, s.identity.Slot, name); err != nil {
		return err
	}
	action, err := draft.SelectAction(s.snapshot.CurrentPhase)
	if err != nil {
		return err
	}
	if err := s.send(types.Intent{Action: action, LobbyID: s.identity.LobbyID, Resonator: name}); err != nil {
		return err
	}
	s.markPending(name)
	return nil
}

// randomize selects a random clickable item among those the filters show.
func (s *Session) randomize() error {
	var options []string
	for _, it := range s.cat.Items() {
		if !s.filters.Match(it) {
			continue
		}
		if _, busy := s.pending[it.Name]; busy {
			continue
		}
		if draft.Clickable(s.snapshot, s.identity.Slot, it.Name) {
			options = append(options, it.Name)
		}
	}
	if len(options) == 0 {
		return ErrNothingSelectable
	}
	return s.selectItem(options[rand.Intn(len(options))])
}

func (s *Session) navigate(to render.Screen) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidScreen, to)
	}
	if to.InLobby() && !s.identity.Joined() {
		return ErrNoLobby
	}
	s.setScreen(to)
	return nil
}

func (s *Session) setLevel(name string, level *int) error {
	it, ok := s.cat.Lookup(name)
	if !ok || !it.Limited {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownItem, name)
	}
	switch {
	case level == nil:
		s.ownership[name] = scoring.NotOwned
	case *level == scoring.NotOwned || catalog.ValidLevel(*level):
		s.ownership[name] = *level
	default:
		return fmt.Errorf("%w: %d", ErrInvalidLevel, *level)
	}
	return nil
}

// submitScore persists the ownership map for pre-fill and reports the box
// score to the service.
func (s *Session) submitScore(override scoring.Ownership) error {
	if !s.identity.Joined() {
		return ErrNoLobby
	}
	for name, level := range override {
		s.ownership[name] = level
	}
	own := scoring.Normalize(s.cat, s.ownership)
	s.ownership = own

	if err := s.ledger.Save(s.ctx, own); err != nil {
		// Only the pre-fill is lost.
		s.log.Warn("persist ownership", zap.Error(err))
	}

	score := scoring.Score(s.cat, own)
	err := s.lobbyIntent(types.Intent{
		Action:    types.ActionSubmitBoxScore,
		BoxScore:  &score,
		Sequences: scoring.Submitted(own),
	})
	if err != nil {
		return err
	}
	s.submitted = true
	s.setScreen(render.ScreenWaiting)
	return nil
}
