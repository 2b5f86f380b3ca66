package draft

import (
	"errors"
	"strings"

	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

var ErrNotYourTurn = errors.New("not your turn")
var ErrNotSelectable = errors.New("item not selectable")
var ErrAlreadyTaken = errors.New("item already picked or banned")
var ErrNoSelection = errors.New("phase has no selection")

// Kind classifies a phase name. The service owns the actual phase list; the
// client only needs to know what a phase lets the active player do.
type Kind int

const (
	KindNone Kind = iota
	KindBan
	KindPick
	KindEquilibrate
	KindComplete
)

func (k Kind) String() string {
	switch k {
	case KindBan:
		return "ban"
	case KindPick:
		return "pick"
	case KindEquilibrate:
		return "equilibrate"
	case KindComplete:
		return "complete"
	default:
		return "none"
	}
}

func Classify(phase string) Kind {
	p := strings.ToUpper(strings.TrimSpace(phase))
	switch {
	case p == "":
		return KindNone
	case p == types.PhaseEquilibrate || strings.HasPrefix(p, "EQUILIBRAT"):
		return KindEquilibrate
	case strings.Contains(p, "COMPLETE"):
		return KindComplete
	case strings.Contains(p, "BAN"):
		return KindBan
	case strings.Contains(p, "PICK"):
		return KindPick
	default:
		return KindNone
	}
}

// Started reports whether the snapshot's phase means drafting has begun.
func Started(s *types.DraftSnapshot) bool {
	return s != nil && strings.TrimSpace(s.CurrentPhase) != ""
}

func Complete(s *types.DraftSnapshot) bool {
	if s == nil {
		return false
	}
	return Classify(s.CurrentPhase) == KindComplete || s.LobbyState == types.LobbyComplete
}

// SelectAction maps the current phase to the intent a grid click sends.
func SelectAction(phase string) (types.Action, error) {
	switch Classify(phase) {
	case KindBan, KindEquilibrate:
		return types.ActionMakeBan, nil
	case KindPick:
		return types.ActionMakePick, nil
	default:
		return "", ErrNoSelection
	}
}

// Reason explains why a grid item is or is not clickable. It is cosmetic:
// Clickable is the only gate.
type Reason string

const (
	ReasonSelectable     Reason = "selectable"
	ReasonPickedSelf     Reason = "picked-self"
	ReasonPickedOpponent Reason = "picked-opponent"
	ReasonBanned         Reason = "banned"
	ReasonNotYourTurn    Reason = "not-your-turn"
	ReasonUnavailable    Reason = "unavailable"
	ReasonComplete       Reason = "complete"
)

// Check returns nil when local may select name in s.
func Check(s *types.DraftSnapshot, local types.Slot, name string) error {
	if s == nil || Complete(s) {
		return ErrNoSelection
	}
	if !local.Valid() || local != s.CurrentTurn {
		return ErrNotYourTurn
	}
	if s.IsBanned(name) || s.PickedBy(name) != types.SlotNone {
		return ErrAlreadyTaken
	}
	if !s.IsAvailable(name) {
		return ErrNotSelectable
	}
	return nil
}

func Clickable(s *types.DraftSnapshot, local types.Slot, name string) bool {
	return Check(s, local, name) == nil
}

// Explain picks the display reason for an item. Taken states win over turn
// ownership so the grid shows why an item is gone.
func Explain(s *types.DraftSnapshot, local types.Slot, name string) Reason {
	if s == nil {
		return ReasonUnavailable
	}
	if s.IsBanned(name) {
		return ReasonBanned
	}
	if by := s.PickedBy(name); by != types.SlotNone {
		if by == local {
			return ReasonPickedSelf
		}
		return ReasonPickedOpponent
	}
	if Complete(s) {
		return ReasonComplete
	}
	if !local.Valid() || local != s.CurrentTurn {
		return ReasonNotYourTurn
	}
	if !s.IsAvailable(name) {
		return ReasonUnavailable
	}
	return ReasonSelectable
}
