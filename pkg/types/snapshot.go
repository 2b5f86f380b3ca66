package types

import (
	"slices"
	"time"
)

// Slot is one of the two participant roles in a draft. The empty slot means
// host/observer.
type Slot string

const (
	SlotNone Slot = ""
	SlotP1   Slot = "P1"
	SlotP2   Slot = "P2"
)

// Valid reports whether s names a player slot.
func (s Slot) Valid() bool { return s == SlotP1 || s == SlotP2 }

// Opponent returns the other player slot, or SlotNone for observers.
func (s Slot) Opponent() Slot {
	switch s {
	case SlotP1:
		return SlotP2
	case SlotP2:
		return SlotP1
	default:
		return SlotNone
	}
}

type LobbyState string

const (
	LobbyWaiting       LobbyState = "WAITING"
	LobbyReadyCheck    LobbyState = "READY_CHECK"
	LobbyEquilibrating LobbyState = "EQUILIBRATING"
	LobbyComplete      LobbyState = "DRAFT_COMPLETE"
)

// Phase names as reported by the service. Any other name is classified by
// substring, see internal/draft.
const (
	PhaseBan1        = "BAN1"
	PhasePick1       = "PICK1"
	PhaseBan2        = "BAN2"
	PhasePick2       = "PICK2"
	PhaseEquilibrate = "EQUILIBRATE_BANS"
	PhaseComplete    = "DRAFT_COMPLETE"
)

// DraftSnapshot is the full authoritative lobby state. It is a value: the
// client replaces it wholesale on every lobbyStateUpdate.
type DraftSnapshot struct {
	LobbyID    string     `json:"lobbyId"`
	HostName   string     `json:"hostName,omitempty"`
	LobbyState LobbyState `json:"lobbyState,omitempty"`

	Player1Name           string `json:"player1Name,omitempty"`
	Player2Name           string `json:"player2Name,omitempty"`
	Player1Ready          bool   `json:"player1Ready,omitempty"`
	Player2Ready          bool   `json:"player2Ready,omitempty"`
	Player1ScoreSubmitted bool   `json:"player1ScoreSubmitted,omitempty"`
	Player2ScoreSubmitted bool   `json:"player2ScoreSubmitted,omitempty"`
	Player1BoxScore       *int   `json:"player1BoxScore,omitempty"`
	Player2BoxScore       *int   `json:"player2BoxScore,omitempty"`
	EnableEquilibration   bool   `json:"enableEquilibration,omitempty"`

	Bans         []string `json:"bans,omitempty"`
	Player1Picks []string `json:"player1Picks,omitempty"`
	Player2Picks []string `json:"player2Picks,omitempty"`

	CurrentPhase  string     `json:"currentPhase,omitempty"`
	CurrentTurn   Slot       `json:"currentTurn,omitempty"`
	TurnExpiresAt *time.Time `json:"turnExpiresAt,omitempty"`

	// Available is the service's list of still-selectable items. The client
	// never derives it.
	Available []string `json:"availableResonators,omitempty"`

	Player1Sequences map[string]int `json:"player1Sequences,omitempty"`
	Player2Sequences map[string]int `json:"player2Sequences,omitempty"`

	LastAction string `json:"lastAction,omitempty"`
}

// Picks returns the pick list of a slot.
func (s *DraftSnapshot) Picks(slot Slot) []string {
	switch slot {
	case SlotP1:
		return s.Player1Picks
	case SlotP2:
		return s.Player2Picks
	default:
		return nil
	}
}

func (s *DraftSnapshot) PlayerName(slot Slot) string {
	switch slot {
	case SlotP1:
		return s.Player1Name
	case SlotP2:
		return s.Player2Name
	default:
		return ""
	}
}

func (s *DraftSnapshot) Ready(slot Slot) bool {
	switch slot {
	case SlotP1:
		return s.Player1Ready
	case SlotP2:
		return s.Player2Ready
	default:
		return false
	}
}

func (s *DraftSnapshot) ScoreSubmitted(slot Slot) bool {
	switch slot {
	case SlotP1:
		return s.Player1ScoreSubmitted
	case SlotP2:
		return s.Player2ScoreSubmitted
	default:
		return false
	}
}

func (s *DraftSnapshot) BoxScore(slot Slot) *int {
	switch slot {
	case SlotP1:
		return s.Player1BoxScore
	case SlotP2:
		return s.Player2BoxScore
	default:
		return nil
	}
}

// Sequences returns the ownership levels a slot disclosed for the
// equilibration phase.
func (s *DraftSnapshot) Sequences(slot Slot) map[string]int {
	switch slot {
	case SlotP1:
		return s.Player1Sequences
	case SlotP2:
		return s.Player2Sequences
	default:
		return nil
	}
}

func (s *DraftSnapshot) IsBanned(name string) bool { return slices.Contains(s.Bans, name) }

func (s *DraftSnapshot) IsAvailable(name string) bool { return slices.Contains(s.Available, name) }

// PickedBy returns the slot that picked name, or SlotNone.
func (s *DraftSnapshot) PickedBy(name string) Slot {
	if slices.Contains(s.Player1Picks, name) {
		return SlotP1
	}
	if slices.Contains(s.Player2Picks, name) {
		return SlotP2
	}
	return SlotNone
}
