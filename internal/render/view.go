package render

import (
	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/draft"
	"github.com/DoyleJ11/wuwa-draft-client/internal/timer"
	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

type Screen string

const (
	ScreenWelcome Screen = "welcome"
	ScreenCreate  Screen = "create"
	ScreenJoin    Screen = "join"
	ScreenWaiting Screen = "waiting"
	ScreenDraft   Screen = "draft"
	ScreenScore   Screen = "score-entry"
)

func (s Screen) Valid() bool {
	switch s {
	case ScreenWelcome, ScreenCreate, ScreenJoin, ScreenWaiting, ScreenDraft, ScreenScore:
		return true
	}
	return false
}

// InLobby reports whether the screen needs a session identity.
func (s Screen) InLobby() bool {
	return s == ScreenWaiting || s == ScreenDraft || s == ScreenScore
}

// Filters narrows the grid. Zero values mean "any".
type Filters struct {
	Element string `json:"element,omitempty"`
	Rarity  int    `json:"rarity,omitempty"`
}

func (f Filters) Match(it catalog.Item) bool {
	if f.Element != "" && !it.HasElement(f.Element) {
		return false
	}
	if f.Rarity != 0 && it.Rarity != f.Rarity {
		return false
	}
	return true
}

// Identity is who this client is in the current lobby.
type Identity struct {
	LobbyID string     `json:"lobbyId,omitempty"`
	Slot    types.Slot `json:"slot,omitempty"`
	Host    bool       `json:"host,omitempty"`
	Name    string     `json:"name,omitempty"`
}

func (id Identity) Joined() bool { return id.LobbyID != "" }

// View is everything the presentation layer shows. Exactly one of Lobby,
// Draft and Score is set, matching Screen.
type View struct {
	Screen   Screen     `json:"screen"`
	Identity Identity   `json:"identity"`
	Notice   string     `json:"notice,omitempty"`
	Warning  string     `json:"warning,omitempty"`
	Lobby    *LobbyView `json:"lobby,omitempty"`
	Draft    *DraftView `json:"draft,omitempty"`
	Score    *ScoreView `json:"score,omitempty"`
}

type PlayerView struct {
	Slot           types.Slot `json:"slot"`
	Name           string     `json:"name"`
	You            bool       `json:"you,omitempty"`
	Ready          bool       `json:"ready"`
	ShowReady      bool       `json:"showReady,omitempty"`
	ScoreSubmitted bool       `json:"scoreSubmitted,omitempty"`
	BoxScore       *int       `json:"boxScore,omitempty"`
}

type LobbyView struct {
	LobbyID             string       `json:"lobbyId"`
	HostName            string       `json:"hostName"`
	Status              string       `json:"status"`
	Players             []PlayerView `json:"players"`
	HostControls        bool         `json:"hostControls"`
	CanStart            bool         `json:"canStart,omitempty"`
	EnableEquilibration bool         `json:"enableEquilibration,omitempty"`
	Pending             []string     `json:"pending,omitempty"`
}

type SlotState string

const (
	SlotEmpty  SlotState = "empty"
	SlotFilled SlotState = "filled"
	SlotActive SlotState = "active"
)

type SlotView struct {
	Index int       `json:"index"`
	Item  string    `json:"item,omitempty"`
	Badge string    `json:"badge,omitempty"`
	State SlotState `json:"state"`
}

type GridItem struct {
	Name      string       `json:"name"`
	Icon      string       `json:"icon,omitempty"`
	Rarity    int          `json:"rarity"`
	Elements  []string     `json:"elements,omitempty"`
	Clickable bool         `json:"clickable"`
	Reason    draft.Reason `json:"reason"`
	Pending   bool         `json:"pending,omitempty"`
	// Levels holds each player's declared ownership level during
	// equilibration.
	Levels map[types.Slot]int `json:"levels,omitempty"`
}

type DraftView struct {
	Phase    string        `json:"phase"`
	Kind     string        `json:"kind"`
	Turn     types.Slot    `json:"turn,omitempty"`
	YourTurn bool          `json:"yourTurn"`
	Status   string        `json:"status"`
	Timer    timer.Display `json:"timer"`
	Bans     []SlotView    `json:"bans"`
	P1Name   string        `json:"p1Name"`
	P2Name   string        `json:"p2Name"`
	P1Picks  []SlotView    `json:"p1Picks"`
	P2Picks  []SlotView    `json:"p2Picks"`
	Grid     []GridItem    `json:"grid"`
	Filters  Filters       `json:"filters"`
	Elements []string      `json:"elements"`
	Rarities []int         `json:"rarities"`
	Complete bool          `json:"complete,omitempty"`
	// HostControls shows reset/delete for the host.
	HostControls bool `json:"hostControls,omitempty"`
}

type ScoreRow struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Level int    `json:"level"`
}

type ScoreView struct {
	Rows      []ScoreRow `json:"rows"`
	Levels    []int      `json:"levels"`
	Total     int        `json:"total"`
	Submitted bool       `json:"submitted,omitempty"`
}
