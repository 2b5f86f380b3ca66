package session

import (
	"github.com/DoyleJ11/wuwa-draft-client/internal/render"
	"github.com/DoyleJ11/wuwa-draft-client/internal/scoring"
	"github.com/DoyleJ11/wuwa-draft-client/internal/timer"
	"github.com/DoyleJ11/wuwa-draft-client/internal/transport"
	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

type Msg interface{ isSessionMsg() }

// Do runs one user action. Reply, if set, receives the validation or send
// error (nil on success).
type Do struct {
	Action Action
	Reply  chan error
}

func (Do) isSessionMsg() {}

type GetView struct {
	Reply chan render.View
}

func (GetView) isSessionMsg() {}

// Stats is a cheap summary of the session for health checks.
type Stats struct {
	Connected    bool   `json:"connected"`
	Lobby        string `json:"lobby,omitempty"`
	Screen       string `json:"screen"`
	TimerRunning bool   `json:"timerRunning"`
	TimerGen     uint64 `json:"timerGen"`
	Pending      int    `json:"pending"`
}

type GetStats struct {
	Reply chan Stats
}

func (GetStats) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type fromTransport struct{ ev transport.Event }

func (fromTransport) isSessionMsg() {}

type timerFired struct{ tick timer.Tick }

func (timerFired) isSessionMsg() {}

type pendingExpired struct {
	key string
	gen uint64
}

func (pendingExpired) isSessionMsg() {}

type Kind string

const (
	KindConnect       Kind = "connect"
	KindDisconnect    Kind = "disconnect"
	KindCreate        Kind = "create"
	KindJoin          Kind = "join"
	KindLeave         Kind = "leave"
	KindDelete        Kind = "delete"
	KindKick          Kind = "kick"
	KindHostJoinSlot  Kind = "hostJoinSlot"
	KindHostLeaveSlot Kind = "hostLeaveSlot"
	KindReady         Kind = "ready"
	KindStartDraft    Kind = "startDraft"
	KindResetDraft    Kind = "resetDraft"
	KindSelect        Kind = "select"
	KindRandomize     Kind = "randomize"
	KindSetFilter     Kind = "setFilter"
	KindNavigate      Kind = "navigate"
	KindSetLevel      Kind = "setLevel"
	KindSubmitScore   Kind = "submitScore"
	KindResetScores   Kind = "resetScores"
)

// Action is a user input from the presentation layer. Only the fields its
// Kind needs are read.
type Action struct {
	Kind                Kind              `json:"kind"`
	Name                string            `json:"name,omitempty"`
	LobbyID             string            `json:"lobbyId,omitempty"`
	Item                string            `json:"item,omitempty"`
	Slot                types.Slot        `json:"slot,omitempty"`
	Screen              render.Screen     `json:"screen,omitempty"`
	Filters             *render.Filters   `json:"filters,omitempty"`
	Level               *int              `json:"level,omitempty"`
	Ownership           scoring.Ownership `json:"ownership,omitempty"`
	EnableEquilibration *bool             `json:"enableEquilibration,omitempty"`
}
