package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed message")

// Action is the discriminator of an outbound intent.
type Action string

const (
	ActionCreateLobby    Action = "createLobby"
	ActionJoinLobby      Action = "joinLobby"
	ActionLeaveLobby     Action = "leaveLobby"
	ActionDeleteLobby    Action = "deleteLobby"
	ActionKickPlayer     Action = "kickPlayer"
	ActionHostJoinSlot   Action = "hostJoinSlot"
	ActionHostLeaveSlot  Action = "hostLeaveSlot"
	ActionPlayerReady    Action = "playerReady"
	ActionHostStartDraft Action = "hostStartDraft"
	ActionResetDraft     Action = "resetDraft"
	ActionMakePick       Action = "makePick"
	ActionMakeBan        Action = "makeBan"
	ActionSubmitBoxScore Action = "submitBoxScore"
	ActionTurnTimeout    Action = "turnTimeout"
	ActionKeepalive      Action = "keepalive"
)

// Intent is a client -> service message.
type Intent struct {
	Action              Action         `json:"action"`
	LobbyID             string         `json:"lobbyId,omitempty"`
	Name                string         `json:"name,omitempty"`
	Resonator           string         `json:"resonatorName,omitempty"`
	PlayerSlot          Slot           `json:"playerSlot,omitempty"`
	BoxScore            *int           `json:"boxScore,omitempty"`
	Sequences           map[string]int `json:"sequences,omitempty"`
	ExpectedPhase       string         `json:"expectedPhase,omitempty"`
	ExpectedTurn        Slot           `json:"expectedTurn,omitempty"`
	EnableEquilibration *bool          `json:"enableEquilibration,omitempty"`
}

// MessageType is the discriminator of an inbound message.
type MessageType string

const (
	MsgLobbyCreated     MessageType = "lobbyCreated"
	MsgLobbyJoined      MessageType = "lobbyJoined"
	MsgLobbyStateUpdate MessageType = "lobbyStateUpdate"
	MsgSlotAssigned     MessageType = "slotAssigned"
	MsgKicked           MessageType = "kicked"
	MsgLobbyDeleted     MessageType = "lobbyDeleted"
	MsgError            MessageType = "error"
	MsgEcho             MessageType = "echo"
)

// Envelope is a decoded service -> client message. Snapshot is set only for
// lobbyStateUpdate, whose fields arrive flat beside "type".
type Envelope struct {
	Type         MessageType `json:"type"`
	LobbyID      string      `json:"lobbyId,omitempty"`
	IsHost       bool        `json:"isHost,omitempty"`
	AssignedSlot Slot        `json:"assignedSlot,omitempty"`
	Message      string      `json:"message,omitempty"`

	Snapshot *DraftSnapshot `json:"-"`
}

// Decode parses one inbound frame. Unknown types decode successfully so the
// caller can log and ignore them.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	switch env.Type {
	case MsgLobbyCreated, MsgLobbyJoined:
		if env.LobbyID == "" {
			return Envelope{}, fmt.Errorf("%w: %s without lobbyId", ErrMalformed, env.Type)
		}
		if env.AssignedSlot != SlotNone && !env.AssignedSlot.Valid() {
			return Envelope{}, fmt.Errorf("%w: unknown slot %q", ErrMalformed, env.AssignedSlot)
		}
	case MsgLobbyStateUpdate:
		var snap DraftSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return Envelope{}, fmt.Errorf("%w: snapshot: %v", ErrMalformed, err)
		}
		if snap.LobbyID == "" {
			return Envelope{}, fmt.Errorf("%w: snapshot without lobbyId", ErrMalformed)
		}
		if snap.CurrentTurn != SlotNone && !snap.CurrentTurn.Valid() {
			return Envelope{}, fmt.Errorf("%w: unknown turn %q", ErrMalformed, snap.CurrentTurn)
		}
		env.Snapshot = &snap
	case MsgSlotAssigned:
		if env.AssignedSlot != SlotNone && !env.AssignedSlot.Valid() {
			return Envelope{}, fmt.Errorf("%w: unknown slot %q", ErrMalformed, env.AssignedSlot)
		}
	}
	return env, nil
}
