package draft

import "github.com/DoyleJ11/wuwa-draft-client/pkg/types"

// NewEmptySnapshot returns a waiting lobby with no players.
func NewEmptySnapshot(lobbyID string) types.DraftSnapshot {
	return types.DraftSnapshot{
		LobbyID:      lobbyID,
		LobbyState:   types.LobbyWaiting,
		Bans:         []string{},
		Player1Picks: []string{},
		Player2Picks: []string{},
		Available:    []string{},
	}
}

// Taken returns every picked or banned name in snapshot order.
func Taken(s *types.DraftSnapshot) []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Bans)+len(s.Player1Picks)+len(s.Player2Picks))
	out = append(out, s.Bans...)
	out = append(out, s.Player1Picks...)
	out = append(out, s.Player2Picks...)
	return out
}

// Consistent reports whether available, bans and picks are disjoint. The
// client never relies on it; it is logged when a snapshot breaks it.
func Consistent(s *types.DraftSnapshot) bool {
	if s == nil {
		return true
	}
	seen := map[string]bool{}
	for _, n := range append(Taken(s), s.Available...) {
		if seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}
