package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/draft"
	"github.com/DoyleJ11/wuwa-draft-client/internal/scoring"
	"github.com/DoyleJ11/wuwa-draft-client/internal/timer"
	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, warnings, err := catalog.New([]catalog.Item{
		{Name: "A", Rarity: 5, Elements: []string{"Fusion"}, Limited: true, Icon: "a.png", Badge: "a-pick.png"},
		{Name: "B", Rarity: 5, Elements: []string{"Aero"}, Icon: "b.png", Badge: "b-pick.png"},
		{Name: "C", Rarity: 4, Elements: []string{"Fusion"}, Icon: "c.png", Badge: "c-pick.png"},
		{Name: "D", Rarity: 4, Elements: []string{"Havoc"}, Limited: true, Icon: "d.png", Badge: "d-pick.png"},
	}, nil)
	require.NoError(t, err)
	require.Empty(t, warnings)
	return cat
}

func draftInput(t *testing.T, s *types.DraftSnapshot, local types.Slot) Input {
	return Input{
		Screen:   ScreenDraft,
		Identity: Identity{LobbyID: s.LobbyID, Slot: local},
		Snapshot: s,
		Catalog:  testCatalog(t),
		Timer:    timer.Idle(),
	}
}

func gridByName(v View) map[string]GridItem {
	out := map[string]GridItem{}
	for _, g := range v.Draft.Grid {
		out[g.Name] = g
	}
	return out
}

func TestRender_TurnGatingScenario(t *testing.T) {
	s := &types.DraftSnapshot{
		LobbyID:      "L1",
		CurrentPhase: "BAN_PHASE_1",
		CurrentTurn:  types.SlotP1,
		Available:    []string{"A", "B", "C"},
	}
	grid := gridByName(Render(draftInput(t, s, types.SlotP1)))
	for _, name := range []string{"A", "B", "C"} {
		assert.True(t, grid[name].Clickable, name)
		assert.Equal(t, draft.ReasonSelectable, grid[name].Reason, name)
	}
	assert.False(t, grid["D"].Clickable, "D is not in the selectable list")

	next := *s
	next.CurrentTurn = types.SlotP2
	grid = gridByName(Render(draftInput(t, &next, types.SlotP1)))
	for _, name := range []string{"A", "B", "C"} {
		assert.False(t, grid[name].Clickable, name)
		assert.Equal(t, draft.ReasonNotYourTurn, grid[name].Reason, name)
	}
}

func TestRender_ClickablePredicate(t *testing.T) {
	// The service lists "A" as selectable even though it is banned; taken
	// items never become clickable.
	s := &types.DraftSnapshot{
		LobbyID:      "L1",
		CurrentPhase: types.PhasePick1,
		CurrentTurn:  types.SlotP2,
		Bans:         []string{"A"},
		Player1Picks: []string{"B"},
		Player2Picks: []string{"C"},
		Available:    []string{"A", "D"},
	}
	cases := []struct {
		local  types.Slot
		name   string
		click  bool
		reason draft.Reason
	}{
		{types.SlotP2, "A", false, draft.ReasonBanned},
		{types.SlotP2, "B", false, draft.ReasonPickedOpponent},
		{types.SlotP2, "C", false, draft.ReasonPickedSelf},
		{types.SlotP2, "D", true, draft.ReasonSelectable},
		{types.SlotP1, "D", false, draft.ReasonNotYourTurn},
		{types.SlotNone, "D", false, draft.ReasonNotYourTurn},
	}
	for _, tc := range cases {
		t.Run(string(tc.local)+"/"+tc.name, func(t *testing.T) {
			g := gridByName(Render(draftInput(t, s, tc.local)))[tc.name]
			assert.Equal(t, tc.click, g.Clickable)
			assert.Equal(t, tc.reason, g.Reason)
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	s := &types.DraftSnapshot{
		LobbyID:          "L1",
		CurrentPhase:     types.PhaseEquilibrate,
		CurrentTurn:      types.SlotP1,
		Bans:             []string{"B"},
		Available:        []string{"A", "C", "D"},
		Player1Sequences: map[string]int{"A": 2, "D": 0},
		Player2Sequences: map[string]int{"A": 6},
	}
	in := draftInput(t, s, types.SlotP1)
	in.Pending = map[string]bool{"C": true}

	first, err := json.Marshal(Render(in))
	require.NoError(t, err)
	second, err := json.Marshal(Render(in))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRender_PendingDisablesOnlyThatItem(t *testing.T) {
	s := &types.DraftSnapshot{
		LobbyID: "L1", CurrentPhase: types.PhasePick1, CurrentTurn: types.SlotP1,
		Available: []string{"A", "B"},
	}
	in := draftInput(t, s, types.SlotP1)
	in.Pending = map[string]bool{"A": true}
	grid := gridByName(Render(in))
	assert.False(t, grid["A"].Clickable)
	assert.True(t, grid["A"].Pending)
	assert.True(t, grid["B"].Clickable)
}

func TestRender_Filters(t *testing.T) {
	s := &types.DraftSnapshot{LobbyID: "L1", CurrentPhase: types.PhaseBan1, CurrentTurn: types.SlotP1}
	cases := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"none", Filters{}, []string{"A", "B", "C", "D"}},
		{"element", Filters{Element: "Fusion"}, []string{"A", "C"}},
		{"rarity", Filters{Rarity: 4}, []string{"C", "D"}},
		{"both", Filters{Element: "Fusion", Rarity: 4}, []string{"C"}},
		{"no match", Filters{Element: "Spectro"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := draftInput(t, s, types.SlotP1)
			in.Filters = tc.filters
			var got []string
			for _, g := range Render(in).Draft.Grid {
				got = append(got, g.Name)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRender_Slots(t *testing.T) {
	s := &types.DraftSnapshot{
		LobbyID:      "L1",
		CurrentPhase: types.PhasePick1,
		CurrentTurn:  types.SlotP2,
		Bans:         []string{"A", "B"},
		Player1Picks: []string{"C"},
	}
	d := Render(draftInput(t, s, types.SlotP1)).Draft

	require.Len(t, d.Bans, draft.DefaultBanSlots)
	assert.Equal(t, SlotFilled, d.Bans[0].State)
	assert.Equal(t, "a-pick.png", d.Bans[0].Badge)
	assert.Equal(t, SlotEmpty, d.Bans[2].State, "ban row is not active during a pick phase")

	require.Len(t, d.P1Picks, draft.PicksPerSlot)
	assert.Equal(t, SlotFilled, d.P1Picks[0].State)
	assert.Equal(t, SlotEmpty, d.P1Picks[1].State, "P1 does not own the turn")

	assert.Equal(t, SlotActive, d.P2Picks[0].State)
	assert.Equal(t, SlotEmpty, d.P2Picks[1].State)

	ban := &types.DraftSnapshot{
		LobbyID: "L1", CurrentPhase: types.PhaseBan2, CurrentTurn: types.SlotP1,
		Bans: []string{"A", "B", "C", "D", "E"},
	}
	d = Render(draftInput(t, ban, types.SlotP1)).Draft
	assert.Len(t, d.Bans, 5, "ban row widens to fit the reported bans")
	assert.Equal(t, "E", d.Bans[4].Item)
	assert.Empty(t, d.Bans[4].Badge, "unknown items render without a badge")
}

func TestRender_EquilibrationLevels(t *testing.T) {
	s := &types.DraftSnapshot{
		LobbyID:          "L1",
		CurrentPhase:     types.PhaseEquilibrate,
		CurrentTurn:      types.SlotP1,
		Available:        []string{"A", "D"},
		Player1Sequences: map[string]int{"A": 2},
		Player2Sequences: map[string]int{"A": 6, "D": 0},
	}
	grid := gridByName(Render(draftInput(t, s, types.SlotP1)))
	assert.Equal(t, map[types.Slot]int{types.SlotP1: 2, types.SlotP2: 6}, grid["A"].Levels)
	assert.Equal(t, map[types.Slot]int{types.SlotP2: 0}, grid["D"].Levels)
	assert.Nil(t, grid["B"].Levels)
	assert.True(t, grid["A"].Clickable, "equilibration bans use the same gate")
}

func TestStatus(t *testing.T) {
	cases := []struct {
		name  string
		snap  types.DraftSnapshot
		local types.Slot
		want  string
	}{
		{"last action wins", types.DraftSnapshot{CurrentPhase: types.PhasePick1, CurrentTurn: types.SlotP1, LastAction: "Rover picked Jinhsi"}, types.SlotP1, "Rover picked Jinhsi"},
		{"own turn", types.DraftSnapshot{CurrentPhase: types.PhaseBan1, CurrentTurn: types.SlotP1}, types.SlotP1, "Ban1: your turn"},
		{"opponent by name", types.DraftSnapshot{CurrentPhase: "BAN_PHASE_1", CurrentTurn: types.SlotP2, Player2Name: "Yangyang"}, types.SlotP1, "Ban Phase 1: Yangyang's turn"},
		{"opponent by slot", types.DraftSnapshot{CurrentPhase: types.PhasePick2, CurrentTurn: types.SlotP2}, types.SlotNone, "Pick2: P2's turn"},
		{"complete", types.DraftSnapshot{CurrentPhase: types.PhaseComplete}, types.SlotP1, completeStatus},
		{"complete over last action", types.DraftSnapshot{CurrentPhase: types.PhaseComplete, LastAction: "Yangyang picked Verina"}, types.SlotP1, completeStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(&tc.snap, tc.local))
		})
	}
}

func TestRender_CompletionDisablesEverything(t *testing.T) {
	s := &types.DraftSnapshot{
		LobbyID:      "L1",
		CurrentPhase: types.PhaseComplete,
		CurrentTurn:  types.SlotP1,
		Available:    []string{"A", "B", "C", "D"},
		LastAction:   "Yangyang picked Verina",
	}
	in := draftInput(t, s, types.SlotP1)
	in.Timer = timer.Display{Text: "00:04", Low: true, Running: true}
	d := Render(in).Draft

	assert.True(t, d.Complete)
	assert.False(t, d.YourTurn)
	assert.Equal(t, timer.Idle(), d.Timer)
	assert.Equal(t, completeStatus, d.Status)
	for _, g := range d.Grid {
		assert.False(t, g.Clickable, g.Name)
		assert.Equal(t, draft.ReasonComplete, g.Reason, g.Name)
	}
	for _, sv := range append(d.P1Picks, d.P2Picks...) {
		assert.NotEqual(t, SlotActive, sv.State)
	}
}

func TestRender_WaitingScreen(t *testing.T) {
	id := Identity{LobbyID: "L1", Slot: types.SlotP1, Name: "Rover"}

	v := Render(Input{Screen: ScreenWaiting, Identity: Identity{LobbyID: "L1", Host: true, Name: "Host"}})
	require.NotNil(t, v.Lobby)
	assert.Equal(t, "Host", v.Lobby.HostName)
	assert.Equal(t, waitingName, v.Lobby.Players[0].Name)
	assert.True(t, v.Lobby.HostControls)
	assert.Nil(t, v.Draft)

	s := &types.DraftSnapshot{
		LobbyID:      "L1",
		HostName:     "Host",
		LobbyState:   types.LobbyReadyCheck,
		Player1Name:  "Rover",
		Player2Name:  "Chixia",
		Player2Ready: true,
	}
	v = Render(Input{Screen: ScreenWaiting, Identity: id, Snapshot: s})
	require.Len(t, v.Lobby.Players, 2)
	p1, p2 := v.Lobby.Players[0], v.Lobby.Players[1]
	assert.True(t, p1.You)
	assert.True(t, p1.ShowReady)
	assert.False(t, p2.ShowReady)
	assert.True(t, p2.Ready)
	assert.Equal(t, string(types.LobbyReadyCheck), v.Lobby.Status)
	assert.False(t, v.Lobby.CanStart)

	v = Render(Input{Screen: ScreenWaiting, Identity: id, Snapshot: s,
		Pending: map[string]bool{ActionKey(types.ActionPlayerReady): true}})
	assert.False(t, v.Lobby.Players[0].ShowReady, "ready button hides while pending")
	assert.Equal(t, []string{string(types.ActionPlayerReady)}, v.Lobby.Pending)

	s.Player1Ready = true
	v = Render(Input{Screen: ScreenWaiting, Identity: Identity{LobbyID: "L1", Host: true}, Snapshot: s})
	assert.True(t, v.Lobby.CanStart)
}

func TestRender_ScoreScreen(t *testing.T) {
	cat := testCatalog(t)
	v := Render(Input{
		Screen:    ScreenScore,
		Identity:  Identity{LobbyID: "L1", Slot: types.SlotP1},
		Catalog:   cat,
		Ownership: scoring.Ownership{"A": 3, "D": scoring.NotOwned, "B": 6},
	})
	require.NotNil(t, v.Score)
	assert.Equal(t, []ScoreRow{
		{Name: "A", Icon: "a.png", Level: 3},
		{Name: "D", Icon: "d.png", Level: scoring.NotOwned},
	}, v.Score.Rows)
	assert.Equal(t, 10, v.Score.Total)
	assert.Equal(t, []int{scoring.NotOwned, 0, 1, 2, 3, 4, 5, 6}, v.Score.Levels)
}

func TestRender_UnknownScreenFallsBack(t *testing.T) {
	v := Render(Input{Screen: Screen("lobby-wait-screen")})
	assert.Equal(t, ScreenWelcome, v.Screen)
}
