// Package render projects session state onto the visible UI. Render is pure:
// the same Input always yields the same View and nothing is mutated.
package render

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/draft"
	"github.com/DoyleJ11/wuwa-draft-client/internal/scoring"
	"github.com/DoyleJ11/wuwa-draft-client/internal/timer"
	"github.com/DoyleJ11/wuwa-draft-client/pkg/types"
)

const (
	waitingName      = "Waiting..."
	completeStatus   = "Draft complete"
	defaultHostLabel = "[Host]"
)

type Input struct {
	Screen   Screen
	Identity Identity
	Snapshot *types.DraftSnapshot
	Catalog  *catalog.Catalog
	Filters  Filters
	// Pending holds grid item names and ActionKey values awaiting the next
	// snapshot.
	Pending  map[string]bool
	Timer    timer.Display
	Notice   string
	Warning  string
	BanSlots int

	Ownership scoring.Ownership
	Submitted bool
}

// ActionKey is the Pending key for a button that sends a.
func ActionKey(a types.Action) string { return "action:" + string(a) }

func Render(in Input) View {
	v := View{
		Screen:   in.Screen,
		Identity: in.Identity,
		Notice:   in.Notice,
		Warning:  in.Warning,
	}
	if !v.Screen.Valid() {
		v.Screen = ScreenWelcome
	}

	switch v.Screen {
	case ScreenWaiting:
		v.Lobby = lobbyView(in)
	case ScreenDraft:
		v.Draft = draftView(in)
	case ScreenScore:
		v.Score = scoreView(in)
	}
	return v
}

func lobbyView(in Input) *LobbyView {
	s := in.Snapshot
	id := in.Identity
	lv := &LobbyView{
		LobbyID:      id.LobbyID,
		Status:       string(types.LobbyWaiting),
		HostControls: id.Host,
	}

	if s == nil {
		// Created but no snapshot yet.
		lv.HostName = defaultHostLabel
		if id.Host && id.Name != "" {
			lv.HostName = id.Name
		}
		for _, slot := range []types.Slot{types.SlotP1, types.SlotP2} {
			lv.Players = append(lv.Players, PlayerView{Slot: slot, Name: waitingName, You: slot == id.Slot})
		}
		lv.Pending = pendingActions(in.Pending)
		return lv
	}

	lv.HostName = s.HostName
	if lv.HostName == "" {
		lv.HostName = defaultHostLabel
	}
	if s.LobbyState != "" {
		lv.Status = string(s.LobbyState)
	}
	lv.EnableEquilibration = s.EnableEquilibration

	for _, slot := range []types.Slot{types.SlotP1, types.SlotP2} {
		p := PlayerView{
			Slot:           slot,
			Name:           s.PlayerName(slot),
			You:            slot == id.Slot,
			Ready:          s.Ready(slot),
			ScoreSubmitted: s.ScoreSubmitted(slot),
			BoxScore:       s.BoxScore(slot),
		}
		if p.Name == "" {
			p.Name = waitingName
		}
		p.ShowReady = p.You && !p.Ready && !in.Pending[ActionKey(types.ActionPlayerReady)]
		lv.Players = append(lv.Players, p)
	}
	lv.CanStart = id.Host && s.Ready(types.SlotP1) && s.Ready(types.SlotP2) &&
		!in.Pending[ActionKey(types.ActionHostStartDraft)]
	lv.Pending = pendingActions(in.Pending)
	return lv
}

func pendingActions(p map[string]bool) []string {
	var out []string
	for k, on := range p {
		if on && strings.HasPrefix(k, "action:") {
			out = append(out, strings.TrimPrefix(k, "action:"))
		}
	}
	sort.Strings(out)
	return out
}

func draftView(in Input) *DraftView {
	s := in.Snapshot
	if s == nil {
		empty := draft.NewEmptySnapshot(in.Identity.LobbyID)
		s = &empty
	}
	local := in.Identity.Slot
	kind := draft.Classify(s.CurrentPhase)
	complete := draft.Complete(s)

	dv := &DraftView{
		Phase:        s.CurrentPhase,
		Kind:         kind.String(),
		Turn:         s.CurrentTurn,
		YourTurn:     !complete && local.Valid() && local == s.CurrentTurn,
		Status:       Status(s, local),
		Timer:        in.Timer,
		P1Name:       s.Player1Name,
		P2Name:       s.Player2Name,
		Filters:      in.Filters,
		Complete:     complete,
		HostControls: in.Identity.Host,
	}
	if complete {
		dv.Timer = timer.Idle()
	}

	banSlots := in.BanSlots
	if banSlots <= 0 {
		banSlots = draft.DefaultBanSlots
	}
	banTurn := !complete && (kind == draft.KindBan || kind == draft.KindEquilibrate) && s.CurrentTurn.Valid()
	pickTurn := !complete && kind == draft.KindPick
	dv.Bans = slots(in.Catalog, draft.Fill(s.Bans, banSlots), banTurn)
	dv.P1Picks = slots(in.Catalog, draft.Fill(s.Player1Picks, draft.PicksPerSlot), pickTurn && s.CurrentTurn == types.SlotP1)
	dv.P2Picks = slots(in.Catalog, draft.Fill(s.Player2Picks, draft.PicksPerSlot), pickTurn && s.CurrentTurn == types.SlotP2)

	if in.Catalog != nil {
		dv.Elements = in.Catalog.Elements()
		dv.Rarities = in.Catalog.Rarities()
		dv.Grid = grid(in, s, kind)
	}
	return dv
}

// slots renders a row. When active, the first empty slot is highlighted.
func slots(cat *catalog.Catalog, row []string, active bool) []SlotView {
	next := -1
	if active {
		next = draft.NextEmpty(row)
	}
	out := make([]SlotView, len(row))
	for i, name := range row {
		sv := SlotView{Index: i, Item: name, State: SlotEmpty}
		switch {
		case name != "":
			sv.State = SlotFilled
			if cat != nil {
				if it, ok := cat.Lookup(name); ok {
					sv.Badge = it.Badge
				}
			}
		case i == next:
			sv.State = SlotActive
		}
		out[i] = sv
	}
	return out
}

func grid(in Input, s *types.DraftSnapshot, kind draft.Kind) []GridItem {
	local := in.Identity.Slot
	var out []GridItem
	for _, it := range in.Catalog.Items() {
		if !in.Filters.Match(it) {
			continue
		}
		g := GridItem{
			Name:     it.Name,
			Icon:     it.Icon,
			Rarity:   it.Rarity,
			Elements: it.Elements,
			Reason:   draft.Explain(s, local, it.Name),
			Pending:  in.Pending[it.Name],
		}
		g.Clickable = draft.Clickable(s, local, it.Name) && !g.Pending
		if kind == draft.KindEquilibrate {
			g.Levels = levels(s, it.Name)
		}
		out = append(out, g)
	}
	return out
}

func levels(s *types.DraftSnapshot, name string) map[types.Slot]int {
	var out map[types.Slot]int
	for _, slot := range []types.Slot{types.SlotP1, types.SlotP2} {
		lvl, ok := s.Sequences(slot)[name]
		if !ok {
			continue
		}
		if out == nil {
			out = map[types.Slot]int{}
		}
		out[slot] = lvl
	}
	return out
}

// Status is the draft status line. A finished draft always reads as
// complete; before that the service's last action annotation wins, and
// otherwise it is built from phase and turn.
func Status(s *types.DraftSnapshot, local types.Slot) string {
	if s == nil {
		return ""
	}
	if draft.Complete(s) {
		return completeStatus
	}
	if s.LastAction != "" {
		return s.LastAction
	}
	phase := phaseTitle(s.CurrentPhase)
	if !s.CurrentTurn.Valid() {
		return phase
	}
	if local.Valid() && local == s.CurrentTurn {
		return fmt.Sprintf("%s: your turn", phase)
	}
	who := s.PlayerName(s.CurrentTurn)
	if who == "" {
		who = string(s.CurrentTurn)
	}
	return fmt.Sprintf("%s: %s's turn", phase, who)
}

func phaseTitle(phase string) string {
	p := strings.ReplaceAll(strings.TrimSpace(phase), "_", " ")
	if p == "" {
		return "Draft"
	}
	return cases.Title(language.English).String(p)
}

func scoreView(in Input) *ScoreView {
	sv := &ScoreView{Submitted: in.Submitted, Levels: []int{scoring.NotOwned}}
	for l := catalog.MinLevel; l <= catalog.MaxLevel; l++ {
		sv.Levels = append(sv.Levels, l)
	}
	if in.Catalog == nil {
		return sv
	}
	own := scoring.Normalize(in.Catalog, in.Ownership)
	for _, it := range in.Catalog.Limited() {
		sv.Rows = append(sv.Rows, ScoreRow{Name: it.Name, Icon: it.Icon, Level: own[it.Name]})
	}
	sv.Total = scoring.Score(in.Catalog, own)
	return sv
}
