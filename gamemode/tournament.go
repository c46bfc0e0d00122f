package gamemode

import (
	"log/slog"
	"sort"

	"github.com/dm-vev/cogar/sim"
)

// TournamentPhase is one stage of the tournament state machine.
type TournamentPhase uint8

const (
	PhaseWaiting TournamentPhase = iota
	PhasePreparing
	PhaseActive
	PhaseWinner
	PhaseTimeout
)

// Tournament runs bracket-free last-one-standing rounds: a waiting lobby
// collects contenders, a preparation window lets them settle, and the round
// ends the instant only one (or zero) contenders remain alive.
type Tournament struct {
	base

	Phase       TournamentPhase
	Contenders  []uint32
	Timer       uint64
	MinPlayers  int
	PrepareTime uint64
	WinnerTime  uint64
}

// NewTournament constructs the mode with the reference timing constants:
// ~4s preparation and ~10s winner-display windows at a 40ms tick interval.
func NewTournament() *Tournament {
	return &Tournament{
		MinPlayers:  2,
		PrepareTime: 100,
		WinnerTime:  250,
	}
}

func (*Tournament) Name() string { return "Tournament" }
func (*Tournament) ID() uint32   { return 4 }

func (t *Tournament) isContender(id uint32) bool {
	for _, c := range t.Contenders {
		if c == id {
			return true
		}
	}
	return false
}

func (t *Tournament) addContender(id uint32) {
	if !t.isContender(id) {
		t.Contenders = append(t.Contenders, id)
	}
}

func (t *Tournament) aliveCount(g *sim.Game) int {
	n := 0
	for _, id := range t.Contenders {
		if o := g.Owner(id); o != nil && len(o.Cells) > 0 {
			n++
		}
	}
	return n
}

func (t *Tournament) winner(g *sim.Game) (uint32, bool) {
	for _, id := range t.Contenders {
		if o := g.Owner(id); o != nil && len(o.Cells) > 0 {
			return id, true
		}
	}
	return 0, false
}

func (t *Tournament) reset() {
	t.Phase = PhaseWaiting
	t.Contenders = nil
	t.Timer = 0
}

func (t *Tournament) Leaderboard(g *sim.Game) *sim.Leaderboard {
	var entries []sim.LeaderboardEntry
	scores := make(map[uint32]float32, len(t.Contenders))
	for _, id := range t.Contenders {
		o := g.Owner(id)
		if o == nil || len(o.Cells) == 0 {
			continue
		}
		entries = append(entries, sim.LeaderboardEntry{OwnerID: id, Name: displayName(o.Name)})
		scores[id] = ownerMass(g, o)
	}
	sort.Slice(entries, func(i, j int) bool {
		return scores[entries[i].OwnerID] > scores[entries[j].OwnerID]
	})
	return &sim.Leaderboard{Tick: g.Tick(), Entries: entries}
}

func (t *Tournament) Tick(g *sim.Game) {
	t.Timer++

	switch t.Phase {
	case PhaseWaiting:
		for _, o := range g.Owners() {
			if !o.IsMinion && !o.IsSpectating {
				t.addContender(o.ID)
			}
		}
		if len(t.Contenders) >= t.MinPlayers {
			t.Phase = PhasePreparing
			t.Timer = 0
		}

	case PhasePreparing:
		if t.Timer >= t.PrepareTime {
			t.Phase = PhaseActive
			t.Timer = 0
		}

	case PhaseActive:
		switch alive := t.aliveCount(g); {
		case alive == 0:
			t.Phase = PhaseTimeout
			t.Timer = 0
		case alive == 1:
			if id, ok := t.winner(g); ok {
				name := "unknown"
				if o := g.Owner(id); o != nil {
					name = o.Name
				}
				slog.Default().Info("tournament round won", slog.String("winner", name))
			}
			t.Phase = PhaseWinner
			t.Timer = 0
		}

	case PhaseWinner, PhaseTimeout:
		if t.Timer >= t.WinnerTime {
			t.reset()
		}
	}
}
