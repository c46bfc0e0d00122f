// Package gamemode implements the pluggable game-mode hooks sim.Game calls
// once per tick and on each owner join/spawn/death/eat: FFA, Teams,
// Experimental, Rainbow, Tournament, Beatdown and Hunger Games, all
// implementing sim.Mode.
package gamemode

import (
	"sort"
	"strings"

	"github.com/dm-vev/cogar/sim"
)

// ByID resolves the server.gamemode config field to a concrete mode,
// falling back to FFA for an unrecognized value.
func ByID(id uint32) sim.Mode {
	switch id {
	case 1:
		return NewTeams()
	case 2:
		return NewExperimental()
	case 3:
		return NewRainbow()
	case 4:
		return NewTournament()
	case 5:
		return NewHungerGames()
	case 6:
		return NewBeatdown()
	default:
		return NewFFA()
	}
}

// ByName resolves a /mode chat command argument case-insensitively, or nil
// if name doesn't match any mode.
func ByName(name string) sim.Mode {
	switch strings.ToLower(name) {
	case "ffa":
		return NewFFA()
	case "teams":
		return NewTeams()
	case "experimental":
		return NewExperimental()
	case "rainbow", "rainbow ffa":
		return NewRainbow()
	case "tournament":
		return NewTournament()
	case "hunger_games", "hungergames", "hunger games":
		return NewHungerGames()
	case "beatdown":
		return NewBeatdown()
	default:
		return nil
	}
}

// base supplies the FFA-equivalent default for every Mode method; every
// concrete mode embeds it and overrides only what it changes.
type base struct{}

func (base) OnOwnerJoin(*sim.Game, *sim.Owner)                            {}
func (base) OnOwnerSpawn(*sim.Game, *sim.Owner) ([2]float32, bool)        { return [2]float32{}, false }
func (base) CanEat(_ *sim.Game, eaterOwner, preyOwner uint32) bool        { return eaterOwner != preyOwner }
func (base) AllowMerge() bool                                            { return true }
func (base) SpeedMultiplier(*sim.Game, uint32) float32                   { return 1 }
func (base) ViewBonus(*sim.Game, uint32) float32                         { return 0 }
func (base) Tick(*sim.Game)                                              {}
func (base) OnOwnerDeath(*sim.Game, uint32)                              {}
func (base) EatMultiplier() float32                                      { return 1.15 }

// ownerMass sums the mass of every live cell an owner controls, mirroring
// the size²/100 mass invariant cells already maintain.
func ownerMass(g *sim.Game, o *sim.Owner) float32 {
	var total float32
	store := g.Store()
	for _, id := range o.Cells {
		if c := store.Get(id); c != nil {
			total += c.Size * c.Size / 100
		}
	}
	return total
}

func displayName(name string) string {
	if name == "" {
		return "An unnamed cell"
	}
	return name
}

// ffaLeaderboard ranks every non-minion owner with at least one cell by
// total mass, shared by FFA, Rainbow and Experimental (all plain FFA
// scoring with different tick hooks).
func ffaLeaderboard(g *sim.Game) *sim.Leaderboard {
	var entries []sim.LeaderboardEntry
	scores := make(map[uint32]float32, len(g.Owners()))
	for _, o := range g.Owners() {
		if o.IsMinion || len(o.Cells) == 0 {
			continue
		}
		entries = append(entries, sim.LeaderboardEntry{OwnerID: o.ID, Name: displayName(o.Name)})
		scores[o.ID] = ownerMass(g, o)
	}
	sort.Slice(entries, func(i, j int) bool {
		return scores[entries[i].OwnerID] > scores[entries[j].OwnerID]
	})
	return &sim.Leaderboard{Tick: g.Tick(), Entries: entries}
}
