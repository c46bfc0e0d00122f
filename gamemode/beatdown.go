package gamemode

import (
	"sort"

	"github.com/dm-vev/cogar/sim"
)

const (
	beatdownSpeedPerKill = 0.05
	beatdownViewPerKill  = 50.0
	beatdownMaxSpeed     = 0.5
	beatdownMaxView      = 500.0
)

// Beatdown is kill-count progression: merging is disabled entirely, killing
// another owner grants a stacking speed and view bonus, dying zeroes the
// victim's own bonus, and death is followed by an immediate respawn
// instead of leaving the player to rejoin manually.
type Beatdown struct {
	base
	kills map[uint32]uint32
}

// NewBeatdown constructs the mode.
func NewBeatdown() *Beatdown { return &Beatdown{kills: make(map[uint32]uint32, 64)} }

func (*Beatdown) Name() string    { return "Beatdown" }
func (*Beatdown) ID() uint32      { return 6 }
func (*Beatdown) AllowMerge() bool { return false }

func (b *Beatdown) SpeedMultiplier(_ *sim.Game, ownerID uint32) float32 {
	bonus := float32(b.kills[ownerID]) * beatdownSpeedPerKill
	if bonus > beatdownMaxSpeed {
		bonus = beatdownMaxSpeed
	}
	return 1 + bonus
}

func (b *Beatdown) ViewBonus(_ *sim.Game, ownerID uint32) float32 {
	bonus := float32(b.kills[ownerID]) * beatdownViewPerKill
	if bonus > beatdownMaxView {
		bonus = beatdownMaxView
	}
	return bonus
}

// OnOwnerDeath attributes the kill to whoever ate one of the victim's cells
// this tick (found via Game.EatenThisTick, since Mode's interface carries
// only the victim id), resets the victim's own bonus, and respawns them
// immediately rather than leaving them to rejoin manually.
func (b *Beatdown) OnOwnerDeath(g *sim.Game, ownerID uint32) {
	for _, e := range g.EatenThisTick() {
		if e.PreyOwnerID == ownerID && e.EaterOwnerID != 0 {
			b.kills[e.EaterOwnerID]++
			break
		}
	}
	delete(b.kills, ownerID)

	if o := g.Owner(ownerID); o != nil && !o.IsSpectating {
		g.SpawnPlayerCellFor(o)
	}
}

func (b *Beatdown) Leaderboard(g *sim.Game) *sim.Leaderboard {
	var entries []sim.LeaderboardEntry
	for _, o := range g.Owners() {
		if o.IsMinion || len(o.Cells) == 0 {
			continue
		}
		entries = append(entries, sim.LeaderboardEntry{OwnerID: o.ID, Name: displayName(o.Name)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return b.kills[entries[i].OwnerID] > b.kills[entries[j].OwnerID]
	})
	return &sim.Leaderboard{Tick: g.Tick(), Entries: entries}
}
