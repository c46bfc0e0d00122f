package gamemode

import (
	"math/rand"

	"github.com/dm-vev/cogar/sim"
	"github.com/dm-vev/cogar/world"
)

// Teams splits the population into three fixed teams (red/green/blue),
// gating eating to cross-team pairs only.
type Teams struct{ base }

// NewTeams constructs the mode.
func NewTeams() *Teams { return &Teams{} }

func (*Teams) Name() string { return "Teams" }
func (*Teams) ID() uint32   { return 1 }

var teamBaseColors = [3]world.Color{
	{R: 255, G: 0, B: 0},
	{R: 0, G: 255, B: 0},
	{R: 0, G: 0, B: 255},
}

// teamColor fuzzes a team's base color by up to 37 per channel so same-team
// cells aren't perfectly identical, matching the reference server's own
// team palette.
func teamColor(team uint8) world.Color {
	base := teamBaseColors[team%3]
	const fuzz = 38
	fuzzOne := func(c uint8) uint8 {
		v := int(c) + rand.Intn(fuzz)
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	return world.Color{R: fuzzOne(base.R), G: fuzzOne(base.G), B: fuzzOne(base.B)}
}

func (*Teams) OnOwnerJoin(_ *sim.Game, o *sim.Owner) {
	if !o.HasTeam {
		o.HasTeam = true
		o.Team = uint8(rand.Intn(3))
	}
	o.Color = teamColor(o.Team)
}

func (*Teams) CanEat(g *sim.Game, eaterOwner, preyOwner uint32) bool {
	if eaterOwner == preyOwner {
		return true
	}
	a, b := g.Owner(eaterOwner), g.Owner(preyOwner)
	if a == nil || b == nil || !a.HasTeam || !b.HasTeam {
		return true
	}
	return a.Team != b.Team
}

func (*Teams) Leaderboard(g *sim.Game) *sim.Leaderboard {
	var teamMass [3]float32
	var total float32
	for _, o := range g.Owners() {
		if !o.HasTeam || len(o.Cells) == 0 {
			continue
		}
		m := ownerMass(g, o)
		if o.Team < 3 {
			teamMass[o.Team] += m
		}
		total += m
	}
	fractions := make([]float32, 3)
	if total > 0 {
		for i := range fractions {
			fractions[i] = teamMass[i] / total
		}
	}
	return &sim.Leaderboard{Tick: g.Tick(), Fractions: fractions}
}
