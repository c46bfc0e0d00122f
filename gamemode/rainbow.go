package gamemode

import (
	"math/rand"

	"github.com/dm-vev/cogar/sim"
	"github.com/dm-vev/cogar/world"
)

var rainbowPalette = []world.Color{
	{R: 255, G: 0, B: 0}, {R: 255, G: 32, B: 0}, {R: 255, G: 64, B: 0}, {R: 255, G: 96, B: 0},
	{R: 255, G: 128, B: 0}, {R: 255, G: 160, B: 0}, {R: 255, G: 192, B: 0}, {R: 255, G: 224, B: 0},
	{R: 255, G: 255, B: 0}, {R: 192, G: 255, B: 0}, {R: 128, G: 255, B: 0}, {R: 64, G: 255, B: 0},
	{R: 0, G: 255, B: 0}, {R: 0, G: 192, B: 64}, {R: 0, G: 128, B: 128}, {R: 0, G: 64, B: 192},
	{R: 0, G: 0, B: 255}, {R: 18, G: 0, B: 192}, {R: 37, G: 0, B: 128}, {R: 56, G: 0, B: 64},
	{R: 75, G: 0, B: 130}, {R: 92, G: 0, B: 161}, {R: 109, G: 0, B: 192}, {R: 126, G: 0, B: 223},
	{R: 143, G: 0, B: 255}, {R: 171, G: 0, B: 192}, {R: 199, G: 0, B: 128}, {R: 227, G: 0, B: 64},
}

// Rainbow is plain FFA with every player cell's color cycling through a
// fixed palette, one step per tick, each cell starting at a random offset.
// Food, viruses, ejected mass and mother cells keep their own colors.
type Rainbow struct {
	base
	indices map[uint32]int
}

// NewRainbow constructs the mode.
func NewRainbow() *Rainbow { return &Rainbow{indices: make(map[uint32]int, 256)} }

func (*Rainbow) Name() string { return "Rainbow FFA" }
func (*Rainbow) ID() uint32   { return 3 }

func (*Rainbow) Leaderboard(g *sim.Game) *sim.Leaderboard { return ffaLeaderboard(g) }

func (r *Rainbow) Tick(g *sim.Game) {
	store := g.Store()
	all := store.Players()
	seen := make(map[uint32]struct{}, len(all))
	for _, c := range all {
		seen[c.NodeID] = struct{}{}
		idx, ok := r.indices[c.NodeID]
		if !ok {
			idx = rand.Intn(len(rainbowPalette))
		}
		c.Color = rainbowPalette[idx]
		idx++
		if idx >= len(rainbowPalette) {
			idx = 0
		}
		r.indices[c.NodeID] = idx
	}
	if len(r.indices) > len(all)+100 {
		for id := range r.indices {
			if _, ok := seen[id]; !ok {
				delete(r.indices, id)
			}
		}
	}
}
