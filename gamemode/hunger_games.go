package gamemode

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/sim"
)

const (
	hungerGamesSpawnPoints = 12
	hungerGamesMargin      = 200
)

// HungerGames layers a ring of predefined perimeter spawn points on top of
// Tournament's waiting/preparing/active/winner state machine: contenders
// spawn at the next point around the ring instead of a random free patch,
// and a dead contender is held as a spectator rather than respawned once
// the round goes active.
type HungerGames struct {
	base
	tournament     *Tournament
	spawnPoints    []mgl32.Vec2
	nextSpawnIndex int
}

// NewHungerGames constructs the mode.
func NewHungerGames() *HungerGames {
	return &HungerGames{tournament: NewTournament()}
}

func (*HungerGames) Name() string { return "Hunger Games" }
func (*HungerGames) ID() uint32   { return 5 }

func (h *HungerGames) Leaderboard(g *sim.Game) *sim.Leaderboard { return h.tournament.Leaderboard(g) }

func (h *HungerGames) initSpawnPoints(g *sim.Game) {
	b := g.Border()
	cx, cy := b.CenterX(), b.CenterY()
	radiusX := b.Width()/2 - hungerGamesMargin
	radiusY := b.Height()/2 - hungerGamesMargin

	h.spawnPoints = make([]mgl32.Vec2, 0, hungerGamesSpawnPoints)
	for i := 0; i < hungerGamesSpawnPoints; i++ {
		angle := float64(i) / hungerGamesSpawnPoints * 2 * math.Pi
		x := cx + radiusX*float32(math.Cos(angle))
		y := cy + radiusY*float32(math.Sin(angle))
		h.spawnPoints = append(h.spawnPoints, mgl32.Vec2{x, y})
	}
	h.nextSpawnIndex = 0
}

func (h *HungerGames) OnOwnerSpawn(_ *sim.Game, _ *sim.Owner) ([2]float32, bool) {
	if len(h.spawnPoints) == 0 {
		return [2]float32{}, false
	}
	p := h.spawnPoints[h.nextSpawnIndex]
	h.nextSpawnIndex = (h.nextSpawnIndex + 1) % len(h.spawnPoints)
	return [2]float32{p.X(), p.Y()}, true
}

func (h *HungerGames) Tick(g *sim.Game) {
	if len(h.spawnPoints) == 0 {
		h.initSpawnPoints(g)
	}

	h.tournament.Tick(g)

	if h.tournament.Phase == PhaseActive {
		for _, id := range h.tournament.Contenders {
			if o := g.Owner(id); o != nil && len(o.Cells) == 0 {
				o.IsSpectating = true
			}
		}
	}

	if h.tournament.Phase == PhaseWaiting && h.tournament.Timer == 0 {
		h.nextSpawnIndex = 0
	}
}
