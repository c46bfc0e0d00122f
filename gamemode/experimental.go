package gamemode

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/sim"
	"github.com/dm-vev/cogar/world"
)

const (
	motherSpawnInterval = 100
	motherMinAmount     = 7
	motherShrinkStep    = 100
	motherFoodCap       = 2000
	motherSpawnRate     = 2
)

// Experimental is plain FFA augmented with mother cells: large stationary
// entities that periodically shed food in every direction until they shrink
// to their minimum size. While fewer than motherMinAmount exist, one more
// mother cell is added every motherSpawnInterval ticks.
type Experimental struct {
	base
	tickCount uint64
}

// NewExperimental constructs the mode.
func NewExperimental() *Experimental { return &Experimental{} }

func (*Experimental) Name() string { return "Experimental" }
func (*Experimental) ID() uint32   { return 2 }

func (*Experimental) Leaderboard(g *sim.Game) *sim.Leaderboard { return ffaLeaderboard(g) }

func (e *Experimental) Tick(g *sim.Game) {
	e.tickCount++

	if e.tickCount%motherSpawnInterval == 0 {
		e.spawnMotherCell(g)
	}

	foodCount := g.Store().CountByType(world.Food)
	for _, m := range g.Store().Mothers() {
		interval := uint64(37)
		if m.Size > m.MinSize {
			interval = 2
		}
		if e.tickCount%interval != 0 {
			continue
		}
		if foodCount >= motherFoodCap {
			continue
		}
		for i := 0; i < motherSpawnRate; i++ {
			if m.Size <= m.MinSize {
				break
			}
			newRadius := m.Radius - motherShrinkStep
			if min := m.MinSize * m.MinSize; newRadius < min {
				newRadius = min
			}
			m.SetRadius(newRadius)
			g.Store().UpdatePosition(m)

			angle := rand.Float32() * 2 * math.Pi
			dist := m.Size
			spawnPos := mgl32.Vec2{
				m.Position.X() + dist*float32(math.Sin(float64(angle))),
				m.Position.Y() + dist*float32(math.Cos(float64(angle))),
			}
			boostAngle := rand.Float32() * 2 * math.Pi
			dir := mgl32.Vec2{float32(math.Sin(float64(boostAngle))), float32(math.Cos(float64(boostAngle)))}
			boostDist := 32 + 42*rand.Float32()
			g.SpawnFoodFrom(spawnPos, dir, boostDist)
			foodCount++
		}
	}
}

func (e *Experimental) spawnMotherCell(g *sim.Game) {
	if g.Store().CountByType(world.MotherCell) >= motherMinAmount {
		return
	}
	b := g.Border()
	x := b.MinX + rand.Float32()*b.Width()
	y := b.MinY + rand.Float32()*b.Height()
	g.SpawnMotherCellAt(x, y)
}
