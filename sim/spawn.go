package sim

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/world"
)

// topUpFood spawns food cells up to the configured population band,
// scattering spawn_amount cells per call at random size and position whenever
// the live count drifts below the minimum.
func (g *Game) topUpFood() {
	count := g.store.CountByType(world.Food)
	if count >= g.cfg.Food.MinAmount {
		return
	}
	target := count + g.cfg.Food.SpawnAmount
	if target > g.cfg.Food.MaxAmount {
		target = g.cfg.Food.MaxAmount
	}
	for ; count < target; count++ {
		size := float32(randRange(g.rng, g.cfg.Food.MinSize, g.cfg.Food.MaxSize))
		x, y := g.randomPoint(size)
		c := world.NewCell(g.store.NextID(), world.Food, mgl32.Vec2{x, y}, size, g.tick)
		c.Color = randomFoodColor(g.rng)
		g.store.Add(c)
	}
}

// topUpVirus spawns viruses up to the configured population band at fixed
// starting size, away from the border so they don't spawn half outside it.
func (g *Game) topUpVirus() {
	count := g.store.CountByType(world.Virus)
	if count >= g.cfg.Virus.MinAmount {
		return
	}
	for ; count < g.cfg.Virus.MinAmount; count++ {
		size := float32(g.cfg.Virus.MinSize)
		x, y := g.randomPoint(size)
		c := world.NewCell(g.store.NextID(), world.Virus, mgl32.Vec2{x, y}, size, g.tick)
		c.Color = world.Color{R: 51, G: 224, B: 51}
		c.Spiked = true
		g.store.Add(c)
	}
}

// randomPoint picks a uniformly random point at least margin from every
// border edge, falling back to the border center if the border is too small
// to leave any valid region (degenerate configuration).
func (g *Game) randomPoint(margin float32) (float32, float32) {
	b := g.store.Border()
	w := b.Width() - 2*margin
	h := b.Height() - 2*margin
	if w <= 0 || h <= 0 {
		return b.CenterX(), b.CenterY()
	}
	x := b.MinX + margin + g.rng.Float32()*w
	y := b.MinY + margin + g.rng.Float32()*h
	return x, y
}

func randRange(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

func randomFoodColor(rng *rand.Rand) world.Color {
	palette := []world.Color{
		{R: 240, G: 70, B: 70}, {R: 70, G: 150, B: 240}, {R: 240, G: 200, B: 60},
		{R: 160, G: 90, B: 220}, {R: 90, G: 220, B: 160}, {R: 240, G: 140, B: 60},
	}
	return palette[rng.Intn(len(palette))]
}

// spawnPlayerCell places a fresh single cell for an owner that currently has
// none, at the configured start size, at the mode's chosen point or else at
// the sampled point with the fewest nearby player cells. Returns the new
// node id.
func (g *Game) spawnPlayerCell(o *Owner) uint32 {
	pos, ok := mgl32.Vec2{}, false
	if g.mode != nil {
		if p, spawned := g.mode.OnOwnerSpawn(g, o); spawned {
			pos, ok = mgl32.Vec2{p[0], p[1]}, true
		}
	}
	if !ok {
		x, y := g.findSpawnPoint()
		pos = mgl32.Vec2{x, y}
	}
	size := float32(g.cfg.Player.StartSize)
	c := world.NewCell(g.store.NextID(), world.Player, pos, size, g.tick)
	c.Color = o.Color
	c.Skin = o.Skin
	c.Name = o.Name
	c.OwnerID = o.ID
	c.HasOwner = true
	g.store.Add(c)
	o.Cells = append(o.Cells, c.NodeID)
	o.RespawnNeeded = false
	return c.NodeID
}

// findSpawnPoint samples a handful of candidate points and keeps the one
// with the fewest nearby player cells, approximating "spawn away from
// danger" without a dedicated danger-field pass.
func (g *Game) findSpawnPoint() (float32, float32) {
	const attempts = 10
	bestX, bestY := g.randomPoint(float32(g.cfg.Player.StartSize))
	bestScore := math.MaxInt32
	radius := float32(g.cfg.Player.StartSize) * 8
	for i := 0; i < attempts; i++ {
		x, y := g.randomPoint(float32(g.cfg.Player.StartSize))
		n := 0
		for _, id := range g.store.Grid().Query(x, y, radius) {
			if c := g.store.Get(id); c != nil && c.Type == world.Player {
				n++
			}
		}
		if n < bestScore {
			bestScore, bestX, bestY = n, x, y
		}
		if bestScore == 0 {
			break
		}
	}
	return bestX, bestY
}

// spawnMotherCell places a fixed mother-cell entity, used by the
// Experimental game mode; it is not part of the baseline population loop.
func (g *Game) spawnMotherCell(x, y float32) uint32 {
	size := float32(149)
	c := world.NewCell(g.store.NextID(), world.MotherCell, mgl32.Vec2{x, y}, size, g.tick)
	c.Color = world.Color{R: 205, G: 85, B: 85}
	c.MinSize = size
	g.store.Add(c)
	return c.NodeID
}

// spawnMotherFood places one small food cell at pos with a boost toward
// dir, used by a mother cell shedding mass in the Experimental mode.
func (g *Game) spawnMotherFood(pos, dir mgl32.Vec2, distance float32) uint32 {
	size := float32(randRange(g.rng, 10, 20))
	c := world.NewCell(g.store.NextID(), world.Food, pos, size, g.tick)
	c.Color = randomFoodColor(g.rng)
	c.SetBoostDirection(distance, dir)
	g.store.Add(c)
	return c.NodeID
}
