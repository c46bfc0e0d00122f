package sim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/world"
)

// decayInterval is how often, in ticks, player cells shrink by decay_rate.
const decayInterval = 25

// applyDecay shrinks every player cell's mass by the configured decay rate,
// run once every decayInterval ticks rather than every tick so the effect
// is visible in discrete steps instead of a near-zero-per-tick crawl.
func (g *Game) applyDecay() {
	if g.tick%decayInterval != 0 {
		return
	}
	rate := float32(g.cfg.Player.DecayRate)
	if rate <= 0 {
		return
	}
	minRadius := float32(g.cfg.Player.MinSize) * float32(g.cfg.Player.MinSize)
	for _, c := range g.store.Players() {
		newRadius := c.Radius * (1 - rate)
		if newRadius < minRadius {
			newRadius = minRadius
		}
		if newRadius == c.Radius {
			continue
		}
		c.SetRadius(newRadius)
		g.store.UpdatePosition(c)
	}
}

// spawnEjectedMass creates one ejected-mass cell launched from pos toward
// dir, used by doEject for every owner's eject request (players and
// minions alike).
func (g *Game) spawnEjectedMass(pos, dir mgl32.Vec2, ownerColor world.Color) uint32 {
	size := float32(g.cfg.Eject.Size)
	c := world.NewCell(g.store.NextID(), world.EjectedMass, pos, size, g.tick)
	c.Color = ownerColor
	c.SetBoostDirection(float32(g.cfg.Eject.Speed), dir)
	g.store.Add(c)
	return c.NodeID
}
