package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/world"
)

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }

// stepBoosts advances every boosted cell and retires the ones whose boost
// has fully decayed, notifying the spatial index of the resulting move.
func (g *Game) stepBoosts() {
	border := g.store.Border()
	for _, c := range append([]*world.Cell(nil), g.store.Moving()...) {
		if c.IsRemoved {
			continue
		}
		still := c.StepBoost(border)
		g.store.UpdatePosition(c)
		if !still {
			g.store.DropBoost(c)
		}
	}
}

// moveOwners advances every non-frozen owner's cells toward its mouse
// target at a speed derived from cell size, matching the reference
// convention that smaller cells move proportionally faster.
func (g *Game) moveOwners() {
	border := g.store.Border()
	playerSpeed := float32(g.cfg.Player.Speed)
	for _, o := range g.owners {
		if o.Frozen || o.IsSpectating {
			continue
		}
		mult := float32(1)
		if g.mode != nil {
			mult = g.mode.SpeedMultiplier(g, o.ID)
		}
		for _, id := range o.Cells {
			c := g.store.Get(id)
			if c == nil {
				continue
			}
			g.moveCellToward(c, o.Mouse, playerSpeed, mult, border)
			g.store.UpdatePosition(c)
		}
	}
}

// moveCellToward steps c one tick closer to target. Speed is
// 2.2 * size^-0.439 * 40 * (player_speed/30), ramped up over the first 32
// units of approach distance (min(dist,32)/32) and scaled by the active
// mode's speed multiplier.
func (g *Game) moveCellToward(c *world.Cell, target mgl32.Vec2, playerSpeed, modeMult float32, border world.Border) {
	delta := target.Sub(c.Position)
	dist := delta.Len()
	if dist < 1 {
		return
	}
	baseSpeed := 2.2 * pow32(c.Size, -0.439) * 40
	ramp := dist
	if ramp > 32 {
		ramp = 32
	}
	speed := baseSpeed * (playerSpeed / 30) * (ramp / 32) * modeMult
	if speed > dist {
		speed = dist
	}
	dir := delta.Mul(1 / dist)
	c.Position = c.Position.Add(dir.Mul(speed))
	c.ClampToBorder(border)
}

func pow32(base, exp float32) float32 { return float32(math.Pow(float64(base), float64(exp))) }

// updateMergeEligibility flips CanRemerge on for cells whose remerge timer
// has elapsed. A cell also needs split_restore_ticks of age regardless of
// RemergeAtTick, a short floor (1 tick under mobile physics, 13 otherwise)
// that prevents a same-tick double split from immediately remerging.
func (g *Game) updateMergeEligibility() {
	restoreTicks := g.splitRestoreTicks()
	for _, c := range g.store.Players() {
		if c.CanRemerge {
			continue
		}
		if g.tick >= c.RemergeAtTick && c.Age(g.tick) >= restoreTicks {
			c.CanRemerge = true
		}
	}
}

// splitRestoreTicks is the minimum age, in ticks, a freshly split cell must
// reach before it is even considered for remerge, independent of the
// merge-time timer below.
func (g *Game) splitRestoreTicks() uint64 {
	if g.cfg.Server.MobilePhysics {
		return 1
	}
	return 13
}

// mergeTimerTicks computes the absolute tick at which a cell of the given
// size becomes merge-eligible: the current tick plus
// max(merge_time, size*0.2) * 25 ticks. It is counted from the current tick
// (the split or virus pop that calls it), which for a split-off cell is
// also its birth tick.
func (g *Game) mergeTimerTicks(size float32) uint64 {
	mergeTime := g.cfg.Player.MergeTime
	sizeSeconds := float64(size) * 0.2
	seconds := mergeTime
	if sizeSeconds > seconds {
		seconds = sizeSeconds
	}
	return g.tick + uint64(seconds*25)
}
