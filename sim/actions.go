package sim

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/world"
)

// processRequests consumes each owner's pending split/eject flags, applying
// them in id order so replay of a tick's outcome is deterministic.
func (g *Game) processRequests() {
	ids := g.sortedOwnerIDs()
	for _, id := range ids {
		o := g.owners[id]
		if o.SplitRequested {
			o.SplitRequested = false
			g.doSplit(o)
		}
		if o.EjectRequested {
			o.EjectRequested = false
			g.doEject(o)
		}
	}
}

func (g *Game) sortedOwnerIDs() []uint32 {
	ids := make([]uint32, 0, len(g.owners))
	for id := range g.owners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// doSplit splits every eligible cell of o toward its mouse direction, each
// half getting a boost of split_speed and resetting its own merge timer,
// stopping once the owner's cell count would exceed max_cells.
func (g *Game) doSplit(o *Owner) {
	minSplit := float32(g.cfg.Player.MinSplitSize)
	maxCells := g.cfg.Player.MaxCells
	current := append([]uint32(nil), o.Cells...)
	for _, id := range current {
		if len(o.Cells) >= maxCells {
			break
		}
		c := g.store.Get(id)
		if c == nil || c.Size < minSplit {
			continue
		}
		dir := splitDirection(c.Position, o.Mouse)
		half := c.Radius / 2
		c.SetRadius(half)
		g.store.UpdatePosition(c)
		c.CanRemerge = false
		c.RemergeAtTick = g.mergeTimerTicks(c.Size)

		nc := world.NewCell(g.store.NextID(), world.Player, c.Position, c.Size, g.tick)
		nc.Color, nc.Skin, nc.Name = c.Color, c.Skin, c.Name
		nc.OwnerID, nc.HasOwner = o.ID, true
		boostDistance := float32(g.cfg.Player.SplitSpeed) * pow32(nc.Size, 0.0122)
		nc.SetBoostDirection(boostDistance, dir)
		nc.CanRemerge = false
		nc.RemergeAtTick = g.mergeTimerTicks(nc.Size)
		g.store.Add(nc)
		o.Cells = append(o.Cells, nc.NodeID)
	}
}

// splitDirection returns the unit direction from pos toward target, or an
// arbitrary fixed direction when the two coincide (mouse resting exactly on
// the cell, which would otherwise normalize a zero vector).
func splitDirection(pos, target mgl32.Vec2) mgl32.Vec2 {
	d := target.Sub(pos)
	if d.Len() < 0.001 {
		return mgl32.Vec2{1, 0}
	}
	return d.Normalize()
}

// doEject fires one ejected-mass blob from every eligible cell of o toward
// its mouse direction, subject to the eject cooldown measured in ticks.
func (g *Game) doEject(o *Owner) {
	cooldownTicks := uint64(g.cfg.Eject.Cooldown)
	if g.tick < o.LastEjectTick+cooldownTicks {
		return
	}
	minEject := float32(g.cfg.Player.MinEjectSize)
	lossRadius := float32(g.cfg.Eject.SizeLoss) * float32(g.cfg.Eject.SizeLoss)
	fired := false
	for _, id := range o.Cells {
		c := g.store.Get(id)
		if c == nil || c.Size < minEject {
			continue
		}
		if c.Radius <= lossRadius {
			continue
		}
		dir := splitDirection(c.Position, o.Mouse)
		spawnPos := c.Position.Add(dir.Mul(c.Size))
		c.SetRadius(c.Radius - lossRadius)
		g.store.UpdatePosition(c)
		g.spawnEjectedMass(spawnPos, dir, c.Color)
		fired = true
	}
	if fired {
		o.LastEjectTick = g.tick
	}
}
