package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/world"
)

// defaultEatMultiplier is the size ratio an eater must reach over its prey
// before eating is permitted, used when the mode's Mode.EatMultiplier
// returns a non-positive value (or there is no mode).
const defaultEatMultiplier = 1.15

// resolveCollisions runs the eat/push sweep: resolvePlayerPairs runs twice,
// since one pass of rigid separation can leave a pair still overlapping
// when three or more of an owner's cells are pressed together, then a
// virus-vs-ejected-mass pass handles the one interaction that never touches
// a player cell directly.
func (g *Game) resolveCollisions() {
	g.eaten = g.eaten[:0]
	g.deaths = g.deaths[:0]
	removed := g.removeSet
	for k := range removed {
		delete(removed, k)
	}

	g.resolvePlayerPairs()
	g.resolvePlayerPairs()
	g.resolveVirusEjectPairs()

	g.finalizeDeaths()
}

func eatMultiplierFor(mode Mode) float32 {
	if mode == nil {
		return defaultEatMultiplier
	}
	m := mode.EatMultiplier()
	if m <= 0 {
		return defaultEatMultiplier
	}
	return m
}

// resolvePlayerPairs iterates every live player cell, queries the grid for
// overlapping neighbours, and classifies each pair exactly once (by
// requiring NodeID ordering on ties) into an eat or a rigid push.
func (g *Game) resolvePlayerPairs() {
	mult := eatMultiplierFor(g.mode)
	removed := g.removeSet

	players := g.store.Players()
	for _, a := range players {
		if a.IsRemoved {
			continue
		}
		if _, dead := removed[a.NodeID]; dead {
			continue
		}
		radius := 3 * a.Size
		if floor := a.Size + 200; floor > radius {
			radius = floor
		}
		for _, otherID := range g.store.Grid().Query(a.Position.X(), a.Position.Y(), radius) {
			if otherID == a.NodeID {
				continue
			}
			b := g.store.Get(otherID)
			if b == nil || b.IsRemoved {
				continue
			}
			if _, dead := removed[b.NodeID]; dead {
				continue
			}
			if b.Type != world.Player && b.Type != world.Food && b.Type != world.Virus && b.Type != world.EjectedMass {
				continue
			}
			if b.Type == world.Player && b.NodeID < a.NodeID {
				// Player/player pairs are handled once, from the
				// lower-id cell's perspective, to avoid a double
				// evaluation with eater/prey swapped.
				continue
			}
			g.classifyPair(a, b, mult, removed)
		}
	}
}

// classifyPair decides what happens between cells a and b: eating (in
// either direction), rigid separation (same owner, not yet merge-eligible),
// or nothing (overlap below the threshold, or no interaction rule applies).
func (g *Game) classifyPair(a, b *world.Cell, mult float32, removed map[uint32]struct{}) {
	dist := a.Position.Sub(b.Position).Len()

	switch {
	case a.Type == world.Player && b.Type == world.Player && a.HasOwner && b.HasOwner && a.OwnerID == b.OwnerID:
		g.resolveSameOwnerPair(a, b, dist, removed)
	case a.Type == world.Player && b.Type == world.Food:
		g.tryEat(a, b, dist, 0, removed)
	case a.Type == world.Player && b.Type == world.EjectedMass:
		g.tryEat(a, b, dist, mult, removed)
	case a.Type == world.Player && b.Type == world.Virus:
		g.tryPlayerEatsVirus(a, b, dist, mult, removed)
	case a.Type == world.Player && b.Type == world.Player:
		g.tryPlayerEatsPlayer(a, b, dist, mult, removed)
	}
}

// bornThisTick reports whether c was created during the tick currently in
// progress: ejected mass gets one full tick of immunity before anything,
// including a virus, can consume it.
func (g *Game) bornThisTick(c *world.Cell) bool {
	return c.Age(g.tick) < 1
}

// tryEat consumes b into a when they overlap enough and a is at least
// ratio larger (ratio 0 means "always", used for food, which has no size
// gate in the reference rules).
func (g *Game) tryEat(a, b *world.Cell, dist, ratio float32, removed map[uint32]struct{}) {
	if b.Type == world.EjectedMass && g.bornThisTick(b) {
		return
	}
	if !overlapsEnough(a, b, dist, g.cfg.Server.MobilePhysics) {
		return
	}
	if ratio > 0 && a.Size < b.Size*ratio {
		return
	}
	g.applyEat(a, b, false)
	removed[b.NodeID] = struct{}{}
}

// tryPlayerEatsVirus handles the two outcomes of a player touching a virus:
// popping (a is big enough and feeding splits it) or being consumed as
// ordinary prey is never valid in the other direction, since viruses cannot
// eat players.
func (g *Game) tryPlayerEatsVirus(a, b *world.Cell, dist, mult float32, removed map[uint32]struct{}) {
	if !overlapsEnough(a, b, dist, g.cfg.Server.MobilePhysics) {
		return
	}
	if a.Size < b.Size*mult {
		return
	}
	g.eaten = append(g.eaten, EatPair{PreyID: b.NodeID, EaterID: a.NodeID, VirusPop: true})
	removed[b.NodeID] = struct{}{}
	g.popVirus(a, b)
}

// tryPlayerEatsPlayer handles player-vs-player of different owners, gated
// by both the size ratio and the active mode's team/FFA eat rule.
func (g *Game) tryPlayerEatsPlayer(a, b *world.Cell, dist, mult float32, removed map[uint32]struct{}) {
	var eater, prey *world.Cell
	switch {
	case a.Size >= b.Size*mult:
		eater, prey = a, b
	case b.Size >= a.Size*mult:
		eater, prey = b, a
	default:
		return
	}
	if !overlapsEnough(eater, prey, dist, g.cfg.Server.MobilePhysics) {
		return
	}
	if g.mode != nil && eater.HasOwner && prey.HasOwner && !g.mode.CanEat(g, eater.OwnerID, prey.OwnerID) {
		return
	}
	if _, dead := removed[prey.NodeID]; dead {
		return
	}
	g.applyEat(eater, prey, false)
	removed[prey.NodeID] = struct{}{}
	if eater.HasOwner && prey.HasOwner {
		last := &g.eaten[len(g.eaten)-1]
		last.EaterOwnerID, last.PreyOwnerID = eater.OwnerID, prey.OwnerID
	}
}

// overlapsEnough reports whether the distance between two cell centers puts
// them close enough for the smaller one to be considered eaten: center
// distance must be less than the bigger radius minus a fraction of the
// smaller one, the reference server's "mostly engulfed" rule rather than
// requiring full containment. Mobile clients use a much looser divisor,
// since touch controls make precise herding impractical.
func overlapsEnough(a, b *world.Cell, dist float32, mobilePhysics bool) bool {
	bigger, smaller := a.Size, b.Size
	if smaller > bigger {
		bigger, smaller = smaller, bigger
	}
	div := float32(3)
	if mobilePhysics {
		div = 20
	}
	return dist < bigger-smaller/div
}

// applyEat grows eater by prey's mass (radius-additive, preserving total
// mass) and records the event; it does not remove prey from the store,
// leaving that to finalizeDeaths so a cell eaten twice in one tick (a food
// pellet queried from two overlapping eaters) is only ever merged once.
func (g *Game) applyEat(eater, prey *world.Cell, virusPop bool) {
	eater.SetRadius(eater.Radius + prey.Radius)
	g.store.UpdatePosition(eater)
	g.eaten = append(g.eaten, EatPair{PreyID: prey.NodeID, EaterID: eater.NodeID, VirusPop: virusPop})
}

// resolveSameOwnerPair either merges two of one owner's own cells (once
// merge-eligible and overlapping enough) or pushes them apart along the raw,
// integer-truncated separation vector, split between the pair by mass ratio
// so the lighter cell gives way more than the heavier one.
func (g *Game) resolveSameOwnerPair(a, b *world.Cell, dist float32, removed map[uint32]struct{}) {
	allowMerge := g.mode == nil || g.mode.AllowMerge()
	if allowMerge && a.CanRemerge && b.CanRemerge && overlapsEnough(a, b, dist, g.cfg.Server.MobilePhysics) {
		if a.Radius >= b.Radius {
			g.applyEat(a, b, false)
			removed[b.NodeID] = struct{}{}
		} else {
			g.applyEat(b, a, false)
			removed[a.NodeID] = struct{}{}
		}
		return
	}

	r := a.Size + b.Size
	dx := b.Position.X() - a.Position.X()
	dy := b.Position.Y() - a.Position.Y()
	d := sqrt32(dx*dx + dy*dy)
	if d >= r || d < 0.01 {
		return
	}

	pushBase := (r - d) / d
	if overlapDepth := r - d; overlapDepth < pushBase {
		pushBase = overlapDepth
	}
	overlapRatio := (r - d) / r
	if overlapRatio < 0 {
		overlapRatio = 0
	}
	if overlapRatio > 1 {
		overlapRatio = 1
	}
	adjustedPush := pushBase * pressureMultiplier(overlapRatio)

	// Truncating toward zero, rather than the raw float separation, is a
	// preserved quirk of the reference push (its JS origin used ~~dx).
	fx := float32(int32(dx))
	fy := float32(int32(dy))
	pushX := fx * adjustedPush
	pushY := fy * adjustedPush

	totalMass := a.Mass + b.Mass
	if totalMass <= 0 {
		return
	}
	aRatio := b.Mass / totalMass
	bRatio := a.Mass / totalMass

	a.Position = mgl32.Vec2{a.Position.X() - pushX*aRatio, a.Position.Y() - pushY*aRatio}
	b.Position = mgl32.Vec2{b.Position.X() + pushX*bRatio, b.Position.Y() + pushY*bRatio}
	border := g.store.Border()
	a.ClampToBorder(border)
	b.ClampToBorder(border)
	g.store.UpdatePosition(a)
	g.store.UpdatePosition(b)
}

// pressureMultiplier scales rigid-push strength by how deeply two cells
// overlap: freshly split cells (overlap > 0.75) get a gentle push so they
// don't explode apart, while cells stuck at a shallow overlap get pushed
// hard to finish separating.
func pressureMultiplier(overlapRatio float32) float32 {
	switch {
	case overlapRatio > 0.75:
		return 0.5 + (1-overlapRatio)*2.0
	case overlapRatio > 0.6:
		return 0.8 + (0.75-overlapRatio)*1.4
	case overlapRatio > 0.3:
		return 0.9 + (0.6-overlapRatio)*3.4
	default:
		return 1.5 + overlapRatio*1.667
	}
}

// popVirus splits the feeding player cell into a power-of-two number of new
// cells (bounded by the owner's remaining cell slots and a minimum mass per
// piece, virus_split_div), shrinking the parent by the same mass it hands
// out to the new cells rather than dividing everyone into equal pieces, and
// launches each new cell at the same split-boost distance a manual split
// uses.
func (g *Game) popVirus(feeder, virus *world.Cell) {
	o := g.ownerOf(feeder)
	if o == nil {
		feeder.SetRadius(feeder.Radius + virus.Radius)
		g.store.UpdatePosition(feeder)
		return
	}
	slots := g.cfg.Virus.MaxCells - len(o.Cells)
	if slots <= 0 {
		feeder.SetRadius(feeder.Radius + virus.Radius)
		g.store.UpdatePosition(feeder)
		return
	}

	combinedRadius := feeder.Radius + virus.Radius
	splitFloor := float32(g.cfg.Virus.SplitDiv) * 100 // mass floor, in radius units (radius = mass*100)

	splitCount := 2
	splitRadius := combinedRadius / 2
	for splitRadius > splitFloor && 2*splitCount < slots {
		splitCount *= 2
		splitRadius = combinedRadius / float32(splitCount)
	}
	if splitCount > slots {
		splitCount = slots
	}
	splitRadius = combinedRadius / float32(splitCount+1)

	minSize := float32(g.cfg.Player.MinSize)
	newSize := sqrt32(splitRadius)
	if newSize < minSize {
		newSize = minSize
		splitRadius = newSize * newSize
	}

	parentRadius := combinedRadius - float32(splitCount)*splitRadius
	if parentRadius < minSize*minSize {
		parentRadius = minSize * minSize
	}
	feeder.SetRadius(parentRadius)
	g.store.UpdatePosition(feeder)
	feeder.RemergeAtTick = g.mergeTimerTicks(feeder.Size)
	feeder.CanRemerge = false

	boostDistance := float32(g.cfg.Player.SplitSpeed) * pow32(newSize, 0.0122)
	for i := 0; i < splitCount; i++ {
		angle := g.rng.Float32() * 2 * math.Pi
		c := world.NewCell(g.store.NextID(), world.Player, feeder.Position, newSize, g.tick)
		c.Color, c.Skin, c.Name = feeder.Color, feeder.Skin, feeder.Name
		c.OwnerID, c.HasOwner = o.ID, true
		c.SetBoost(boostDistance, angle)
		c.RemergeAtTick = g.mergeTimerTicks(c.Size)
		g.store.Add(c)
		o.Cells = append(o.Cells, c.NodeID)
	}
}

// resolveVirusEjectPairs lets viruses absorb ejected mass until they reach
// the configured split threshold, at which point splitVirus resets the
// virus to its minimum size in place and shoots a new virus at a random
// angle.
func (g *Game) resolveVirusEjectPairs() {
	removed := g.removeSet
	for _, v := range g.store.Viruses() {
		if v.IsRemoved {
			continue
		}
		for _, id := range g.store.Grid().Query(v.Position.X(), v.Position.Y(), v.Size) {
			if _, dead := removed[id]; dead {
				continue
			}
			e := g.store.Get(id)
			if e == nil || e.Type != world.EjectedMass || e.IsRemoved {
				continue
			}
			if g.bornThisTick(e) {
				continue
			}
			dist := v.Position.Sub(e.Position).Len()
			if !overlapsEnough(v, e, dist, g.cfg.Server.MobilePhysics) {
				continue
			}
			v.SetRadius(v.Radius + e.Radius)
			g.store.UpdatePosition(v)
			removed[e.NodeID] = struct{}{}
			g.eaten = append(g.eaten, EatPair{PreyID: e.NodeID, EaterID: v.NodeID})
			if v.Size >= float32(g.cfg.Virus.MaxSize) {
				g.splitVirus(v)
			}
			break
		}
	}
}

// splitVirus pops an overfed virus into two: the original, reset to minimum
// size, and a fresh virus launched at a random angle.
func (g *Game) splitVirus(v *world.Cell) {
	minSize := float32(g.cfg.Virus.MinSize)
	v.SetSize(minSize)
	g.store.UpdatePosition(v)

	angle := g.rng.Float32() * 2 * math.Pi
	nc := world.NewCell(g.store.NextID(), world.Virus, v.Position, minSize, g.tick)
	nc.Color = v.Color
	nc.Spiked = true
	nc.SetBoost(float32(g.cfg.Virus.EjectSpeed), angle)
	g.store.Add(nc)
}

// ownerOf resolves the Owner record for a player cell, or nil if it belongs
// to no live owner (shouldn't normally happen, but guards against a stale
// reference surviving a disconnect within the same tick).
func (g *Game) ownerOf(c *world.Cell) *Owner {
	if !c.HasOwner {
		return nil
	}
	return g.owners[c.OwnerID]
}

// finalizeDeaths removes every cell marked for removal this tick and
// notifies the active mode of any owner whose cell count reached zero.
func (g *Game) finalizeDeaths() {
	for id := range g.removeSet {
		c := g.store.Get(id)
		if c == nil {
			continue
		}
		if c.HasOwner {
			if o := g.owners[c.OwnerID]; o != nil {
				o.Cells = removeU32(o.Cells, id)
			}
		}
		g.store.Remove(id)
	}
	for _, o := range g.owners {
		if !o.IsBot && !o.IsSpectating && len(o.Cells) == 0 && !o.RespawnNeeded {
			o.RespawnNeeded = true
			g.deaths = append(g.deaths, o.ID)
			if g.mode != nil {
				g.mode.OnOwnerDeath(g, o.ID)
			}
		}
	}
}
