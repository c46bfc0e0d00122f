// Package bot implements the server-side AI players that fill empty slots:
// a per-bot influence-field decision pass that steers toward food and weak
// prey, away from danger, and opportunistically splits onto a cornered
// target, ported from the reference bot's behavior rather than running a
// real client through the same wire protocol.
package bot

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/sim"
	"github.com/dm-vev/cogar/world"
)

var names = []string{
	"Bot", "Hunter", "Hungry", "Nomnom", "Blob", "Cell", "Eater", "Seeker",
	"Roamer", "Wanderer", "Ghost", "Shadow", "Swift", "Tiny", "Big", "Mega",
}

const searchRadius = 2000

// bot is the AI state tracked for one owner id; it never touches the Store
// or *sim.Owner outside of Manager.Tick, which always runs under the Game's
// write lock from the tick task.
type bot struct {
	ownerID uint32

	decisionCooldown int
	splitCooldown    int
	targetPursuit    int
	splitTargetID    uint32
	hasSplitTarget   bool
}

// Manager owns every AI-controlled owner and runs their decision pass once
// per tick, wired in via sim.Game.SetAIController.
type Manager struct {
	bots map[uint32]*bot
}

// NewManager constructs an empty bot manager.
func NewManager() *Manager {
	return &Manager{bots: make(map[uint32]*bot, 64)}
}

// Spawn adds one AI-controlled owner to the game and returns its id. Caller
// must hold Game's write lock.
func (m *Manager) Spawn(g *sim.Game) uint32 {
	o := g.AddOwner(true)
	o.Name = names[rand.Intn(len(names))] + strconv.Itoa(int(o.ID)%100)
	o.Color = randomColor()
	g.SpawnPlayerCellFor(o)
	m.bots[o.ID] = &bot{ownerID: o.ID}
	return o.ID
}

// Remove drops a bot from AI control; it does not remove the owner itself
// (callers wanting that should call Game.RemoveOwner separately).
func (m *Manager) Remove(ownerID uint32) { delete(m.bots, ownerID) }

// Count reports the number of AI-controlled owners currently tracked.
func (m *Manager) Count() int { return len(m.bots) }

// Tick runs one decision pass for every tracked bot, skipping minions
// (those are steered by their controlling session, not independent AI).
// Must be called with Game's write lock already held, which is always true
// when invoked as the AI controller from the tick loop.
func (m *Manager) Tick(g *sim.Game) {
	for id, b := range m.bots {
		o := g.Owner(id)
		if o == nil {
			delete(m.bots, id)
			continue
		}
		if o.IsMinion {
			continue
		}
		b.step(g, o)
	}
}

func (b *bot) step(g *sim.Game, o *sim.Owner) {
	if b.splitCooldown > 0 {
		b.splitCooldown--
	}

	if len(o.Cells) == 0 {
		if !o.IsSpectating {
			g.SpawnPlayerCellFor(o)
		}
		return
	}

	if b.decisionCooldown > 0 {
		b.decisionCooldown--
	}

	store := g.Store()
	pos, size := largestCell(store, o.Cells)
	if size <= 0 {
		return
	}

	if b.hasSplitTarget {
		if target := store.Get(b.splitTargetID); target != nil && b.targetPursuit > 0 {
			b.targetPursuit--
			o.Mouse = target.Position
			return
		}
		b.hasSplitTarget = false
		b.targetPursuit = 0
	}

	if b.decisionCooldown > 0 {
		return
	}
	b.decisionCooldown = 2

	cfg := g.Config()
	merge := cfg.Player.MergeTime <= 0
	canSplit := float32(len(o.Cells))*1.5 < 9 && b.splitCooldown == 0
	splitSizeCheck := size / 1.3

	nearby := store.Grid().Query(pos.X(), pos.Y(), searchRadius)
	numViewNodes := float32(len(nearby))
	if numViewNodes < 1 {
		numViewNodes = 1
	}

	var result mgl32.Vec2
	var preyID uint32
	var preySize float32
	var preyPos mgl32.Vec2
	haveOwnCell := func(id uint32) bool {
		for _, c := range o.Cells {
			if c == id {
				return true
			}
		}
		return false
	}

	for _, checkID := range nearby {
		if haveOwnCell(checkID) {
			continue
		}
		c := store.Get(checkID)
		if c == nil {
			continue
		}
		if c.HasOwner && c.OwnerID == o.ID {
			continue
		}

		var influence float32
		switch c.Type {
		case world.Player:
			if o.HasTeam && c.HasOwner {
				if other := g.Owner(c.OwnerID); other != nil && other.HasTeam && other.Team == o.Team {
					continue
				}
			}
			switch {
			case size > c.Size*1.3:
				divisor := float32(math.Log(float64(numViewNodes)))
				if divisor < 1 {
					divisor = 1
				}
				influence = c.Size / divisor
			case c.Size > size*1.3:
				influence = -float32(math.Log(float64(c.Size / size)))
			default:
				influence = -c.Size / size
			}
		case world.Food:
			influence = 1
		case world.Virus, world.MotherCell:
			if size > c.Size {
				influence = -100
			}
		case world.EjectedMass:
			if size > c.Size*1.3 {
				influence = 2
			}
		}

		if influence == 0 {
			continue
		}

		displacement := c.Position.Sub(pos)
		dist := displacement.Len()
		if influence < 0 {
			dist -= size + c.Size
		}
		if dist < 1 {
			dist = 1
		}
		influence /= dist

		dirVec := displacement
		if dirVec.Len() > 0.0001 {
			dirVec = dirVec.Normalize()
		}
		result = result.Add(dirVec.Mul(influence))

		if canSplit && c.Type == world.Player && splitSizeCheck > c.Size {
			minEatFraction := float32(0.4)
			if merge {
				minEatFraction = 0.1
			}
			if size*minEatFraction < c.Size && splitKill(size, dist, cfg.Player.SplitSpeed) && c.Size > preySize {
				preySize = c.Size
				preyID = checkID
				preyPos = c.Position
			}
		}
	}

	if preyID != 0 {
		o.Mouse = preyPos
		b.splitTargetID = preyID
		b.hasSplitTarget = true
		if merge {
			b.targetPursuit, b.splitCooldown = 5, 5
		} else {
			b.targetPursuit, b.splitCooldown = 20, 15
		}
		o.SplitRequested = true
	} else if result.Len() > 0.01 {
		result = result.Normalize()
		o.Mouse = pos.Add(result.Mul(2000))
	} else {
		angle := rand.Float32() * 2 * math.Pi
		o.Mouse = pos.Add(mgl32.Vec2{float32(math.Cos(float64(angle))), float32(math.Sin(float64(angle)))}.Mul(400))
	}

	border := g.Border()
	o.Mouse[0] = clamp(o.Mouse[0], border.MinX, border.MaxX)
	o.Mouse[1] = clamp(o.Mouse[1], border.MinY, border.MaxY)
}

// splitKill reports whether a split cell launched now could actually close
// dist before the prey cell gets away: the split reach is 1.3×splitSpeed,
// floored by the size-derived minimum size/√2×4.5 every split gets
// regardless of configured speed.
func splitKill(size, dist float32, splitSpeed float64) bool {
	speed := 1.3 * float32(splitSpeed)
	if min := size / 1.4142 * 4.5; min > speed {
		speed = min
	}
	return speed >= dist
}

func largestCell(store *world.Store, ids []uint32) (mgl32.Vec2, float32) {
	var bestPos mgl32.Vec2
	var bestSize float32
	for _, id := range ids {
		if c := store.Get(id); c != nil && c.Size > bestSize {
			bestSize = c.Size
			bestPos = c.Position
		}
	}
	return bestPos, bestSize
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func randomColor() world.Color {
	return world.Color{R: uint8(rand.Intn(256)), G: uint8(rand.Intn(256)), B: uint8(rand.Intn(256))}
}
