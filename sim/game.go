package sim

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/config"
	"github.com/dm-vev/cogar/world"
)

// Game is the single write-exclusive handle to the simulation: the tick
// task is its only writer; session and bot tasks call its brief-lock
// methods (SetMouse, RequestSplit, ...) to translate an inbound packet or
// an AI decision into a state mutation without ever touching the Store
// directly.
type Game struct {
	mu sync.RWMutex

	cfg    config.Config
	border world.Border
	store  *world.Store
	mode   Mode
	log    *slog.Logger
	rng    *rand.Rand

	owners      map[uint32]*Owner
	nextOwnerID uint32

	tick uint64

	broadcaster Broadcaster
	aiTick      func(*Game)

	// Per-tick scratch buffers, owned by the tick task and reused across
	// ticks to avoid allocation.
	eaten        []EatPair
	deaths       []uint32
	removeSet    map[uint32]struct{}
	ownerLookup  map[uint32]*Owner
	cellScratch  []CellSnapshot

	tpsEMA       float64
	lastTickTook time.Duration
	tickWarned   bool

	closing chan struct{}
	done    sync.WaitGroup
}

// New constructs a Game for the given configuration and mode, with the
// border built from cfg.Border. The
// broadcaster may be nil, in which case ticks run but no records are
// published (useful in tests).
func New(cfg config.Config, mode Mode, log *slog.Logger, broadcaster Broadcaster) *Game {
	if log == nil {
		log = slog.Default()
	}
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	border := world.NewBorder(float32(cfg.Border.Width), float32(cfg.Border.Height))
	return &Game{
		cfg:         cfg,
		border:      border,
		store:       world.NewStore(border),
		mode:        mode,
		log:         log,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		owners:      make(map[uint32]*Owner, 256),
		nextOwnerID: 1,
		broadcaster: broadcaster,
		removeSet:   make(map[uint32]struct{}, 256),
		ownerLookup: make(map[uint32]*Owner, 256),
		closing:     make(chan struct{}),
	}
}

// Config returns the immutable configuration the game was constructed with.
func (g *Game) Config() config.Config { return g.cfg }

// Border returns the fixed world AABB.
func (g *Game) Border() world.Border { return g.border }

// Store returns the entity store. Callers outside the tick task must hold
// Game's lock (via Lock/RLock helpers below) before touching it.
func (g *Game) Store() *world.Store { return g.store }

// Tick returns the current simulation tick counter.
func (g *Game) Tick() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tick
}

// Mode returns the active game mode.
func (g *Game) Mode() Mode { return g.mode }

// SetMode swaps the active game mode (used by the operator /mode command).
func (g *Game) SetMode(m Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = m
}

// SetAIController wires the bot package's per-tick decision pass, invoked
// under the write lock right before split/eject requests are drained so a
// bot's decision this tick takes effect the same tick a client's would.
func (g *Game) SetAIController(f func(*Game)) { g.aiTick = f }

// Lock/Unlock/RLock/RUnlock expose the write-exclusive handle directly for
// callers (session handlers) that need to perform several related mutations
// atomically, mirroring dragonfly's Tx-scoped access but without the
// transaction-queue machinery: the concurrency model here is a single
// ticking writer plus brief reader/writer bursts from connection tasks,
// not dragonfly's generational transaction log.
func (g *Game) Lock()    { g.mu.Lock() }
func (g *Game) Unlock()  { g.mu.Unlock() }
func (g *Game) RLock()   { g.mu.RLock() }
func (g *Game) RUnlock() { g.mu.RUnlock() }

// AddOwner registers a new client or bot owner and returns it. Callers must
// hold the lock.
func (g *Game) AddOwner(isBot bool) *Owner {
	id := g.nextOwnerID
	g.nextOwnerID++
	if g.nextOwnerID == 0 {
		g.nextOwnerID = 1
	}
	o := &Owner{ID: id, IsBot: isBot, Color: world.Color{R: 200, G: 200, B: 200}}
	g.owners[id] = o
	return o
}

// Owner looks up an owner by id. Callers must hold at least a read lock.
func (g *Game) Owner(id uint32) *Owner { return g.owners[id] }

// Owners returns the live owner table. Callers must hold at least a read
// lock; gamemode hooks are always invoked with the write lock already held
// by the tick task.
func (g *Game) Owners() map[uint32]*Owner { return g.owners }

// EatenThisTick returns the eat events recorded during the current tick's
// collision pass, valid for the duration of a Mode hook call.
func (g *Game) EatenThisTick() []EatPair { return g.eaten }

// SpawnPlayerCellFor places a first cell for an owner with none, e.g. right
// after Join. Caller must hold Game's write lock.
func (g *Game) SpawnPlayerCellFor(o *Owner) uint32 { return g.spawnPlayerCell(o) }

// SpawnMotherCellAt places a fixed-size mother cell, used by the
// Experimental mode's periodic top-up. Caller must hold Game's write lock.
func (g *Game) SpawnMotherCellAt(x, y float32) uint32 { return g.spawnMotherCell(x, y) }

// SpawnFoodFrom places one food cell at pos with a boost of distance toward
// dir, used by mother-cell food emission. Caller must hold Game's write
// lock.
func (g *Game) SpawnFoodFrom(pos, dir mgl32.Vec2, distance float32) uint32 {
	return g.spawnMotherFood(pos, dir, distance)
}

// RemoveOwner destroys every cell owned by id, detaches its minions from
// their controller, and forgets the owner record. Callers must hold the
// write lock.
func (g *Game) RemoveOwner(id uint32) {
	o, ok := g.owners[id]
	if !ok {
		return
	}
	for _, cellID := range append([]uint32(nil), o.Cells...) {
		g.store.Remove(cellID)
	}
	for _, minionID := range o.Minions {
		if m, ok := g.owners[minionID]; ok {
			for _, cellID := range append([]uint32(nil), m.Cells...) {
				g.store.Remove(cellID)
			}
			delete(g.owners, minionID)
		}
	}
	if o.IsMinion {
		if controller, ok := g.owners[o.MinionOf]; ok {
			controller.Minions = removeU32(controller.Minions, id)
		}
	}
	delete(g.owners, id)
}

func removeU32(s []uint32, v uint32) []uint32 {
	for i, e := range s {
		if e == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// SetMouse records the owner's target point in world coordinates (already
// un-scrambled by the caller), used by movement each tick.
func (g *Game) SetMouse(ownerID uint32, x, y float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if o, ok := g.owners[ownerID]; ok {
		o.Mouse = mgl32.Vec2{x, y}
	}
}

// RequestSplit flags the owner to split on the next tick's bot/command
// processing step.
func (g *Game) RequestSplit(ownerID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if o, ok := g.owners[ownerID]; ok {
		o.SplitRequested = true
	}
}

// RequestEject flags the owner to eject on the next tick, subject to the
// per-owner cooldown.
func (g *Game) RequestEject(ownerID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if o, ok := g.owners[ownerID]; ok {
		o.EjectRequested = true
	}
}

// SetFrozen toggles whether an owner's cells skip movement this tick.
func (g *Game) SetFrozen(ownerID uint32, frozen bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if o, ok := g.owners[ownerID]; ok {
		o.Frozen = frozen
	}
}

// Close stops a running tick loop started with Run.
func (g *Game) Close() {
	close(g.closing)
	g.done.Wait()
}
