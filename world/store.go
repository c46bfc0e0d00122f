package world

import (
	"github.com/brentp/intintmap"
)

// indexMap is a thin wrapper around intintmap.Map giving each type vector an
// id → index lookup without the bucket/pointer overhead of a Go map. The
// underlying map has no delete primitive, so a removed id is tombstoned with
// -1 rather than evicted; typeVector.remove re-inserts the swapped id's
// new index on every swap-remove, which keeps the tombstone count bounded by
// churn rather than by peak population.
type indexMap struct{ m *intintmap.Map }

func newIndexMap(capacity int) indexMap {
	return indexMap{m: intintmap.New(capacity, 0.75)}
}

func (im indexMap) get(id uint32) (int, bool) {
	v, ok := im.m.Get(int64(id))
	if !ok || v < 0 {
		return 0, false
	}
	return int(v), true
}

func (im indexMap) set(id uint32, idx int) { im.m.Put(int64(id), int64(idx)) }
func (im indexMap) del(id uint32)          { im.m.Put(int64(id), -1) }

// typeVector holds every live cell of one Type plus its id→index map, so
// removal is an O(1) swap-remove with index fix-up.
type typeVector struct {
	cells []*Cell
	index indexMap
}

func newTypeVector(capacity int) typeVector {
	return typeVector{cells: make([]*Cell, 0, capacity), index: newIndexMap(capacity)}
}

func (v *typeVector) add(c *Cell) {
	v.index.set(c.NodeID, len(v.cells))
	v.cells = append(v.cells, c)
}

func (v *typeVector) remove(id uint32) {
	idx, ok := v.index.get(id)
	if !ok {
		return
	}
	last := len(v.cells) - 1
	v.cells[idx] = v.cells[last]
	v.cells[last] = nil
	v.cells = v.cells[:last]
	v.index.del(id)
	if idx < len(v.cells) {
		v.index.set(v.cells[idx].NodeID, idx)
	}
}

// Store is the authoritative registry of every live cell, keyed by node id,
// alongside the five type-indexed vectors and the `moving` vector of cells
// with an active boost.
type Store struct {
	border Border
	grid   *Grid

	byID map[uint32]*Cell

	players typeVector
	food    typeVector
	viruses typeVector
	ejects  typeVector
	mothers typeVector
	moving  []*Cell

	nextID uint32
}

// NewStore constructs an empty Store over the given border.
func NewStore(border Border) *Store {
	return &Store{
		border:  border,
		grid:    NewGrid(border),
		byID:    make(map[uint32]*Cell, 2048),
		players: newTypeVector(256),
		food:    newTypeVector(4096),
		viruses: newTypeVector(256),
		ejects:  newTypeVector(1024),
		mothers: newTypeVector(16),
		moving:  make([]*Cell, 0, 512),
		nextID:  1,
	}
}

// Border returns the store's fixed world AABB.
func (s *Store) Border() Border { return s.border }

// Grid returns the spatial index backing this store.
func (s *Store) Grid() *Grid { return s.grid }

// NextID returns a fresh, monotonically increasing node id, wrapping but
// skipping zero.
func (s *Store) NextID() uint32 {
	id := s.nextID
	s.nextID++
	if s.nextID == 0 {
		s.nextID = 1
	}
	return id
}

func (s *Store) vectorFor(typ Type) *typeVector {
	switch typ {
	case Player:
		return &s.players
	case Food:
		return &s.food
	case Virus:
		return &s.viruses
	case EjectedMass:
		return &s.ejects
	case MotherCell:
		return &s.mothers
	default:
		return nil
	}
}

// Add inserts c into the map, its type vector and the spatial index
// atomically.
func (s *Store) Add(c *Cell) {
	s.byID[c.NodeID] = c
	if v := s.vectorFor(c.Type); v != nil {
		v.add(c)
	}
	if c.Boost != nil {
		s.moving = append(s.moving, c)
	}
	s.grid.Insert(c.NodeID, c.Position.X(), c.Position.Y(), c.Size)
}

// Remove deletes the cell with the given id from the map, its type vector
// and the spatial index.
func (s *Store) Remove(id uint32) {
	c, ok := s.byID[id]
	if !ok {
		return
	}
	c.IsRemoved = true
	delete(s.byID, id)
	if v := s.vectorFor(c.Type); v != nil {
		v.remove(id)
	}
	s.moving = sliceutilDeleteCell(s.moving, c)
	s.grid.Remove(id)
}

// sliceutilDeleteCell removes c from the moving slice by value, preserving
// order; the moving slice is small (only boosted cells) so a linear scan is
// cheaper than maintaining yet another index map.
func sliceutilDeleteCell(s []*Cell, c *Cell) []*Cell {
	for i, e := range s {
		if e == c {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Get returns the cell with the given id, or nil if it is not live.
func (s *Store) Get(id uint32) *Cell { return s.byID[id] }

// Len returns the total number of live cells across all variants.
func (s *Store) Len() int { return len(s.byID) }

// CountByType returns the number of live cells of the given type.
func (s *Store) CountByType(typ Type) int {
	if v := s.vectorFor(typ); v != nil {
		return len(v.cells)
	}
	return 0
}

// Players returns the live player-cell vector. Callers must not retain the
// slice past the current tick: it is mutated in place on removal.
func (s *Store) Players() []*Cell { return s.players.cells }

// Food returns the live food vector.
func (s *Store) Food() []*Cell { return s.food.cells }

// Viruses returns the live virus vector.
func (s *Store) Viruses() []*Cell { return s.viruses.cells }

// Ejects returns the live ejected-mass vector.
func (s *Store) Ejects() []*Cell { return s.ejects.cells }

// Mothers returns the live mother-cell vector.
func (s *Store) Mothers() []*Cell { return s.mothers.cells }

// Moving returns the cells with an active boost.
func (s *Store) Moving() []*Cell { return s.moving }

// UpdatePosition notifies the spatial index that c moved or resized; callers
// must call this after mutating c.Position or c.Size directly (e.g. during
// boost stepping or decay) so the grid and live cell stay consistent.
func (s *Store) UpdatePosition(c *Cell) {
	s.grid.Update(c.NodeID, c.Position.X(), c.Position.Y(), c.Size)
}

// DropBoost removes c from the moving vector once its boost has fully
// decayed.
func (s *Store) DropBoost(c *Cell) {
	s.moving = sliceutilDeleteCell(s.moving, c)
}

// AddMoving registers c in the moving vector, for a cell already in the
// store that receives a fresh boost. Cells that carry a boost when they are
// added (eject and split results) are registered by Add itself.
func (s *Store) AddMoving(c *Cell) {
	s.moving = append(s.moving, c)
}

// All returns an iterator-friendly snapshot slice of every live cell,
// allocated fresh on each call. The tick calls it once per tick to build the
// world-update record, and again for the x-ray record when any owner has
// x-ray enabled.
func (s *Store) All() []*Cell {
	out := make([]*Cell, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c)
	}
	return out
}
