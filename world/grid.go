package world

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// gridSize is the default uniform-grid resolution.
const gridSize = 32

// gridItem is one entry tracked by the Grid, carrying its own AABB.
type gridItem struct {
	id             uint32
	x, y, size     float32
	minX, minY     float32
	maxX, maxY     float32
	cellSignature  uint64
}

func (it *gridItem) recompute() {
	it.minX, it.minY = it.x-it.size, it.y-it.size
	it.maxX, it.maxY = it.x+it.size, it.y+it.size
}

// Grid is a uniform-grid spatial hash over the world's fixed AABB. It
// supports amortized O(1) insert/update/remove and answers radius queries by
// rebuilding (once per tick, lazily, on the first query after any mutation)
// and then scanning the overlapping cells.
//
// Grid is not safe for concurrent use; the simulation holds exclusive access
// to it for the duration of a tick.
type Grid struct {
	border   Border
	cellW    float32
	cellH    float32
	cells    [][]uint32
	items    map[uint32]*gridItem
	dirty    bool

	// seen is a reusable bit set keyed on the low 16 bits of a node id,
	// used to deduplicate query results without allocating a map per call.
	// touched records which words were set so Query only has
	// to clear the words it actually used, not all 1024.
	seen    [1024]uint64 // 65536 bits
	touched []uint32

	scratch []uint32
}

// NewGrid constructs a Grid covering border.
func NewGrid(border Border) *Grid {
	g := &Grid{
		border: border,
		cellW:  border.Width() / gridSize,
		cellH:  border.Height() / gridSize,
		cells:  make([][]uint32, gridSize*gridSize),
		items:  make(map[uint32]*gridItem, 1024),
	}
	for i := range g.cells {
		g.cells[i] = make([]uint32, 0, 16)
	}
	return g
}

func (g *Grid) cellIndex(x, y float32) (int, int) {
	gx := int((x - g.border.MinX) / g.cellW)
	gy := int((y - g.border.MinY) / g.cellH)
	if gx < 0 {
		gx = 0
	} else if gx >= gridSize {
		gx = gridSize - 1
	}
	if gy < 0 {
		gy = 0
	} else if gy >= gridSize {
		gy = gridSize - 1
	}
	return gx, gy
}

// cellRangeSignature hashes the grid-cell range an AABB overlaps, used to
// tell whether a moved item still overlaps exactly the same set of cells
// without forcing a full-grid rebuild to find out.
func (g *Grid) cellRangeSignature(minX, minY, maxX, maxY float32) uint64 {
	minGX, minGY := g.cellIndex(minX, minY)
	maxGX, maxGY := g.cellIndex(maxX, maxY)
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(minGX))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(minGY))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(maxGX))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(maxGY))
	return xxhash.Sum64(buf[:])
}

// Insert adds a new item to the grid, or updates it in place if the id is
// already present.
func (g *Grid) Insert(id uint32, x, y, size float32) {
	g.Update(id, x, y, size)
}

// Update sets the position and size of the item with the given id, inserting
// it if not already present. Marks the grid dirty only when the item's
// footprint now touches a different set of grid cells.
func (g *Grid) Update(id uint32, x, y, size float32) {
	it, ok := g.items[id]
	if !ok {
		it = &gridItem{id: id}
		g.items[id] = it
		it.x, it.y, it.size = x, y, size
		it.recompute()
		it.cellSignature = g.cellRangeSignature(it.minX, it.minY, it.maxX, it.maxY)
		g.dirty = true
		return
	}
	it.x, it.y, it.size = x, y, size
	it.recompute()
	sig := g.cellRangeSignature(it.minX, it.minY, it.maxX, it.maxY)
	if sig != it.cellSignature {
		it.cellSignature = sig
		g.dirty = true
	}
}

// Remove deletes the item with the given id, if present.
func (g *Grid) Remove(id uint32) {
	if _, ok := g.items[id]; !ok {
		return
	}
	delete(g.items, id)
	g.dirty = true
}

// rebuild clears every grid cell and reinserts every tracked item into every
// cell its AABB overlaps.
func (g *Grid) rebuild() {
	if !g.dirty {
		return
	}
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	for _, it := range g.items {
		minGX, minGY := g.cellIndex(it.minX, it.minY)
		maxGX, maxGY := g.cellIndex(it.maxX, it.maxY)
		for gy := minGY; gy <= maxGY; gy++ {
			row := gy * gridSize
			for gx := minGX; gx <= maxGX; gx++ {
				idx := row + gx
				g.cells[idx] = append(g.cells[idx], it.id)
			}
		}
	}
	g.dirty = false
}

// Query returns every item whose AABB intersects the box centred at (x,y)
// with the given half-extent radius, deduplicated and filtered to true AABB
// intersections.
func (g *Grid) Query(x, y, radius float32) []uint32 {
	return g.QueryBox(x-radius, y-radius, x+radius, y+radius)
}

// QueryBox is as Query but takes an explicit box rather than a centred
// radius.
func (g *Grid) QueryBox(minX, minY, maxX, maxY float32) []uint32 {
	g.rebuild()

	minGX, minGY := g.cellIndex(minX, minY)
	maxGX, maxGY := g.cellIndex(maxX, maxY)

	for _, w := range g.touched {
		g.seen[w] = 0
	}
	g.touched = g.touched[:0]
	result := g.scratch[:0]

	for gy := minGY; gy <= maxGY; gy++ {
		row := gy * gridSize
		for gx := minGX; gx <= maxGX; gx++ {
			for _, id := range g.cells[row+gx] {
				word, bit := (id>>6)&1023, id&63
				mask := uint64(1) << bit
				if g.seen[word] == 0 {
					g.touched = append(g.touched, word)
				}
				if g.seen[word]&mask != 0 {
					continue
				}
				g.seen[word] |= mask
				it := g.items[id]
				if it == nil {
					continue
				}
				if it.maxX <= minX || it.minX >= maxX || it.maxY <= minY || it.minY >= maxY {
					continue
				}
				result = append(result, id)
			}
		}
	}
	g.scratch = result
	return result
}

// Len returns the number of items currently tracked by the grid.
func (g *Grid) Len() int { return len(g.items) }
