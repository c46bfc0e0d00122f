package world

import (
	"sort"
	"testing"
)

// linearQuery mirrors Grid.QueryBox by brute force: a radius query must
// return exactly the set of items whose AABB intersects the query box.
func linearQuery(items map[uint32][4]float32, minX, minY, maxX, maxY float32) []uint32 {
	var out []uint32
	for id, it := range items {
		ix0, iy0, ix1, iy1 := it[0]-it[2], it[1]-it[2], it[0]+it[2], it[1]+it[2]
		if ix1 <= minX || ix0 >= maxX || iy1 <= minY || iy0 >= maxY {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestGridQueryMatchesLinearScan(t *testing.T) {
	b := NewBorder(2000, 2000)
	g := NewGrid(b)

	items := map[uint32][4]float32{
		1: {0, 0, 10, 0},
		2: {50, 0, 10, 0},
		3: {-900, -900, 30, 0},
		4: {900, 900, 5, 0},
		5: {0, 0, 500, 0}, // spans many grid cells
	}
	for id, it := range items {
		g.Insert(id, it[0], it[1], it[2])
	}

	got := g.QueryBox(-60, -60, 60, 60)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := linearQuery(items, -60, -60, 60, 60)

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestGridRemove(t *testing.T) {
	g := NewGrid(NewBorder(1000, 1000))
	g.Insert(1, 0, 0, 10)
	if got := g.QueryBox(-20, -20, 20, 20); len(got) != 1 {
		t.Fatalf("expected 1 item, got %v", got)
	}
	g.Remove(1)
	if got := g.QueryBox(-20, -20, 20, 20); len(got) != 0 {
		t.Fatalf("expected 0 items after remove, got %v", got)
	}
}

func TestGridUpdateMoves(t *testing.T) {
	g := NewGrid(NewBorder(2000, 2000))
	g.Insert(1, 0, 0, 10)
	g.Update(1, 900, 900, 10)
	if got := g.QueryBox(-20, -20, 20, 20); len(got) != 0 {
		t.Fatalf("expected item to have moved away, got %v", got)
	}
	if got := g.QueryBox(880, 880, 920, 920); len(got) != 1 {
		t.Fatalf("expected item at new position, got %v", got)
	}
}
