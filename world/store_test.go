package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestStoreLenMatchesVectorSums(t *testing.T) {
	s := NewStore(NewBorder(1000, 1000))
	s.Add(NewCell(s.NextID(), Player, mgl32.Vec2{0, 0}, 30, 0))
	s.Add(NewCell(s.NextID(), Food, mgl32.Vec2{10, 10}, 5, 0))
	s.Add(NewCell(s.NextID(), Virus, mgl32.Vec2{20, 20}, 100, 0))
	s.Add(NewCell(s.NextID(), EjectedMass, mgl32.Vec2{30, 30}, 12, 0))
	s.Add(NewCell(s.NextID(), MotherCell, mgl32.Vec2{40, 40}, 150, 0))

	sum := len(s.Players()) + len(s.Food()) + len(s.Viruses()) + len(s.Ejects()) + len(s.Mothers())
	if s.Len() != sum {
		t.Fatalf("store len = %d, vector sum = %d", s.Len(), sum)
	}
	if s.Len() != 5 {
		t.Fatalf("store len = %d, want 5", s.Len())
	}
}

func TestStoreRemoveKeepsInvariant(t *testing.T) {
	s := NewStore(NewBorder(1000, 1000))
	ids := make([]uint32, 0, 10)
	for i := 0; i < 10; i++ {
		id := s.NextID()
		ids = append(ids, id)
		s.Add(NewCell(id, Food, mgl32.Vec2{float32(i), 0}, 5, 0))
	}
	// Remove from the middle to exercise swap-remove index fix-up.
	s.Remove(ids[3])
	s.Remove(ids[7])

	sum := len(s.Players()) + len(s.Food()) + len(s.Viruses()) + len(s.Ejects()) + len(s.Mothers())
	if s.Len() != sum || s.Len() != 8 {
		t.Fatalf("store len = %d, vector sum = %d, want 8", s.Len(), sum)
	}
	for i, id := range ids {
		if i == 3 || i == 7 {
			if s.Get(id) != nil {
				t.Fatalf("expected id %d to be removed", id)
			}
			continue
		}
		if s.Get(id) == nil {
			t.Fatalf("expected id %d to remain", id)
		}
	}
}

func TestNextIDSkipsZero(t *testing.T) {
	s := NewStore(NewBorder(100, 100))
	s.nextID = 0xFFFFFFFF
	if id := s.NextID(); id != 0xFFFFFFFF {
		t.Fatalf("got %d", id)
	}
	if id := s.NextID(); id == 0 {
		t.Fatalf("NextID must skip 0 on wrap")
	}
}
