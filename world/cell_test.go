package world

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approxEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestSetSizeInvariants(t *testing.T) {
	c := NewCell(1, Player, mgl32.Vec2{0, 0}, 60, 0)
	if !approxEqual(c.Radius, 3600, 0.01) {
		t.Fatalf("radius = %v, want 3600", c.Radius)
	}
	if !approxEqual(c.Mass, 36, 0.01) {
		t.Fatalf("mass = %v, want 36", c.Mass)
	}
	c.SetSize(10)
	if !approxEqual(c.Radius, 100, 0.01) || !approxEqual(c.Mass, 1, 0.01) {
		t.Fatalf("after resize: radius=%v mass=%v", c.Radius, c.Mass)
	}
}

func TestBoostDecayLaw(t *testing.T) {
	c := NewCell(1, EjectedMass, mgl32.Vec2{0, 0}, 20, 0)
	c.SetBoost(100, 0)
	b := Border{MinX: -10000, MinY: -10000, MaxX: 10000, MaxY: 10000}

	prev := float32(100)
	for i := 0; i < 5; i++ {
		c.StepBoost(b)
		want := prev * 0.9
		if !approxEqual(c.Boost.Distance, want, 0.01) {
			t.Fatalf("tick %d: distance = %v, want %v", i, c.Boost.Distance, want)
		}
		prev = want
	}
}

func TestBoostClearsBelowOneUnit(t *testing.T) {
	c := NewCell(1, EjectedMass, mgl32.Vec2{0, 0}, 20, 0)
	c.Boost = &Boost{Distance: 0.5, Direction: mgl32.Vec2{1, 0}}
	b := Border{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000}
	if still := c.StepBoost(b); still {
		t.Fatalf("expected boost to clear")
	}
	if c.Boost != nil {
		t.Fatalf("expected Boost to be nil after clearing")
	}
}

func TestClampToBorder(t *testing.T) {
	c := NewCell(1, Player, mgl32.Vec2{999, -999}, 40, 0)
	b := Border{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100}
	c.ClampToBorder(b)
	half := c.Size / 2
	if c.Position.X() > b.MaxX-half || c.Position.Y() < b.MinY+half {
		t.Fatalf("position %v not clamped within border", c.Position)
	}
}
