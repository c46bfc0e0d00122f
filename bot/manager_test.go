package bot

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/world"
)

func TestSplitKillUsesMinimumSplitSpeed(t *testing.T) {
	// With split_speed configured far below the minimum every split gets
	// regardless of config, the size-derived floor should still let a
	// close-enough kill through.
	size := float32(100)
	dist := size / 1.4142 * 4.0
	if !splitKill(size, dist, 1) {
		t.Fatalf("expected a kill within the size-derived floor speed")
	}
}

func TestSplitKillFailsWhenPreyIsTooFar(t *testing.T) {
	if splitKill(50, 100000, 50) {
		t.Fatal("expected no kill at an unreachable distance")
	}
}

func TestLargestCellPicksBiggestOwnedCell(t *testing.T) {
	s := world.NewStore(world.NewBorder(1000, 1000))
	small := world.NewCell(s.NextID(), world.Player, mgl32.Vec2{0, 0}, 20, 0)
	big := world.NewCell(s.NextID(), world.Player, mgl32.Vec2{50, 50}, 80, 0)
	s.Add(small)
	s.Add(big)

	pos, size := largestCell(s, []uint32{small.NodeID, big.NodeID})
	if size != 80 {
		t.Fatalf("size = %v, want 80", size)
	}
	if pos != (mgl32.Vec2{50, 50}) {
		t.Fatalf("pos = %v, want the bigger cell's position", pos)
	}
}

func TestLargestCellIgnoresMissingIDs(t *testing.T) {
	s := world.NewStore(world.NewBorder(1000, 1000))
	pos, size := largestCell(s, []uint32{999})
	if size != 0 {
		t.Fatalf("size = %v, want 0 for an unknown id", size)
	}
	if pos != (mgl32.Vec2{}) {
		t.Fatalf("pos = %v, want the zero vector", pos)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 0, 10); got != 5 {
		t.Fatalf("clamp(5,0,10) = %v, want 5", got)
	}
	if got := clamp(-5, 0, 10); got != 0 {
		t.Fatalf("clamp(-5,0,10) = %v, want 0", got)
	}
	if got := clamp(50, 0, 10); got != 10 {
		t.Fatalf("clamp(50,0,10) = %v, want 10", got)
	}
}
