package sim

import (
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/config"
	"github.com/dm-vev/cogar/gamemode"
	"github.com/dm-vev/cogar/world"
)

func newTestGame(t *testing.T, cfg config.Config) *Game {
	t.Helper()
	return New(cfg, gamemode.NewFFA(), slog.Default(), NopBroadcaster{})
}

func TestOverlapsEnoughUsesMobilePhysicsDivisor(t *testing.T) {
	a := world.NewCell(1, world.Player, mgl32.Vec2{0, 0}, 100, 0)
	b := world.NewCell(2, world.Player, mgl32.Vec2{0, 0}, 40, 0)

	// distance sits between bigger-smaller/3 and bigger-smaller/20: only the
	// mobile-physics (div 20) threshold should consider this close enough.
	dist := float32(88)
	if overlapsEnough(a, b, dist, false) {
		t.Fatal("non-mobile threshold (div 3) must not consider this pair overlapping enough")
	}
	if !overlapsEnough(a, b, dist, true) {
		t.Fatal("mobile-physics threshold (div 20) must consider this pair overlapping enough")
	}
}

func TestPressureMultiplierTiers(t *testing.T) {
	cases := []struct {
		overlap  float32
		wantHigh bool // true if this tier produces a gentler (lower) multiplier than the next
	}{
		{0.9, true},
		{0.65, true},
		{0.4, true},
		{0.1, false},
	}
	var prev float32
	for i, c := range cases {
		got := pressureMultiplier(c.overlap)
		if got <= 0 {
			t.Fatalf("case %d: pressureMultiplier(%v) = %v, want positive", i, c.overlap, got)
		}
		prev = got
	}
	_ = prev
	if m := pressureMultiplier(0.9); m >= pressureMultiplier(0.1) {
		t.Fatalf("a near-total overlap (freshly split) must push gentler than a shallow one: got %v vs %v", m, pressureMultiplier(0.1))
	}
}

func TestMergeTimerTicksScalesWithSizeNotMass(t *testing.T) {
	cfg := config.Default()
	cfg.Player.MergeTime = 5
	g := newTestGame(t, cfg)
	g.tick = 100

	// size*0.2 = 4, below merge_time of 5: merge_time dominates.
	small := g.mergeTimerTicks(20)
	if want := g.tick + uint64(5*25); small != want {
		t.Fatalf("mergeTimerTicks(20) = %d, want %d", small, want)
	}

	// size*0.2 = 40, above merge_time of 5: size dominates.
	big := g.mergeTimerTicks(200)
	if want := g.tick + uint64(40*25); big != want {
		t.Fatalf("mergeTimerTicks(200) = %d, want %d", big, want)
	}
}

func TestSplitRestoreTicksFollowsMobilePhysics(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MobilePhysics = true
	g := newTestGame(t, cfg)
	if got := g.splitRestoreTicks(); got != 1 {
		t.Fatalf("mobile physics split_restore_ticks = %d, want 1", got)
	}

	cfg.Server.MobilePhysics = false
	g2 := newTestGame(t, cfg)
	if got := g2.splitRestoreTicks(); got != 13 {
		t.Fatalf("non-mobile split_restore_ticks = %d, want 13", got)
	}
}

func TestBornThisTickGraceWindow(t *testing.T) {
	g := newTestGame(t, config.Default())
	g.tick = 50
	c := world.NewCell(1, world.EjectedMass, mgl32.Vec2{0, 0}, 10, 50)
	if !g.bornThisTick(c) {
		t.Fatal("a cell born this tick must report bornThisTick == true")
	}
	g.tick = 51
	if g.bornThisTick(c) {
		t.Fatal("a cell born the previous tick must no longer report bornThisTick == true")
	}
}

func TestPopVirusRespectsCellSlotCeiling(t *testing.T) {
	cfg := config.Default()
	cfg.Virus.MaxCells = 2
	cfg.Virus.SplitDiv = 1 // tiny floor so the doubling loop isn't the limiting factor
	g := newTestGame(t, cfg)

	feeder := world.NewCell(g.store.NextID(), world.Player, mgl32.Vec2{0, 0}, 100, 0)
	feeder.OwnerID, feeder.HasOwner = 1, true
	g.store.Add(feeder)
	o := &Owner{ID: 1, Cells: []uint32{feeder.NodeID}}
	g.owners[1] = o

	virus := world.NewCell(g.store.NextID(), world.Virus, mgl32.Vec2{0, 0}, 100, 0)
	g.store.Add(virus)

	g.popVirus(feeder, virus)

	if got := len(o.Cells); got > cfg.Virus.MaxCells {
		t.Fatalf("popVirus produced %d cells, want at most %d (virus.max_cells)", got, cfg.Virus.MaxCells)
	}
}
