package gamemode

import "testing"

func TestBeatdownBonusesScaleWithKillsAndCap(t *testing.T) {
	b := NewBeatdown()
	const ownerID = uint32(1)

	if got := b.SpeedMultiplier(nil, ownerID); got != 1 {
		t.Fatalf("speed multiplier with 0 kills = %v, want 1", got)
	}
	if got := b.ViewBonus(nil, ownerID); got != 0 {
		t.Fatalf("view bonus with 0 kills = %v, want 0", got)
	}

	b.kills[ownerID] = 3
	if got, want := b.SpeedMultiplier(nil, ownerID), float32(1+3*beatdownSpeedPerKill); got != want {
		t.Fatalf("speed multiplier = %v, want %v", got, want)
	}
	if got, want := b.ViewBonus(nil, ownerID), float32(3*beatdownViewPerKill); got != want {
		t.Fatalf("view bonus = %v, want %v", got, want)
	}

	b.kills[ownerID] = 1000
	if got := b.SpeedMultiplier(nil, ownerID); got != 1+beatdownMaxSpeed {
		t.Fatalf("speed multiplier did not cap: got %v, want %v", got, 1+beatdownMaxSpeed)
	}
	if got := b.ViewBonus(nil, ownerID); got != beatdownMaxView {
		t.Fatalf("view bonus did not cap: got %v, want %v", got, beatdownMaxView)
	}
}

func TestBeatdownDisallowsMerge(t *testing.T) {
	b := NewBeatdown()
	if b.AllowMerge() {
		t.Fatal("beatdown must disable merging")
	}
}

func TestByIDFallsBackToFFA(t *testing.T) {
	m := ByID(999)
	if m.Name() != "FFA" {
		t.Fatalf("ByID(999).Name() = %q, want FFA", m.Name())
	}
}

func TestByIDAndByNameAgreeOnEveryMode(t *testing.T) {
	for id := uint32(0); id <= 6; id++ {
		byID := ByID(id)
		byName := ByName(byID.Name())
		if byName == nil {
			t.Fatalf("ByName(%q) returned nil for id %d", byID.Name(), id)
		}
		if byName.ID() != byID.ID() {
			t.Fatalf("mode %q: ByID/ByName disagree on ID: %d vs %d", byID.Name(), byID.ID(), byName.ID())
		}
	}
}
