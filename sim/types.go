// Package sim implements the deterministic per-tick simulation pipeline:
// motion, boost decay, eating, rigid push, merge, decay, virus popping and
// mother-cell food emission. It owns the single write-exclusive handle to
// the world: the tick task is the only writer, and session/bot tasks
// mutate Owner state through Game's brief-lock methods rather than
// touching the Store directly.
package sim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/dm-vev/cogar/world"
)

// Owner is the simulation-facing record shared by human clients and bots: it
// is everything the tick pipeline needs to move, split and eject cells on
// someone's behalf, regardless of whether that someone is a socket or an AI.
type Owner struct {
	ID       uint32
	IsBot    bool
	Name     string
	Skin     string
	Color    world.Color
	Cells    []uint32 // node ids of player cells owned
	Mouse    mgl32.Vec2
	Frozen   bool
	HasTeam  bool
	Team     uint8

	IsSpectating   bool
	SpectateCenter mgl32.Vec2

	// Minion control: Minions
	// lists the owner ids of bots this owner (a client) controls. MinionOf
	// is set on a minion bot's own Owner to point back at its controller,
	// and MinionCollectMode selects "nearest food" targeting over
	// "follow owner mouse/center".
	Minions          []uint32
	MinionOf         uint32
	IsMinion         bool
	MinionCollectMode bool

	XrayEnabled bool
	IsOperator  bool

	LastEjectTick    uint64
	LastStatTick     uint64
	SplitRequested   bool
	EjectRequested   bool

	RespawnNeeded bool
}

// EatPair records one eat event this tick: Eater consumed Prey. VirusPop is true when Prey was a Virus that
// popped Eater. EaterOwnerID/PreyOwnerID are only set for player-vs-player
// events (zero otherwise), letting a kill-tracking mode like Beatdown
// attribute a death to its killer without Game threading that through
// OnOwnerDeath directly.
type EatPair struct {
	PreyID, EaterID           uint32
	VirusPop                  bool
	EaterOwnerID, PreyOwnerID uint32
}

// CellSnapshot is an immutable, copied-out view of one live cell, published
// once per tick so connection tasks never read the mutable Store directly.
type CellSnapshot struct {
	NodeID   uint32
	OwnerID  uint32
	HasOwner bool
	Type     world.Type
	X, Y     float32
	Size     float32
	Color    world.Color
	Skin     string
	Name     string
	Spiked   bool
	Agitated bool
}

// WorldUpdate is the per-tick broadcast record.
type WorldUpdate struct {
	Tick   uint64
	Border world.Border
	Cells  []CellSnapshot
	Eaten  []EatPair
}

// LeaderboardEntry is one FFA leaderboard row, published every 25 ticks.
type LeaderboardEntry struct {
	OwnerID uint32
	Name    string
}

// Leaderboard is the periodic leaderboard broadcast record. For Teams-style
// modes Fractions holds the pie-chart shares instead of Entries.
type Leaderboard struct {
	Tick      uint64
	Entries   []LeaderboardEntry
	Fractions []float32
}

// XrayUpdate is the per-operator x-ray broadcast built alongside the regular
// world update.
type XrayUpdate struct {
	Tick  uint64
	Cells []CellSnapshot
}

// Broadcaster receives the records produced at the end of each tick. Game
// never blocks on a slow subscriber: a Broadcaster implementation backed by
// channels is expected to be lossy.
type Broadcaster interface {
	PublishWorldUpdate(*WorldUpdate)
	PublishLeaderboard(*Leaderboard)
	PublishXray(*XrayUpdate)
}

// NopBroadcaster discards every record; useful in tests that only care
// about Store state after a tick.
type NopBroadcaster struct{}

func (NopBroadcaster) PublishWorldUpdate(*WorldUpdate) {}
func (NopBroadcaster) PublishLeaderboard(*Leaderboard) {}
func (NopBroadcaster) PublishXray(*XrayUpdate)         {}
