package gamemode

import "github.com/dm-vev/cogar/sim"

// FFA is free-for-all: every owner may eat every other owner, ranked by
// total mass.
type FFA struct{ base }

// NewFFA constructs the default mode.
func NewFFA() *FFA { return &FFA{} }

func (*FFA) Name() string { return "FFA" }
func (*FFA) ID() uint32   { return 0 }

func (*FFA) Leaderboard(g *sim.Game) *sim.Leaderboard { return ffaLeaderboard(g) }
