package sim

// Mode is the pluggable game-mode hook surface. Concrete modes (FFA, Teams, Experimental,
// Rainbow, Tournament, Beatdown, Hunger Games) live in the sibling
// gamemode package and implement this interface against the *Game and
// *Owner types defined here — the interface lives in the consumer package
// (sim) rather than the implementer (gamemode) for the same reason
// dragonfly's session.Handler is declared in session, not in the packet
// codec that supplies the concrete packets.
type Mode interface {
	// Name identifies the mode for ServerStat and console/chat feedback.
	Name() string
	// ID is the numeric gamemode value of the server.gamemode config field.
	ID() uint32

	// OnOwnerJoin assigns a team/color and any mode-specific join state to a
	// newly joined owner.
	OnOwnerJoin(g *Game, o *Owner)
	// OnOwnerSpawn is called right before a fresh player cell is placed for
	// o, letting the mode choose the spawn position (e.g. Hunger Games'
	// perimeter ring). Returning ok=false leaves the default random
	// placement; the spawn itself always happens.
	OnOwnerSpawn(g *Game, o *Owner) (pos [2]float32, ok bool)

	// CanEat gates Player-eats-Player beyond the size-ratio rule: team
	// modes refuse same-team eating. Whether same-owner cells may merge is
	// a separate switch (AllowMerge).
	CanEat(g *Game, eaterOwner, preyOwner uint32) bool
	// AllowMerge reports whether same-owner cells are allowed to merge at
	// all in this mode (Beatdown disables merging globally).
	AllowMerge() bool

	// SpeedMultiplier and ViewBonus scale movement speed and viewport size
	// for the given owner.
	SpeedMultiplier(g *Game, ownerID uint32) float32
	ViewBonus(g *Game, ownerID uint32) float32

	// Tick is the per-tick mode hook: Rainbow color
	// cycling, Experimental mother-cell emission, Tournament phase
	// transitions.
	Tick(g *Game)
	// OnOwnerDeath notifies the mode that an owner's cell count dropped to
	// zero this tick.
	OnOwnerDeath(g *Game, ownerID uint32)

	// Leaderboard builds this tick's leaderboard record.
	Leaderboard(g *Game) *Leaderboard

	// EatMultiplier returns the size ratio an eater cell must reach to
	// consume a player/virus/eject cell. Mobile physics does not change this
	// ratio (it only loosens the overlap threshold in overlapsEnough), and
	// modes normally return the baseline value of 1.15.
	EatMultiplier() float32
}
