package sim

import (
	"log/slog"
	"time"

	"github.com/dm-vev/cogar/world"
)

// tpsWarnThreshold is the fraction of the configured interval the rolling
// average tick duration can reach before a warning is logged: ticks
// exceeding 90% of their budget get flagged, but the tick loop never halts
// or retries an overrun tick.
const tpsWarnThreshold = 0.9

// Run starts the tick loop on the calling goroutine and blocks until Close
// is called. A tick that overruns its interval is not retried or caught up:
// the next tick fires on the next interval boundary, silently dropping the
// missed one, and a slog warning fires once the rolling average exceeds
// tpsWarnThreshold times the configured interval.
func (g *Game) Run() {
	g.done.Add(1)
	defer g.done.Done()

	interval := time.Duration(g.cfg.Server.TickIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 40 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.closing:
			return
		case <-ticker.C:
			g.runOneTick(interval)
		}
	}
}

// runOneTick executes the twelve-step pipeline under the write lock and
// publishes the resulting broadcast records.
func (g *Game) runOneTick(interval time.Duration) {
	start := time.Now()

	g.mu.Lock()
	g.tick++

	g.topUpFood()
	g.topUpVirus()
	if g.aiTick != nil {
		g.aiTick(g)
	}
	g.processRequests()
	g.stepBoosts()
	g.moveOwners()
	g.updateMergeEligibility()
	g.resolveCollisions()
	g.applyDecay()
	if g.mode != nil {
		g.mode.Tick(g)
	}

	update := g.buildWorldUpdate()
	var leaderboard *Leaderboard
	if g.tick%25 == 0 && g.mode != nil {
		leaderboard = g.mode.Leaderboard(g)
	}
	xray := g.buildXrayUpdate()

	took := time.Since(start)
	g.lastTickTook = took
	g.updateTPS(took, interval)
	g.mu.Unlock()

	g.broadcaster.PublishWorldUpdate(update)
	if leaderboard != nil {
		g.broadcaster.PublishLeaderboard(leaderboard)
	}
	if xray != nil {
		g.broadcaster.PublishXray(xray)
	}
}

// updateTPS folds the latest tick duration into an exponential moving
// average and logs once if it drifts past tpsWarnThreshold times the
// configured interval; the warning latches so a single log line survives a
// one-tick spike instead of repeating every overrun tick.
func (g *Game) updateTPS(took, interval time.Duration) {
	const alpha = 0.1
	if g.tpsEMA == 0 {
		g.tpsEMA = float64(took)
	} else {
		g.tpsEMA = alpha*float64(took) + (1-alpha)*g.tpsEMA
	}
	over := g.tpsEMA > float64(interval)*tpsWarnThreshold
	if over && !g.tickWarned {
		g.tickWarned = true
		g.log.Warn("tick duration exceeds interval",
			slog.Duration("avg", time.Duration(g.tpsEMA)),
			slog.Duration("interval", interval))
	} else if !over {
		g.tickWarned = false
	}
}

// buildWorldUpdate snapshots every live cell into the per-tick broadcast
// record, copying out of the Store so connection tasks never see mutable
// state.
func (g *Game) buildWorldUpdate() *WorldUpdate {
	all := g.store.All()
	cells := make([]CellSnapshot, 0, len(all))
	for _, c := range all {
		cells = append(cells, snapshotOf(c))
	}
	eaten := append([]EatPair(nil), g.eaten...)
	return &WorldUpdate{Tick: g.tick, Border: g.store.Border(), Cells: cells, Eaten: eaten}
}

// buildXrayUpdate returns an operator x-ray record, or nil when no operator
// session has x-ray enabled (skipping the extra snapshot work entirely).
func (g *Game) buildXrayUpdate() *XrayUpdate {
	anyXray := false
	for _, o := range g.owners {
		if o.XrayEnabled {
			anyXray = true
			break
		}
	}
	if !anyXray {
		return nil
	}
	all := g.store.All()
	cells := make([]CellSnapshot, 0, len(all))
	for _, c := range all {
		cells = append(cells, snapshotOf(c))
	}
	return &XrayUpdate{Tick: g.tick, Cells: cells}
}

func snapshotOf(c *world.Cell) CellSnapshot {
	return CellSnapshot{
		NodeID:   c.NodeID,
		OwnerID:  c.OwnerID,
		HasOwner: c.HasOwner,
		Type:     c.Type,
		X:        c.Position.X(),
		Y:        c.Position.Y(),
		Size:     c.Size,
		Color:    c.Color,
		Skin:     c.Skin,
		Name:     c.Name,
		Spiked:   c.Spiked,
		Agitated: c.Agitated,
	}
}
