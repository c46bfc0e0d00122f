// Package delta computes, per client, the difference between what a client
// was last shown and what it should be shown this tick, and serializes that
// difference as a single UpdateNodes frame in the client's own scrambled
// coordinate space.
package delta

import (
	"math"

	"github.com/dm-vev/cogar/protocol"
	"github.com/dm-vev/cogar/sim"
	"github.com/dm-vev/cogar/world"
)

// Scramble is a per-client coordinate/id obfuscation, generated once at
// accept and held for the lifetime of the connection.
type Scramble struct {
	X, Y float64
	ID   uint32
}

// View holds the encoder state private to one client: its last-sent node
// set. The viewport is recomputed from scratch each tick and not kept here.
// A fresh View has an
// empty ClientNodes, so the first tick after Join/Spectate is always a
// pure add.
type View struct {
	ClientNodes map[uint32]struct{}
}

// NewView returns an empty per-client view-diff state.
func NewView() *View {
	return &View{ClientNodes: make(map[uint32]struct{}, 256)}
}

// Input bundles everything the encoder needs about one client to build its
// frame for the current tick, pulled out of session.Session so this
// package has no import-cycle dependency on session.
type Input struct {
	OwnedCells   []uint32 // this client's own cells
	MinionCells  []uint32 // cells owned by bots this client controls
	XrayEnabled  bool
	SpectateMode bool
	SpectateAt   [2]float32
	ProtocolVer  uint32
	ViewBonus    float32 // extra effective size from the active mode, e.g. Beatdown's kill streak
}

// Encode computes the view diff for one client against the latest
// WorldUpdate, mutates view.ClientNodes to the new view_nodes set, and
// returns the wire bytes of the resulting UpdateNodes frame. It never
// returns an error: a client with nothing to show (all cells dead, no
// owned cells) simply gets an all-delete frame.
func Encode(update *sim.WorldUpdate, in Input, scr Scramble, view *View) []byte {
	byID := make(map[uint32]*sim.CellSnapshot, len(update.Cells))
	for i := range update.Cells {
		byID[update.Cells[i].NodeID] = &update.Cells[i]
	}

	cx, cy, scale := viewport(update.Cells, in)
	halfW := (1920 / scale) / 2
	halfH := (1080 / scale) / 2
	minX, maxX := cx-halfW, cx+halfW
	minY, maxY := cy-halfH, cy+halfH

	viewNodes := make(map[uint32]struct{}, len(view.ClientNodes)+64)
	for _, c := range update.Cells {
		if in.XrayEnabled || (c.X+c.Size >= minX && c.X-c.Size <= maxX && c.Y+c.Size >= minY && c.Y-c.Size <= maxY) {
			viewNodes[c.NodeID] = struct{}{}
		}
	}
	for _, id := range in.OwnedCells {
		viewNodes[id] = struct{}{}
	}
	for _, id := range in.MinionCells {
		viewNodes[id] = struct{}{}
	}

	var add, updateIDs, del []uint32
	for id := range viewNodes {
		if _, ok := view.ClientNodes[id]; ok {
			updateIDs = append(updateIDs, id)
		} else {
			add = append(add, id)
		}
	}
	for id := range view.ClientNodes {
		if _, ok := viewNodes[id]; !ok {
			del = append(del, id)
		}
	}

	relevant := func(id uint32) bool {
		_, a := viewNodes[id]
		_, b := view.ClientNodes[id]
		return a || b
	}
	var eaten []sim.EatPair
	for _, e := range update.Eaten {
		if relevant(e.PreyID) || relevant(e.EaterID) {
			eaten = append(eaten, e)
		}
	}

	w := protocol.NewWriter(128 + (len(add)+len(updateIDs))*32 + len(del)*4)
	w.PutUint8(uint8(protocol.OpUpdateNodes))
	w.PutUint16(uint16(len(eaten)))
	for _, e := range eaten {
		w.PutUint32(e.EaterID ^ scr.ID)
		w.PutUint32(e.PreyID ^ scr.ID)
	}

	firstSeen := make(map[uint32]struct{}, len(add))
	for _, id := range add {
		firstSeen[id] = struct{}{}
	}
	writeNode := func(id uint32) {
		c := byID[id]
		if c == nil {
			return
		}
		_, isNew := firstSeen[id]
		writeNodeEntry(w, c, scr, in.ProtocolVer, isNew)
	}
	for _, id := range updateIDs {
		writeNode(id)
	}
	for _, id := range add {
		writeNode(id)
	}
	w.PutUint32(0)

	if in.ProtocolVer < 6 {
		w.PutUint32(uint32(len(del)))
	} else {
		w.PutUint16(uint16(len(del)))
	}
	for _, id := range del {
		w.PutUint32(id ^ scr.ID)
	}

	view.ClientNodes = viewNodes
	return w.Bytes()
}

// writeNodeEntry writes one UpdateNodes cell record: id, scrambled
// position, size, flags, and (only for nodes new to this client) skin and
// name.
func writeNodeEntry(w *protocol.Writer, c *sim.CellSnapshot, scr Scramble, protocolVer uint32, firstAppearance bool) {
	w.PutUint32(c.NodeID ^ scr.ID)
	w.PutInt32(int32(float64(c.X) + scr.X))
	w.PutInt32(int32(float64(c.Y) + scr.Y))
	w.PutUint16(uint16(c.Size))

	var flags uint8
	if c.Spiked {
		flags |= protocol.FlagSpiked
	}
	isPlayer := c.Type == world.Player
	if isPlayer {
		flags |= protocol.FlagPlayer
	}
	hasSkin := firstAppearance && c.Skin != ""
	if hasSkin {
		flags |= protocol.FlagHasSkin
	}
	hasName := firstAppearance && c.Name != ""
	if hasName {
		flags |= protocol.FlagHasName
	}
	if c.Agitated {
		flags |= protocol.FlagAgitated
	}
	if c.Type == world.EjectedMass {
		flags |= protocol.FlagEjected
	}
	isFood := c.Type == world.Food
	if isFood {
		flags |= protocol.FlagFood
	}
	w.PutUint8(flags)

	if isPlayer {
		w.PutUint8(c.Color.R)
		w.PutUint8(c.Color.G)
		w.PutUint8(c.Color.B)
	}
	if hasSkin {
		skin := c.Skin
		if protocolVer >= 11 {
			skin = "%" + skin
		}
		w.PutString(protocolVer, skin)
	}
	if hasName {
		w.PutString(protocolVer, c.Name)
	}
	if isFood && protocolVer >= 11 {
		w.PutUint8(0x01)
	}
}

// EncodeXray builds the OpXrayData overlay frame: every live cell's
// scrambled position, size and type, sent only to operator sessions with
// x-ray enabled, independent of their own viewport or add/delete diffing.
func EncodeXray(xray *sim.XrayUpdate, scr Scramble) []byte {
	w := protocol.NewWriter(8 + len(xray.Cells)*16)
	w.PutUint8(uint8(protocol.OpXrayData))
	w.PutUint32(uint32(len(xray.Cells)))
	for _, c := range xray.Cells {
		w.PutUint32(c.NodeID ^ scr.ID)
		w.PutInt32(int32(float64(c.X) + scr.X))
		w.PutInt32(int32(float64(c.Y) + scr.Y))
		w.PutUint16(uint16(c.Size))
		w.PutUint8(uint8(c.Type))
	}
	return w.Bytes()
}

// viewport computes the centroid of a client's owned cells and the zoom
// scale derived from their combined size, falling back to the
// session-supplied spectate center at scale 1 when it owns no cells.
func viewport(cells []sim.CellSnapshot, in Input) (cx, cy, scale float32) {
	if in.SpectateMode || len(in.OwnedCells) == 0 {
		return in.SpectateAt[0], in.SpectateAt[1], 1
	}
	owned := make(map[uint32]struct{}, len(in.OwnedCells))
	for _, id := range in.OwnedCells {
		owned[id] = struct{}{}
	}
	var sumX, sumY, totalSize float32
	count := 0
	for _, c := range cells {
		if _, ok := owned[c.NodeID]; ok {
			sumX += c.X
			sumY += c.Y
			totalSize += c.Size
			count++
		}
	}
	if count == 0 {
		return in.SpectateAt[0], in.SpectateAt[1], 1
	}
	cx, cy = sumX/float32(count), sumY/float32(count)
	s := 64 / (totalSize + in.ViewBonus)
	if s > 1 {
		s = 1
	}
	scale = float32(math.Pow(float64(s), 0.4))
	if scale <= 0 {
		scale = 1
	}
	return cx, cy, scale
}
