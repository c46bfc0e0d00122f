package delta

import (
	"testing"

	"github.com/dm-vev/cogar/protocol"
	"github.com/dm-vev/cogar/sim"
	"github.com/dm-vev/cogar/world"
)

func TestEncodeXrayRoundTrip(t *testing.T) {
	xray := &sim.XrayUpdate{
		Tick: 7,
		Cells: []sim.CellSnapshot{
			{NodeID: 1, Type: world.Player, X: 100, Y: -50, Size: 42},
			{NodeID: 2, Type: world.Food, X: 0, Y: 0, Size: 5},
		},
	}
	scr := Scramble{X: 10, Y: -10, ID: 0xABCD1234}

	frame := EncodeXray(xray, scr)
	r := protocol.NewReader(frame)

	op, err := r.Uint8()
	if err != nil || protocol.Opcode(op) != protocol.OpXrayData {
		t.Fatalf("opcode = %v, err = %v, want OpXrayData", op, err)
	}
	count, err := r.Uint32()
	if err != nil || count != uint32(len(xray.Cells)) {
		t.Fatalf("count = %d, err = %v, want %d", count, err, len(xray.Cells))
	}

	for _, c := range xray.Cells {
		id, err := r.Uint32()
		if err != nil || id != c.NodeID^scr.ID {
			t.Fatalf("id = %d, err = %v, want %d", id, err, c.NodeID^scr.ID)
		}
		x, err := r.Int32()
		if err != nil || x != int32(float64(c.X)+scr.X) {
			t.Fatalf("x = %d, err = %v, want %d", x, err, int32(float64(c.X)+scr.X))
		}
		y, err := r.Int32()
		if err != nil || y != int32(float64(c.Y)+scr.Y) {
			t.Fatalf("y = %d, err = %v, want %d", y, err, int32(float64(c.Y)+scr.Y))
		}
		size, err := r.Uint16()
		if err != nil || size != uint16(c.Size) {
			t.Fatalf("size = %d, err = %v, want %d", size, err, uint16(c.Size))
		}
		typ, err := r.Uint8()
		if err != nil || typ != uint8(c.Type) {
			t.Fatalf("type = %d, err = %v, want %d", typ, err, uint8(c.Type))
		}
	}
	if r.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", r.Remaining())
	}
}

func TestXrayEnabledRevealsOutOfViewportCell(t *testing.T) {
	update := &sim.WorldUpdate{
		Tick: 1,
		Cells: []sim.CellSnapshot{
			{NodeID: 1, Type: world.Player, X: 0, Y: 0, Size: 30},
			{NodeID: 2, Type: world.Food, X: 100000, Y: 100000, Size: 5},
		},
	}
	in := Input{OwnedCells: []uint32{1}, XrayEnabled: true}
	view := NewView()

	frame := Encode(update, in, Scramble{}, view)
	if len(frame) == 0 {
		t.Fatal("expected a non-empty update frame")
	}
	if _, ok := view.ClientNodes[2]; !ok {
		t.Fatalf("expected x-ray to add the far-away food cell to the client view set")
	}
}
