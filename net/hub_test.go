package net

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dm-vev/cogar/config"
	"github.com/dm-vev/cogar/gamemode"
	"github.com/dm-vev/cogar/session"
	"github.com/dm-vev/cogar/sim"
)

func newTestClient(t *testing.T, game *sim.Game, ip string) *client {
	t.Helper()
	sess := session.New(&fakeConn{ip: ip}, game, config.Default(), slog.Default())
	return &client{sess: sess, conn: &wsConn{ip: ip}, outCh: make(chan []byte, clientOutboxCap)}
}

type fakeConn struct{ ip string }

func (f *fakeConn) WriteFrame([]byte) error { return nil }
func (f *fakeConn) RemoteIP() string        { return f.ip }

func TestHubRegisterUnregisterBookkeeping(t *testing.T) {
	game := sim.New(config.Default(), gamemode.NewFFA(), nil, sim.NopBroadcaster{})
	h := NewHub()

	a := newTestClient(t, game, "10.0.0.1")
	b := newTestClient(t, game, "10.0.0.1")

	h.register(a)
	h.register(b)
	if got := h.total(); got != 2 {
		t.Fatalf("total = %d, want 2", got)
	}
	if got := h.ipCount("10.0.0.1"); got != 2 {
		t.Fatalf("ipCount = %d, want 2", got)
	}

	h.unregister(a)
	if got := h.total(); got != 1 {
		t.Fatalf("total = %d, want 1", got)
	}
	if got := h.ipCount("10.0.0.1"); got != 1 {
		t.Fatalf("ipCount = %d, want 1", got)
	}

	h.unregister(b)
	if got := h.ipCount("10.0.0.1"); got != 0 {
		t.Fatalf("ipCount = %d, want 0 once every client from that ip leaves", got)
	}
}

func TestHubFindByNameIsCaseInsensitive(t *testing.T) {
	game := sim.New(config.Default(), gamemode.NewFFA(), nil, sim.NopBroadcaster{})
	h := NewHub()
	c := newTestClient(t, game, "10.0.0.5")
	h.register(c)

	if h.FindByName("nobody") != nil {
		t.Fatal("expected no match for an unregistered name")
	}

	// Protocol 6, handshake key, then Join as "Alice".
	c.sess.HandleFrame([]byte{0xFE, 6, 0, 0, 0})
	c.sess.HandleFrame([]byte{0xFF, 0, 0, 0, 0})
	c.sess.HandleFrame(append([]byte{0x00}, "Alice\x00"...))
	if h.FindByName("aLICE") != c.sess {
		t.Fatal("expected a case-insensitive match on the joined name")
	}
}

func TestHubBroadcastChatDeliversToRegisteredClients(t *testing.T) {
	game := sim.New(config.Default(), gamemode.NewFFA(), nil, sim.NopBroadcaster{})
	h := NewHub()
	c := newTestClient(t, game, "10.0.0.9")
	h.register(c)

	go h.Run()
	defer h.Close()

	h.BroadcastChat(0, 255, 255, 255, "server", "hello")

	select {
	case frame := <-c.outCh:
		if len(frame) == 0 {
			t.Fatal("expected a non-empty chat frame")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the chat frame to reach the client outbox")
	}
}

var _ session.Conn = (*fakeConn)(nil)
