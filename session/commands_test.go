package session

import (
	"log/slog"
	"testing"

	"github.com/dm-vev/cogar/config"
	"github.com/dm-vev/cogar/gamemode"
	"github.com/dm-vev/cogar/sim"
)

type fakeConn struct{ frames [][]byte }

func (f *fakeConn) WriteFrame(frame []byte) error {
	f.frames = append(f.frames, frame)
	return nil
}
func (f *fakeConn) RemoteIP() string { return "127.0.0.1" }

func newTestSession(t *testing.T, cfg config.Config) (*Session, *sim.Game) {
	t.Helper()
	game := sim.New(cfg, gamemode.NewFFA(), slog.Default(), sim.NopBroadcaster{})
	s := New(&fakeConn{}, game, cfg, slog.Default())
	return s, game
}

func TestLoginRequiresCorrectPassword(t *testing.T) {
	cfg := config.Default()
	cfg.Server.OperatorPassword = "hunter2"
	s, _ := newTestSession(t, cfg)

	if err := dispatchCommand(s, "login wrongpass"); err != nil {
		t.Fatalf("dispatchCommand returned error: %v", err)
	}
	if s.isOperator {
		t.Fatal("wrong password must not grant operator status")
	}

	if err := dispatchCommand(s, "login hunter2"); err != nil {
		t.Fatalf("dispatchCommand returned error: %v", err)
	}
	if !s.isOperator {
		t.Fatal("correct password must grant operator status")
	}
}

func TestNonOperatorCommandsAreRejected(t *testing.T) {
	cfg := config.Default()
	s, game := newTestSession(t, cfg)

	if err := dispatchCommand(s, "mode teams"); err != nil {
		t.Fatalf("dispatchCommand returned error: %v", err)
	}
	if game.Mode().Name() == "Teams" {
		t.Fatal("a non-operator session must not be able to change the game mode")
	}
}

func TestModeCommandSwitchesActiveMode(t *testing.T) {
	cfg := config.Default()
	cfg.Server.OperatorPassword = "pw"
	s, game := newTestSession(t, cfg)
	s.SetOperator(true)

	if err := dispatchCommand(s, "mode teams"); err != nil {
		t.Fatalf("dispatchCommand returned error: %v", err)
	}
	if got := game.Mode().Name(); got != "Teams" {
		t.Fatalf("mode = %q, want Teams", got)
	}

	if err := dispatchCommand(s, "mode not-a-real-mode"); err != nil {
		t.Fatalf("dispatchCommand returned error: %v", err)
	}
	if got := game.Mode().Name(); got != "Teams" {
		t.Fatalf("an unknown mode name must leave the active mode unchanged, got %q", got)
	}
}

func TestXrayCommandTogglesOwnerAndSessionState(t *testing.T) {
	cfg := config.Default()
	s, game := newTestSession(t, cfg)
	s.SetOperator(true)

	if err := dispatchCommand(s, "xray"); err != nil {
		t.Fatalf("dispatchCommand returned error: %v", err)
	}
	if !s.XrayEnabled() {
		t.Fatal("first /xray call must enable x-ray")
	}
	game.RLock()
	owner := game.Owner(s.OwnerID())
	game.RUnlock()
	if owner == nil || !owner.XrayEnabled {
		t.Fatal("x-ray must also be reflected on the owner record")
	}

	if err := dispatchCommand(s, "xray"); err != nil {
		t.Fatalf("dispatchCommand returned error: %v", err)
	}
	if s.XrayEnabled() {
		t.Fatal("second /xray call must disable x-ray")
	}
}
