// Package session implements the per-client connection state machine: the
// handshake, the opcode dispatch table, rate limiting, and command
// dispatching that sit between a raw transport connection and the shared
// simulation.
package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/dm-vev/cogar/config"
	"github.com/dm-vev/cogar/delta"
	"github.com/dm-vev/cogar/protocol"
	"github.com/dm-vev/cogar/sim"
)

// State is one stage of the connection state machine.
type State uint8

const (
	Accepted State = iota
	ProtocolReceived
	Handshaked
	Active
	Spectating
	Playing
	Closed
)

// Conn is the minimal outbound transport surface a Session needs; the net
// package's wsConn (the gorilla/websocket wrapper) implements it. Kept as an interface here
// so this package has no import-cycle dependency on net.
type Conn interface {
	WriteFrame([]byte) error
	RemoteIP() string
}

// ChatBroadcaster fans a chat line out to every other connected session; the
// net package supplies the concrete implementation over its chat channel.
type ChatBroadcaster interface {
	BroadcastChat(flags, r, g, b uint8, name, message string)
}

// Registry exposes the subset of the connection registry a command needs:
// looking another player up by name to target a command at them.
type Registry interface {
	FindByName(name string) *Session
	Count() int
}

var (
	errWrongState   = errors.New("session: opcode not valid in current state")
	errBadHandshake = errors.New("session: bad handshake key")
)

// Session holds everything private to one client connection: identity,
// handshake state, mouse/scramble/view-diff state, and a reference to the
// shared game the handlers mutate through. Per spec's shared-resource
// policy, none of this is touched by the tick task.
type Session struct {
	mu sync.Mutex

	conn  Conn
	game  *sim.Game
	log   *slog.Logger
	cfg   config.Config
	ownerID uint32

	state           State
	protocolVersion uint32
	scramble        delta.Scramble
	view            *delta.View

	name, skin string
	isOperator bool

	xrayEnabled bool
	lastStatTick uint64

	chat     ChatBroadcaster
	registry Registry
	banList  *config.BanList

	closed bool
}

// SetChatBroadcaster wires in the transport layer's chat fan-out, called by
// net right after New.
func (s *Session) SetChatBroadcaster(c ChatBroadcaster) { s.chat = c }

// SetRegistry wires in the transport layer's connection registry, used by
// operator commands that target another player by name.
func (s *Session) SetRegistry(r Registry) { s.registry = r }

// SetOperator marks this session as authenticated for operator commands
// (called by the `/login <password>` chat command once the password matches
// server.operator_password).
func (s *Session) SetOperator(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOperator = v
}

// broadcastChat sends a chat line to every connected session, including
// this one, via the wired ChatBroadcaster.
func (s *Session) broadcastChat(name, message string, admin bool) {
	if s.chat == nil {
		return
	}
	var flags uint8
	s.mu.Lock()
	if s.isOperator {
		flags |= protocol.ChatFlagAdmin
	}
	s.mu.Unlock()
	_ = admin
	s.chat.BroadcastChat(flags, 255, 255, 255, name, message)
}

// sendSystemMessage delivers a server-flagged chat line to this session only.
func (s *Session) sendSystemMessage(message string) {
	s.send(protocol.EncodeChatMessage(protocol.ChatFlagServer, 255, 255, 255, "", message))
}

// serverStat is the JSON payload of the ServerStat packet.
type serverStat struct {
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	PlayerCnt  int    `json:"players"`
	Uptime     uint64 `json:"uptime_ticks"`
}

// emitStatsLocked sends a ServerStat frame if at least 30 ticks have
// elapsed since the last one for this client. Caller must hold s.mu.
func (s *Session) emitStatsLocked() {
	tick := s.game.Tick()
	if tick-s.lastStatTick < 30 && s.lastStatTick != 0 {
		return
	}
	s.lastStatTick = tick

	count := 0
	if s.registry != nil {
		count = s.registry.Count()
	}
	modeName := ""
	if m := s.game.Mode(); m != nil {
		modeName = m.Name()
	}
	stat := serverStat{
		Name:      s.cfg.Server.Name,
		Mode:      modeName,
		PlayerCnt: count,
		Uptime:    tick,
	}
	data, err := json.Marshal(stat)
	if err != nil {
		return
	}
	s.send(protocol.EncodeServerStat(string(data)))
}

// New constructs a Session in the Accepted state, bound to conn and the
// shared game. The owner record is created immediately so bot-style
// minion control and the tick pipeline can reference it, but it starts
// with zero cells until Join arrives.
func New(conn Conn, game *sim.Game, cfg config.Config, log *slog.Logger) *Session {
	game.Lock()
	o := game.AddOwner(false)
	game.Unlock()

	return &Session{
		conn:    conn,
		game:    game,
		log:     log,
		cfg:     cfg,
		ownerID: o.ID,
		state:   Accepted,
		scramble: delta.Scramble{
			X:  float64(rand.Int31()),
			Y:  float64(rand.Int31()),
			ID: rand.Uint32(),
		},
		view: delta.NewView(),
	}
}

// OwnerID returns the sim.Owner id backing this session's cells.
func (s *Session) OwnerID() uint32 { return s.ownerID }

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleFrame decodes and dispatches one inbound frame. Any decode or
// handler error is logged and swallowed: a single malformed frame never
// closes the connection (spec §4.7's own recoverability guarantee for
// ErrShort/ErrUnknownOpcode).
func (s *Session) HandleFrame(frame []byte) {
	s.mu.Lock()
	protoVer := s.protocolVersion
	s.mu.Unlock()

	msg, err := protocol.Decode(frame, protoVer)
	if err != nil {
		s.log.Debug("dropping malformed frame", slog.Any("err", err))
		return
	}

	h, ok := handlers[msg.Opcode]
	if !ok {
		return
	}
	if err := h.Handle(msg, s); err != nil {
		s.log.Debug("handler error", slog.String("opcode", msg.Opcode.String()), slog.Any("err", err))
	}
}

// Close tears down the session: it removes the owner (destroying its cells
// and minions) from the shared game and marks the session closed so no
// further frames are dispatched.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = Closed
	s.mu.Unlock()

	s.game.Lock()
	s.game.RemoveOwner(s.ownerID)
	s.game.Unlock()
}

// send writes one pre-encoded frame to the client, logging (not panicking)
// on a transport error; the caller's per-session writer goroutine owns
// actually detecting a dead connection and triggering Close.
func (s *Session) send(frame []byte) {
	if err := s.conn.WriteFrame(frame); err != nil {
		s.log.Debug("write failed", slog.Any("err", err))
	}
}

// BuildUpdateFrame runs the delta encoder for this client against the
// latest world update and returns the UpdateNodes frame, or nil once the
// handshake has not completed yet.
func (s *Session) BuildUpdateFrame(update *sim.WorldUpdate) []byte {
	s.mu.Lock()
	state := s.state
	protoVer := s.protocolVersion
	xray := s.xrayEnabled
	scr := s.scramble
	view := s.view
	s.mu.Unlock()

	if state != Active && state != Playing && state != Spectating {
		return nil
	}

	s.game.RLock()
	o := s.game.Owner(s.ownerID)
	var in delta.Input
	if o != nil {
		in.OwnedCells = append([]uint32(nil), o.Cells...)
		for _, minionID := range o.Minions {
			if m := s.game.Owner(minionID); m != nil {
				in.MinionCells = append(in.MinionCells, m.Cells...)
			}
		}
		if m := s.game.Mode(); m != nil {
			in.ViewBonus = m.ViewBonus(s.game, s.ownerID)
		}
	}
	s.game.RUnlock()
	if o == nil {
		return nil
	}
	in.XrayEnabled = xray
	in.SpectateMode = state == Spectating
	in.ProtocolVer = protoVer

	return delta.Encode(update, in, scr, view)
}

// Name returns the session's current display name (empty before Join).
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// RemoteIP returns the client's transport address, used by operator tooling
// (console and chat /ban) to record against the ban list.
func (s *Session) RemoteIP() string { return s.conn.RemoteIP() }

// XrayEnabled reports whether this session has the operator x-ray overlay
// toggled on.
func (s *Session) XrayEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xrayEnabled
}

// BuildXrayFrame renders the operator x-ray overlay frame for this client's
// own scramble, or nil if x-ray is off.
func (s *Session) BuildXrayFrame(xray *sim.XrayUpdate) []byte {
	s.mu.Lock()
	xrayOn := s.xrayEnabled
	scr := s.scramble
	s.mu.Unlock()
	if !xrayOn {
		return nil
	}
	return delta.EncodeXray(xray, scr)
}

// BuildLeaderboardFrame renders this tick's leaderboard for this client,
// marking its own owner id in an FFA-style leaderboard via the IsMe flag.
func (s *Session) BuildLeaderboardFrame(lb *sim.Leaderboard) []byte {
	if lb.Fractions != nil {
		return protocol.EncodeLeaderboardPie(lb.Fractions)
	}
	entries := make([]protocol.LeaderboardEntry, len(lb.Entries))
	for i, e := range lb.Entries {
		entries[i] = protocol.LeaderboardEntry{IsMe: e.OwnerID == s.ownerID, Name: e.Name}
	}
	return protocol.EncodeLeaderboardFFA(entries)
}

func (t State) String() string {
	switch t {
	case Accepted:
		return "accepted"
	case ProtocolReceived:
		return "protocol_received"
	case Handshaked:
		return "handshaked"
	case Active:
		return "active"
	case Spectating:
		return "spectating"
	case Playing:
		return "playing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
