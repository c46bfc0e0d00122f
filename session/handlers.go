package session

import (
	"strings"

	"github.com/dm-vev/cogar/protocol"
)

// Handler is implemented once per opcode, in dragonfly's session.Handler
// style: a small struct whose Handle method applies one inbound message to
// a Session.
type Handler interface {
	Handle(msg protocol.ClientMessage, s *Session) error
}

// handlers is the opcode → Handler registry consulted by Session.HandleFrame.
var handlers = map[protocol.Opcode]Handler{
	protocol.OpProtocol:     protocolHandler{},
	protocol.OpHandshakeKey: handshakeHandler{},
	protocol.OpJoin:         joinHandler{},
	protocol.OpSpectate:     spectateHandler{},
	protocol.OpMouse:        mouseHandler{},
	protocol.OpSplit:        splitHandler{},
	protocol.OpEject:        ejectHandler{},
	protocol.OpKeyQ:         keyQHandler{},
	protocol.OpKeyE:         keyEHandler{},
	protocol.OpKeyR:         keyRHandler{},
	protocol.OpKeyT:         keyTHandler{},
	protocol.OpKeyP:         keyPHandler{},
	protocol.OpChat:         chatHandler{},
}

// protocolHandler validates the handshake's first step: a bare 0xFE is a
// stats request (valid any time after Active), a 5-byte 0xFE carries the
// protocol version and must arrive before any other opcode.
type protocolHandler struct{}

func (protocolHandler) Handle(msg protocol.ClientMessage, s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Version == 0 {
		// Bare StatsRequest.
		if s.state < Active {
			return errWrongState
		}
		s.emitStatsLocked()
		return nil
	}

	if s.state != Accepted {
		return errWrongState
	}
	if msg.Version < protocol.MinProtocolVersion || msg.Version > protocol.MaxProtocolVersion {
		return errWrongState
	}
	s.protocolVersion = msg.Version
	s.state = ProtocolReceived
	return nil
}

// handshakeHandler completes the handshake: protocol > 6 requires key 0,
// protocol ≤ 6 accepts any key (matching the original client's simpler
// legacy handshake). On success the client receives ClearAll and
// SetBorder.
type handshakeHandler struct{}

func (handshakeHandler) Handle(msg protocol.ClientMessage, s *Session) error {
	s.mu.Lock()
	if s.state != ProtocolReceived {
		s.mu.Unlock()
		return errWrongState
	}
	if s.protocolVersion > 6 && msg.Key != 0 {
		s.mu.Unlock()
		return errBadHandshake
	}
	s.state = Handshaked
	protoVer := s.protocolVersion
	s.mu.Unlock()

	s.send(protocol.EncodeClearAll())
	s.game.RLock()
	b := s.game.Border()
	name := s.cfg.Server.Name
	gameType := s.game.Mode().ID()
	s.game.RUnlock()
	s.send(protocol.EncodeSetBorder(float64(b.MinX), float64(b.MinY), float64(b.MaxX), float64(b.MaxY), gameType, name))
	_ = protoVer

	s.mu.Lock()
	s.state = Active
	s.mu.Unlock()
	return nil
}

// joinHandler parses the optional {skin} prefix, clamps the name, assigns
// team/color via the active mode's on_join hook, and spawns a first cell.
type joinHandler struct{}

func (joinHandler) Handle(msg protocol.ClientMessage, s *Session) error {
	s.mu.Lock()
	if s.state != Active {
		s.mu.Unlock()
		return errWrongState
	}
	name := msg.Name
	if max := s.cfg.Player.MaxNickLength; max > 0 && len(name) > max {
		name = name[:max]
	}
	s.name, s.skin = name, msg.Skin
	s.state = Playing
	ownerID := s.ownerID
	s.mu.Unlock()

	s.game.Lock()
	o := s.game.Owner(ownerID)
	if o != nil {
		o.Name, o.Skin = name, msg.Skin
		if s.game.Mode() != nil {
			s.game.Mode().OnOwnerJoin(s.game, o)
		}
		if len(o.Cells) == 0 {
			s.game.SpawnPlayerCellFor(o)
		}
	}
	s.game.Unlock()
	return nil
}

// spectateHandler switches the session into free-camera spectating, which
// owns no cells and follows the world centroid instead of a mouse target.
type spectateHandler struct{}

func (spectateHandler) Handle(_ protocol.ClientMessage, s *Session) error {
	s.mu.Lock()
	if s.state != Active && s.state != Playing {
		s.mu.Unlock()
		return errWrongState
	}
	s.state = Spectating
	ownerID := s.ownerID
	s.mu.Unlock()

	s.game.Lock()
	if o := s.game.Owner(ownerID); o != nil {
		o.IsSpectating = true
	}
	s.game.Unlock()
	return nil
}

// mouseHandler records the owner's movement target, translating out of
// scrambled client space.
type mouseHandler struct{}

func (mouseHandler) Handle(msg protocol.ClientMessage, s *Session) error {
	s.mu.Lock()
	if s.state != Playing && s.state != Active {
		s.mu.Unlock()
		return errWrongState
	}
	scr := s.scramble
	ownerID := s.ownerID
	s.mu.Unlock()

	x := float32(msg.X - scr.X)
	y := float32(msg.Y - scr.Y)
	s.game.SetMouse(ownerID, x, y)
	return nil
}

type splitHandler struct{}

func (splitHandler) Handle(_ protocol.ClientMessage, s *Session) error {
	if s.State() != Playing {
		return errWrongState
	}
	s.game.RequestSplit(s.ownerID)
	return nil
}

type ejectHandler struct{}

func (ejectHandler) Handle(_ protocol.ClientMessage, s *Session) error {
	if s.State() != Playing {
		return errWrongState
	}
	s.game.RequestEject(s.ownerID)
	return nil
}

// keyQHandler toggles the player's own cells frozen; minions keep moving.
type keyQHandler struct{}

func (keyQHandler) Handle(_ protocol.ClientMessage, s *Session) error {
	s.game.Lock()
	defer s.game.Unlock()
	o := s.game.Owner(s.ownerID)
	if o == nil {
		return nil
	}
	o.Frozen = !o.Frozen
	return nil
}

// keyEHandler triggers a one-shot split of every controlled minion.
type keyEHandler struct{}

func (keyEHandler) Handle(_ protocol.ClientMessage, s *Session) error {
	s.game.Lock()
	defer s.game.Unlock()
	o := s.game.Owner(s.ownerID)
	if o == nil || len(o.Minions) == 0 {
		return nil
	}
	for _, id := range o.Minions {
		s.game.RequestSplit(id)
	}
	return nil
}

// keyRHandler triggers a one-shot eject of every controlled minion.
type keyRHandler struct{}

func (keyRHandler) Handle(_ protocol.ClientMessage, s *Session) error {
	s.game.Lock()
	defer s.game.Unlock()
	o := s.game.Owner(s.ownerID)
	if o == nil || len(o.Minions) == 0 {
		return nil
	}
	for _, id := range o.Minions {
		s.game.RequestEject(id)
	}
	return nil
}

// keyTHandler toggles whether controlled minions are frozen.
type keyTHandler struct{}

func (keyTHandler) Handle(_ protocol.ClientMessage, s *Session) error {
	s.game.Lock()
	defer s.game.Unlock()
	o := s.game.Owner(s.ownerID)
	if o == nil || len(o.Minions) == 0 {
		return nil
	}
	for _, id := range o.Minions {
		if m := s.game.Owner(id); m != nil {
			m.Frozen = !m.Frozen
		}
	}
	return nil
}

// keyPHandler toggles whether controlled minions chase the nearest food
// instead of following the controller's mouse/center.
type keyPHandler struct{}

func (keyPHandler) Handle(_ protocol.ClientMessage, s *Session) error {
	s.game.Lock()
	defer s.game.Unlock()
	o := s.game.Owner(s.ownerID)
	if o == nil || len(o.Minions) == 0 {
		return nil
	}
	for _, id := range o.Minions {
		if m := s.game.Owner(id); m != nil {
			m.MinionCollectMode = !m.MinionCollectMode
		}
	}
	return nil
}

// chatHandler dispatches `/`-prefixed lines to the command dispatcher and
// broadcasts everything else.
type chatHandler struct{}

func (chatHandler) Handle(msg protocol.ClientMessage, s *Session) error {
	text := strings.TrimSpace(msg.Message)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "/") {
		return dispatchCommand(s, text[1:])
	}
	s.mu.Lock()
	name := s.name
	s.mu.Unlock()
	s.broadcastChat(name, text, false)
	return nil
}
