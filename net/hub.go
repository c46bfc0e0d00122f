package net

import (
	"strings"
	"sync"

	"github.com/dm-vev/cogar/protocol"
	"github.com/dm-vev/cogar/session"
	"github.com/dm-vev/cogar/sim"
)

const clientOutboxCap = 64

// client bundles one connected session with its transport and its
// outbound frame queue; a dedicated writer goroutine drains outCh so a slow
// reader never blocks the tick-driven dispatch goroutines.
type client struct {
	sess  *session.Session
	conn  *wsConn
	outCh chan []byte
}

func (c *client) push(frame []byte) {
	if frame == nil {
		return
	}
	select {
	case c.outCh <- frame:
	default:
	}
}

// Hub is the shared connection registry and broadcast fan-out: it
// implements sim.Broadcaster (consumed by the tick loop),
// session.ChatBroadcaster and session.Registry (consumed by sessions), and
// owns the four lossy per-tick broadcast channels described by its
// constructor.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint32]*client // keyed by owner id
	byIP     map[string]int

	worldCh       chan *sim.WorldUpdate
	leaderboardCh chan *sim.Leaderboard
	xrayCh        chan *sim.XrayUpdate
	chatCh        chan []byte
}

// NewHub constructs a Hub with the reference buffer depths: world updates
// fire every tick and only the latest matters (depth 5), leaderboards fire
// every 25 ticks (depth 10), the x-ray overlay and chat are bursty and
// targeted at a subset of sessions so they get more headroom (depth 100).
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[uint32]*client, 256),
		byIP:          make(map[string]int, 256),
		worldCh:       make(chan *sim.WorldUpdate, 5),
		leaderboardCh: make(chan *sim.Leaderboard, 10),
		xrayCh:        make(chan *sim.XrayUpdate, 100),
		chatCh:        make(chan []byte, 100),
	}
}

// Run starts the four dispatch loops; it returns once all four channels are
// closed by Close.
func (h *Hub) Run() {
	var wg sync.WaitGroup
	wg.Add(4)
	go func() { defer wg.Done(); h.dispatchWorld() }()
	go func() { defer wg.Done(); h.dispatchLeaderboard() }()
	go func() { defer wg.Done(); h.dispatchXray() }()
	go func() { defer wg.Done(); h.dispatchChat() }()
	wg.Wait()
}

// Close shuts down the dispatch loops. The caller must stop the Game's
// tick loop first: closing these channels while the tick task can still
// call PublishWorldUpdate/PublishLeaderboard/PublishXray panics.
func (h *Hub) Close() {
	close(h.worldCh)
	close(h.leaderboardCh)
	close(h.xrayCh)
	close(h.chatCh)
}

func (h *Hub) dispatchWorld() {
	for u := range h.worldCh {
		for _, c := range h.snapshot() {
			c.push(c.sess.BuildUpdateFrame(u))
		}
	}
}

func (h *Hub) dispatchLeaderboard() {
	for lb := range h.leaderboardCh {
		for _, c := range h.snapshot() {
			c.push(c.sess.BuildLeaderboardFrame(lb))
		}
	}
}

func (h *Hub) dispatchXray() {
	for x := range h.xrayCh {
		for _, c := range h.snapshot() {
			if c.sess.XrayEnabled() {
				c.push(c.sess.BuildXrayFrame(x))
			}
		}
	}
}

func (h *Hub) dispatchChat() {
	for frame := range h.chatCh {
		for _, c := range h.snapshot() {
			c.push(frame)
		}
	}
}

func (h *Hub) snapshot() []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// PublishWorldUpdate, PublishLeaderboard and PublishXray implement
// sim.Broadcaster; the tick task must never block on a slow dispatch loop,
// so every send here is a non-blocking drop-if-full.
func (h *Hub) PublishWorldUpdate(u *sim.WorldUpdate) {
	select {
	case h.worldCh <- u:
	default:
	}
}

func (h *Hub) PublishLeaderboard(lb *sim.Leaderboard) {
	select {
	case h.leaderboardCh <- lb:
	default:
	}
}

func (h *Hub) PublishXray(x *sim.XrayUpdate) {
	select {
	case h.xrayCh <- x:
	default:
	}
}

// BroadcastChat implements session.ChatBroadcaster.
func (h *Hub) BroadcastChat(flags, r, g, b uint8, name, message string) {
	frame := protocol.EncodeChatMessage(flags, r, g, b, name, message)
	select {
	case h.chatCh <- frame:
	default:
	}
}

// FindByName implements session.Registry, an exact case-insensitive match
// used by operator commands (/kick, /ban, /freeze) to target a player.
func (h *Hub) FindByName(name string) *session.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if strings.EqualFold(c.sess.Name(), name) {
			return c.sess
		}
	}
	return nil
}

// Count implements session.Registry.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.sess.OwnerID()] = c
	h.byIP[c.conn.ip]++
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.sess.OwnerID())
	if h.byIP[c.conn.ip] <= 1 {
		delete(h.byIP, c.conn.ip)
	} else {
		h.byIP[c.conn.ip]--
	}
}

// ipCount reports how many live connections currently share ip.
func (h *Hub) ipCount(ip string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.byIP[ip]
}

// total reports the total number of live connections.
func (h *Hub) total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
