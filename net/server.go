package net

import (
	"log/slog"
	stdnet "net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dm-vev/cogar/config"
	"github.com/dm-vev/cogar/session"
	"github.com/dm-vev/cogar/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server accepts WebSocket connections over HTTP and feeds them into a Hub
// and the shared Game.
type Server struct {
	cfg   config.Config
	game  *sim.Game
	hub   *Hub
	bans  *config.BanList
	log   *slog.Logger
	http  *http.Server
}

// NewServer constructs a Server bound to game, listening per cfg.Server's
// bind/port, enforcing bans against bans.
func NewServer(cfg config.Config, game *sim.Game, hub *Hub, bans *config.BanList, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{cfg: cfg, game: game, hub: hub, bans: bans, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)
	s.http = &http.Server{
		Addr:    stdnet.JoinHostPort(cfg.Server.Bind, strconv.Itoa(int(cfg.Server.Port))),
		Handler: mux,
	}
	return s
}

// ListenAndServe blocks serving WebSocket connections until the server is
// shut down or a listener error occurs (other than a graceful shutdown).
func (s *Server) ListenAndServe() error {
	go s.hub.Run()
	s.log.Info("listening", slog.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains the hub's dispatch loops.
func (s *Server) Shutdown() {
	s.http.Close()
	s.hub.Close()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := remoteIP(r)
	if s.bans.Banned(ip) {
		http.Error(w, "banned", http.StatusForbidden)
		return
	}
	if max := s.cfg.Server.MaxConnections; max > 0 && s.hub.total() >= max {
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}
	if limit := s.cfg.Server.IPLimit; limit > 0 && s.hub.ipCount(ip) >= limit {
		http.Error(w, "too many connections from this address", http.StatusTooManyRequests)
		return
	}

	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", slog.Any("err", err))
		return
	}

	conn := newWSConn(raw, ip)
	sess := session.New(conn, s.game, s.cfg, s.log)
	sess.SetChatBroadcaster(s.hub)
	sess.SetRegistry(s.hub)

	c := &client{sess: sess, conn: conn, outCh: make(chan []byte, clientOutboxCap)}
	s.hub.register(c)

	go s.writePump(c)
	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.hub.unregister(c)
		c.sess.Close()
		c.conn.close()
	}()

	raw := c.conn.conn
	raw.SetReadLimit(maxFrame)
	raw.SetReadDeadline(time.Now().Add(pongWait))
	raw.SetPongHandler(func(string) error {
		raw.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		typ, data, err := raw.ReadMessage()
		if err != nil {
			return
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		c.sess.HandleFrame(data)
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-c.outCh:
			if !ok {
				return
			}
			if err := c.conn.WriteFrame(frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.ping(); err != nil {
				return
			}
		}
	}
}

func remoteIP(r *http.Request) string {
	if host, _, err := stdnet.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

