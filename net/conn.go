// Package net is the WebSocket transport: it accepts connections, enforces
// the global and per-IP connection caps and the ban list, and fans out the
// tick loop's broadcast records to every connected session. It implements
// session.Conn, session.ChatBroadcaster, session.Registry and
// sim.Broadcaster so the sim and session packages never import it back.
package net

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	maxFrame   = 4096
)

// wsConn adapts a *websocket.Conn to session.Conn: binary frames, a
// write-mutex since gorilla forbids concurrent writers, and the remote IP
// used for the ban list and per-IP connection cap.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
	ip   string
}

func newWSConn(conn *websocket.Conn, ip string) *wsConn {
	return &wsConn{conn: conn, ip: ip}
}

// WriteFrame sends one binary frame, satisfying session.Conn.
func (c *wsConn) WriteFrame(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// RemoteIP returns the client's address, satisfying session.Conn.
func (c *wsConn) RemoteIP() string { return c.ip }

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) close() { c.conn.Close() }
