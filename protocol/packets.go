package protocol

import "errors"

// ErrUnknownOpcode is returned by Decode when the first byte of a frame does
// not match any known client opcode.
var ErrUnknownOpcode = errors.New("protocol: unknown opcode")

// ClientMessage is the decoded form of one client → server frame.
type ClientMessage struct {
	Opcode Opcode

	// Join
	Name string
	Skin string

	// Mouse
	X, Y float64

	// Chat
	ChatFlags uint8
	Message   string

	// Protocol / HandshakeKey
	Version uint32
	Key     uint32
}

// Decode parses one client frame. protocolVersion selects the string
// encoding (UTF-8 ≤ 6, UTF-16LE otherwise) used by Join and Chat. A short or
// malformed frame returns ErrShort; an unrecognised opcode returns
// ErrUnknownOpcode. Both are recoverable: the caller should drop the frame
// and keep the connection open.
func Decode(frame []byte, protocolVersion uint32) (ClientMessage, error) {
	if len(frame) == 0 {
		return ClientMessage{}, ErrShort
	}
	r := NewReader(frame)
	op, _ := r.Uint8()
	msg := ClientMessage{Opcode: Opcode(op)}

	switch Opcode(op) {
	case OpJoin:
		name, err := r.String(protocolVersion)
		if err != nil {
			return msg, err
		}
		msg.Name, msg.Skin = parseNameSkin(name)
		return msg, nil
	case OpSpectate, OpSplit, OpKeyQ, OpEject, OpKeyE, OpKeyR, OpKeyT, OpKeyP:
		return msg, nil
	case OpMouse:
		switch len(frame) {
		case 9:
			x, err := r.Int16()
			if err != nil {
				return msg, err
			}
			y, err := r.Int16()
			if err != nil {
				return msg, err
			}
			msg.X, msg.Y = float64(x), float64(y)
		case 13:
			x, err := r.Int32()
			if err != nil {
				return msg, err
			}
			y, err := r.Int32()
			if err != nil {
				return msg, err
			}
			msg.X, msg.Y = float64(x), float64(y)
		case 21:
			x, err := r.Float64()
			if err != nil {
				return msg, err
			}
			y, err := r.Float64()
			if err != nil {
				return msg, err
			}
			msg.X, msg.Y = x, y
		default:
			return msg, ErrShort
		}
		return msg, nil
	case OpChat:
		flags, err := r.Uint8()
		if err != nil {
			return msg, err
		}
		msg.ChatFlags = flags
		reserved := 0
		if flags&0x02 != 0 {
			reserved += 4
		}
		if flags&0x04 != 0 {
			reserved += 8
		}
		if flags&0x08 != 0 {
			reserved += 16
		}
		r.Skip(reserved)
		text, err := r.String(protocolVersion)
		if err != nil {
			return msg, err
		}
		msg.Message = text
		return msg, nil
	case OpProtocol:
		switch len(frame) {
		case 1:
			return msg, nil // bare 0xFE: stats request
		case 5:
			v, err := r.Uint32()
			if err != nil {
				return msg, err
			}
			msg.Version = v
			return msg, nil
		default:
			return msg, ErrShort
		}
	case OpHandshakeKey:
		if len(frame) != 5 {
			return msg, ErrShort
		}
		k, err := r.Uint32()
		if err != nil {
			return msg, err
		}
		msg.Key = k
		return msg, nil
	default:
		return msg, ErrUnknownOpcode
	}
}

// parseNameSkin splits a Join name of the optional form "{skin}name" into
// its skin and display-name parts.
func parseNameSkin(raw string) (name, skin string) {
	if len(raw) > 0 && raw[0] == '{' {
		if end := indexByte(raw, '}'); end > 0 {
			return raw[end+1:], raw[1:end]
		}
	}
	return raw, ""
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// --- Server → client encoders for the fixed-shape packets. UpdateNodes,
// which is assembled incrementally from the live view-diff, lives in the
// delta package and writes directly through a Writer.

func EncodeClearAll() []byte {
	w := NewWriter(1)
	w.PutUint8(uint8(OpClearAll))
	return w.Bytes()
}

func EncodeClearOwned() []byte {
	w := NewWriter(1)
	w.PutUint8(uint8(OpClearOwned))
	return w.Bytes()
}

func EncodeAddNode(nodeID, scrambleID uint32) []byte {
	w := NewWriter(5)
	w.PutUint8(uint8(OpAddNode))
	w.PutUint32(nodeID ^ scrambleID)
	return w.Bytes()
}

func EncodeUpdatePosition(x, y, scale float32) []byte {
	w := NewWriter(13)
	w.PutUint8(uint8(OpUpdatePosition))
	w.PutFloat32(x)
	w.PutFloat32(y)
	w.PutFloat32(scale)
	return w.Bytes()
}

func EncodeSetBorder(minX, minY, maxX, maxY float64, gameType uint32, serverName string) []byte {
	w := NewWriter(33 + len(serverName) + 1)
	w.PutUint8(uint8(OpSetBorder))
	w.PutFloat64(minX)
	w.PutFloat64(minY)
	w.PutFloat64(maxX)
	w.PutFloat64(maxY)
	w.PutUint32(gameType)
	w.PutStringUTF8(serverName)
	return w.Bytes()
}

// LeaderboardEntry is one row of a FFA leaderboard packet.
type LeaderboardEntry struct {
	IsMe bool
	Name string
}

func EncodeLeaderboardFFA(entries []LeaderboardEntry) []byte {
	w := NewWriter(5 + len(entries)*16)
	w.PutUint8(uint8(OpLeaderboardFFA))
	w.PutUint32(uint32(len(entries)))
	for _, e := range entries {
		if e.IsMe {
			w.PutUint32(1)
		} else {
			w.PutUint32(0)
		}
		w.PutStringUTF8(e.Name)
	}
	return w.Bytes()
}

func EncodeLeaderboardPie(fractions []float32) []byte {
	w := NewWriter(5 + len(fractions)*4)
	w.PutUint8(uint8(OpLeaderboardPie))
	w.PutUint32(uint32(len(fractions)))
	for _, f := range fractions {
		w.PutFloat32(f)
	}
	return w.Bytes()
}

func EncodeChatMessage(flags, r, g, b uint8, name, message string) []byte {
	w := NewWriter(8 + len(name) + len(message))
	w.PutUint8(uint8(OpChatMessage))
	w.PutUint8(flags)
	w.PutUint8(r)
	w.PutUint8(g)
	w.PutUint8(b)
	w.PutStringUTF8(name)
	w.PutStringUTF8(message)
	return w.Bytes()
}

func EncodeServerStat(json string) []byte {
	w := NewWriter(1 + len(json) + 1)
	w.PutUint8(uint8(OpServerStat))
	w.PutStringUTF8(json)
	return w.Bytes()
}
