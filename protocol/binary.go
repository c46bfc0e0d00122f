// Package protocol implements the little-endian binary wire protocol: the
// reader/writer primitives, the opcode table, and the per-packet codecs for
// both directions of the stream.
package protocol

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

// ErrShort is returned by any try-read that did not have enough remaining
// bytes. It is always recoverable: the caller logs and drops the packet.
var ErrShort = errors.New("protocol: short read")

// Reader parses a little-endian binary message. All non-advancing try_*
// reads return ErrShort rather than panicking on truncated input.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for reading.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Skip advances the cursor by n bytes, clamped to the remaining length.
func (r *Reader) Skip(n int) {
	if n > r.Remaining() {
		n = r.Remaining()
	}
	r.pos += n
}

func (r *Reader) Uint8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, ErrShort
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

func (r *Reader) Uint16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, ErrShort
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

func (r *Reader) Uint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ErrShort
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	return float32frombits(v), nil
}

func (r *Reader) Float64() (float64, error) {
	if r.Remaining() < 8 {
		return 0, ErrShort
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return float64frombits(v), nil
}

// StringUTF8 reads a null-terminated UTF-8 string (protocol ≤ 6).
func (r *Reader) StringUTF8() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) {
		if r.buf[r.pos] == 0 {
			s := string(r.buf[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	r.pos = start
	return "", ErrShort
}

// StringUTF16 reads a null-terminated UTF-16LE string (protocol > 6).
func (r *Reader) StringUTF16() (string, error) {
	start := r.pos
	var units []uint16
	for r.Remaining() >= 2 {
		u, err := r.Uint16()
		if err != nil {
			return "", err
		}
		if u == 0 {
			return string(utf16.Decode(units)), nil
		}
		units = append(units, u)
	}
	r.pos = start
	return "", ErrShort
}

// String reads a null-terminated string using UTF-8 for protocol versions
// ≤ 6 and UTF-16LE otherwise.
func (r *Reader) String(protocolVersion uint32) (string, error) {
	if protocolVersion <= 6 {
		return r.StringUTF8()
	}
	return r.StringUTF16()
}

// Writer builds a little-endian binary message.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity hint.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) PutUint8(v uint8) { w.buf = append(w.buf, v) }
func (w *Writer) PutInt8(v int8)   { w.PutUint8(uint8(v)) }

func (w *Writer) PutUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) PutInt16(v int16) { w.PutUint16(uint16(v)) }

func (w *Writer) PutUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) PutInt32(v int32) { w.PutUint32(uint32(v)) }

func (w *Writer) PutFloat32(v float32) { w.PutUint32(float32bits(v)) }

func (w *Writer) PutFloat64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], float64bits(v))
	w.buf = append(w.buf, b[:]...)
}

// PutStringUTF8 writes s followed by a NUL terminator.
func (w *Writer) PutStringUTF8(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// PutStringUTF16 writes s as UTF-16LE followed by a two-byte NUL terminator.
func (w *Writer) PutStringUTF16(s string) {
	for _, u := range utf16.Encode([]rune(s)) {
		w.PutUint16(u)
	}
	w.PutUint16(0)
}

// PutString writes s using UTF-8 for protocol ≤ 6 and UTF-16LE otherwise.
func (w *Writer) PutString(protocolVersion uint32, s string) {
	if protocolVersion <= 6 {
		w.PutStringUTF8(s)
	} else {
		w.PutStringUTF16(s)
	}
}
