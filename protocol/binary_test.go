package protocol

import "testing"

func TestReaderWriterRoundTrip(t *testing.T) {
	w := NewWriter(64)
	w.PutUint8(0xAB)
	w.PutInt8(-5)
	w.PutUint16(0xBEEF)
	w.PutInt16(-1234)
	w.PutUint32(0xDEADBEEF)
	w.PutInt32(-123456)
	w.PutFloat32(3.14159)
	w.PutFloat64(2.718281828)
	w.PutStringUTF8("hello")
	w.PutStringUTF16("world")

	r := NewReader(w.Bytes())

	if v, err := r.Uint8(); err != nil || v != 0xAB {
		t.Fatalf("Uint8 = %v, %v", v, err)
	}
	if v, err := r.Int8(); err != nil || v != -5 {
		t.Fatalf("Int8 = %v, %v", v, err)
	}
	if v, err := r.Uint16(); err != nil || v != 0xBEEF {
		t.Fatalf("Uint16 = %v, %v", v, err)
	}
	if v, err := r.Int16(); err != nil || v != -1234 {
		t.Fatalf("Int16 = %v, %v", v, err)
	}
	if v, err := r.Uint32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("Uint32 = %v, %v", v, err)
	}
	if v, err := r.Int32(); err != nil || v != -123456 {
		t.Fatalf("Int32 = %v, %v", v, err)
	}
	if v, err := r.Float32(); err != nil || v != float32(3.14159) {
		t.Fatalf("Float32 = %v, %v", v, err)
	}
	if v, err := r.Float64(); err != nil || v != 2.718281828 {
		t.Fatalf("Float64 = %v, %v", v, err)
	}
	if s, err := r.StringUTF8(); err != nil || s != "hello" {
		t.Fatalf("StringUTF8 = %q, %v", s, err)
	}
	if s, err := r.StringUTF16(); err != nil || s != "world" {
		t.Fatalf("StringUTF16 = %q, %v", s, err)
	}
}

func TestReaderShortInputIsRecoverable(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.Uint32(); err != ErrShort {
		t.Fatalf("expected ErrShort, got %v", err)
	}
	// The cursor must not advance on a failed read.
	if r.Remaining() != 1 {
		t.Fatalf("remaining = %d, want 1", r.Remaining())
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, err := Decode([]byte{0x77}, 17)
	if err != ErrUnknownOpcode {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
}

func TestDecodeMouseVariants(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{"i16", append([]byte{0x10}, NewWriter(0).bytesOf(func(w *Writer) { w.PutInt16(100); w.PutInt16(-200); w.PutUint32(0) })...)},
		{"i32", append([]byte{0x10}, NewWriter(0).bytesOf(func(w *Writer) { w.PutInt32(100); w.PutInt32(-200); w.PutUint32(0) })...)},
		{"f64", append([]byte{0x10}, NewWriter(0).bytesOf(func(w *Writer) { w.PutFloat64(100); w.PutFloat64(-200); w.PutUint32(0) })...)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			msg, err := Decode(c.b, 17)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if msg.X != 100 || msg.Y != -200 {
				t.Fatalf("got (%v, %v), want (100, -200)", msg.X, msg.Y)
			}
		})
	}
}

func TestDecodeJoinWithSkin(t *testing.T) {
	w := NewWriter(16)
	w.PutUint8(uint8(OpJoin))
	w.PutStringUTF8("{red}Alice")
	msg, err := Decode(w.Bytes(), 6)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Name != "Alice" || msg.Skin != "red" {
		t.Fatalf("got name=%q skin=%q", msg.Name, msg.Skin)
	}
}

func (w *Writer) bytesOf(fn func(w *Writer)) []byte {
	fn(w)
	return w.Bytes()
}
