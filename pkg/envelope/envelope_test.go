package envelope

import (
	"testing"

	"taskwire/pkg/protocol/codec"
)

func TestPackUnpackRoundtrip(t *testing.T) {
	c := codec.CBOR()
	e := New(26)
	if err := e.Pack(c, uint16(500), "ping", true); err != nil {
		t.Fatalf("pack: %v", err)
	}
	var n uint16
	var s string
	var b bool
	if err := e.Unpack(c, &n, &s, &b); err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if n != 500 || s != "ping" || !b {
		t.Fatalf("roundtrip mismatch: %d %q %v", n, s, b)
	}
}

func TestViewUnpackIgnoresPadding(t *testing.T) {
	c := codec.CBOR()
	e := New(26)
	if err := e.Pack(c, int32(-9)); err != nil {
		t.Fatalf("pack: %v", err)
	}
	v := NewView(e.Data())
	var n int32
	if err := v.Unpack(c, &n); err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if n != -9 {
		t.Fatalf("value = %d, want -9", n)
	}
}

func TestPackOverflow(t *testing.T) {
	c := codec.CBOR()
	e := New(4)
	err := e.Pack(c, "a string that cannot fit in four bytes")
	if err != ErrOverflow {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
	for _, b := range e.Data() {
		if b != 0 {
			t.Fatalf("buffer not zeroed after failed pack")
		}
	}
}

func TestPackZeroFillsTail(t *testing.T) {
	c := codec.CBOR()
	e := New(16)
	// Dirty the buffer, then pack something small.
	for i := range e.Data() {
		e.Data()[i] = 0xFF
	}
	if err := e.Pack(c, uint8(1)); err != nil {
		t.Fatalf("pack: %v", err)
	}
	tail := e.Data()[1:]
	for i, b := range tail {
		if b != 0 {
			t.Fatalf("tail byte %d = %#x, want 0", i, b)
		}
	}
}

func TestTakeMovesOwnership(t *testing.T) {
	e := New(8)
	e.Data()[0] = 0xAA
	moved := e.Take()
	if !e.Empty() {
		t.Fatalf("moved-from envelope not empty")
	}
	if moved.Size() != 8 || moved.Data()[0] != 0xAA {
		t.Fatalf("moved envelope lost its buffer")
	}
}

func TestZeroValueEnvelope(t *testing.T) {
	var e Envelope
	if !e.Empty() || e.Size() != 0 || e.Data() != nil {
		t.Fatalf("zero value is not empty")
	}
}

func TestWrap(t *testing.T) {
	buf := []byte{1, 2, 3}
	e := Wrap(buf)
	if e.Size() != 3 || &e.Data()[0] != &buf[0] {
		t.Fatalf("wrap copied the buffer")
	}
}
