// Package envelope provides the byte-buffer handles that carry serialized
// task parameters into tasks and task results back out. Envelope owns its
// buffer; View is a borrowed window over memory whose lifetime the caller
// guarantees.
package envelope

import (
	"errors"
	"fmt"

	"taskwire/pkg/protocol/codec"
)

// ErrOverflow reports a Pack whose encoded values exceed the buffer.
var ErrOverflow = errors.New("envelope: packed values exceed buffer size")

// View is a non-owning window over a byte buffer.
type View struct {
	data []byte
}

// NewView wraps data without copying.
func NewView(data []byte) View { return View{data: data} }

func (v View) Data() []byte { return v.data }
func (v View) Size() int    { return len(v.data) }

// Unpack decodes one value per pointer off the front of the view, in order.
// Trailing padding is ignored. The codec must support prefix decoding.
func (v View) Unpack(c codec.Codec, ptrs ...any) error {
	return unpack(c, v.data, ptrs...)
}

// Envelope is an owning byte buffer of fixed size. The zero value is empty.
// Ownership moves with Take; a moved-from envelope is empty.
type Envelope struct {
	data []byte
}

// New allocates an envelope of the given size.
func New(size int) Envelope { return Envelope{data: make([]byte, size)} }

// Wrap takes ownership of an existing buffer.
func Wrap(data []byte) Envelope { return Envelope{data: data} }

func (e *Envelope) Data() []byte { return e.data }
func (e *Envelope) Size() int    { return len(e.data) }
func (e *Envelope) Empty() bool  { return len(e.data) == 0 }

// Take transfers the buffer out, leaving e empty.
func (e *Envelope) Take() Envelope {
	out := Envelope{data: e.data}
	e.data = nil
	return out
}

// AsView borrows the buffer; the envelope must outlive the view.
func (e *Envelope) AsView() View { return View{data: e.data} }

// Pack serializes the values back to back into the owned buffer and
// zero-fills the remainder. Fails with ErrOverflow when the encoding does
// not fit; the buffer is left zeroed in that case.
func (e *Envelope) Pack(c codec.Codec, vals ...any) error {
	off := 0
	for i, v := range vals {
		b, err := c.Marshal(v)
		if err != nil {
			zero(e.data)
			return fmt.Errorf("envelope: pack value %d: %w", i, err)
		}
		if off+len(b) > len(e.data) {
			zero(e.data)
			return ErrOverflow
		}
		copy(e.data[off:], b)
		off += len(b)
	}
	zero(e.data[off:])
	return nil
}

// Unpack decodes one value per pointer, mirroring Pack.
func (e *Envelope) Unpack(c codec.Codec, ptrs ...any) error {
	return unpack(c, e.data, ptrs...)
}

func unpack(c codec.Codec, data []byte, ptrs ...any) error {
	pd, ok := c.(codec.PrefixDecoder)
	if !ok {
		if len(ptrs) == 1 {
			return c.Unmarshal(data, ptrs[0])
		}
		return fmt.Errorf("envelope: codec %s cannot decode multiple values from a padded buffer", c.ContentType())
	}
	rest := data
	for i, p := range ptrs {
		var err error
		rest, err = pd.UnmarshalPrefix(rest, p)
		if err != nil {
			return fmt.Errorf("envelope: unpack value %d: %w", i, err)
		}
	}
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
