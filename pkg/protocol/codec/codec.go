// Package codec provides the serialization capability used to move typed
// task parameters and results through fixed-size byte buffers.
package codec

// Codec marshals typed values to bytes and back. Implementations should be
// deterministic so both ends of a link agree on the encoding.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// PrefixDecoder is implemented by codecs that can decode a single value off
// the front of a buffer and report the remainder. Envelope unpacking
// requires this: packet payloads are zero-padded to a fixed size, so a
// decoder must stop at the end of the value, not the end of the buffer.
type PrefixDecoder interface {
	UnmarshalPrefix(data []byte, v any) (rest []byte, err error)
}

// Registry maps content types to codecs.
type Registry struct{ byType map[string]Codec }

// NewRegistry constructs a registry preloaded with the built-in codecs:
// CBOR (the default for envelopes), JSON and Protobuf.
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]Codec)}
	r.Register(CBOR())
	r.Register(JSON())
	r.Register(Proto())
	return r
}

// Register adds a codec.
func (r *Registry) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns a codec by content type, or nil.
func (r *Registry) Get(contentType string) Codec { return r.byType[contentType] }
