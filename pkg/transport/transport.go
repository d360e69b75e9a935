// Package transport abstracts the byte-oriented links packets travel over.
// A Link is the driver capability: it moves opaque fixed-size frames. Port
// layers the shared receive filter (receiver id, checksum) and the send
// seal on top of any Link.
package transport

import (
	"errors"

	"go.uber.org/zap"

	"taskwire/pkg/protocol"
)

// ErrClosed reports I/O on a closed link.
var ErrClosed = errors.New("transport: link closed")

// Link is a byte-frame delegate over some medium (UART, TCP, memory pair).
// TryReceive fills buf with exactly one frame when one is available and
// reports false otherwise; it must not block beyond an availability check.
// Send writes one frame and may flush synchronously.
type Link interface {
	TryReceive(buf []byte) (bool, error)
	Send(buf []byte) error
	Close() error
}

// Port binds a Link to a packet layout and a board identity. Receives are
// filtered: frames addressed elsewhere and frames failing validation are
// dropped silently (counted, logged at debug). Sends are sealed.
type Port struct {
	link      Link
	layout    protocol.Layout
	validator protocol.Validator
	boardID   uint8
	log       *zap.Logger

	received      uint64
	droppedFilter uint64
	droppedFCS    uint64
}

// NewPort wraps link with the shared receive/send layer.
func NewPort(link Link, layout protocol.Layout, cfg protocol.Config, log *zap.Logger) *Port {
	if log == nil {
		log = zap.NewNop()
	}
	return &Port{
		link:      link,
		layout:    layout,
		validator: protocol.NewValidator(layout),
		boardID:   cfg.BoardID,
		log:       log,
	}
}

// TryReceive returns the next packet addressed to this board, or false.
func (p *Port) TryReceive() (protocol.Packet, bool) {
	frame := make([]byte, p.layout.Size)
	ok, err := p.link.TryReceive(frame)
	if err != nil {
		if !errors.Is(err, ErrClosed) {
			p.log.Debug("link receive failed", zap.Error(err))
		}
		return protocol.Packet{}, false
	}
	if !ok {
		return protocol.Packet{}, false
	}
	p.received++
	if protocol.PeekReceiver(frame) != p.boardID {
		p.droppedFilter++
		p.log.Debug("frame dropped: wrong receiver",
			zap.Uint8("receiver", protocol.PeekReceiver(frame)),
			zap.Uint8("board", p.boardID))
		return protocol.Packet{}, false
	}
	if !p.validator.Valid(frame) {
		p.droppedFCS++
		p.log.Debug("frame dropped: checksum mismatch")
		return protocol.Packet{}, false
	}
	pkt, err := p.layout.Decode(frame)
	if err != nil {
		p.log.Debug("frame dropped: decode failed", zap.Error(err))
		return protocol.Packet{}, false
	}
	return pkt, true
}

// Send seals and writes one packet.
func (p *Port) Send(pkt *protocol.Packet) error {
	frame := p.layout.Encode(pkt)
	p.validator.Seal(frame)
	return p.link.Send(frame)
}

// Stats reports receive counters: total frames read, frames dropped by the
// receiver filter, frames dropped by validation.
func (p *Port) Stats() (received, droppedFilter, droppedFCS uint64) {
	return p.received, p.droppedFilter, p.droppedFCS
}

// Close closes the underlying link.
func (p *Port) Close() error { return p.link.Close() }
