// Package hub multiplexes a fixed set of transport ports. Sends fan out to
// every send-enabled port; receives probe the receive-enabled ports in
// definition order and return the first packet found.
package hub

import (
	"go.uber.org/zap"

	"taskwire/pkg/protocol"
	"taskwire/pkg/transport"
)

// Hub owns its ports for the life of the process. The port set is fixed at
// construction; only the enable flags change.
type Hub struct {
	ports   []*transport.Port
	senders []bool
	readers []bool
	log     *zap.Logger
}

// New builds a hub over the given ports, all enabled for send and receive.
func New(log *zap.Logger, ports ...*transport.Port) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		ports:   ports,
		senders: make([]bool, len(ports)),
		readers: make([]bool, len(ports)),
		log:     log,
	}
	for i := range ports {
		h.senders[i] = true
		h.readers[i] = true
	}
	return h
}

// Len returns the number of ports.
func (h *Hub) Len() int { return len(h.ports) }

// Send forwards the packet through every send-enabled port. Port errors
// are logged and do not stop the fan-out.
func (h *Hub) Send(pkt *protocol.Packet) {
	for i, p := range h.ports {
		if !h.senders[i] {
			continue
		}
		if err := p.Send(pkt); err != nil {
			h.log.Warn("hub send failed", zap.Int("port", i), zap.Error(err))
		}
	}
}

// TryReceive probes receive-enabled ports in order and returns the first
// pending packet.
func (h *Hub) TryReceive() (protocol.Packet, bool) {
	for i, p := range h.ports {
		if !h.readers[i] {
			continue
		}
		if pkt, ok := p.TryReceive(); ok {
			return pkt, true
		}
	}
	return protocol.Packet{}, false
}

// UseSender enables sending on port i.
func (h *Hub) UseSender(i int) { h.set(h.senders, i, true) }

// RemoveSender disables sending on port i.
func (h *Hub) RemoveSender(i int) { h.set(h.senders, i, false) }

// UseReceiver enables receiving on port i.
func (h *Hub) UseReceiver(i int) { h.set(h.readers, i, true) }

// RemoveReceiver disables receiving on port i.
func (h *Hub) RemoveReceiver(i int) { h.set(h.readers, i, false) }

func (h *Hub) set(mask []bool, i int, v bool) {
	if i >= 0 && i < len(mask) {
		mask[i] = v
	}
}

// Close closes every port.
func (h *Hub) Close() {
	for _, p := range h.ports {
		_ = p.Close()
	}
}
