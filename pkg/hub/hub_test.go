package hub

import (
	"testing"

	"taskwire/pkg/protocol"
	"taskwire/pkg/protocol/checksum"
	"taskwire/pkg/transport"
	"taskwire/pkg/transport/mem"
)

var (
	cfg    = protocol.Config{Version: 0, BoardID: 0x00, DeviceN: 2}
	layout = protocol.Layout{Size: 32, Policy: checksum.CRC32}
)

// pairedPort returns a port for the hub plus the peer end of its link.
func pairedPort(t *testing.T) (*transport.Port, *transport.Port) {
	t.Helper()
	local, remote := mem.Pair(4)
	peerCfg := protocol.Config{Version: 0, BoardID: 0x01, DeviceN: 2}
	return transport.NewPort(local, layout, cfg, nil),
		transport.NewPort(remote, layout, peerCfg, nil)
}

func packetTo(receiver uint8, from protocol.Config, taskID uint8) *protocol.Packet {
	return &protocol.Packet{
		Header: protocol.NewHeader(from, protocol.Fields{
			Type:        protocol.TypeData,
			HasChecksum: true,
			ReceiverID:  receiver,
		}),
		TaskID: taskID,
	}
}

func TestSendFansOut(t *testing.T) {
	p1, peer1 := pairedPort(t)
	p2, peer2 := pairedPort(t)
	h := New(nil, p1, p2)

	h.Send(packetTo(0x01, cfg, 0x07))

	for i, peer := range []*transport.Port{peer1, peer2} {
		if _, ok := peer.TryReceive(); !ok {
			t.Fatalf("peer %d did not receive the fan-out", i)
		}
	}
}

func TestRemoveSender(t *testing.T) {
	p1, peer1 := pairedPort(t)
	p2, peer2 := pairedPort(t)
	h := New(nil, p1, p2)
	h.RemoveSender(0)

	h.Send(packetTo(0x01, cfg, 0x07))

	if _, ok := peer1.TryReceive(); ok {
		t.Fatalf("disabled sender still sent")
	}
	if _, ok := peer2.TryReceive(); !ok {
		t.Fatalf("enabled sender did not send")
	}

	h.UseSender(0)
	h.Send(packetTo(0x01, cfg, 0x07))
	if _, ok := peer1.TryReceive(); !ok {
		t.Fatalf("re-enabled sender did not send")
	}
}

func TestTryReceiveFirstHit(t *testing.T) {
	peerCfg := protocol.Config{Version: 0, BoardID: 0x01, DeviceN: 2}
	p1, peer1 := pairedPort(t)
	p2, peer2 := pairedPort(t)
	h := New(nil, p1, p2)

	peer2.Send(packetTo(0x00, peerCfg, 0x22))
	pkt, ok := h.TryReceive()
	if !ok || pkt.TaskID != 0x22 {
		t.Fatalf("packet from second port not found: ok=%v", ok)
	}

	// Both pending: definition order wins.
	peer1.Send(packetTo(0x00, peerCfg, 0x11))
	peer2.Send(packetTo(0x00, peerCfg, 0x22))
	pkt, ok = h.TryReceive()
	if !ok || pkt.TaskID != 0x11 {
		t.Fatalf("definition order not honored: %+v", pkt)
	}
}

func TestRemoveReceiver(t *testing.T) {
	peerCfg := protocol.Config{Version: 0, BoardID: 0x01, DeviceN: 2}
	p1, peer1 := pairedPort(t)
	h := New(nil, p1)
	h.RemoveReceiver(0)

	peer1.Send(packetTo(0x00, peerCfg, 0x07))
	if _, ok := h.TryReceive(); ok {
		t.Fatalf("disabled receiver still received")
	}

	h.UseReceiver(0)
	if _, ok := h.TryReceive(); !ok {
		t.Fatalf("re-enabled receiver lost the pending frame")
	}
}

func TestEmptyHub(t *testing.T) {
	h := New(nil)
	if _, ok := h.TryReceive(); ok {
		t.Fatalf("empty hub produced a packet")
	}
	h.Send(packetTo(0x01, cfg, 0x07)) // must not panic
}
