// Package mem provides an in-process link pair. Useful for tests and for
// wiring two subsystems of the same process through the normal packet path.
package mem

import (
	"errors"
	"sync"

	"taskwire/pkg/transport"
)

// ErrBackpressure reports a send into a full queue.
var ErrBackpressure = errors.New("mem: queue full")

// Link is one end of an in-process pair. Closing either end closes both.
type Link struct {
	rx <-chan []byte
	tx chan<- []byte

	closed chan struct{}
	once   *sync.Once
}

// Pair returns two connected links with the given queue depth per
// direction. Frames written on one end are read on the other.
func Pair(depth int) (*Link, *Link) {
	if depth <= 0 {
		depth = 8
	}
	ab := make(chan []byte, depth)
	ba := make(chan []byte, depth)
	closed := make(chan struct{})
	once := &sync.Once{}
	a := &Link{rx: ba, tx: ab, closed: closed, once: once}
	b := &Link{rx: ab, tx: ba, closed: closed, once: once}
	return a, b
}

// Loopback returns a single link whose sent frames come back on its own
// receive side.
func Loopback(depth int) *Link {
	if depth <= 0 {
		depth = 8
	}
	ch := make(chan []byte, depth)
	return &Link{rx: ch, tx: ch, closed: make(chan struct{}), once: &sync.Once{}}
}

// TryReceive pops the next queued frame, if any.
func (l *Link) TryReceive(buf []byte) (bool, error) {
	select {
	case <-l.closed:
		return false, transport.ErrClosed
	default:
	}
	select {
	case frame := <-l.rx:
		copy(buf, frame)
		return true, nil
	default:
		return false, nil
	}
}

// Send queues one frame for the peer.
func (l *Link) Send(buf []byte) error {
	frame := append([]byte(nil), buf...)
	select {
	case <-l.closed:
		return transport.ErrClosed
	default:
	}
	select {
	case l.tx <- frame:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close shuts down both ends of the pair.
func (l *Link) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}
