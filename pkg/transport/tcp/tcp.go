// Package tcp carries fixed-size frames over a TCP stream. The stream has
// no framing of its own; both ends must agree on the packet layout size.
package tcp

import (
	"context"
	"net"

	"taskwire/pkg/transport"
)

// Dial connects to a listening peer and returns the frame link.
func Dial(ctx context.Context, address string, frameSize int) (*transport.ConnLink, error) {
	d := &net.Dialer{}
	c, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return transport.NewConnLink(c, frameSize), nil
}

// Listener accepts inbound frame links.
type Listener struct {
	l         net.Listener
	frameSize int
}

// Listen starts accepting connections on address.
func Listen(address string, frameSize int) (*Listener, error) {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return &Listener{l: l, frameSize: frameSize}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.l.Addr() }

// Accept blocks until the next inbound connection.
func (l *Listener) Accept() (*transport.ConnLink, error) {
	c, err := l.l.Accept()
	if err != nil {
		return nil, err
	}
	return transport.NewConnLink(c, l.frameSize), nil
}

// Close stops the listener.
func (l *Listener) Close() error { return l.l.Close() }
