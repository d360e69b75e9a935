//go:build windows

// Package winpipe carries fixed-size frames over Windows named pipes, for
// host-side tooling talking to a service on the same machine.
package winpipe

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"

	"taskwire/pkg/transport"
)

// Dial connects to a named pipe, e.g. `\\.\pipe\taskwire`.
func Dial(ctx context.Context, pipeName string, frameSize int) (*transport.ConnLink, error) {
	c, err := winio.DialPipeContext(ctx, pipeName)
	if err != nil {
		return nil, err
	}
	return transport.NewConnLink(c, frameSize), nil
}

// Listener accepts inbound frame links on a named pipe.
type Listener struct {
	l         net.Listener
	frameSize int
}

// Listen creates the pipe and starts accepting.
func Listen(pipeName string, frameSize int) (*Listener, error) {
	l, err := winio.ListenPipe(pipeName, nil)
	if err != nil {
		return nil, err
	}
	return &Listener{l: l, frameSize: frameSize}, nil
}

// Addr returns the pipe address.
func (l *Listener) Addr() net.Addr { return l.l.Addr() }

// Accept blocks until the next inbound connection.
func (l *Listener) Accept() (*transport.ConnLink, error) {
	c, err := l.l.Accept()
	if err != nil {
		return nil, err
	}
	return transport.NewConnLink(c, l.frameSize), nil
}

// Close removes the pipe.
func (l *Listener) Close() error { return l.l.Close() }
