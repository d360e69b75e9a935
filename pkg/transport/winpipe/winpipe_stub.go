//go:build !windows

package winpipe

import (
	"context"
	"errors"
	"net"

	"taskwire/pkg/transport"
)

// ErrUnsupported is returned on platforms without named pipes.
var ErrUnsupported = errors.New("winpipe: only available on windows")

func Dial(_ context.Context, _ string, _ int) (*transport.ConnLink, error) {
	return nil, ErrUnsupported
}

type Listener struct{}

func Listen(_ string, _ int) (*Listener, error) { return nil, ErrUnsupported }

func (l *Listener) Addr() net.Addr                       { return nil }
func (l *Listener) Accept() (*transport.ConnLink, error) { return nil, ErrUnsupported }
func (l *Listener) Close() error                         { return nil }
