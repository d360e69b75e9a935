// Package quic carries fixed-size frames over a single bidirectional QUIC
// stream. The dialer opens the stream; the listener accepts it. TLS is
// ephemeral and unauthenticated — link identity is not this layer's job,
// the packet header's receiver filter is.
package quic

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"math/big"
	"net"
	"time"

	quicgo "github.com/quic-go/quic-go"

	"taskwire/pkg/transport"
)

const alpn = "taskwire"

// Link is a frame link over one QUIC stream.
type Link struct {
	*transport.ConnLink
	conn quicgo.Connection
}

// Close tears down the whole connection, not just the stream.
func (l *Link) Close() error {
	_ = l.ConnLink.Close()
	return l.conn.CloseWithError(0, "closed")
}

// Dial connects to a listening peer and opens the frame stream.
func Dial(ctx context.Context, address string, frameSize int) (*Link, error) {
	tlsConf := &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{alpn},
		MinVersion:         tls.VersionTLS13,
	}
	conn, err := quicgo.DialAddr(ctx, address, tlsConf, nil)
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, err
	}
	return &Link{ConnLink: transport.NewConnLink(stream, frameSize), conn: conn}, nil
}

// Listener accepts inbound frame links.
type Listener struct {
	l         *quicgo.Listener
	frameSize int
}

// Listen starts a QUIC listener with an ephemeral self-signed certificate.
func Listen(address string, frameSize int) (*Listener, error) {
	cert, err := selfSignedCert()
	if err != nil {
		return nil, err
	}
	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{alpn},
		MinVersion:   tls.VersionTLS13,
	}
	l, err := quicgo.ListenAddr(address, tlsConf, nil)
	if err != nil {
		return nil, err
	}
	return &Listener{l: l, frameSize: frameSize}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.l.Addr() }

// Accept blocks until a peer connects and opens its stream.
func (l *Listener) Accept(ctx context.Context) (*Link, error) {
	conn, err := l.l.Accept(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, err
	}
	return &Link{ConnLink: transport.NewConnLink(stream, l.frameSize), conn: conn}, nil
}

// Close stops the listener.
func (l *Listener) Close() error { return l.l.Close() }

func selfSignedCert() (tls.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, err
	}
	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * 365 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
