package transport

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// deadlineRW is the stream surface ConnLink needs: net.Conn, *os.File on a
// pollable device, and quic streams all satisfy it.
type deadlineRW interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// defaultPoll bounds how long TryReceive waits for bytes already in flight.
const defaultPoll = time.Millisecond

// ConnLink adapts any deadline-capable byte stream into a fixed-frame Link.
// Partial frames accumulate across TryReceive calls, so a slow sender never
// desynchronizes the frame boundary.
type ConnLink struct {
	c       deadlineRW
	frame   int
	poll    time.Duration
	pending []byte
	fill    int

	mu     sync.Mutex
	closed bool
}

// NewConnLink wraps c; frameSize is the fixed packet size on this link.
func NewConnLink(c deadlineRW, frameSize int) *ConnLink {
	return &ConnLink{
		c:       c,
		frame:   frameSize,
		poll:    defaultPoll,
		pending: make([]byte, frameSize),
	}
}

// TryReceive reads one whole frame into buf when available.
func (l *ConnLink) TryReceive(buf []byte) (bool, error) {
	if l.isClosed() {
		return false, ErrClosed
	}
	_ = l.c.SetReadDeadline(time.Now().Add(l.poll))
	for l.fill < l.frame {
		n, err := l.c.Read(l.pending[l.fill:l.frame])
		l.fill += n
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return false, nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) {
				l.markClosed()
				return false, ErrClosed
			}
			return false, err
		}
	}
	copy(buf, l.pending[:l.frame])
	l.fill = 0
	return true, nil
}

// Send writes one frame.
func (l *ConnLink) Send(buf []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	_, err := l.c.Write(buf[:l.frame])
	return err
}

// Close closes the underlying stream.
func (l *ConnLink) Close() error {
	l.markClosed()
	return l.c.Close()
}

func (l *ConnLink) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *ConnLink) markClosed() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}
