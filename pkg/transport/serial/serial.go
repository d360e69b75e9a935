// Package serial adapts a byte device (a UART tty, a pseudo-terminal, any
// pollable character device) into a fixed-frame link. Line configuration
// (baud rate, parity) is left to the platform; set it with stty or an
// ioctl before handing the device over.
package serial

import (
	"fmt"
	"os"

	"taskwire/pkg/transport"
)

// Open opens the device at path and wraps it into a frame link.
func Open(path string, frameSize int) (*transport.ConnLink, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", path, err)
	}
	return transport.NewConnLink(f, frameSize), nil
}
