package protocol

import (
	"errors"
	"fmt"
	"strconv"

	"taskwire/pkg/protocol/checksum"
)

// wordSize is the machine word size in bytes; frame sizes must be a
// multiple of it so packet arrays stay aligned on the device.
const wordSize = strconv.IntSize / 8

const (
	statusSize = 1
	taskIDSize = 1
)

// ErrShortFrame reports a frame smaller than the configured layout.
var ErrShortFrame = errors.New("protocol: short frame")

// Layout is the fixed geometry of every frame on a link: the total size and
// the checksum policy whose FCS occupies the frame tail. A layout with
// checksum.None describes a basic (FCS-less) packet.
type Layout struct {
	Size   int
	Policy checksum.Policy
}

// Validate enforces the layout invariants: word alignment and room for
// header, status byte, task id and FCS.
func (l Layout) Validate() error {
	if l.Size <= 0 || l.Size%wordSize != 0 {
		return fmt.Errorf("packet size %d is not a positive multiple of the %d-byte word", l.Size, wordSize)
	}
	min := headerSize + statusSize + taskIDSize + l.Policy.Size()
	if l.Size < min {
		return fmt.Errorf("packet size %d below minimum %d for policy %s", l.Size, min, l.Policy)
	}
	return nil
}

// PayloadSize returns the bytes available for task parameters or results.
func (l Layout) PayloadSize() int {
	return l.Size - headerSize - statusSize - taskIDSize - l.Policy.Size()
}

// Framed reports whether the layout carries an FCS field.
func (l Layout) Framed() bool { return l.Policy != checksum.None }

const payloadOffset = headerSize + statusSize + taskIDSize

// Packet is the decoded form of one frame.
type Packet struct {
	Header  Header
	Status  uint8
	TaskID  uint8
	Payload []byte // exactly Layout.PayloadSize() bytes, zero-padded
}

// Encode marshals p into a fresh frame of l.Size bytes. The payload is
// truncated or zero-padded to the layout's payload size; the FCS region is
// left zero (see Validator.Seal).
func (l Layout) Encode(p *Packet) []byte {
	frame := make([]byte, l.Size)
	p.Header.marshal(frame)
	frame[headerSize] = p.Status
	frame[headerSize+statusSize] = p.TaskID
	copy(frame[payloadOffset:payloadOffset+l.PayloadSize()], p.Payload)
	return frame
}

// Decode parses a frame into a Packet. The payload slice aliases the frame.
func (l Layout) Decode(frame []byte) (Packet, error) {
	if len(frame) < l.Size {
		return Packet{}, ErrShortFrame
	}
	return Packet{
		Header:  parseHeader(frame),
		Status:  frame[headerSize],
		TaskID:  frame[headerSize+statusSize],
		Payload: frame[payloadOffset : payloadOffset+l.PayloadSize()],
	}, nil
}

// PeekReceiver reads the receiver id out of a raw frame without a full
// decode; the receive path filters on it before validating.
func PeekReceiver(frame []byte) uint8 {
	if len(frame) < headerSize {
		return 0
	}
	return parseHeader(frame).ReceiverID()
}
