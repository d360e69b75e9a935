// Package protocol defines the fixed-size framed packet exchanged between a
// controlling host and a device: a bit-packed 4-byte header, a status byte,
// a task identifier, a payload region and an optional frame check sequence.
// All multi-byte integers on the wire are little-endian.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// Type classifies a packet. Occupies header bits 31..28.
type Type uint8

const (
	TypeData Type = iota
	TypeConfig
	TypeControl
	TypeRouting
	TypeTimeSync
	TypeAuth
	TypeSession
	TypeStatus
	TypeLog
	TypeDebug
	TypeFirmware
	TypeReservedB
	TypeReservedC
	TypeReservedD
	TypeReservedE
	TypeReservedF
)

// Flag is the 3-bit lifecycle command carried in header bits 20..18.
type Flag uint8

const (
	FlagNone Flag = iota // register task
	FlagError
	FlagAck
	FlagAbort
	FlagPause
	FlagResume
	FlagHeartbeat
	FlagReserved
)

func (f Flag) String() string {
	switch f {
	case FlagNone:
		return "none"
	case FlagError:
		return "error"
	case FlagAck:
		return "ack"
	case FlagAbort:
		return "abort"
	case FlagPause:
		return "pause"
	case FlagResume:
		return "resume"
	case FlagHeartbeat:
		return "heartbeat"
	default:
		return "reserved"
	}
}

// Config pins the identity constants every header carries.
type Config struct {
	Version uint8 // protocol version, [0, 3]
	BoardID uint8 // identity of this device
	DeviceN uint8 // number of devices on the link, [1, 255]
}

// Validate checks the configured ranges.
func (c Config) Validate() error {
	if c.Version > 3 {
		return fmt.Errorf("protocol version %d out of range [0, 3]", c.Version)
	}
	if c.DeviceN == 0 {
		return fmt.Errorf("device count must be in range [1, 255]")
	}
	return nil
}

// Header is the packed 32-bit packet header.
//
//	31..28  type
//	27..26  version      (always Config.Version on send)
//	25      encrypted
//	24      fragmented
//	23..21  priority
//	20..18  flags
//	17      has_checksum
//	16      reserved
//	15..8   sender_id    (always Config.BoardID on send)
//	 7..0   receiver_id
type Header struct {
	word uint32
}

// Fields carries the caller-controlled header fields for construction.
type Fields struct {
	Type        Type
	Encrypted   bool
	Fragmented  bool
	Priority    uint8 // 3 bits
	Flags       Flag
	HasChecksum bool
	Reserved    bool
	ReceiverID  uint8
}

// NewHeader packs f into a header. Version and sender identity come from
// cfg regardless of the caller.
func NewHeader(cfg Config, f Fields) Header {
	w := uint32(f.Type&0xF) << 28
	w |= uint32(cfg.Version&0x3) << 26
	w |= b32(f.Encrypted) << 25
	w |= b32(f.Fragmented) << 24
	w |= uint32(f.Priority&0x7) << 21
	w |= uint32(f.Flags&0x7) << 18
	w |= b32(f.HasChecksum) << 17
	w |= b32(f.Reserved) << 16
	w |= uint32(cfg.BoardID) << 8
	w |= uint32(f.ReceiverID)
	return Header{word: w}
}

// RawHeader builds a header from a preassembled 16-bit top word (bits
// 31..16) plus a receiver id. The version bits and the sender id are
// overwritten from cfg regardless of the raw input.
func RawHeader(cfg Config, raw uint16, receiverID uint8) Header {
	w := uint32(raw) << 16
	w &^= uint32(0x3) << 26
	w |= uint32(cfg.Version&0x3) << 26
	w |= uint32(cfg.BoardID) << 8
	w |= uint32(receiverID)
	return Header{word: w}
}

func b32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

func (h Header) Type() Type        { return Type(h.word >> 28 & 0xF) }
func (h Header) Version() uint8    { return uint8(h.word >> 26 & 0x3) }
func (h Header) Encrypted() bool   { return h.word>>25&1 != 0 }
func (h Header) Fragmented() bool  { return h.word>>24&1 != 0 }
func (h Header) Priority() uint8   { return uint8(h.word >> 21 & 0x7) }
func (h Header) Flags() Flag       { return Flag(h.word >> 18 & 0x7) }
func (h Header) HasChecksum() bool { return h.word>>17&1 != 0 }
func (h Header) Reserved() bool    { return h.word>>16&1 != 0 }
func (h Header) SenderID() uint8   { return uint8(h.word >> 8) }
func (h Header) ReceiverID() uint8 { return uint8(h.word) }

// Word returns the packed 32-bit representation.
func (h Header) Word() uint32 { return h.word }

const headerSize = 4

func (h Header) marshal(dst []byte) {
	binary.LittleEndian.PutUint32(dst, h.word)
}

func parseHeader(src []byte) Header {
	return Header{word: binary.LittleEndian.Uint32(src)}
}
