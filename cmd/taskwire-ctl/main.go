// taskwire-ctl sends one lifecycle command to a running node and prints
// the reply as JSON. It plays the controlling-host role: seals outbound
// frames, filters inbound ones by its own board id.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"taskwire/pkg/protocol"
	"taskwire/pkg/protocol/checksum"
	"taskwire/pkg/protocol/codec"
	"taskwire/pkg/status"
	"taskwire/pkg/transport"
	"taskwire/pkg/transport/quic"
	"taskwire/pkg/transport/tcp"
	"taskwire/pkg/transport/winpipe"
)

type reply struct {
	Flags   string `json:"flags"`
	Status  string `json:"status"`
	Code    uint8  `json:"code"`
	TaskID  uint8  `json:"task_id"`
	Payload string `json:"payload,omitempty"`
}

func main() {
	kind := flag.String("kind", "tcp", "transport kind: tcp|quic|winpipe")
	addr := flag.String("addr", "127.0.0.1:7690", "node address (or pipe name)")
	cmd := flag.String("cmd", "register", "command: register|pause|resume|abort")
	taskID := flag.Uint("task", 1, "task uid")
	board := flag.Uint("board", 0, "target board id")
	sender := flag.Uint("sender", 1, "our board id")
	size := flag.Int("size", 32, "packet size in bytes")
	policyName := flag.String("checksum", "crc32", "checksum policy")
	params := flag.String("params", "", "register parameters, JSON value packed as CBOR")
	timeout := flag.Duration("timeout", 5*time.Second, "dial/reply timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	policy, err := checksum.Parse(*policyName)
	if err != nil {
		fatalf("checksum: %v", err)
	}
	layout := protocol.Layout{Size: *size, Policy: policy}
	if err := layout.Validate(); err != nil {
		fatalf("layout: %v", err)
	}
	cfg := protocol.Config{Version: 0, BoardID: uint8(*sender), DeviceN: 2}

	var flagBit protocol.Flag
	switch *cmd {
	case "register":
		flagBit = protocol.FlagNone
	case "pause":
		flagBit = protocol.FlagPause
	case "resume":
		flagBit = protocol.FlagResume
	case "abort":
		flagBit = protocol.FlagAbort
	default:
		fatalf("unknown command %q", *cmd)
	}

	link, err := dial(ctx, *kind, *addr, layout.Size)
	if err != nil {
		fatalf("dial: %v", err)
	}
	port := transport.NewPort(link, layout, cfg, nil)
	defer port.Close()

	payload, err := packParams(layout, flagBit, *params)
	if err != nil {
		fatalf("params: %v", err)
	}

	pkt := protocol.Packet{
		Header: protocol.NewHeader(cfg, protocol.Fields{
			Type:        protocol.TypeData,
			Flags:       flagBit,
			HasChecksum: layout.Framed(),
			ReceiverID:  uint8(*board),
		}),
		TaskID:  uint8(*taskID),
		Payload: payload,
	}
	if err := port.Send(&pkt); err != nil {
		fatalf("send: %v", err)
	}

	resp, ok := waitReply(ctx, port)
	if !ok {
		// A register without a finished task yields no error reply; only
		// failures and completions come back.
		fmt.Println(`{"reply": null}`)
		return
	}
	out := reply{
		Flags:  resp.Header.Flags().String(),
		Status: status.Code(resp.Status).String(),
		Code:   resp.Status,
		TaskID: resp.TaskID,
	}
	if notEmpty(resp.Payload) {
		out.Payload = hex.EncodeToString(resp.Payload)
	}
	enc, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(enc))
}

func dial(ctx context.Context, kind, addr string, frameSize int) (transport.Link, error) {
	switch kind {
	case "tcp":
		return tcp.Dial(ctx, addr, frameSize)
	case "quic":
		return quic.Dial(ctx, addr, frameSize)
	case "winpipe":
		return winpipe.Dial(ctx, addr, frameSize)
	default:
		return nil, fmt.Errorf("unknown transport kind %q", kind)
	}
}

// packParams encodes the optional register parameters as CBOR.
func packParams(layout protocol.Layout, flagBit protocol.Flag, raw string) ([]byte, error) {
	if flagBit != protocol.FlagNone || raw == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	b, err := codec.CBOR().Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(b) > layout.PayloadSize() {
		return nil, fmt.Errorf("encoded parameters (%d bytes) exceed payload size %d", len(b), layout.PayloadSize())
	}
	return b, nil
}

func waitReply(ctx context.Context, port *transport.Port) (protocol.Packet, bool) {
	for {
		select {
		case <-ctx.Done():
			return protocol.Packet{}, false
		default:
		}
		if pkt, ok := port.TryReceive(); ok {
			return pkt, true
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func notEmpty(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return true
		}
	}
	return false
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
