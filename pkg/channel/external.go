// Package channel connects the task manager to its callers: External
// decodes lifecycle commands off the wire and replies with results, while
// Internal drives the same commands from inside the process.
package channel

import (
	"go.uber.org/zap"

	"taskwire/pkg/envelope"
	"taskwire/pkg/hub"
	"taskwire/pkg/manager"
	"taskwire/pkg/protocol"
	"taskwire/pkg/status"
	"taskwire/pkg/task"
)

// External routes packets between the hub and the task manager. Update must
// run on the same goroutine as the manager's Update.
type External struct {
	hub    *hub.Hub
	mgr    *manager.Manager
	layout protocol.Layout
	cfg    protocol.Config
	log    *zap.Logger
}

// NewExternal wires the channel.
func NewExternal(h *hub.Hub, m *manager.Manager, layout protocol.Layout, cfg protocol.Config, log *zap.Logger) *External {
	if log == nil {
		log = zap.NewNop()
	}
	return &External{hub: h, mgr: m, layout: layout, cfg: cfg, log: log}
}

// Update pulls at most one packet from the hub and dispatches its command.
// Failures go back to the initiator as an error reply; nothing is returned
// to the caller.
func (c *External) Update() {
	pkt, ok := c.hub.TryReceive()
	if !ok {
		return
	}
	flags := pkt.Header.Flags()
	initiator := pkt.Header.SenderID()
	uid := task.ID(pkt.TaskID)

	var code status.Code
	switch flags {
	case protocol.FlagNone:
		params := envelope.NewView(pkt.Payload)
		code = c.mgr.RegisterTask(c, initiator, uid, params)
	case protocol.FlagAbort:
		code = c.mgr.AbortTask(uid)
	case protocol.FlagPause:
		code = c.mgr.PauseTask(uid)
	case protocol.FlagResume:
		code = c.mgr.ResumeTask(uid)
	case protocol.FlagError, protocol.FlagAck, protocol.FlagHeartbeat:
		// Not commands. Error replies in particular must not be answered
		// with further error replies.
		c.log.Debug("ignoring packet", zap.String("flags", flags.String()), zap.Uint8("sender", initiator))
		return
	default:
		code = status.InternalError
	}

	if code != status.OK {
		c.log.Debug("command failed",
			zap.String("flags", flags.String()),
			zap.Uint8("uid", uint8(uid)),
			zap.String("status", code.String()))
		reply := protocol.Packet{
			Header: protocol.NewHeader(c.cfg, protocol.Fields{
				Type:        protocol.TypeData,
				Flags:       protocol.FlagError,
				HasChecksum: c.layout.Framed(),
				ReceiverID:  initiator,
			}),
			Status: uint8(code),
			TaskID: uint8(uid),
		}
		c.hub.Send(&reply)
	}
}

// OnResult delivers a completed task's envelope back to its initiator. The
// payload is truncated or zero-padded to the layout's payload size.
func (c *External) OnResult(initiatorID uint8, uid task.ID, result envelope.Envelope, code status.Code) {
	reply := protocol.Packet{
		Header: protocol.NewHeader(c.cfg, protocol.Fields{
			Type:        protocol.TypeData,
			Flags:       protocol.FlagNone,
			HasChecksum: c.layout.Framed(),
			ReceiverID:  initiatorID,
		}),
		Status:  uint8(code),
		TaskID:  uint8(uid),
		Payload: result.Data(),
	}
	c.hub.Send(&reply)
}
