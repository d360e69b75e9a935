package main

import (
	"go.uber.org/zap"

	"taskwire/pkg/envelope"
	"taskwire/pkg/protocol/codec"
	"taskwire/pkg/registry"
	"taskwire/pkg/status"
	"taskwire/pkg/task"
)

// Demo task identifiers. Each task type's id names itself.
const (
	uidBlink task.ID = 0x01
	uidEcho  task.ID = 0x02
)

var cbor = codec.CBOR()

// blinkTask toggles a (logged) LED once per pass for a requested number of
// passes. Parameters: optional uint32 pass count, default 10.
type blinkTask struct {
	task.Base
	target uint32
	ticks  uint32
	on     bool
	log    *zap.Logger
}

func newBlinkTask(params envelope.View) task.Task {
	t := &blinkTask{target: 10, log: zap.L().Named("blink")}
	var n uint32
	if err := params.Unpack(cbor, &n); err == nil && n > 0 {
		t.target = n
	}
	return t
}

func (t *blinkTask) OnStart() {
	t.log.Info("blinking started", zap.Uint32("passes", t.target))
}

func (t *blinkTask) OnExecute() {
	t.on = !t.on
	t.ticks++
	t.log.Debug("toggle", zap.Bool("on", t.on), zap.Uint32("tick", t.ticks))
}

func (t *blinkTask) Finished() bool { return t.ticks >= t.target }

func (t *blinkTask) OnPause()  { t.log.Info("blinking paused") }
func (t *blinkTask) OnResume() { t.log.Info("blinking resumed") }

func (t *blinkTask) OnComplete(interrupted bool) (envelope.Envelope, uint8) {
	t.log.Info("blinking done", zap.Uint32("ticks", t.ticks), zap.Bool("interrupted", interrupted))
	e := envelope.New(resultSize)
	_ = e.Pack(cbor, t.ticks)
	if interrupted {
		return e, uint8(status.TaskAborted)
	}
	return e, uint8(status.TaskFinished)
}

// echoTask completes immediately, returning its parameters verbatim.
type echoTask struct {
	task.Base
	params []byte
}

func newEchoTask(params envelope.View) task.Task {
	return &echoTask{params: append([]byte(nil), params.Data()...)}
}

func (t *echoTask) OnComplete(interrupted bool) (envelope.Envelope, uint8) {
	if interrupted {
		return envelope.Envelope{}, uint8(status.TaskAborted)
	}
	return envelope.Wrap(t.params), uint8(status.TaskFinished)
}

// resultSize sizes the blink task's result envelope; results are truncated
// to the packet payload anyway.
const resultSize = 16

func newRegistry() *registry.Registry {
	return registry.MustNew(
		registry.Entry{UID: uidBlink, New: newBlinkTask},
		registry.Entry{UID: uidEcho, New: newEchoTask},
	)
}
