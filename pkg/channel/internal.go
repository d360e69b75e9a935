package channel

import (
	"go.uber.org/zap"

	"taskwire/pkg/envelope"
	"taskwire/pkg/manager"
	"taskwire/pkg/status"
	"taskwire/pkg/task"
)

// Result is a completed task's outcome kept for in-process consumers.
type Result struct {
	UID  task.ID
	Data envelope.Envelope
	Code status.Code
}

// Internal drives the manager from inside the process, without the wire.
// Results park in a one-slot store per UID until the consumer takes them;
// a later result for the same UID replaces an untaken one.
type Internal struct {
	mgr     *manager.Manager
	localID uint8
	results map[task.ID]Result
	log     *zap.Logger
}

// NewInternal wires the channel. localID is the initiator id stamped on
// registrations, typically the board's own id.
func NewInternal(m *manager.Manager, localID uint8, log *zap.Logger) *Internal {
	if log == nil {
		log = zap.NewNop()
	}
	return &Internal{
		mgr:     m,
		localID: localID,
		results: make(map[task.ID]Result),
		log:     log,
	}
}

// RegisterTask starts the task type uid with the given parameters.
func (c *Internal) RegisterTask(uid task.ID, params envelope.View) status.Code {
	return c.mgr.RegisterTask(c, c.localID, uid, params)
}

// PauseTask forwards to the manager.
func (c *Internal) PauseTask(uid task.ID) status.Code { return c.mgr.PauseTask(uid) }

// ResumeTask forwards to the manager.
func (c *Internal) ResumeTask(uid task.ID) status.Code { return c.mgr.ResumeTask(uid) }

// AbortTask forwards to the manager.
func (c *Internal) AbortTask(uid task.ID) status.Code { return c.mgr.AbortTask(uid) }

// OnResult parks the result for its single consumer.
func (c *Internal) OnResult(_ uint8, uid task.ID, result envelope.Envelope, code status.Code) {
	if _, pending := c.results[uid]; pending {
		c.log.Debug("replacing untaken result", zap.Uint8("uid", uint8(uid)))
	}
	c.results[uid] = Result{UID: uid, Data: result.Take(), Code: code}
}

// TakeResult removes and returns the parked result for uid, if any.
func (c *Internal) TakeResult(uid task.ID) (Result, bool) {
	r, ok := c.results[uid]
	if ok {
		delete(c.results, uid)
	}
	return r, ok
}
