// Package manager drives registered tasks through their lifecycle with a
// single-pass cooperative scheduler. One caller owns the manager: Update
// and the mutating APIs must run on the same goroutine. A mutating call made
// from a task callback is refused with a status code; a nested Update is
// refused and logged.
package manager

import (
	"go.uber.org/zap"

	"taskwire/pkg/envelope"
	"taskwire/pkg/registry"
	"taskwire/pkg/status"
	"taskwire/pkg/task"
)

// Channel receives the completion tuple of a task and delivers it to the
// initiator (over the wire or in process).
type Channel interface {
	OnResult(initiatorID uint8, uid task.ID, result envelope.Envelope, code status.Code)
}

// taskInfo is the manager's record of one live task.
type taskInfo struct {
	task        task.Task
	state       task.State
	initiatorID uint8
	uid         task.ID
	channel     Channel
}

// Manager owns the active-task list and the update loop.
type Manager struct {
	reg      *registry.Registry
	tasks    []taskInfo
	garbage  []bool
	capacity int
	updating bool
	log      *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithCapacity bounds the active list; registration past the bound returns
// task_limit_reached. The default equals the registered type count.
func WithCapacity(n int) Option {
	return func(m *Manager) { m.capacity = n }
}

// WithLogger attaches a logger for lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New creates a manager over a registry.
func New(reg *registry.Registry, opts ...Option) *Manager {
	m := &Manager{
		reg:      reg,
		capacity: reg.Len(),
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}
	m.tasks = make([]taskInfo, 0, m.capacity)
	m.garbage = make([]bool, m.capacity)
	return m
}

func (m *Manager) find(uid task.ID) *taskInfo {
	for i := range m.tasks {
		if m.tasks[i].uid == uid {
			return &m.tasks[i]
		}
	}
	return nil
}

// RegisterTask instantiates the task type uid with the given parameters and
// adds it to the active list. The channel receives the eventual result.
func (m *Manager) RegisterTask(ch Channel, initiatorID uint8, uid task.ID, params envelope.View) status.Code {
	if m.updating {
		return status.ReentrancyConflict
	}
	if ch == nil {
		return status.ChannelNull
	}
	if m.find(uid) != nil {
		return status.DuplicateTask
	}
	if len(m.tasks) >= m.capacity {
		return status.TaskLimitReached
	}
	inst := m.reg.Construct(uid, params)
	if inst == nil {
		return status.TaskUnknown
	}
	m.tasks = append(m.tasks, taskInfo{
		task:        inst,
		state:       task.NewState(),
		initiatorID: initiatorID,
		uid:         uid,
		channel:     ch,
	})
	m.log.Debug("task registered", zap.Uint8("uid", uint8(uid)), zap.Uint8("initiator", initiatorID))
	return status.OK
}

// PauseTask requests that uid stop executing until resumed.
func (m *Manager) PauseTask(uid task.ID) status.Code {
	if m.updating {
		return status.ReentrancyConflict
	}
	ti := m.find(uid)
	switch {
	case ti == nil:
		return status.TaskNotRegistered
	case ti.task.Finished():
		return status.TaskAlreadyFinished
	case ti.state.IsAborted():
		return status.TaskAlreadyAborted
	case ti.state.IsPaused():
		return status.TaskAlreadyPaused
	case !ti.state.IsStarted():
		return status.TaskNotRunning
	}
	ti.state.SetPaused()
	m.log.Debug("task pause requested", zap.Uint8("uid", uint8(uid)))
	return status.OK
}

// ResumeTask requests that a paused uid continue executing.
func (m *Manager) ResumeTask(uid task.ID) status.Code {
	if m.updating {
		return status.ReentrancyConflict
	}
	ti := m.find(uid)
	switch {
	case ti == nil:
		return status.TaskNotRegistered
	case ti.task.Finished():
		return status.TaskAlreadyFinished
	case ti.state.IsAborted():
		return status.TaskAlreadyAborted
	case ti.state.IsRunning():
		return status.TaskAlreadyRunning
	case ti.state.IsResumed():
		return status.TaskAlreadyResumed
	}
	ti.state.SetResumed()
	m.log.Debug("task resume requested", zap.Uint8("uid", uint8(uid)))
	return status.OK
}

// AbortTask terminally cancels uid; the next pass completes it with
// interrupted set.
func (m *Manager) AbortTask(uid task.ID) status.Code {
	if m.updating {
		return status.ReentrancyConflict
	}
	ti := m.find(uid)
	switch {
	case ti == nil:
		return status.TaskNotRegistered
	case ti.task.Finished():
		return status.TaskAlreadyFinished
	case ti.state.IsAborted():
		return status.TaskAlreadyAborted
	}
	ti.state.SetAborted()
	m.log.Debug("task abort requested", zap.Uint8("uid", uint8(uid)))
	return status.OK
}

// Update visits every live task once, starting it if needed and then
// applying at most one further lifecycle transition, then reaps completed
// records. Tasks run in
// registration order on the caller's goroutine.
func (m *Manager) Update() {
	if m.updating {
		m.log.Warn("nested update pass refused")
		return
	}
	m.updating = true
	defer func() { m.updating = false }()

	if len(m.garbage) < len(m.tasks) {
		m.garbage = make([]bool, len(m.tasks))
	}
	for i := range m.garbage {
		m.garbage[i] = false
	}

	for i := range m.tasks {
		ti := &m.tasks[i]
		st := &ti.state

		// Start-first: a freshly registered task starts, then falls through
		// so a single-shot task can finish in the same pass.
		if !st.IsStarted() {
			st.SetRunning()
			st.SetStarted()
			ti.task.OnStart()
		}

		switch {
		case st.IsAborted():
			m.complete(i, true)
		case ti.task.Finished():
			m.complete(i, false)
		case st.IsPaused() && st.IsRunning():
			ti.task.OnPause()
			st.SetIdle()
		case st.IsResumed() && st.IsIdle():
			ti.task.OnResume()
			st.SetRunning()
		case st.IsRunning():
			ti.task.OnExecute()
		}
	}

	m.reap()
}

// complete finishes the task at index i: result callback first, reap mark
// after, so the record and slot stay intact for the channel.
func (m *Manager) complete(i int, interrupted bool) {
	ti := &m.tasks[i]
	result, code := ti.task.OnComplete(interrupted)
	if interrupted {
		ti.state.SetAborted()
	} else {
		ti.state.SetFinished()
	}
	ti.channel.OnResult(ti.initiatorID, ti.uid, result.Take(), status.Code(code))
	m.garbage[i] = true
	m.log.Debug("task completed",
		zap.Uint8("uid", uint8(ti.uid)),
		zap.Bool("interrupted", interrupted),
		zap.String("status", status.Code(code).String()))
}

// reap compacts the active list and frees the slot of every marked record.
func (m *Manager) reap() {
	out := m.tasks[:0]
	for i := range m.tasks {
		if m.garbage[i] {
			m.reg.Destroy(m.tasks[i].uid)
			continue
		}
		out = append(out, m.tasks[i])
	}
	m.tasks = out
}

// Active returns the number of live tasks.
func (m *Manager) Active() int { return len(m.tasks) }
