package manager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskwire/pkg/envelope"
	"taskwire/pkg/manager"
	"taskwire/pkg/registry"
	"taskwire/pkg/status"
	"taskwire/pkg/task"
)

// script is a controllable task: it finishes after a set number of
// executes (-1 = never) and counts every callback.
type script struct {
	task.Base
	finishAfter int
	starts      int
	executes    int
	pauses      int
	resumes     int
	completions int
	interrupted bool
	resultCode  uint8
	hook        func() // runs inside OnExecute when set
}

func (s *script) OnStart() { s.starts++ }
func (s *script) OnExecute() {
	s.executes++
	if s.hook != nil {
		s.hook()
	}
}
func (s *script) Finished() bool {
	return s.finishAfter >= 0 && s.executes >= s.finishAfter
}
func (s *script) OnComplete(interrupted bool) (envelope.Envelope, uint8) {
	s.completions++
	s.interrupted = interrupted
	if interrupted {
		return envelope.Envelope{}, uint8(status.TaskAborted)
	}
	return envelope.Envelope{}, s.resultCode
}
func (s *script) OnPause()  { s.pauses++ }
func (s *script) OnResume() { s.resumes++ }

type result struct {
	initiator uint8
	uid       task.ID
	code      status.Code
	size      int
}

type recorder struct{ results []result }

func (r *recorder) OnResult(initiatorID uint8, uid task.ID, res envelope.Envelope, code status.Code) {
	r.results = append(r.results, result{initiatorID, uid, code, res.Size()})
}

// fixture wires a registry of script tasks keyed by uid.
type fixture struct {
	mgr   *manager.Manager
	ch    *recorder
	reg   *registry.Registry
	tasks map[task.ID]*script
}

func newFixture(t *testing.T, specs map[task.ID]int) *fixture {
	t.Helper()
	f := &fixture{ch: &recorder{}, tasks: make(map[task.ID]*script)}
	entries := make([]registry.Entry, 0, len(specs))
	for uid, finishAfter := range specs {
		uid, finishAfter := uid, finishAfter
		entries = append(entries, registry.Entry{UID: uid, New: func(envelope.View) task.Task {
			s := &script{finishAfter: finishAfter, resultCode: uint8(status.TaskFinished)}
			f.tasks[uid] = s
			return s
		}})
	}
	f.reg = registry.MustNew(entries...)
	f.mgr = manager.New(f.reg)
	return f
}

func (f *fixture) register(t *testing.T, uid task.ID) {
	t.Helper()
	require.Equal(t, status.OK, f.mgr.RegisterTask(f.ch, 0x01, uid, envelope.View{}))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, map[task.ID]int{7: -1})

	assert.Equal(t, status.ChannelNull, f.mgr.RegisterTask(nil, 1, 7, envelope.View{}))
	assert.Equal(t, status.TaskUnknown, f.mgr.RegisterTask(f.ch, 1, 99, envelope.View{}))

	f.register(t, 7)
	assert.Equal(t, status.DuplicateTask, f.mgr.RegisterTask(f.ch, 1, 7, envelope.View{}))
	assert.Equal(t, 1, f.mgr.Active())
}

func TestCapacityBound(t *testing.T) {
	f := newFixture(t, map[task.ID]int{1: -1, 2: -1})
	f.mgr = manager.New(f.reg, manager.WithCapacity(1))
	f.register(t, 1)
	assert.Equal(t, status.TaskLimitReached, f.mgr.RegisterTask(f.ch, 1, 2, envelope.View{}))
}

func TestSingleShotLifecycle(t *testing.T) {
	f := newFixture(t, map[task.ID]int{7: 0})
	f.register(t, 7)

	f.mgr.Update()

	s := f.tasks[7]
	assert.Equal(t, 1, s.starts, "on_start fires before the finish check")
	assert.Equal(t, 0, s.executes, "single-shot finishes without executing")
	assert.Equal(t, 1, s.completions)
	assert.False(t, s.interrupted)

	require.Len(t, f.ch.results, 1)
	assert.Equal(t, result{0x01, 7, status.TaskFinished, 0}, f.ch.results[0])

	assert.Equal(t, 0, f.mgr.Active(), "record reaped after completion")
	assert.Nil(t, f.reg.Get(7), "slot destroyed after reap")

	// Slot is free again: the uid can be re-registered.
	f.register(t, 7)
}

func TestExecuteEveryPass(t *testing.T) {
	f := newFixture(t, map[task.ID]int{9: -1})
	f.register(t, 9)
	for i := 0; i < 5; i++ {
		f.mgr.Update()
	}
	assert.Equal(t, 1, f.tasks[9].starts)
	// Start pass falls through to execute as well.
	assert.Equal(t, 5, f.tasks[9].executes)
}

func TestPauseBeforeStart(t *testing.T) {
	f := newFixture(t, map[task.ID]int{7: -1})
	f.register(t, 7)
	assert.Equal(t, status.TaskNotRunning, f.mgr.PauseTask(7))
}

func TestPauseResumeEdges(t *testing.T) {
	f := newFixture(t, map[task.ID]int{9: -1})
	f.register(t, 9)
	f.mgr.Update() // start + execute
	s := f.tasks[9]
	require.Equal(t, 1, s.executes)

	require.Equal(t, status.OK, f.mgr.PauseTask(9))
	assert.Equal(t, status.TaskAlreadyPaused, f.mgr.PauseTask(9))

	f.mgr.Update() // pause edge: on_pause, no execute
	assert.Equal(t, 1, s.pauses)
	assert.Equal(t, 1, s.executes)

	f.mgr.Update() // parked: nothing happens
	assert.Equal(t, 1, s.executes)

	require.Equal(t, status.OK, f.mgr.ResumeTask(9))
	assert.Equal(t, status.TaskAlreadyResumed, f.mgr.ResumeTask(9))

	f.mgr.Update() // resume edge: on_resume, no execute
	assert.Equal(t, 1, s.resumes)
	assert.Equal(t, 1, s.executes)

	f.mgr.Update() // running again
	assert.Equal(t, 2, s.executes)
}

func TestResumeWhileRunning(t *testing.T) {
	f := newFixture(t, map[task.ID]int{9: -1})
	f.register(t, 9)
	f.mgr.Update()
	assert.Equal(t, status.TaskAlreadyRunning, f.mgr.ResumeTask(9))
}

func TestAbortInFlight(t *testing.T) {
	f := newFixture(t, map[task.ID]int{9: -1})
	f.register(t, 9)
	f.mgr.Update()
	f.mgr.Update()
	s := f.tasks[9]
	require.Equal(t, 2, s.executes)

	require.Equal(t, status.OK, f.mgr.AbortTask(9))
	assert.Equal(t, status.TaskAlreadyAborted, f.mgr.AbortTask(9))
	assert.Equal(t, status.TaskAlreadyAborted, f.mgr.PauseTask(9))
	assert.Equal(t, status.TaskAlreadyAborted, f.mgr.ResumeTask(9))

	f.mgr.Update() // abort completes, no further execute
	assert.Equal(t, 2, s.executes)
	assert.Equal(t, 1, s.completions)
	assert.True(t, s.interrupted)
	require.Len(t, f.ch.results, 1)
	assert.Equal(t, status.TaskAborted, f.ch.results[0].code)
	assert.Equal(t, 0, f.mgr.Active())
}

func TestLifecycleOnMissingTask(t *testing.T) {
	f := newFixture(t, map[task.ID]int{7: -1})
	assert.Equal(t, status.TaskNotRegistered, f.mgr.PauseTask(7))
	assert.Equal(t, status.TaskNotRegistered, f.mgr.ResumeTask(7))
	assert.Equal(t, status.TaskNotRegistered, f.mgr.AbortTask(7))
}

func TestPauseOnFinishedTask(t *testing.T) {
	// finishAfter 1: after the first execute the task reports finished but
	// is not reaped until the next pass.
	f := newFixture(t, map[task.ID]int{7: 1})
	f.register(t, 7)
	f.mgr.Update() // start + first execute; now Finished() is true
	assert.Equal(t, status.TaskAlreadyFinished, f.mgr.PauseTask(7))
	assert.Equal(t, status.TaskAlreadyFinished, f.mgr.AbortTask(7))

	f.mgr.Update() // completion pass
	require.Len(t, f.ch.results, 1)
	assert.Equal(t, 1, f.tasks[7].completions, "on_complete runs exactly once")
	assert.Equal(t, status.TaskNotRegistered, f.mgr.AbortTask(7))
}

func TestReentrantCallRefused(t *testing.T) {
	f := newFixture(t, map[task.ID]int{9: -1})
	f.register(t, 9)
	var got status.Code
	f.mgr.Update() // let it start first
	f.tasks[9].hook = func() { got = f.mgr.PauseTask(9) }
	f.mgr.Update()
	assert.Equal(t, status.ReentrancyConflict, got)
}

func TestInsertionOrderPreserved(t *testing.T) {
	f := newFixture(t, map[task.ID]int{1: -1, 2: -1, 3: -1})
	var order []task.ID
	for _, uid := range []task.ID{3, 1, 2} {
		f.register(t, uid)
	}
	for _, uid := range []task.ID{1, 2, 3} {
		uid := uid
		f.tasks[uid].hook = func() { order = append(order, uid) }
	}
	f.mgr.Update()
	assert.Equal(t, []task.ID{3, 1, 2}, order)
}

func TestAbortBeforeFirstPassStillStarts(t *testing.T) {
	f := newFixture(t, map[task.ID]int{9: -1})
	f.register(t, 9)
	require.Equal(t, status.OK, f.mgr.AbortTask(9))
	f.mgr.Update()
	s := f.tasks[9]
	assert.Equal(t, 1, s.starts, "start-first runs before the abort branch")
	assert.Equal(t, 0, s.executes)
	assert.True(t, s.interrupted)
	assert.Equal(t, 0, f.mgr.Active())
}
