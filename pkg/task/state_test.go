package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialState(t *testing.T) {
	s := NewState()
	assert.True(t, s.IsRunning())
	assert.False(t, s.IsIdle())
	assert.False(t, s.IsStarted())
	assert.False(t, s.IsPaused())
	assert.False(t, s.IsResumed())
	assert.False(t, s.IsAborted())
	assert.False(t, s.IsFinished())
}

func TestPauseResumeExclusive(t *testing.T) {
	s := NewState()
	s.SetPaused()
	assert.True(t, s.IsPaused())
	assert.False(t, s.IsResumed())

	s.SetResumed()
	assert.True(t, s.IsResumed())
	assert.False(t, s.IsPaused())

	s.SetPaused()
	assert.True(t, s.IsPaused())
	assert.False(t, s.IsResumed())
}

func TestRunningIdleExclusive(t *testing.T) {
	s := NewState()
	s.SetIdle()
	assert.True(t, s.IsIdle())
	assert.False(t, s.IsRunning())

	s.SetRunning()
	assert.True(t, s.IsRunning())
	assert.False(t, s.IsIdle())
}

func TestLatchesStick(t *testing.T) {
	s := NewState()
	s.SetStarted()
	s.SetAborted()
	s.SetFinished()

	// No setter clears a latch.
	s.SetPaused()
	s.SetResumed()
	s.SetIdle()
	s.SetRunning()

	assert.True(t, s.IsStarted())
	assert.True(t, s.IsAborted())
	assert.True(t, s.IsFinished())
}

func TestLatchesIndependentOfPairs(t *testing.T) {
	s := NewState()
	s.SetPaused()
	s.SetStarted()
	assert.True(t, s.IsPaused())
	assert.True(t, s.IsStarted())
	assert.True(t, s.IsRunning()) // pause alone does not clear running
}
