package task

// State is the lifecycle bitfield of one live task. Setters keep the
// invariants: paused/resumed and running/idle are mutually exclusive pairs;
// started, finished and aborted are one-way latches.
type State uint8

const (
	idle State = 1 << iota
	started
	running
	paused
	resumed
	aborted
	finished
)

// NewState returns the initial state of a freshly registered task: running
// set, everything else clear.
func NewState() State { return running }

func (s State) IsIdle() bool     { return s&idle != 0 }
func (s State) IsStarted() bool  { return s&started != 0 }
func (s State) IsRunning() bool  { return s&running != 0 }
func (s State) IsPaused() bool   { return s&paused != 0 }
func (s State) IsResumed() bool  { return s&resumed != 0 }
func (s State) IsAborted() bool  { return s&aborted != 0 }
func (s State) IsFinished() bool { return s&finished != 0 }

func (s *State) SetPaused()   { *s = *s&^resumed | paused }
func (s *State) SetResumed()  { *s = *s&^paused | resumed }
func (s *State) SetRunning()  { *s = *s&^idle | running }
func (s *State) SetIdle()     { *s = *s&^running | idle }
func (s *State) SetStarted()  { *s |= started }
func (s *State) SetAborted()  { *s |= aborted }
func (s *State) SetFinished() { *s |= finished }
