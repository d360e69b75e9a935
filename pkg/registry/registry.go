// Package registry maps task type UIDs to their storage slots. Each
// registered type has exactly one slot holding at most one live instance;
// construct and destroy toggle it. The table is fixed at construction, so
// the task set is closed for the life of the registry.
package registry

import (
	"fmt"
	"sort"

	"taskwire/pkg/envelope"
	"taskwire/pkg/task"
)

// Factory builds a fresh task instance from its serialized parameters.
type Factory func(params envelope.View) task.Task

// Entry declares one task type for registration.
type Entry struct {
	UID task.ID
	New Factory
}

// slot is the singleton storage cell of one task type.
type slot struct {
	make Factory
	inst task.Task
	live bool
}

// mapping pairs a UID with its routing index; the mapping table is sorted
// by UID for binary search.
type mapping struct {
	uid   task.ID
	index int
}

// Registry is the immutable UID -> {get, construct, destroy} table.
type Registry struct {
	routes []slot
	index  []mapping
}

// New builds a registry over a closed set of entries. Duplicate UIDs and
// nil factories are construction errors.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		routes: make([]slot, len(entries)),
		index:  make([]mapping, len(entries)),
	}
	seen := make(map[task.ID]bool, len(entries))
	for i, e := range entries {
		if e.New == nil {
			return nil, fmt.Errorf("registry: entry %d (uid %d) has a nil factory", i, e.UID)
		}
		if seen[e.UID] {
			return nil, fmt.Errorf("registry: duplicate uid %d", e.UID)
		}
		seen[e.UID] = true
		r.routes[i] = slot{make: e.New}
		r.index[i] = mapping{uid: e.UID, index: i}
	}
	sort.Slice(r.index, func(i, j int) bool { return r.index[i].uid < r.index[j].uid })
	return r, nil
}

// MustNew panics on a registration error; intended for program start.
func MustNew(entries ...Entry) *Registry {
	r, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of registered task types.
func (r *Registry) Len() int { return len(r.routes) }

func (r *Registry) find(uid task.ID) *slot {
	i := sort.Search(len(r.index), func(i int) bool { return r.index[i].uid >= uid })
	if i < len(r.index) && r.index[i].uid == uid {
		return &r.routes[r.index[i].index]
	}
	return nil
}

// Get returns the live instance for uid, or nil.
func (r *Registry) Get(uid task.ID) task.Task {
	if s := r.find(uid); s != nil && s.live {
		return s.inst
	}
	return nil
}

// Construct builds the instance for uid into its slot. Returns nil when the
// uid is unknown or the slot is already live.
func (r *Registry) Construct(uid task.ID, params envelope.View) task.Task {
	s := r.find(uid)
	if s == nil || s.live {
		return nil
	}
	s.inst = s.make(params)
	s.live = true
	return s.inst
}

// Destroy releases the slot for uid; unknown or empty slots are a no-op.
func (r *Registry) Destroy(uid task.ID) {
	if s := r.find(uid); s != nil && s.live {
		s.inst = nil
		s.live = false
	}
}

// Reset destroys every live slot in registration order.
func (r *Registry) Reset() {
	for i := range r.routes {
		r.routes[i].inst = nil
		r.routes[i].live = false
	}
}
