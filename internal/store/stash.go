package store

import (
	"reflect"
	"sync"
)

var _ Source = (*Stash)(nil)

// Stash is an in-memory, reactive record store. Values are replaced wholesale
// by Apply; watchers are notified only for refs whose value actually changed.
type Stash struct {
	mu     sync.RWMutex
	values Snapshot

	wmu      sync.Mutex
	watchers map[Ref]map[uint64]func()
	nextID   uint64
}

func NewStash() *Stash {
	return &Stash{
		values:   Snapshot{},
		watchers: make(map[Ref]map[uint64]func()),
	}
}

func (s *Stash) Get(ref Ref) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[ref]
	return v, ok
}

func (s *Stash) View(fn func(r Reader)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.values)
}

func (s *Stash) Watch(refs []Ref, notify func()) func() {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.nextID++
	id := s.nextID
	for _, ref := range refs {
		set, ok := s.watchers[ref]
		if !ok {
			set = make(map[uint64]func())
			s.watchers[ref] = set
		}
		set[id] = notify
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.wmu.Lock()
			defer s.wmu.Unlock()
			for _, ref := range refs {
				set := s.watchers[ref]
				delete(set, id)
				if len(set) == 0 {
					delete(s.watchers, ref)
				}
			}
		})
	}
}

// Apply replaces the stash contents with next and returns the refs that
// changed, were added, or were removed.
func (s *Stash) Apply(next Snapshot) []Ref {
	values := make(Snapshot, len(next))
	for ref, v := range next {
		values[ref] = v
	}

	s.mu.Lock()
	var changed []Ref
	for ref, v := range values {
		if old, ok := s.values[ref]; !ok || !reflect.DeepEqual(old, v) {
			changed = append(changed, ref)
		}
	}
	for ref := range s.values {
		if _, ok := values[ref]; !ok {
			changed = append(changed, ref)
		}
	}
	s.values = values
	s.mu.Unlock()

	s.notify(changed)
	return changed
}

// Put sets a single record and notifies its watchers if the value changed.
func (s *Stash) Put(ref Ref, value any) {
	s.mu.Lock()
	old, ok := s.values[ref]
	if ok && reflect.DeepEqual(old, value) {
		s.mu.Unlock()
		return
	}
	s.values[ref] = value
	s.mu.Unlock()

	s.notify([]Ref{ref})
}

func (s *Stash) Delete(ref Ref) {
	s.mu.Lock()
	if _, ok := s.values[ref]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.values, ref)
	s.mu.Unlock()

	s.notify([]Ref{ref})
}

func (s *Stash) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *Stash) notify(changed []Ref) {
	if len(changed) == 0 {
		return
	}

	s.wmu.Lock()
	seen := make(map[uint64]struct{})
	var fns []func()
	for _, ref := range changed {
		for id, fn := range s.watchers[ref] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			fns = append(fns, fn)
		}
	}
	s.wmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
