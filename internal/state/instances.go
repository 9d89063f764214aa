package state

import (
	"sort"
	"sync"

	"github.com/atomicstack/mdns-dashboard/internal/mdns"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
)

// Instance is a resolved endpoint. Two instances are the same entity when
// their host names match.
type Instance struct {
	mdns.ServiceInfo
}

func (i Instance) ID() string    { return i.HostName }
func (i Instance) Label() string { return i.HostName }

// InstanceStore guards the per-category instance collections.
type InstanceStore struct {
	mu         sync.Mutex
	byCategory map[string]*uistate.Collection[Instance]
}

func NewInstanceStore() *InstanceStore {
	return &InstanceStore{byCategory: make(map[string]*uistate.Collection[Instance])}
}

// Track creates an empty collection for category unless one exists.
func (s *InstanceStore) Track(category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCategory[category]; ok {
		return false
	}
	s.byCategory[category] = uistate.NewCollection[Instance]()
	return true
}

// Drop discards category together with its instances.
func (s *InstanceStore) Drop(category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCategory[category]; !ok {
		return false
	}
	delete(s.byCategory, category)
	return true
}

// With runs fn on the collection for category while holding the store lock.
// It reports false, without calling fn, when category is not tracked.
func (s *InstanceStore) With(category string, fn func(*uistate.Collection[Instance])) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.byCategory[category]
	if !ok {
		return false
	}
	fn(list)
	return true
}

// Categories returns the tracked category names, sorted.
func (s *InstanceStore) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.byCategory))
	for name := range s.byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
