package state

import (
	"sync"

	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
)

// Category is a discovered service type, identified by its full name.
type Category string

func (c Category) ID() string    { return string(c) }
func (c Category) Label() string { return string(c) }

// CategoryStore guards the collection of discovered categories.
type CategoryStore struct {
	mu   sync.Mutex
	list *uistate.Collection[Category]
}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{list: uistate.NewCollection[Category]()}
}

// With runs fn while holding the store lock. fn must not block.
func (s *CategoryStore) With(fn func(*uistate.Collection[Category])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.list)
}

// Insert adds name and reports whether it was new.
func (s *CategoryStore) Insert(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Insert(Category(name))
}

// Remove drops name and reports whether it was tracked.
func (s *CategoryStore) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Remove(name)
}

// Selected returns the name of the category under the cursor.
func (s *CategoryStore) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.list.Selected()
	return string(c), ok
}

// Names returns the stored category names in discovery order.
func (s *CategoryStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.list.Items()
	names := make([]string, len(items))
	for i, c := range items {
		names[i] = string(c)
	}
	return names
}
