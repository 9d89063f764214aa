package state

import (
	"fmt"
	"iter"
	"slices"
)

// Collection is an ordered, de-duplicated list of entries with a cursor into
// the filtered view and an optional filter. Stored order is never changed by
// filtering; the cursor always indexes the filtered view, never the storage.
type Collection[T Entry] struct {
	items   []T
	matcher Matcher
	cursor  int
	search  Search
}

// NewCollection returns an empty collection without a cursor.
func NewCollection[T Entry]() *Collection[T] {
	return &Collection[T]{cursor: -1}
}

// Insert appends item unless an entry with the same ID is already stored.
func (c *Collection[T]) Insert(item T) bool {
	if indexOf(c.items, item.ID()) >= 0 {
		return false
	}
	c.items = append(c.items, item)
	c.normalizeCursor()
	return true
}

// Remove drops the entry whose ID matches id.
func (c *Collection[T]) Remove(id string) bool {
	idx := indexOf(c.items, id)
	if idx < 0 {
		return false
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	c.normalizeCursor()
	return true
}

// RemoveFunc drops the first entry for which match reports true.
func (c *Collection[T]) RemoveFunc(match func(T) bool) bool {
	idx := slices.IndexFunc(c.items, match)
	if idx < 0 {
		return false
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	c.normalizeCursor()
	return true
}

// Len returns the number of stored entries, ignoring the filter.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Items returns a copy of the stored entries in insertion order.
func (c *Collection[T]) Items() []T {
	return CloneItems(c.items)
}

// Filtered yields the entries visible under the active filter, in stored
// order. The sequence may be ranged over any number of times.
func (c *Collection[T]) Filtered() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range c.items {
			if c.matcher != nil && !c.matcher.Match(item.ID()) {
				continue
			}
			if !yield(item) {
				return
			}
		}
	}
}

// FilteredItems collects Filtered into a slice.
func (c *Collection[T]) FilteredItems() []T {
	return slices.Collect(c.Filtered())
}

// FilteredLen returns the size of the filtered view.
func (c *Collection[T]) FilteredLen() int {
	if c.matcher == nil {
		return len(c.items)
	}
	n := 0
	for range c.Filtered() {
		n++
	}
	return n
}

// Selected returns the entry under the cursor.
func (c *Collection[T]) Selected() (T, bool) {
	var zero T
	if c.cursor < 0 {
		return zero, false
	}
	i := 0
	for item := range c.Filtered() {
		if i == c.cursor {
			return item, true
		}
		i++
	}
	return zero, false
}

// Cursor returns the cursor position within the filtered view.
func (c *Collection[T]) Cursor() (int, bool) {
	if c.cursor < 0 {
		return 0, false
	}
	return c.cursor, true
}

// Title renders name with the active filter pattern appended.
func (c *Collection[T]) Title(name string) string {
	if c.matcher == nil {
		return name
	}
	return fmt.Sprintf("%s(/%s/)", name, c.matcher.String())
}

// Mode reports the input mode of the collection's search machine.
func (c *Collection[T]) Mode() Mode {
	return c.search.Mode()
}

// Buffer returns the search text under construction.
func (c *Collection[T]) Buffer() (string, bool) {
	return c.search.Buffer()
}

// HandleInput feeds in to the collection's search machine.
func (c *Collection[T]) HandleInput(in Input, compile Compiler) (Transition, error) {
	return c.search.Handle(in, c, compile)
}

// normalizeCursor clears the cursor when the filtered view empties, selects
// the first entry when it stops being empty, and clamps it after removals.
func (c *Collection[T]) normalizeCursor() {
	n := c.FilteredLen()
	switch {
	case n == 0:
		c.cursor = -1
	case c.cursor < 0:
		c.cursor = 0
	case c.cursor >= n:
		c.cursor = n - 1
	}
}
