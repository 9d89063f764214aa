package state

// PageSize is the distance covered by a page movement.
const PageSize = 10

// MoveBy moves the cursor delta positions through the filtered view, wrapping
// in both directions. Without a cursor any non-zero move selects the first
// entry.
func (c *Collection[T]) MoveBy(delta int) bool {
	n := c.FilteredLen()
	if n == 0 {
		return false
	}
	if c.cursor < 0 {
		if delta == 0 {
			return false
		}
		c.cursor = 0
		return true
	}
	old := c.cursor
	c.cursor = wrap(c.cursor+delta, n)
	return old != c.cursor
}

// MoveToTop moves the cursor to the first filtered entry.
func (c *Collection[T]) MoveToTop() bool {
	cur, _ := c.Cursor()
	return c.MoveBy(-cur)
}

// MoveToBottom moves the cursor to the last filtered entry.
func (c *Collection[T]) MoveToBottom() bool {
	cur, _ := c.Cursor()
	return c.MoveBy(c.FilteredLen() - 1 - cur)
}

// wrap is the euclidean remainder of i by n, always in [0, n).
func wrap(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// VisibleWindow returns the first index of a window of height rows that keeps
// cursor visible.
func VisibleWindow(cursor, total, height int) int {
	if height <= 0 || total <= height || cursor < height {
		return 0
	}
	start := cursor - height + 1
	if start > total-height {
		start = total - height
	}
	return start
}
