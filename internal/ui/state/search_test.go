package state

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func runes(c *Collection[testItem], text string) {
	for _, r := range text {
		c.HandleInput(Input{Action: ActionRune, Rune: r}, CompileRegex)
	}
}

func press(c *Collection[testItem], a Action) (Transition, error) {
	return c.HandleInput(Input{Action: a}, CompileRegex)
}

func TestSearchStartsBrowsing(t *testing.T) {
	c := newTestCollection("a")
	if c.Mode() != ModeBrowsing {
		t.Fatalf("expected browsing, got %v", c.Mode())
	}
	if _, ok := c.Buffer(); ok {
		t.Fatalf("expected absent buffer")
	}
}

func TestSearchEnterTypeConfirm(t *testing.T) {
	c := newTestCollection("a.local", "b.local", "c.local")
	if tr, _ := press(c, ActionFilter); tr != TransitionEnter {
		t.Fatalf("expected enter transition, got %v", tr)
	}
	if c.Mode() != ModeFiltering {
		t.Fatalf("expected filtering mode")
	}
	runes(c, "b")
	if buf, ok := c.Buffer(); !ok || buf != "b" {
		t.Fatalf("expected buffer 'b', got %q/%v", buf, ok)
	}
	if tr, err := press(c, ActionConfirm); err != nil || tr != TransitionApply {
		t.Fatalf("expected apply, got %v/%v", tr, err)
	}
	if c.Mode() != ModeBrowsing {
		t.Fatalf("expected browsing after confirm")
	}
	if diff := cmp.Diff([]string{"b.local"}, ids(c.FilteredItems())); diff != "" {
		t.Fatalf("unexpected view (-want +got):\n%s", diff)
	}
}

func TestSearchEraseToEmptyClearsFilterOnConfirm(t *testing.T) {
	c := newTestCollection("a.local", "b.local")
	m, _ := CompileRegex("a")
	c.SetFilter(m)

	press(c, ActionFilter)
	runes(c, "xy")
	press(c, ActionErase)
	if buf, ok := c.Buffer(); !ok || buf != "x" {
		t.Fatalf("expected buffer 'x', got %q/%v", buf, ok)
	}
	press(c, ActionErase)
	if _, ok := c.Buffer(); ok {
		t.Fatalf("expected buffer to become absent")
	}
	if tr, _ := press(c, ActionErase); tr != TransitionNone {
		t.Fatalf("expected erase on absent buffer to be a no-op, got %v", tr)
	}
	press(c, ActionConfirm)
	if c.Filter() != nil {
		t.Fatalf("expected filter cleared, got %v", c.Filter())
	}
	if c.FilteredLen() != 2 {
		t.Fatalf("expected full view, got %d", c.FilteredLen())
	}
}

func TestSearchCancelKeepsFilter(t *testing.T) {
	c := newTestCollection("a.local", "b.local")
	m, _ := CompileRegex("a")
	c.SetFilter(m)
	press(c, ActionFilter)
	runes(c, "b")
	if tr, _ := press(c, ActionCancel); tr != TransitionCancel {
		t.Fatalf("expected cancel transition, got %v", tr)
	}
	if c.Mode() != ModeBrowsing {
		t.Fatalf("expected browsing after cancel")
	}
	if _, ok := c.Buffer(); ok {
		t.Fatalf("expected buffer discarded")
	}
	if c.Filter() == nil || c.Filter().String() != "a" {
		t.Fatalf("expected previous filter untouched, got %v", c.Filter())
	}
}

func TestSearchInvalidPatternKeepsPreviousFilter(t *testing.T) {
	c := newTestCollection("a.local", "b.local")
	m, _ := CompileRegex("b")
	c.SetFilter(m)
	press(c, ActionFilter)
	runes(c, "(")
	tr, err := press(c, ActionConfirm)
	if tr != TransitionReject {
		t.Fatalf("expected reject, got %v", tr)
	}
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
	if c.Filter().String() != "b" {
		t.Fatalf("expected previous filter, got %v", c.Filter())
	}
	if c.Mode() != ModeBrowsing {
		t.Fatalf("expected browsing after reject")
	}
	if _, ok := c.Buffer(); ok {
		t.Fatalf("expected buffer discarded after reject")
	}
}

func TestSearchNavigationOnlyWhileBrowsing(t *testing.T) {
	c := newTestCollection("a", "b", "c")
	if tr, _ := press(c, ActionDown); tr != TransitionMoved {
		t.Fatalf("expected move, got %v", tr)
	}
	mustCursor(t, c, 1)
	press(c, ActionBottom)
	mustCursor(t, c, 2)
	press(c, ActionTop)
	mustCursor(t, c, 0)
	press(c, ActionUp)
	mustCursor(t, c, 2)

	press(c, ActionFilter)
	if tr, _ := press(c, ActionDown); tr != TransitionNone {
		t.Fatalf("expected navigation ignored while filtering, got %v", tr)
	}
	mustCursor(t, c, 2)
}

func TestSearchIgnoresUnknownInput(t *testing.T) {
	c := newTestCollection("a")
	if tr, _ := c.HandleInput(Input{Action: ActionRune, Rune: 'x'}, CompileRegex); tr != TransitionNone {
		t.Fatalf("expected runes ignored while browsing, got %v", tr)
	}
	if tr, _ := press(c, ActionConfirm); tr != TransitionNone {
		t.Fatalf("expected confirm ignored while browsing, got %v", tr)
	}
	press(c, ActionFilter)
	if tr, _ := c.HandleInput(Input{Action: ActionRune, Rune: '\x01'}, CompileRegex); tr != TransitionNone {
		t.Fatalf("expected control runes ignored, got %v", tr)
	}
	if tr, _ := press(c, ActionFilter); tr != TransitionNone {
		t.Fatalf("expected filter key ignored while filtering, got %v", tr)
	}
}

func TestSearchPageMovement(t *testing.T) {
	names := make([]string, 15)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	c := newTestCollection(names...)
	press(c, ActionPageDown)
	mustCursor(t, c, PageSize)
	press(c, ActionPageDown)
	mustCursor(t, c, (2*PageSize)%15)
	press(c, ActionPageUp)
	mustCursor(t, c, PageSize)
}
