package state

import (
	"unicode"
	"unicode/utf8"
)

// Mode is the input mode of a collection.
type Mode int

const (
	ModeBrowsing Mode = iota
	ModeFiltering
)

func (m Mode) String() string {
	if m == ModeFiltering {
		return "filtering"
	}
	return "browsing"
}

// Action is a terminal-independent key meaning.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionPageUp
	ActionPageDown
	ActionTop
	ActionBottom
	ActionFilter
	ActionConfirm
	ActionCancel
	ActionErase
	ActionRune
)

// Input is one key press translated for the search machine. Rune is only read
// for ActionRune.
type Input struct {
	Action Action
	Rune   rune
}

// Transition describes what Handle did, so callers can report it.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionMoved
	TransitionEnter
	TransitionEdit
	TransitionCancel
	TransitionApply
	TransitionReject
)

// Navigable is the part of a collection the search machine drives.
type Navigable interface {
	MoveBy(delta int) bool
	MoveToTop() bool
	MoveToBottom() bool
	SetFilter(m Matcher)
}

// Search toggles a collection between browsing and entering a filter. The
// buffer is absent whenever it is empty.
type Search struct {
	mode   Mode
	buffer []rune
}

// Mode returns the current mode.
func (s *Search) Mode() Mode {
	return s.mode
}

// Buffer returns the text typed so far and whether any exists.
func (s *Search) Buffer() (string, bool) {
	if len(s.buffer) == 0 {
		return "", false
	}
	return string(s.buffer), true
}

// Handle applies in to target. A pattern that fails to compile is returned as
// an error with TransitionReject; the previous filter stays in place.
func (s *Search) Handle(in Input, target Navigable, compile Compiler) (Transition, error) {
	if s.mode == ModeFiltering {
		return s.handleFiltering(in, target, compile)
	}
	return s.handleBrowsing(in, target)
}

func (s *Search) handleBrowsing(in Input, target Navigable) (Transition, error) {
	moved := false
	switch in.Action {
	case ActionFilter:
		s.mode = ModeFiltering
		s.buffer = nil
		return TransitionEnter, nil
	case ActionUp:
		moved = target.MoveBy(-1)
	case ActionDown:
		moved = target.MoveBy(1)
	case ActionPageUp:
		moved = target.MoveBy(-PageSize)
	case ActionPageDown:
		moved = target.MoveBy(PageSize)
	case ActionTop:
		moved = target.MoveToTop()
	case ActionBottom:
		moved = target.MoveToBottom()
	}
	if moved {
		return TransitionMoved, nil
	}
	return TransitionNone, nil
}

func (s *Search) handleFiltering(in Input, target Navigable, compile Compiler) (Transition, error) {
	switch in.Action {
	case ActionCancel:
		s.reset()
		return TransitionCancel, nil
	case ActionConfirm:
		pattern, _ := s.Buffer()
		s.reset()
		if compile == nil {
			compile = CompileRegex
		}
		m, err := compile(pattern)
		if err != nil {
			return TransitionReject, err
		}
		target.SetFilter(m)
		return TransitionApply, nil
	case ActionRune:
		if !printable(in.Rune) {
			return TransitionNone, nil
		}
		s.buffer = append(s.buffer, in.Rune)
		return TransitionEdit, nil
	case ActionErase:
		if len(s.buffer) == 0 {
			return TransitionNone, nil
		}
		s.buffer = s.buffer[:len(s.buffer)-1]
		if len(s.buffer) == 0 {
			s.buffer = nil
		}
		return TransitionEdit, nil
	}
	return TransitionNone, nil
}

func (s *Search) reset() {
	s.mode = ModeBrowsing
	s.buffer = nil
}

func printable(r rune) bool {
	return r != utf8.RuneError && unicode.IsPrint(r)
}
