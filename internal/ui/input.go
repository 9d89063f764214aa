package ui

import (
	"github.com/atomicstack/mdns-dashboard/internal/logging/events"
	"github.com/atomicstack/mdns-dashboard/internal/state"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// outcome records one transition of a collection so it can be reported once
// the store lock is released.
type outcome struct {
	transition uistate.Transition
	err        error
	buffer     string
	pattern    string
	cursor     int
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		events.UI.Quit(keyMsg.String())
		return tea.Quit
	case key.Matches(keyMsg, m.keys.Services):
		m.selectTab(TabServices)
		return nil
	case key.Matches(keyMsg, m.keys.Details):
		m.selectTab(TabInstances)
		return nil
	}
	return m.delegate(keyMsg)
}

// delegate hands keyMsg to the collection shown by the focused pane. On the
// instances pane that is the collection of the selected category; with no
// selection the key is dropped.
func (m *Model) delegate(msg tea.KeyMsg) tea.Cmd {
	var results []outcome
	switch m.tab {
	case TabServices:
		m.categories.With(func(list *uistate.Collection[state.Category]) {
			results = apply(list, m.keys, msg, m.compile)
		})
	case TabInstances:
		category, ok := m.categories.Selected()
		if !ok {
			return nil
		}
		m.instances.With(category, func(list *uistate.Collection[state.Instance]) {
			results = apply(list, m.keys, msg, m.compile)
		})
	}
	return m.report(results)
}

func apply[T uistate.Entry](list *uistate.Collection[T], keys keyMap, msg tea.KeyMsg, compile uistate.Compiler) []outcome {
	inputs := keys.translate(msg, list.Mode())
	if len(inputs) == 0 {
		return nil
	}
	out := make([]outcome, 0, len(inputs))
	for _, in := range inputs {
		tr, err := list.HandleInput(in, compile)
		if tr == uistate.TransitionNone {
			continue
		}
		o := outcome{transition: tr, err: err, cursor: -1}
		o.buffer, _ = list.Buffer()
		if f := list.Filter(); f != nil {
			o.pattern = f.String()
		}
		if c, ok := list.Cursor(); ok {
			o.cursor = c
		}
		out = append(out, o)
	}
	return out
}

func (m *Model) report(results []outcome) tea.Cmd {
	pane := m.tab.String()
	var cmd tea.Cmd
	for _, o := range results {
		switch o.transition {
		case uistate.TransitionMoved:
			events.UI.Cursor(pane, o.cursor)
		case uistate.TransitionEnter:
			events.Filter.Enter(pane)
			m.searchCursorDirty = true
			cmd = m.searchCursor.Focus()
		case uistate.TransitionEdit:
			events.Filter.Edit(pane, o.buffer)
			m.searchCursorDirty = true
		case uistate.TransitionCancel:
			events.Filter.Cancel(pane)
		case uistate.TransitionApply:
			events.Filter.Apply(pane, o.pattern)
		case uistate.TransitionReject:
			if o.err != nil {
				events.Filter.Reject(pane, o.err)
			}
		}
	}
	return cmd
}

func (m *Model) updateSearchCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.searchCursor, cmd = m.searchCursor.Update(msg)
	return cmd
}

// searchPrompt renders the buffer of a collection being filtered with the
// caret after the last rune.
func (m *Model) searchPrompt(buffer string) string {
	prompt := " /"
	if styles.SearchHint != nil {
		prompt = styles.SearchHint.Render(prompt)
	}
	text := buffer
	if styles.SearchText != nil && text != "" {
		text = styles.SearchText.Render(text)
	}
	return prompt + text + m.renderSearchCursor(" ")
}

func (m *Model) renderSearchCursor(char string) string {
	m.searchCursor.SetChar(char)
	base := m.searchCursor.TextStyle.Copy().Inline(true)
	if m.searchCursor.Blink {
		return base.Render(char)
	}
	if styles.Cursor != nil {
		return base.Inherit(styles.Cursor.Copy().Inline(true)).Render(char)
	}
	return base.Reverse(true).Render(char)
}
