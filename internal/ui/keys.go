package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Services key.Binding
	Details  key.Binding
	Filter   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Erase    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Services: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "services")),
		Details:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "instances")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "apply")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "exit search")),
		Erase:    key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "erase")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("C-q", "quit")),
	}
}

// ShortHelp lists the bindings shown under the panes while browsing.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Filter}
}

// FullHelp is part of help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Services, k.Details, k.Filter, k.Quit},
	}
}

// searchKeys is the key map in effect while a filter is being typed.
type searchKeys struct {
	keyMap
}

func (k searchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel, k.Erase}
}

func (k searchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// translate maps a key press to inputs of the search machine for the given
// mode. Printable keys only mean characters while filtering; a pasted run of
// runes becomes one input per rune.
func (k keyMap) translate(msg tea.KeyMsg, mode uistate.Mode) []uistate.Input {
	if mode == uistate.ModeFiltering {
		switch {
		case key.Matches(msg, k.Confirm):
			return single(uistate.ActionConfirm)
		case key.Matches(msg, k.Cancel):
			return single(uistate.ActionCancel)
		case key.Matches(msg, k.Erase) || msg.Type == tea.KeyCtrlH:
			return single(uistate.ActionErase)
		case msg.Type == tea.KeySpace:
			return []uistate.Input{{Action: uistate.ActionRune, Rune: ' '}}
		case msg.Type == tea.KeyRunes && !msg.Alt:
			out := make([]uistate.Input, 0, len(msg.Runes))
			for _, r := range msg.Runes {
				out = append(out, uistate.Input{Action: uistate.ActionRune, Rune: r})
			}
			return out
		}
		return nil
	}
	switch {
	case key.Matches(msg, k.Up):
		return single(uistate.ActionUp)
	case key.Matches(msg, k.Down):
		return single(uistate.ActionDown)
	case key.Matches(msg, k.PageUp):
		return single(uistate.ActionPageUp)
	case key.Matches(msg, k.PageDown):
		return single(uistate.ActionPageDown)
	case key.Matches(msg, k.Top):
		return single(uistate.ActionTop)
	case key.Matches(msg, k.Bottom):
		return single(uistate.ActionBottom)
	case key.Matches(msg, k.Filter):
		return single(uistate.ActionFilter)
	}
	return nil
}

func single(a uistate.Action) []uistate.Input {
	return []uistate.Input{{Action: a}}
}
