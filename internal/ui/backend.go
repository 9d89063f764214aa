package ui

import (
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg triggers a redraw so background updates show up without input.
type tickMsg time.Time

type backendDoneMsg struct{}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForBackendDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return backendDoneMsg{}
	}
}

func (m *Model) handleTickMsg(msg tea.Msg) tea.Cmd {
	if m.quitting {
		return nil
	}
	return tickCmd(m.refresh)
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.done = nil
	if m.quitting {
		return nil
	}
	m.quitting = true
	events.UI.Quit("backend stopped")
	return tea.Quit
}
