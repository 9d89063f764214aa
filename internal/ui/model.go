package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/logging/events"
	"github.com/atomicstack/mdns-dashboard/internal/state"
	"github.com/atomicstack/mdns-dashboard/internal/theme"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultRefresh is the redraw interval used when Options.Refresh is unset.
const DefaultRefresh = 250 * time.Millisecond

const description = "mDNS dashboard"

var styles = theme.Default()

// Tab identifies the pane that receives navigation keys.
type Tab int

const (
	TabServices Tab = iota
	TabInstances
)

func (t Tab) String() string {
	if t == TabInstances {
		return "instances"
	}
	return "services"
}

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	Categories *state.CategoryStore
	Instances  *state.InstanceStore
	Compile    uistate.Compiler
	Refresh    time.Duration
	Version    string
	// Done is closed when the background aggregator stops.
	Done <-chan struct{}
	// Width and Height pin the viewport instead of following the terminal.
	Width  int
	Height int
	Now    func() time.Time
}

// Model implements the Bubble Tea model for the dashboard. It only changes the
// selection and filter state of the shared collections; discovery data is
// written by the aggregator.
type Model struct {
	categories *state.CategoryStore
	instances  *state.InstanceStore
	compile    uistate.Compiler

	tab     Tab
	keys    keyMap
	help    help.Model
	refresh time.Duration
	version string
	done    <-chan struct{}
	now     func() time.Time

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool

	searchCursor      cursor.Model
	searchCursorDirty bool
	quitting          bool

	handlers map[reflect.Type]msgHandler
}

// NewModel builds the controller over the shared stores.
func NewModel(opts Options) *Model {
	if opts.Categories == nil {
		opts.Categories = state.NewCategoryStore()
	}
	if opts.Instances == nil {
		opts.Instances = state.NewInstanceStore()
	}
	if opts.Compile == nil {
		opts.Compile = uistate.CompileRegex
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Model{
		categories: opts.Categories,
		instances:  opts.Instances,
		compile:    opts.Compile,
		tab:        TabServices,
		keys:       defaultKeyMap(),
		help:       help.New(),
		refresh:    opts.Refresh,
		version:    opts.Version,
		done:       opts.Done,
		now:        opts.Now,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.SearchText != nil {
		c.TextStyle = styles.SearchText.Copy()
	}
	c.SetChar(" ")
	m.searchCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refresh)}
	if m.done != nil {
		cmds = append(cmds, waitForBackendDone(m.done))
	}
	if cmd := m.searchCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 3)
	if cmd := m.updateSearchCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

// Tab returns the focused pane.
func (m *Model) Tab() Tab {
	return m.tab
}

// Quitting reports whether an exit key was pressed.
func (m *Model) Quitting() bool {
	return m.quitting
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(tickMsg{}):           m.handleTickMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.searchCursorDirty {
		m.searchCursorDirty = false
		m.searchCursor.Blink = false
		if cmd := m.searchCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) selectTab(tab Tab) {
	if m.tab == tab {
		return
	}
	m.tab = tab
	events.UI.Tab(tab.String())
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.help.Width = m.width
	return nil
}
