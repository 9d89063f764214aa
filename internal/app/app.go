package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/backend"
	"github.com/atomicstack/mdns-dashboard/internal/data/dispatcher"
	"github.com/atomicstack/mdns-dashboard/internal/logging/events"
	"github.com/atomicstack/mdns-dashboard/internal/mdns"
	"github.com/atomicstack/mdns-dashboard/internal/state"
	"github.com/atomicstack/mdns-dashboard/internal/ui"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// Config describes user-provided application options.
type Config struct {
	Query     string
	Interface string
	MatchMode uistate.MatchMode
	Refresh   time.Duration
	Version   string
	Width     int
	Height    int
}

type program interface {
	Run() (tea.Model, error)
}

type programFactory func(tea.Model) program

// Run bootstraps discovery and executes the Bubble Tea program. It returns
// once the UI has exited and the background aggregator has been joined.
func Run(cfg Config) error {
	daemon, err := mdns.NewDaemon(cfg.Interface)
	if err != nil {
		return fmt.Errorf("start discovery: %w", err)
	}
	return run(cfg, daemon, func(m tea.Model) program {
		return tea.NewProgram(m, tea.WithAltScreen())
	})
}

func run(cfg Config, browser mdns.Browser, newProgram programFactory) error {
	query := cfg.Query
	if query == "" {
		query = mdns.ServiceTypeEnumeration
	}
	categories := state.NewCategoryStore()
	instances := state.NewInstanceStore()
	watcher := backend.NewWatcher(browser, dispatcher.New(query, categories, instances))
	if err := watcher.Open(); err != nil {
		return errors.Join(fmt.Errorf("open discovery: %w", err), browser.Shutdown())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	group.Go(func() error {
		defer close(done)
		return watcher.Run(groupCtx)
	})

	model := ui.NewModel(ui.Options{
		Categories: categories,
		Instances:  instances,
		Compile:    uistate.NewCompiler(cfg.MatchMode),
		Refresh:    cfg.Refresh,
		Version:    cfg.Version,
		Done:       done,
		Width:      cfg.Width,
		Height:     cfg.Height,
	})
	_, uiErr := newProgram(model).Run()
	if errors.Is(uiErr, tea.ErrProgramKilled) {
		uiErr = nil
	}

	cancel()
	bgErr := group.Wait()
	if bgErr != nil {
		bgErr = fmt.Errorf("discovery: %w", bgErr)
	}
	shutdownErr := browser.Shutdown()
	if shutdownErr != nil {
		shutdownErr = fmt.Errorf("shutdown discovery: %w", shutdownErr)
	}
	err := errors.Join(uiErr, bgErr, shutdownErr)
	events.App.Stop(err)
	return err
}
