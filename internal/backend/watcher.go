package backend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/atomicstack/mdns-dashboard/internal/data/dispatcher"
	"github.com/atomicstack/mdns-dashboard/internal/logging/events"
	"github.com/atomicstack/mdns-dashboard/internal/mdns"
)

// ErrNotOpened is returned by Run when Open was never called.
var ErrNotOpened = errors.New("backend: watcher not opened")

type source struct {
	id     string
	events <-chan mdns.Event
}

// Watcher multiplexes every active discovery source into the dispatcher.
// The root source is opened first; each newly found category adds its own
// source while the watcher runs.
type Watcher struct {
	browser    mdns.Browser
	dispatcher *dispatcher.Dispatcher

	mu      sync.Mutex
	sources []source
	opened  bool
}

// NewWatcher creates a watcher that browses through b and folds events into d.
func NewWatcher(b mdns.Browser, d *dispatcher.Dispatcher) *Watcher {
	return &Watcher{browser: b, dispatcher: d}
}

// Open starts the root browse for the dispatcher's query. A failure here is
// a setup error.
func (w *Watcher) Open() error {
	query := w.dispatcher.Query()
	if err := w.add(query); err != nil {
		return err
	}
	w.mu.Lock()
	w.opened = true
	w.mu.Unlock()
	return nil
}

// Sources reports how many event sources are currently registered.
func (w *Watcher) Sources() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sources)
}

// Run waits on every registered source until ctx is cancelled. Cancellation
// is observed before each wait so shutdown wins over pending events. A
// browse that cannot start, or a source reporting a transport failure, ends
// the run with an error.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	opened := w.opened
	w.mu.Unlock()
	if !opened {
		return ErrNotOpened
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		snapshot := w.snapshot()
		cases := make([]reflect.SelectCase, 0, len(snapshot)+1)
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
		for _, src := range snapshot {
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(src.events)})
		}

		chosen, value, ok := reflect.Select(cases)
		if chosen == 0 {
			return nil
		}
		src := snapshot[chosen-1]
		if !ok {
			w.prune(src)
			events.Discovery.SourceClosed(src.id)
			continue
		}
		evt, _ := value.Interface().(mdns.Event)
		if evt == nil {
			continue
		}
		if failed, ok := evt.(mdns.BrowseFailed); ok {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("browse %s: %w", failed.Query, failed.Err)
		}
		res := w.dispatcher.Handle(evt)
		trace(evt, res)
		if res.Browse == "" {
			continue
		}
		if err := w.add(res.Browse); err != nil {
			return err
		}
	}
}

func (w *Watcher) add(query string) error {
	ch, err := w.browser.Browse(query)
	if err != nil {
		events.Discovery.BrowseError(query, err)
		return fmt.Errorf("browse %s: %w", query, err)
	}
	w.mu.Lock()
	replaced := false
	for i := range w.sources {
		if w.sources[i].id == query {
			w.sources[i].events = ch
			replaced = true
			break
		}
	}
	if !replaced {
		w.sources = append(w.sources, source{id: query, events: ch})
	}
	total := len(w.sources)
	w.mu.Unlock()
	events.Discovery.SourceAdded(query, total)
	return nil
}

func (w *Watcher) snapshot() []source {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]source, len(w.sources))
	copy(out, w.sources)
	return out
}

func (w *Watcher) prune(src source) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.sources {
		if w.sources[i].id == src.id && w.sources[i].events == src.events {
			w.sources = append(w.sources[:i], w.sources[i+1:]...)
			return
		}
	}
}

func trace(evt mdns.Event, res dispatcher.Result) {
	switch e := evt.(type) {
	case mdns.ServiceFound:
		if res.Ignored {
			events.Discovery.Ignored("found", e.Type, e.FullName)
			return
		}
		events.Discovery.Found(e.Type, e.FullName)
	case mdns.ServiceResolved:
		if res.Ignored {
			events.Discovery.Ignored("resolved", e.Info.Type, e.Info.HostName)
			return
		}
		events.Discovery.Resolved(e.Info.Type, e.Info.HostName)
	case mdns.ServiceRemoved:
		if res.Ignored {
			events.Discovery.Ignored("removed", e.Type, e.FullName)
			return
		}
		events.Discovery.Removed(e.Type, e.FullName)
	case mdns.SearchStarted:
		events.Discovery.SearchStarted(e.Query)
	case mdns.SearchStopped:
		events.Discovery.SearchStopped(e.Query)
	}
}
