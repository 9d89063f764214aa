package backend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/data/dispatcher"
	"github.com/atomicstack/mdns-dashboard/internal/mdns"
	"github.com/atomicstack/mdns-dashboard/internal/state"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBrowser struct {
	mu       sync.Mutex
	channels map[string]chan mdns.Event
	queries  []string
	fail     map[string]error
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{channels: map[string]chan mdns.Event{}, fail: map[string]error{}}
}

func (f *fakeBrowser) Browse(query string) (<-chan mdns.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err := f.fail[query]; err != nil {
		return nil, err
	}
	ch := make(chan mdns.Event, 8)
	f.channels[query] = ch
	return ch, nil
}

func (f *fakeBrowser) Shutdown() error { return nil }

func (f *fakeBrowser) channel(t *testing.T, query string) chan mdns.Event {
	t.Helper()
	var ch chan mdns.Event
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		ch = f.channels[query]
		return ch != nil
	}, 2*time.Second, 5*time.Millisecond, "no browse for %s", query)
	return ch
}

func (f *fakeBrowser) browsed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fixture struct {
	browser    *fakeBrowser
	categories *state.CategoryStore
	instances  *state.InstanceStore
	watcher    *Watcher
}

func newFixture(t *testing.T, query string) *fixture {
	t.Helper()
	f := &fixture{
		browser:    newFakeBrowser(),
		categories: state.NewCategoryStore(),
		instances:  state.NewInstanceStore(),
	}
	f.watcher = NewWatcher(f.browser, dispatcher.New(query, f.categories, f.instances))
	return f
}

func (f *fixture) start(t *testing.T) (context.CancelFunc, <-chan error) {
	t.Helper()
	require.NoError(t, f.watcher.Open())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.watcher.Run(ctx) }()
	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
		return nil
	}
}

func TestWatcherFoldsRootEvents(t *testing.T) {
	f := newFixture(t, "_http")
	cancel, done := f.start(t)
	root := f.browser.channel(t, "_http")

	root <- mdns.ServiceFound{Type: "_http", FullName: "host-a"}
	root <- mdns.ServiceFound{Type: "_http", FullName: "host-b"}
	root <- mdns.ServiceRemoved{Type: "_http", FullName: "host-a"}

	require.Eventually(t, func() bool {
		names := f.categories.Names()
		return len(names) == 1 && names[0] == "host-b"
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"host-b"}, f.instances.Categories())

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestWatcherBrowsesNewCategories(t *testing.T) {
	f := newFixture(t, mdns.ServiceTypeEnumeration)
	cancel, done := f.start(t)
	root := f.browser.channel(t, mdns.ServiceTypeEnumeration)

	root <- mdns.ServiceFound{Type: mdns.ServiceTypeEnumeration, FullName: "_ipp._tcp.local."}
	ipp := f.browser.channel(t, "_ipp._tcp.local.")
	ipp <- mdns.SearchStarted{Query: "_ipp._tcp.local."}
	ipp <- mdns.ServiceResolved{Info: mdns.ServiceInfo{Type: "_ipp._tcp.local.", FullName: "a._ipp._tcp.local.", HostName: "a.local."}}
	ipp <- mdns.ServiceResolved{Info: mdns.ServiceInfo{Type: "_ipp._tcp.local.", FullName: "b._ipp._tcp.local.", HostName: "b.local."}}
	ipp <- mdns.ServiceRemoved{Type: "_ipp._tcp.local.", FullName: "a._ipp._tcp.local."}

	hosts := func() []string {
		var out []string
		f.instances.With("_ipp._tcp.local.", func(list *uistate.Collection[state.Instance]) {
			for _, inst := range list.Items() {
				out = append(out, inst.HostName)
			}
		})
		return out
	}
	require.Eventually(t, func() bool {
		got := hosts()
		return len(got) == 1 && got[0] == "b.local."
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 2, f.watcher.Sources())

	cancel()
	require.NoError(t, waitDone(t, done))
	require.Equal(t, []string{mdns.ServiceTypeEnumeration, "_ipp._tcp.local."}, f.browser.browsed())
}

func TestWatcherPrunesClosedSources(t *testing.T) {
	f := newFixture(t, mdns.ServiceTypeEnumeration)
	cancel, done := f.start(t)
	root := f.browser.channel(t, mdns.ServiceTypeEnumeration)
	root <- mdns.ServiceFound{Type: mdns.ServiceTypeEnumeration, FullName: "_ssh._tcp.local."}
	ssh := f.browser.channel(t, "_ssh._tcp.local.")
	require.Eventually(t, func() bool { return f.watcher.Sources() == 2 }, 2*time.Second, 5*time.Millisecond)

	close(ssh)
	require.Eventually(t, func() bool { return f.watcher.Sources() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestWatcherStopsPromptlyWithManySources(t *testing.T) {
	f := newFixture(t, mdns.ServiceTypeEnumeration)
	cancel, done := f.start(t)
	root := f.browser.channel(t, mdns.ServiceTypeEnumeration)
	root <- mdns.ServiceFound{Type: mdns.ServiceTypeEnumeration, FullName: "_a._tcp.local."}
	root <- mdns.ServiceFound{Type: mdns.ServiceTypeEnumeration, FullName: "_b._tcp.local."}
	require.Eventually(t, func() bool { return f.watcher.Sources() == 3 }, 2*time.Second, 5*time.Millisecond)

	start := time.Now()
	cancel()
	require.NoError(t, waitDone(t, done))
	require.Less(t, time.Since(start), time.Second)
}

func TestWatcherBrowseFailureIsFatal(t *testing.T) {
	f := newFixture(t, mdns.ServiceTypeEnumeration)
	boom := errors.New("socket closed")
	f.browser.fail["_bad._tcp.local."] = boom
	cancel, done := f.start(t)
	defer cancel()

	root := f.browser.channel(t, mdns.ServiceTypeEnumeration)
	root <- mdns.ServiceFound{Type: mdns.ServiceTypeEnumeration, FullName: "_bad._tcp.local."}
	err := waitDone(t, done)
	require.ErrorIs(t, err, boom)
}

func TestWatcherOpenFailure(t *testing.T) {
	f := newFixture(t, mdns.ServiceTypeEnumeration)
	boom := errors.New("no multicast")
	f.browser.fail[mdns.ServiceTypeEnumeration] = boom
	require.ErrorIs(t, f.watcher.Open(), boom)
	require.ErrorIs(t, f.watcher.Run(context.Background()), ErrNotOpened)
}

func TestWatcherRootTransportFailureIsFatal(t *testing.T) {
	f := newFixture(t, mdns.ServiceTypeEnumeration)
	cancel, done := f.start(t)
	defer cancel()

	boom := errors.New("bind: permission denied")
	root := f.browser.channel(t, mdns.ServiceTypeEnumeration)
	root <- mdns.SearchStarted{Query: mdns.ServiceTypeEnumeration}
	root <- mdns.BrowseFailed{Query: mdns.ServiceTypeEnumeration, Err: boom}
	close(root)

	err := waitDone(t, done)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), mdns.ServiceTypeEnumeration)
}

func TestWatcherCategoryTransportFailureIsFatal(t *testing.T) {
	f := newFixture(t, mdns.ServiceTypeEnumeration)
	cancel, done := f.start(t)
	defer cancel()

	root := f.browser.channel(t, mdns.ServiceTypeEnumeration)
	root <- mdns.ServiceFound{Type: mdns.ServiceTypeEnumeration, FullName: "_ipp._tcp.local."}
	boom := errors.New("lookup failed")
	f.browser.channel(t, "_ipp._tcp.local.") <- mdns.BrowseFailed{Query: "_ipp._tcp.local.", Err: boom}

	require.ErrorIs(t, waitDone(t, done), boom)
}

func TestWatcherIgnoresFailureAfterShutdown(t *testing.T) {
	f := newFixture(t, mdns.ServiceTypeEnumeration)
	require.NoError(t, f.watcher.Open())
	root := f.browser.channel(t, mdns.ServiceTypeEnumeration)
	root <- mdns.BrowseFailed{Query: mdns.ServiceTypeEnumeration, Err: errors.New("closing")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.watcher.Run(ctx))
}
