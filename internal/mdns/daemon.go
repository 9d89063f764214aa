package mdns

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/logging/events"
	"github.com/brutella/dnssd"
)

const (
	eventBuffer      = 32
	lookupSpacing    = 100 * time.Millisecond
	enumerationEvery = 10 * time.Second
	recordWindow     = time.Second
)

type entryFunc func(dnssd.BrowseEntry)

type lookupFunc func(ctx context.Context, service string, add, rmv entryFunc) error

// enumerateFunc runs the meta query until ctx ends.
type enumerateFunc func(ctx context.Context, emit func(Event) bool) error

// enumeration is a bound enumeration socket and the loop that serves it.
type enumeration struct {
	serve enumerateFunc
	close func() error
}

type openFunc func() (*enumeration, error)

// recordsFunc fills the SRV, TXT and address record details of info.
type recordsFunc func(ctx context.Context, info *ServiceInfo)

// browseRun is one live browse. A later Browse of the same query cancels it.
type browseRun struct {
	cancel context.CancelFunc
}

// Daemon browses mDNS on the local network. Concrete service types are
// browsed with brutella/dnssd; the DNS-SD meta query is answered by a small
// PTR enumerator.
type Daemon struct {
	iface *net.Interface

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	runs   map[string]*browseRun
	wg     sync.WaitGroup

	pace            *throttle
	lookup          lookupFunc
	openEnumeration openFunc
	records         recordsFunc
	now             func() time.Time
}

// NewDaemon prepares browsing on the named interface, or on every interface
// when name is empty.
func NewDaemon(name string) (*Daemon, error) {
	var iface *net.Interface
	if strings.TrimSpace(name) != "" {
		found, err := net.InterfaceByName(name)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrUnknownInterface, name, err)
		}
		if found.Flags&net.FlagUp == 0 || found.Flags&net.FlagMulticast == 0 {
			return nil, fmt.Errorf("%w %q: interface is down or lacks multicast", ErrUnknownInterface, name)
		}
		iface = found
	}
	d := newDaemon(iface)
	d.openEnumeration = func() (*enumeration, error) {
		e := &enumerator{interval: enumerationEvery, now: d.now}
		conn, err := listenGroup(iface)
		if err != nil {
			return nil, err
		}
		return &enumeration{
			serve: func(ctx context.Context, emit func(Event) bool) error {
				return e.run(ctx, conn, emit)
			},
			close: conn.Close,
		}, nil
	}
	d.records = (&recordQuerier{iface: iface, window: recordWindow}).query
	return d, nil
}

func newDaemon(iface *net.Interface) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		iface:  iface,
		ctx:    ctx,
		cancel: cancel,
		runs:   make(map[string]*browseRun),
		pace:   newThrottle(lookupSpacing),
		lookup: func(ctx context.Context, service string, add, rmv entryFunc) error {
			return dnssd.LookupType(ctx, service,
				func(e dnssd.BrowseEntry) { add(e) },
				func(e dnssd.BrowseEntry) { rmv(e) },
			)
		},
		now: time.Now,
	}
}

// Browse starts browsing query and streams its events until Shutdown. The
// enumeration socket is bound before Browse returns, so a transport that
// cannot be opened fails here. Browsing a query again cancels its previous
// browse, whose channel is then closed.
func (d *Daemon) Browse(query string) (<-chan Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrShutdown
	}
	var enumerate *enumeration
	if strings.EqualFold(query, ServiceTypeEnumeration) && d.openEnumeration != nil {
		opened, err := d.openEnumeration()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", query, err)
		}
		enumerate = opened
	}
	if prev, ok := d.runs[query]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(d.ctx)
	r := &browseRun{cancel: cancel}
	d.runs[query] = r

	out := make(chan Event, eventBuffer)
	d.wg.Add(1)
	go d.browse(ctx, r, query, enumerate, out)
	return out, nil
}

// Shutdown stops every browse and waits for them to finish.
func (d *Daemon) Shutdown() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrShutdown
	}
	d.closed = true
	d.mu.Unlock()
	d.cancel()
	d.wg.Wait()
	return nil
}

// live reports how many browses are still running.
func (d *Daemon) live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.runs)
}

func (d *Daemon) browse(ctx context.Context, r *browseRun, query string, enumerate *enumeration, out chan<- Event) {
	defer d.wg.Done()
	defer d.finish(query, r)
	defer close(out)
	var pending sync.WaitGroup
	defer pending.Wait()
	if enumerate != nil {
		defer enumerate.close()
	}

	emit := func(evt Event) bool {
		select {
		case <-ctx.Done():
			return false
		case out <- evt:
			return true
		}
	}

	if enumerate == nil && !d.pace.wait(ctx) {
		return
	}
	events.Discovery.Browse(query)
	if !emit(SearchStarted{Query: query}) {
		return
	}

	var err error
	if enumerate != nil {
		err = enumerate.serve(ctx, emit)
	} else {
		seen := newGenerations()
		err = d.lookup(ctx, query, d.onAdd(ctx, query, seen, &pending, emit), d.onRemove(query, seen, emit))
	}
	if err != nil && ctx.Err() == nil {
		events.Discovery.BrowseError(query, err)
		pending.Wait()
		emit(BrowseFailed{Query: query, Err: err})
		return
	}

	// The browse may already be cancelled, in which case nobody is reading.
	pending.Wait()
	select {
	case out <- SearchStopped{Query: query}:
	default:
	}
}

func (d *Daemon) finish(query string, r *browseRun) {
	r.cancel()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.runs[query] == r {
		delete(d.runs, query)
	}
}

// onAdd reports the entry as found right away and as resolved once its
// record details arrive. A removal in between drops the resolve.
func (d *Daemon) onAdd(ctx context.Context, query string, seen *generations, pending *sync.WaitGroup, emit func(Event) bool) entryFunc {
	return func(entry dnssd.BrowseEntry) {
		if !d.acceptInterface(entry.IfaceName) {
			return
		}
		info := infoFromEntry(query, entry, d.now())
		if !emit(ServiceFound{Type: query, FullName: info.FullName}) {
			return
		}
		gen := seen.bump(info.FullName, nil)
		pending.Add(1)
		go func() {
			defer pending.Done()
			if d.records != nil {
				d.records(ctx, &info)
			}
			seen.ifCurrent(info.FullName, gen, func() {
				emit(ServiceResolved{Info: info})
			})
		}()
	}
}

func (d *Daemon) onRemove(query string, seen *generations, emit func(Event) bool) entryFunc {
	return func(entry dnssd.BrowseEntry) {
		if !d.acceptInterface(entry.IfaceName) {
			return
		}
		name := instanceName(entry)
		seen.bump(name, func() {
			emit(ServiceRemoved{Type: query, FullName: name})
		})
	}
}

func (d *Daemon) acceptInterface(name string) bool {
	return d.iface == nil || name == "" || name == d.iface.Name
}

// generations counts add and remove callbacks per instance name so a resolve
// that finishes after a removal is dropped.
type generations struct {
	mu sync.Mutex
	n  map[string]int
}

func newGenerations() *generations {
	return &generations{n: make(map[string]int)}
}

// bump advances name and runs fn, if any, before another resolve of name can
// be emitted.
func (g *generations) bump(name string, fn func()) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n[name]++
	if fn != nil {
		fn()
	}
	return g.n[name]
}

// ifCurrent runs fn only while name is still at gen.
func (g *generations) ifCurrent(name string, gen int, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.n[name] == gen {
		fn()
	}
}

func instanceName(entry dnssd.BrowseEntry) string {
	return fmt.Sprintf("%s.%s.%s.", entry.Name, strings.Trim(entry.Type, "."), strings.Trim(entry.Domain, "."))
}

func infoFromEntry(query string, entry dnssd.BrowseEntry, seen time.Time) ServiceInfo {
	addrs := make([]netip.Addr, 0, len(entry.IPs))
	for _, ip := range entry.IPs {
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}
	props := make(map[string]string, len(entry.Text))
	for k, v := range entry.Text {
		props[k] = v
	}
	port := uint16(0)
	if entry.Port > 0 && entry.Port <= 65535 {
		port = uint16(entry.Port)
	}
	return ServiceInfo{
		Type:       query,
		FullName:   instanceName(entry),
		HostName:   entry.Host,
		Addresses:  addrs,
		Port:       port,
		Properties: props,
		Interface:  entry.IfaceName,
		SeenAt:     seen,
	}
}
