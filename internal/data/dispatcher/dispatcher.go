package dispatcher

import (
	"github.com/atomicstack/mdns-dashboard/internal/mdns"
	"github.com/atomicstack/mdns-dashboard/internal/state"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
)

// Result tells the caller what a handled event changed. Browse names a newly
// tracked category that needs its own event source.
type Result struct {
	Browse          string
	CategoryAdded   bool
	CategoryRemoved bool
	InstanceAdded   bool
	InstanceRemoved bool
	Ignored         bool
	Informational   bool
}

// Dispatcher folds discovery events into the shared stores. Each store lock is
// held only for a single mutation.
type Dispatcher struct {
	query      string
	categories *state.CategoryStore
	instances  *state.InstanceStore
}

func New(query string, c *state.CategoryStore, i *state.InstanceStore) *Dispatcher {
	return &Dispatcher{query: query, categories: c, instances: i}
}

// Query returns the root query categories are matched against.
func (d *Dispatcher) Query() string {
	return d.query
}

func (d *Dispatcher) Handle(evt mdns.Event) Result {
	var res Result
	switch e := evt.(type) {
	case mdns.ServiceFound:
		if e.Type != d.query {
			res.Ignored = true
			return res
		}
		if !d.categories.Insert(e.FullName) {
			res.Ignored = true
			return res
		}
		d.instances.Track(e.FullName)
		res.CategoryAdded = true
		res.Browse = e.FullName
	case mdns.ServiceResolved:
		res.Ignored = true
		d.instances.With(e.Info.Type, func(list *uistate.Collection[state.Instance]) {
			res.InstanceAdded = list.Insert(state.Instance{ServiceInfo: e.Info})
			res.Ignored = !res.InstanceAdded
		})
	case mdns.ServiceRemoved:
		if e.Type == d.query {
			removed := d.categories.Remove(e.FullName)
			dropped := d.instances.Drop(e.FullName)
			res.CategoryRemoved = removed || dropped
			res.Ignored = !res.CategoryRemoved
			return res
		}
		res.Ignored = true
		d.instances.With(e.Type, func(list *uistate.Collection[state.Instance]) {
			res.InstanceRemoved = list.RemoveFunc(func(inst state.Instance) bool {
				return inst.FullName == e.FullName || inst.HostName == e.FullName
			})
			res.Ignored = !res.InstanceRemoved
		})
	case mdns.SearchStarted, mdns.SearchStopped:
		res.Informational = true
	default:
		res.Ignored = true
	}
	return res
}
