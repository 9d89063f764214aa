package events

import "github.com/atomicstack/mdns-dashboard/internal/logging"

type DiscoveryTracer struct{}

var Discovery = DiscoveryTracer{}

func (DiscoveryTracer) Browse(query string) {
	logging.Trace("discovery.browse", map[string]interface{}{"query": query})
}

func (DiscoveryTracer) BrowseError(query string, err error) {
	logging.Trace("discovery.browse.error", map[string]interface{}{"query": query, "error": err.Error()})
}

func (DiscoveryTracer) Found(serviceType, fullName string) {
	logging.Trace("discovery.found", map[string]interface{}{"type": serviceType, "name": fullName})
}

func (DiscoveryTracer) Resolved(serviceType, host string) {
	logging.Trace("discovery.resolved", map[string]interface{}{"type": serviceType, "host": host})
}

func (DiscoveryTracer) Removed(serviceType, fullName string) {
	logging.Trace("discovery.removed", map[string]interface{}{"type": serviceType, "name": fullName})
}

func (DiscoveryTracer) Ignored(kind, serviceType, name string) {
	logging.Trace("discovery.ignored", map[string]interface{}{"kind": kind, "type": serviceType, "name": name})
}

func (DiscoveryTracer) SearchStarted(query string) {
	logging.Trace("discovery.search.started", map[string]interface{}{"query": query})
}

func (DiscoveryTracer) SearchStopped(query string) {
	logging.Trace("discovery.search.stopped", map[string]interface{}{"query": query})
}

func (DiscoveryTracer) SourceAdded(id string, total int) {
	logging.Trace("discovery.source.add", map[string]interface{}{"id": id, "sources": total})
}

func (DiscoveryTracer) SourceClosed(id string) {
	logging.Trace("discovery.source.closed", map[string]interface{}{"id": id})
}

func (DiscoveryTracer) RecordsError(name string, err error) {
	logging.Trace("discovery.records.error", map[string]interface{}{"name": name, "error": err.Error()})
}
