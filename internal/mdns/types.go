package mdns

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"
)

// ServiceTypeEnumeration is the DNS-SD meta query that lists service types.
const ServiceTypeEnumeration = "_services._dns-sd._udp.local."

var (
	// ErrShutdown is returned by Browse and Shutdown once the daemon is closed.
	ErrShutdown = errors.New("mdns daemon is shut down")
	// ErrUnknownInterface is returned when the requested interface is unusable.
	ErrUnknownInterface = errors.New("unknown network interface")
)

// Event is one discovery notification. The concrete types are ServiceFound,
// ServiceResolved, ServiceRemoved, SearchStarted and SearchStopped.
type Event interface {
	event()
}

// BrowseFailed ends a source whose transport failed. No further events
// follow on its channel.
type BrowseFailed struct {
	Query string
	Err   error
}

// ServiceFound reports that FullName was discovered while browsing Type.
type ServiceFound struct {
	Type     string
	FullName string
}

// ServiceResolved carries a fully resolved instance.
type ServiceResolved struct {
	Info ServiceInfo
}

// ServiceRemoved reports that FullName disappeared from Type.
type ServiceRemoved struct {
	Type     string
	FullName string
}

// SearchStarted is informational.
type SearchStarted struct {
	Query string
}

// SearchStopped is informational.
type SearchStopped struct {
	Query string
}

func (ServiceFound) event()    {}
func (ServiceResolved) event() {}
func (ServiceRemoved) event()  {}
func (SearchStarted) event()   {}
func (SearchStopped) event()   {}
func (BrowseFailed) event()    {}

// ServiceInfo describes one resolved endpoint. HostTTL is the TTL of the SRV
// or address records and OtherTTL that of the TXT or PTR records. The Has
// flags report which of the record details were actually answered.
type ServiceInfo struct {
	Type       string
	FullName   string
	HostName   string
	Addresses  []netip.Addr
	Port       uint16
	HostTTL    uint32
	OtherTTL   uint32
	Priority   uint16
	Weight     uint16
	Properties map[string]string
	Interface  string
	SeenAt     time.Time

	HasSRV      bool
	HasHostTTL  bool
	HasOtherTTL bool
}

// AddressList renders the addresses separated by spaces.
func (s ServiceInfo) AddressList() string {
	parts := make([]string, len(s.Addresses))
	for i, addr := range s.Addresses {
		parts[i] = addr.String()
	}
	return strings.Join(parts, " ")
}

// PropertyList renders the TXT properties as sorted key=value pairs.
func (s ServiceInfo) PropertyList() string {
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		if v := s.Properties[k]; v != "" {
			parts[i] = fmt.Sprintf("%s=%s", k, v)
		} else {
			parts[i] = k
		}
	}
	return strings.Join(parts, ", ")
}

// Browser is the discovery collaborator consumed by the aggregator.
type Browser interface {
	// Browse starts discovery for query. The returned channel is closed when
	// browsing ends.
	Browse(query string) (<-chan Event, error)
	// Shutdown releases every discovery resource.
	Shutdown() error
}
