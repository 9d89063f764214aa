package mdns

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/logging/events"
	"github.com/miekg/dns"
)

// recordQuerier asks the group for the SRV, TXT and address records of a
// resolved instance and reads the answers for a bounded window.
type recordQuerier struct {
	iface  *net.Interface
	window time.Duration
}

func (p *recordQuerier) query(ctx context.Context, info *ServiceInfo) {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithTimeout(ctx, p.window)
	defer cancel()

	conn, err := listenGroup(p.iface)
	if err != nil {
		events.Discovery.RecordsError(info.FullName, err)
		return
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		conn.Close()
	}()
	msgs := make(chan *dns.Msg, 8)
	go func() {
		defer wg.Done()
		if err := readMessages(ctx, conn, msgs); err != nil {
			events.Discovery.RecordsError(info.FullName, err)
		}
	}()

	if err := sendMessage(conn, recordQuery(*info)); err != nil {
		events.Discovery.RecordsError(info.FullName, err)
		return
	}
	for !complete(*info) {
		select {
		case <-ctx.Done():
			return
		case msg := <-msgs:
			absorbRecords(info, append(append([]dns.RR{}, msg.Answer...), msg.Extra...))
		}
	}
}

func recordQuery(info ServiceInfo) *dns.Msg {
	msg := new(dns.Msg)
	msg.Id = 0
	msg.RecursionDesired = false
	instance := dns.Fqdn(info.FullName)
	msg.Question = []dns.Question{
		{Name: instance, Qtype: dns.TypeSRV, Qclass: dns.ClassINET},
		{Name: instance, Qtype: dns.TypeTXT, Qclass: dns.ClassINET},
	}
	if info.HostName != "" {
		host := dns.Fqdn(info.HostName)
		msg.Question = append(msg.Question,
			dns.Question{Name: host, Qtype: dns.TypeA, Qclass: dns.ClassINET},
			dns.Question{Name: host, Qtype: dns.TypeAAAA, Qclass: dns.ClassINET},
		)
	}
	return msg
}

func complete(info ServiceInfo) bool {
	return info.HasSRV && info.HasHostTTL && info.HasOtherTTL
}

// absorbRecords copies the record details that belong to info. The SRV TTL
// wins over address TTLs for HostTTL.
func absorbRecords(info *ServiceInfo, records []dns.RR) {
	for _, rr := range records {
		switch r := rr.(type) {
		case *dns.SRV:
			if !sameName(r.Hdr.Name, info.FullName) {
				continue
			}
			info.Priority, info.Weight = r.Priority, r.Weight
			info.HostTTL, info.HasHostTTL = r.Hdr.Ttl, true
			info.HasSRV = true
		case *dns.TXT:
			if sameName(r.Hdr.Name, info.FullName) {
				info.OtherTTL, info.HasOtherTTL = r.Hdr.Ttl, true
			}
		case *dns.PTR:
			if sameName(r.Ptr, info.FullName) && !info.HasOtherTTL {
				info.OtherTTL, info.HasOtherTTL = r.Hdr.Ttl, true
			}
		case *dns.A:
			if sameName(r.Hdr.Name, info.HostName) && !info.HasSRV {
				info.HostTTL, info.HasHostTTL = r.Hdr.Ttl, true
			}
		case *dns.AAAA:
			if sameName(r.Hdr.Name, info.HostName) && !info.HasSRV {
				info.HostTTL, info.HasHostTTL = r.Hdr.Ttl, true
			}
		}
	}
}

// sameName compares domain names case-insensitively, ignoring the escapes
// miekg/dns adds to labels with spaces or punctuation.
func sameName(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(strings.ReplaceAll(dns.Fqdn(a), `\`, ""), strings.ReplaceAll(dns.Fqdn(b), `\`, ""))
}
