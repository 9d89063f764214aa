package mdns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

var mdnsGroupV4 = &net.UDPAddr{IP: net.IPv4(224, 0, 0, 251), Port: 5353}

// enumerator answers the DNS-SD meta query by multicasting PTR questions and
// tracking the service types named in the answers until their TTL lapses.
type enumerator struct {
	interval time.Duration
	now      func() time.Time

	expires map[string]time.Time
}

func listenGroup(iface *net.Interface) (*net.UDPConn, error) {
	conn, err := net.ListenMulticastUDP("udp4", iface, mdnsGroupV4)
	if err != nil {
		return nil, fmt.Errorf("listen on mdns group: %w", err)
	}
	return conn, nil
}

// run serves the meta query on conn, which it closes when done.
func (e *enumerator) run(ctx context.Context, conn *net.UDPConn, emit func(Event) bool) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(2)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		conn.Close()
	}()
	msgs := make(chan *dns.Msg, 8)
	readErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		readErr <- readMessages(ctx, conn, msgs)
	}()

	query := enumerationQuery()
	if err := sendMessage(conn, query); err != nil {
		return err
	}
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case msg := <-msgs:
			records := append(append([]dns.RR{}, msg.Answer...), msg.Extra...)
			if !e.absorb(records, emit) {
				return nil
			}
		case <-ticker.C:
			if !e.expire(emit) {
				return nil
			}
			if err := sendMessage(conn, query); err != nil {
				return err
			}
		}
	}
}

// absorb records service types from PTR answers, emitting ServiceFound for new
// types and ServiceRemoved for goodbye packets. It returns false once emit
// stops accepting events.
func (e *enumerator) absorb(records []dns.RR, emit func(Event) bool) bool {
	if e.expires == nil {
		e.expires = make(map[string]time.Time)
	}
	now := e.now()
	for _, rr := range records {
		ptr, ok := rr.(*dns.PTR)
		if !ok || !strings.EqualFold(ptr.Hdr.Name, ServiceTypeEnumeration) {
			continue
		}
		name := ptr.Ptr
		_, known := e.expires[name]
		if ptr.Hdr.Ttl == 0 {
			if known {
				delete(e.expires, name)
				if !emit(ServiceRemoved{Type: ServiceTypeEnumeration, FullName: name}) {
					return false
				}
			}
			continue
		}
		e.expires[name] = now.Add(time.Duration(ptr.Hdr.Ttl) * time.Second)
		if !known {
			if !emit(ServiceFound{Type: ServiceTypeEnumeration, FullName: name}) {
				return false
			}
		}
	}
	return true
}

// expire drops service types whose TTL has lapsed.
func (e *enumerator) expire(emit func(Event) bool) bool {
	now := e.now()
	for name, at := range e.expires {
		if now.Before(at) {
			continue
		}
		delete(e.expires, name)
		if !emit(ServiceRemoved{Type: ServiceTypeEnumeration, FullName: name}) {
			return false
		}
	}
	return true
}

func enumerationQuery() *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(ServiceTypeEnumeration, dns.TypePTR)
	msg.Id = 0
	msg.RecursionDesired = false
	return msg
}

func sendMessage(conn *net.UDPConn, msg *dns.Msg) error {
	buf, err := msg.Pack()
	if err != nil {
		return fmt.Errorf("pack mdns query: %w", err)
	}
	if _, err := conn.WriteToUDP(buf, mdnsGroupV4); err != nil {
		return fmt.Errorf("send mdns query: %w", err)
	}
	return nil
}

// packetReader is the receiving half of a UDP socket.
type packetReader interface {
	ReadFromUDP(b []byte) (int, *net.UDPAddr, error)
}

var (
	maxReadFailures = 5
	readBackoff     = 50 * time.Millisecond
)

// readMessages forwards DNS responses read from conn until ctx ends or the
// socket closes, both of which return nil. Read errors back off linearly and
// end the read with the last error once maxReadFailures happen in a row.
func readMessages(ctx context.Context, conn packetReader, out chan<- *dns.Msg) error {
	buf := make([]byte, 9000)
	failures := 0
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			failures++
			if failures >= maxReadFailures {
				return fmt.Errorf("read mdns socket: %w", err)
			}
			timer := time.NewTimer(time.Duration(failures) * readBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			continue
		}
		failures = 0
		msg := new(dns.Msg)
		if err := msg.Unpack(buf[:n]); err != nil || !msg.Response {
			continue
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}
