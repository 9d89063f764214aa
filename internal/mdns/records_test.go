package mdns

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func header(name string, rrtype uint16, ttl uint32) dns.RR_Header {
	return dns.RR_Header{Name: name, Rrtype: rrtype, Class: dns.ClassINET, Ttl: ttl}
}

func TestAbsorbRecordsFillsDetails(t *testing.T) {
	info := ServiceInfo{FullName: "Office Printer._ipp._tcp.local.", HostName: "printer.local."}
	absorbRecords(&info, []dns.RR{
		&dns.SRV{Hdr: header(`Office\ Printer._ipp._tcp.local.`, dns.TypeSRV, 120), Priority: 10, Weight: 20, Port: 631, Target: "printer.local."},
		&dns.TXT{Hdr: header(`Office\ Printer._ipp._tcp.local.`, dns.TypeTXT, 4500), Txt: []string{"rp=ipp/print"}},
		&dns.A{Hdr: header("PRINTER.local.", dns.TypeA, 60)},
	})
	require.True(t, info.HasSRV)
	require.Equal(t, uint16(10), info.Priority)
	require.Equal(t, uint16(20), info.Weight)
	require.True(t, info.HasHostTTL)
	require.Equal(t, uint32(120), info.HostTTL, "SRV TTL wins over the address TTL")
	require.True(t, info.HasOtherTTL)
	require.Equal(t, uint32(4500), info.OtherTTL)
	require.True(t, complete(info))
}

func TestAbsorbRecordsFallsBackToAddressAndPointer(t *testing.T) {
	info := ServiceInfo{FullName: "lp._ipp._tcp.local.", HostName: "printer.local."}
	absorbRecords(&info, []dns.RR{
		&dns.AAAA{Hdr: header("printer.local.", dns.TypeAAAA, 90)},
		&dns.PTR{Hdr: header("_ipp._tcp.local.", dns.TypePTR, 3600), Ptr: "lp._ipp._tcp.local."},
	})
	require.False(t, info.HasSRV)
	require.Zero(t, info.Priority)
	require.Equal(t, uint32(90), info.HostTTL)
	require.Equal(t, uint32(3600), info.OtherTTL)
	require.False(t, complete(info))
}

func TestAbsorbRecordsIgnoresOtherNames(t *testing.T) {
	info := ServiceInfo{FullName: "lp._ipp._tcp.local.", HostName: "printer.local."}
	absorbRecords(&info, []dns.RR{
		&dns.SRV{Hdr: header("other._ipp._tcp.local.", dns.TypeSRV, 120), Priority: 1},
		&dns.A{Hdr: header("laptop.local.", dns.TypeA, 120)},
	})
	require.False(t, info.HasSRV || info.HasHostTTL || info.HasOtherTTL)
}

func TestRecordQueryAsksForInstanceAndHost(t *testing.T) {
	msg := recordQuery(ServiceInfo{FullName: "lp._ipp._tcp.local.", HostName: "printer.local"})
	types := make([]uint16, len(msg.Question))
	for i, q := range msg.Question {
		types[i] = q.Qtype
	}
	require.Equal(t, []uint16{dns.TypeSRV, dns.TypeTXT, dns.TypeA, dns.TypeAAAA}, types)
	require.Equal(t, "printer.local.", msg.Question[2].Name)
	_, err := msg.Pack()
	require.NoError(t, err)
}
