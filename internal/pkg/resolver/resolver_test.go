package resolver

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"switchmap/internal/config"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer 启动进程内 DNS 服务器，仅应答 192.0.2.1 的 PTR
func startServer(t *testing.T, queries *int32) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	server := &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
			atomic.AddInt32(queries, 1)
			m := new(dns.Msg)
			m.SetReply(req)
			q := req.Question[0]
			if q.Name == "1.2.0.192.in-addr.arpa." {
				m.Answer = append(m.Answer, &dns.PTR{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: 60},
					Ptr: "host1.example.org.",
				})
			} else {
				m.Rcode = dns.RcodeNameError
			}
			_ = w.WriteMsg(m)
		}),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = server.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = server.Shutdown() })

	return pc.LocalAddr().String()
}

func TestDNSResolver_LookupHostname(t *testing.T) {
	var queries int32
	addr := startServer(t, &queries)

	r, err := NewDNSResolver([]string{addr}, time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, "host1.example.org", r.LookupHostname(ctx, "192.0.2.1"))
	assert.Equal(t, "", r.LookupHostname(ctx, "192.0.2.2"))
	assert.Equal(t, "", r.LookupHostname(ctx, "not-an-ip"))

	// 命中缓存不再查询
	before := atomic.LoadInt32(&queries)
	assert.Equal(t, "host1.example.org", r.LookupHostname(ctx, "192.0.2.1"))
	assert.Equal(t, before, atomic.LoadInt32(&queries))
}

func TestDNSResolver_CacheExpires(t *testing.T) {
	var queries int32
	addr := startServer(t, &queries)

	r, err := NewDNSResolver([]string{addr}, time.Second)
	require.NoError(t, err)
	now := time.Now()
	r.now = func() time.Time { return now }

	r.LookupHostname(context.Background(), "192.0.2.1")
	now = now.Add(cacheTTL + time.Second)
	r.LookupHostname(context.Background(), "192.0.2.1")
	assert.Equal(t, int32(2), atomic.LoadInt32(&queries))
}

func TestDNSResolver_UnreachableServer(t *testing.T) {
	r, err := NewDNSResolver([]string{"127.0.0.1:1"}, 200*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "", r.LookupHostname(context.Background(), "192.0.2.1"))
}

func TestNew(t *testing.T) {
	r, err := New(&config.DNSConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, NoopResolver{}, r)
	assert.Equal(t, "", r.LookupHostname(context.Background(), "192.0.2.1"))

	r, err = New(&config.DNSConfig{Enabled: true, Servers: []string{"127.0.0.1"}})
	require.NoError(t, err)
	dr, ok := r.(*DNSResolver)
	require.True(t, ok)
	assert.Equal(t, []string{"127.0.0.1:53"}, dr.servers)
}
