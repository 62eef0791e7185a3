// 反向DNS解析
// 解析失败一律返回空主机名，不向调用方报告错误
package resolver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"switchmap/internal/config"
	"switchmap/internal/pkg/logger"

	"github.com/miekg/dns"
)

// cacheTTL 解析结果缓存时间 (守护进程下跨多次入库复用)
const cacheTTL = 10 * time.Minute

// Resolver 地址到主机名的解析
type Resolver interface {
	LookupHostname(ctx context.Context, address string) string
}

// NoopResolver 未开启解析时使用，始终返回空
type NoopResolver struct{}

// LookupHostname 始终返回空主机名
func (NoopResolver) LookupHostname(context.Context, string) string {
	return ""
}

// New 根据配置创建解析器
func New(cfg *config.DNSConfig) (Resolver, error) {
	if cfg == nil || !cfg.Enabled {
		return NoopResolver{}, nil
	}
	return NewDNSResolver(cfg.Servers, cfg.Timeout)
}

type cacheEntry struct {
	hostname string
	expires  time.Time
}

// DNSResolver 基于 PTR 查询的解析器
type DNSResolver struct {
	client  *dns.Client
	servers []string
	cache   sync.Map
	now     func() time.Time
}

// NewDNSResolver 创建解析器，servers 为空时读取 /etc/resolv.conf
func NewDNSResolver(servers []string, timeout time.Duration) (*DNSResolver, error) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if len(servers) == 0 {
		cc, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("failed to read resolv.conf: %w", err)
		}
		for _, s := range cc.Servers {
			servers = append(servers, net.JoinHostPort(s, cc.Port))
		}
	}

	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		normalized = append(normalized, s)
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("no dns servers configured")
	}

	return &DNSResolver{
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		servers: normalized,
		now:     time.Now,
	}, nil
}

// LookupHostname 查询地址的 PTR 记录，返回去掉末尾点号的主机名
func (r *DNSResolver) LookupHostname(ctx context.Context, address string) string {
	now := r.now()
	if v, ok := r.cache.Load(address); ok {
		entry := v.(cacheEntry)
		if now.Before(entry.expires) {
			return entry.hostname
		}
	}

	hostname := r.lookup(ctx, address)
	r.cache.Store(address, cacheEntry{hostname: hostname, expires: now.Add(cacheTTL)})
	return hostname
}

func (r *DNSResolver) lookup(ctx context.Context, address string) string {
	arpa, err := dns.ReverseAddr(address)
	if err != nil {
		return ""
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)
	msg.RecursionDesired = true

	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			logger.LogDebug("Reverse lookup failed", 3001, "resolver", "ptr", map[string]interface{}{
				"address": address,
				"server":  server,
				"error":   err.Error(),
			})
			continue
		}
		if resp.Rcode == dns.RcodeNameError {
			return ""
		}
		for _, rr := range resp.Answer {
			if ptr, ok := rr.(*dns.PTR); ok {
				return strings.TrimSuffix(ptr.Ptr, ".")
			}
		}
	}
	return ""
}
