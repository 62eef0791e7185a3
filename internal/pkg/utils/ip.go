package utils

import (
	"fmt"
	"net"
	"strings"
)

// NormalizeIP 标准化IP地址：
// - 若是带端口的地址，去掉端口
// - 若带有 IPv6 zone (fe80::1%eth0)，去掉 zone
// - 若是 IPv4-mapped IPv6 (::ffff:192.0.2.1)，转成纯 IPv4
// - 否则按原样返回（包括真 IPv6）
func NormalizeIP(input string) string {
	if input == "" {
		return ""
	}

	ip := strings.TrimSpace(input)

	// 去掉端口（host:port 或 [ipv6]:port）
	if h, _, err := net.SplitHostPort(ip); err == nil {
		ip = h
	}
	if i := strings.IndexByte(ip, '%'); i >= 0 {
		ip = ip[:i]
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip
	}

	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}

	return parsed.String()
}

// CanonicalIP 返回入库使用的规范地址与版本号
// IPv4 为点分十进制，IPv6 为完整展开的小写形式 (2001:0db8:0000:...)，IPv4-mapped 地址折叠为 IPv4；
// 无法解析时 ok=false
func CanonicalIP(input string) (address string, version int, ok bool) {
	parsed := net.ParseIP(NormalizeIP(input))
	if parsed == nil {
		return "", 0, false
	}

	if v4 := parsed.To4(); v4 != nil {
		return v4.String(), 4, true
	}

	v6 := parsed.To16()
	groups := make([]string, 8)
	for i := 0; i < 8; i++ {
		groups[i] = fmt.Sprintf("%02x%02x", v6[2*i], v6[2*i+1])
	}
	return strings.Join(groups, ":"), 6, true
}
