package server

import (
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxies resolves the real client address when the server
// sits behind known reverse proxies.
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// NewTrustedProxies parses a list of CIDRs or bare IPs.
// Entries that do not parse are skipped.
func NewTrustedProxies(entries []string) *TrustedProxies {
	tp := &TrustedProxies{}
	for _, entry := range entries {
		if p, err := netip.ParsePrefix(entry); err == nil {
			tp.prefixes = append(tp.prefixes, p)
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			tp.prefixes = append(tp.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return tp
}

func (tp *TrustedProxies) trusted(addr netip.Addr) bool {
	for _, p := range tp.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the client address for logging and rate limiting.
// Forwarding headers are honored only when the direct peer is a
// trusted proxy; the first parseable X-Forwarded-For entry wins, with
// X-Real-IP as the fallback.
func (tp *TrustedProxies) ClientIP(r *http.Request) string {
	direct, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		if addr, aerr := netip.ParseAddr(r.RemoteAddr); aerr == nil {
			return addr.String()
		}
		return "unknown"
	}
	if !tp.trusted(direct.Addr()) {
		return direct.Addr().String()
	}

	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if addr, aerr := netip.ParseAddr(strings.TrimSpace(part)); aerr == nil {
			return addr.String()
		}
	}
	if addr, aerr := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); aerr == nil {
		return addr.String()
	}
	return direct.Addr().String()
}
