package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP rewrites RemoteAddr from X-Real-IP or X-Forwarded-For, but
// only for requests whose connection comes from a trusted proxy prefix.
// Entries may be CIDRs ("10.0.0.0/8") or single addresses ("127.0.0.1").
// Headers from untrusted peers are ignored so clients cannot dodge the
// per-IP rate limiter by spoofing them.
func TrustedRealIP(trusted []string) func(http.Handler) http.Handler {
	prefixes := parseTrusted(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isTrusted(peerAddr(r.RemoteAddr), prefixes) {
				if ip, ok := forwardedIP(r.Header); ok {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseTrusted(entries []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if p, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		slog.Warn("realip: invalid trusted proxy, skipping", "entry", entry)
	}
	return prefixes
}

// forwardedIP prefers X-Real-IP, then the first X-Forwarded-For hop.
func forwardedIP(h http.Header) (netip.Addr, bool) {
	if rip := strings.TrimSpace(h.Get("X-Real-IP")); rip != "" {
		addr, err := netip.ParseAddr(rip)
		return addr, err == nil
	}
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		addr, err := netip.ParseAddr(strings.TrimSpace(first))
		return addr, err == nil
	}
	return netip.Addr{}, false
}

// peerAddr parses "host:port" or a bare address.
func peerAddr(remote string) netip.Addr {
	host := remote
	if h, _, err := net.SplitHostPort(remote); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

func isTrusted(addr netip.Addr, prefixes []netip.Prefix) bool {
	if !addr.IsValid() {
		return false
	}
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
