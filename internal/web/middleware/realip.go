package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP rewrites r.RemoteAddr from X-Real-IP or the first
// X-Forwarded-For hop, but only for requests arriving from one of the
// trusted proxies. Entries may be CIDRs or bare IPs; invalid entries are
// logged and skipped. With no trusted proxies, headers are never honoured.
func TrustedRealIP(trusted []string) func(http.Handler) http.Handler {
	prefixes := parsePrefixes(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if remote, ok := remoteAddr(r.RemoteAddr); ok && isTrusted(remote, prefixes) {
				if client, ok := forwardedClient(r.Header); ok {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parsePrefixes(entries []string) []netip.Prefix {
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
		if a, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		slog.Warn("realip: invalid trusted proxy, skipping", "entry", entry)
	}
	return prefixes
}

// forwardedClient returns the client address claimed by proxy headers.
func forwardedClient(h http.Header) (netip.Addr, bool) {
	if rip := strings.TrimSpace(h.Get("X-Real-IP")); rip != "" {
		a, err := netip.ParseAddr(rip)
		return a, err == nil
	}
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		a, err := netip.ParseAddr(strings.TrimSpace(first))
		return a, err == nil
	}
	return netip.Addr{}, false
}

// remoteAddr parses a host:port or bare IP.
func remoteAddr(addr string) (netip.Addr, bool) {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	a, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}

func isTrusted(a netip.Addr, prefixes []netip.Prefix) bool {
	for _, p := range prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
