package middleware

import (
	"net"
	"net/http"
	"strings"
)

// proxyHeaders are checked in priority order when resolving the client
// address behind proxies and CDNs.
var proxyHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Forwarded",
	"X-Cluster-Client-IP",
	"Forwarded-For",
	"Forwarded",
}

// ClientIP resolves the originating address of a request. Proxy headers are
// consulted first; a candidate is only accepted when it parses as an IP and
// is not in a private or otherwise reserved range, since those are trivially
// spoofable and useless as a rate-limit key. Falls back to the connection
// address, or "unknown" when even that is missing.
func ClientIP(r *http.Request) string {
	for _, h := range proxyHeaders {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// Multi-hop headers list the original client first.
		if i := strings.Index(v, ","); i >= 0 {
			v = v[:i]
		}
		v = strings.TrimSpace(v)
		if ip := net.ParseIP(v); ip != nil && isPublicIP(ip) {
			return v
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func isPublicIP(ip net.IP) bool {
	return !ip.IsPrivate() &&
		!ip.IsLoopback() &&
		!ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast() &&
		!ip.IsMulticast() &&
		!ip.IsUnspecified()
}
