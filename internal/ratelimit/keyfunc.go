package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc resolves the caller identity of a request.
type KeyFunc func(r *http.Request) string

// DefaultKeyFunc identifies callers by keyHeader when set and present, then by
// the first X-Forwarded-For hop and X-Real-IP when trustProxy is true, then
// by the RemoteAddr host. Requests with no usable identity share "unknown".
func DefaultKeyFunc(keyHeader string, trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustProxy {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
			if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
				return ip
			}
		}

		addr := strings.TrimSpace(r.RemoteAddr)
		if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
			return host
		}
		if addr != "" {
			return addr
		}
		return "unknown"
	}
}
