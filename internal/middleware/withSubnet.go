package middleware

import (
	"net/http"
	"net/netip"
)

// WithSubnet lets a request through only when its X-Real-IP address lies
// inside the trusted CIDR. An empty or malformed CIDR denies everything.
func WithSubnet(cidr string) func(next http.Handler) http.Handler {
	prefix, perr := netip.ParsePrefix(cidr)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if perr != nil {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			addr, err := netip.ParseAddr(r.Header.Get("X-Real-IP"))
			if err != nil || !prefix.Contains(addr.Unmap()) {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
