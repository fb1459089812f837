package http

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter spaces requests that go to the same host. Each host has its
// own token bucket with a burst of one, so requests to different hosts do
// not wait on each other.
//
// Hosts are compared without case and without the scheme's default port:
// https://NixOS.org:443/a and https://nixos.org/b share a bucket.
type HostLimiter struct {
	limit rate.Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewHostLimiter returns a limiter allowing rps requests per second to each
// host. It returns nil if rps is zero or less; a nil HostLimiter never
// blocks.
func NewHostLimiter(rps float64) *HostLimiter {
	if rps <= 0 {
		return nil
	}
	return &HostLimiter{
		limit:   rate.Limit(rps),
		buckets: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to u may be sent or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, u *url.URL) error {
	if h == nil {
		return ctx.Err()
	}
	return h.bucket(hostKey(u)).Wait(ctx)
}

func (h *HostLimiter) bucket(key string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.buckets[key]
	if !ok {
		b = rate.NewLimiter(h.limit, 1)
		h.buckets[key] = b
	}
	return b
}

// hostKey returns the lower-cased host of u, with the port kept only when
// it differs from the scheme's default.
func hostKey(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	switch {
	case port == "":
	case port == "443" && strings.EqualFold(u.Scheme, "https"):
	case port == "80" && strings.EqualFold(u.Scheme, "http"):
	default:
		return host + ":" + port
	}
	return host
}
