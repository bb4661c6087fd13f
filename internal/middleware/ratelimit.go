package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type window struct {
	count int
	until time.Time
}

// RateLimit caps requests per client IP within a fixed window. Rejected
// requests get a Retry-After hint for the remainder of the window.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := time.Now()

			mu.Lock()
			win, ok := windows[ip]
			if !ok || now.After(win.until) {
				win = &window{until: now.Add(per)}
				windows[ip] = win
			}
			if win.count >= limit {
				retry := win.until.Sub(now)
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			win.count++
			mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
