package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer wraps http.Server with the timeouts this API needs. Composition
// and video rendering run synchronously inside a request, so the write
// timeout is configured far above the usual few seconds (see Config).
type HTTPServer struct {
	server *http.Server
}

func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{server: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails; it returns http.ErrServerClosed on a clean stop.
func (s *HTTPServer) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
