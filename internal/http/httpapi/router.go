package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"soundscape/internal/http/handlers"
	"soundscape/internal/middleware"
)

type Options struct {
	Logger          zerolog.Logger
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
	)

	// One shared limiter across all mutating endpoints; reads and health
	// checks stay unthrottled.
	limited := func(r chi.Router) chi.Router { return r }
	if opts.RateLimitPerMin > 0 {
		rl := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)
		limited = func(r chi.Router) chi.Router { return r.With(rl) }
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/contents", func(r chi.Router) {
		r.Get("/{id}", app.ContentsGet)
		limited(r).Post("/", app.ContentsCreate)
		limited(r).Post("/{id}/queue", app.QueueBatch)
		limited(r).Post("/{id}/queue/single", app.QueueSingle)
		limited(r).Post("/{id}/queue/bulk", app.QueueBulk)
		limited(r).Post("/{id}/compositions", app.CompositionsCreate)
	})

	r.Route("/v1/compositions", func(r chi.Router) {
		r.Get("/{id}", app.CompositionsGet)
		limited(r).Post("/{id}/video", app.VideosCreate)
	})

	r.Get("/v1/videos/{id}", app.VideosGet)

	return r
}
