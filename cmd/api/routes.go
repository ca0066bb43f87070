package api

import (
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/handler"
)

// Routes builds the public HTTP handler.
func (d *Dependencies) Routes() http.Handler {
	limiter := rate.NewLimiter(rate.Limit(d.Config.Server.RateLimitPerSecond), d.Config.Server.RateLimitBurst)
	convert := handler.RateLimit(limiter, d.ConvertHandler)

	mux := http.NewServeMux()
	mux.Handle("POST /api/convert", convert)
	mux.Handle("POST /{$}", convert)
	mux.HandleFunc("GET /health", handler.Health)

	c := cors.New(cors.Options{
		AllowedOrigins: d.Config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID", "X-Skipped-Files"},
	})

	return c.Handler(handler.CountRequests(d.Metrics, handler.Recoverer(d.Logger, mux)))
}

// MetricsRoutes serves /metrics.
func (d *Dependencies) MetricsRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", d.Metrics.Handler())
	return mux
}
