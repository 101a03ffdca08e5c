// Package http wires the storefront HTTP surface: the public catalog, cart
// and checkout APIs plus the admin record-access protocol.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreforge/storefront/pkg/health"
	"github.com/coreforge/storefront/pkg/middleware"
)

// RouterDeps collects everything the router mounts.
type RouterDeps struct {
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Admin    *AdminHandler
	Health   *health.Handler
	Logger   *slog.Logger
}

// NewRouter builds the chi router with the full middleware stack.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		deps.Products.RegisterRoutes(r)
		deps.Cart.RegisterRoutes(r)
		deps.Orders.RegisterRoutes(r)
		deps.Admin.RegisterRoutes(r)
	})

	return r
}
