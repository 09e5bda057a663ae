// Package api exposes the HTTP surface of the sync service: health checks,
// manual trigger endpoints and Prometheus metrics.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vedion/refurbed-sync/api/controllers"
	"github.com/vedion/refurbed-sync/api/middleware"
	"github.com/vedion/refurbed-sync/pkg/config"
	"github.com/vedion/refurbed-sync/pkg/logger"
)

// RouterParams collect everything the router wires up.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	Redis     controllers.Pinger
	Fetch     controllers.FetchService
	Push      controllers.PushService
	Reconcile controllers.ReconcileService
	Archive   controllers.ArchiveService
	Registry  *prometheus.Registry
}

// NewRouter builds the HTTP handler that cmd/api wires into its server.
func NewRouter(params RouterParams) http.Handler {
	cfg, logg := params.Config, params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(logg, params.Redis))
	})

	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Post("/fetch", controllers.SyncFetch(params.Fetch, logg))
		r.Get("/latest", controllers.SyncFetchLatest(params.Fetch, logg))
		r.Get("/orders", controllers.SyncFetchSelected(params.Fetch, logg))
		r.Post("/recover", controllers.SyncRecover(params.Fetch, logg))
		r.Post("/refresh-states", controllers.SyncRefreshStates(params.Fetch, logg))
		r.Post("/push", controllers.SyncPush(params.Push, logg))
		r.Post("/reconcile", controllers.SyncReconcile(params.Reconcile, logg))
		r.Post("/archive", controllers.SyncArchive(params.Archive, logg))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	return r
}
