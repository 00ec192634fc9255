package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storelinkhq/storelink-backend/api/controllers"
	"github.com/storelinkhq/storelink-backend/api/middleware"
	"github.com/storelinkhq/storelink-backend/internal/insights"
	"github.com/storelinkhq/storelink-backend/internal/permissions"
	"github.com/storelinkhq/storelink-backend/internal/stores"
	"github.com/storelinkhq/storelink-backend/internal/syncengine"
	"github.com/storelinkhq/storelink-backend/pkg/config"
	"github.com/storelinkhq/storelink-backend/pkg/db"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    db.Pinger
	RedisPinger db.Pinger

	Stores      stores.Service
	Sync        syncengine.Service
	Permissions permissions.Service
	Insights    insights.Service

	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Post("/", controllers.StoreConnect(deps.Stores, logg))
			r.Get("/", controllers.StoreList(deps.Stores, logg))
			r.Get("/primary", controllers.StorePrimary(deps.Stores, logg))
			r.Route("/{storeId}", func(r chi.Router) {
				r.Delete("/", controllers.StoreRemove(deps.Stores, logg))
				r.Post("/primary", controllers.StoreSetPrimary(deps.Stores, logg))
				r.Put("/permissions", controllers.StorePermissionsUpdate(deps.Stores, logg))
				r.Put("/agent-access", controllers.StoreAgentAccessUpdate(deps.Stores, logg))
				r.Post("/sync", controllers.SyncTrigger(deps.Sync, logg))
			})
		})

		r.Route("/permissions", func(r chi.Router) {
			r.Post("/check", controllers.PermissionCheck(deps.Permissions, logg))
			r.Post("/check-all", controllers.PermissionCheckAll(deps.Permissions, logg))
			r.Post("/check-any", controllers.PermissionCheckAny(deps.Permissions, logg))
		})

		r.Route("/insights", func(r chi.Router) {
			r.Get("/", controllers.InsightGenerate(deps.Insights, logg))
			r.Get("/metrics", controllers.InsightMetrics(deps.Insights, logg))
		})
	})

	return r
}
