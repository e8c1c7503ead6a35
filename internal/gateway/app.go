// Package gateway assembles the public HTTP surface: health probes,
// metrics, the product API and the list screen, behind one router.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniCatalog/internal/browse"
	"MiniCatalog/internal/catalog"
	"MiniCatalog/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Catalog *catalog.Server
	Browse  *browse.Server

	// Ready is pinged by /readyz; nil means always ready.
	Ready Pinger
}

const readyTimeout = 2 * time.Second

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Ready, httpDeps.Log))

	if deps.Catalog != nil {
		r.Mount("/products", deps.Catalog.Routes())
	}
	if deps.Browse != nil {
		r.Mount("/browse", deps.Browse.Routes())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Tracing(deps.Service))
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(p Pinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p == nil {
			w.WriteHeader(http.StatusOK)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: prefs", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "prefs not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
