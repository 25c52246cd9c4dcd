package api

import (
	"net/http"
	"time"

	"bookclub/pkg/checkpoint"
	"bookclub/pkg/sheets"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// GetRouter initialises a new http router and applies all routes. Front end
// files in staticDir are served at / when staticDir is not empty.
func GetRouter(store sheets.Store, staticDir string) http.Handler {
	r := chi.NewRouter()
	return applyRoutes(r, NewHandler(store), staticDir)
}

func applyRoutes(r chi.Router, h *Handler, staticDir string) chi.Router {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", getHealth)
	r.Handle("/metrics", promhttp.Handler())

	// The front end calls the API under /api.
	r.Group(h.apiRoutes)
	r.Route("/api", h.apiRoutes)

	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}
	return r
}

func (h *Handler) apiRoutes(r chi.Router) {
	r.Get("/dashboard", h.getTab(checkpoint.DashboardTab))
	r.Get("/members", h.getTab(checkpoint.MembersTab))
	r.Get("/books", h.getTab(checkpoint.BooksTab))
	r.Get("/checkpoints", h.getTab(checkpoint.CheckpointsTab))
	r.Get("/checkpoint-status", h.getTab(checkpoint.StatusTab))
	r.Post("/checkpoint-status/save", h.saveCheckpointStatus)
	r.Get("/board", h.getBoard)
}

// requestLogger logs one line per request through logrus and records the
// request duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		requestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   elapsed,
		}).Debug("Handled request")
	})
}
