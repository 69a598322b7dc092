package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/context-service/internal/delivery/http/handler"
	"github.com/user/context-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.HandleHealthCheck)
	mux.HandleFunc("POST /api/v1/analyze", h.HandleAnalyze)
	mux.HandleFunc("POST /api/v1/jobs", h.HandleCreateJob)
	mux.HandleFunc("GET /api/v1/jobs", h.HandleListJobs)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.HandleGetJob)
	mux.HandleFunc("DELETE /api/v1/jobs/{id}", h.HandleDeleteJob)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middlewares
	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)

	return chainedHandler
}
