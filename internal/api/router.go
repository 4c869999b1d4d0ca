// Package api wires the HTTP routes of the reconciliation service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-recon/internal/api/handlers"
	"github.com/dvloznov/statement-recon/internal/api/middleware"
	"github.com/dvloznov/statement-recon/internal/enrichment"
	"github.com/dvloznov/statement-recon/internal/jobs"
	"github.com/dvloznov/statement-recon/internal/observability/metrics"
)

// Deps are the collaborators behind the HTTP routes.
type Deps struct {
	Log        zerolog.Logger
	Loader     handlers.BatchLoader
	Enrichment enrichment.Store
	Publisher  jobs.Publisher
	JobStore   jobs.JobStore
	Bucket     string
	// ParserReady gates POST /api/statements/parse; nil means always ready.
	ParserReady func(ctx context.Context) error
}

// NewRouter registers every route and wraps the router in the standard
// middleware chain.
func NewRouter(deps Deps) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Metrics)

	recons := handlers.NewReconciliationsHandler(deps.Loader, deps.Enrichment, deps.Log)
	statementsH := handlers.NewStatementsHandler(deps.Publisher, deps.JobStore, deps.Bucket, deps.ParserReady, deps.Log)
	jobsH := handlers.NewJobsHandler(deps.JobStore, deps.Log)

	router.HandleFunc("/api/reconciliations", recons.ListReconciliations).Methods(http.MethodGet)
	router.HandleFunc("/api/reconciliations/{case_id}", recons.GetReconciliation).Methods(http.MethodGet)
	router.HandleFunc("/api/statements/parse", statementsH.EnqueueParsing).Methods(http.MethodPost)
	router.HandleFunc("/api/jobs", jobsH.ListJobs).Methods(http.MethodGet)
	router.HandleFunc("/api/jobs/{id}", jobsH.GetJob).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})

	return middleware.RequestID(
		middleware.Logger(deps.Log)(
			middleware.Recovery(deps.Log)(
				middleware.CORS(router),
			),
		),
	)
}
