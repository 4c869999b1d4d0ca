package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-recon/internal/api/middleware"
	"github.com/dvloznov/statement-recon/internal/enrichment"
	"github.com/dvloznov/statement-recon/internal/report"
	"github.com/dvloznov/statement-recon/internal/statements"
	"github.com/dvloznov/statement-recon/internal/view"
)

// BatchLoader loads the current reconciliation batch.
type BatchLoader interface {
	Load(ctx context.Context) (statements.Batch, error)
}

// ReconciliationsHandler serves reconciliation rows and exports.
type ReconciliationsHandler struct {
	loader BatchLoader
	enrich enrichment.Store
	log    zerolog.Logger
}

// NewReconciliationsHandler creates a new reconciliations handler. A nil
// enrichment store disables overlays.
func NewReconciliationsHandler(loader BatchLoader, enrich enrichment.Store, log zerolog.Logger) *ReconciliationsHandler {
	if enrich == nil {
		enrich = enrichment.Noop{}
	}
	return &ReconciliationsHandler{
		loader: loader,
		enrich: enrich,
		log:    log,
	}
}

type droppedItem struct {
	Object string `json:"object"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

// ListReconciliations handles GET /api/reconciliations
func (h *ReconciliationsHandler) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" && format != "json" && format != report.FormatXLSX && format != report.FormatPDF {
		middleware.WriteError(w, http.StatusBadRequest, "format must be json, xlsx or pdf")
		return
	}

	batch, err := h.loader.Load(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load reconciliation batch")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load parsing results")
		return
	}

	views := view.BuildRows(batch.Rows, enrichment.LookupOrEmpty(ctx, h.enrich, view.CaseIDs(batch.Rows)))

	if format == report.FormatXLSX || format == report.FormatPDF {
		h.writeExport(w, format, views)
		return
	}

	dropped := make([]droppedItem, 0, len(batch.Dropped))
	for _, d := range batch.Dropped {
		dropped = append(dropped, droppedItem{Object: d.Object, Reason: d.Reason, Error: d.Err.Error()})
	}

	reconciled := 0
	for _, v := range views {
		if v.AllReconciled {
			reconciled++
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rows":       views,
		"count":      len(views),
		"reconciled": reconciled,
		"dropped":    dropped,
	})
}

// GetReconciliation handles GET /api/reconciliations/{case_id}
func (h *ReconciliationsHandler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := mux.Vars(r)["case_id"]

	batch, err := h.loader.Load(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("case_id", caseID).Msg("Failed to load reconciliation batch")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load parsing results")
		return
	}

	for _, row := range batch.Rows {
		if row.CaseID != caseID {
			continue
		}
		records := enrichment.LookupOrEmpty(ctx, h.enrich, []string{caseID})
		middleware.WriteJSON(w, http.StatusOK, view.BuildRow(row, records))
		return
	}

	middleware.WriteError(w, http.StatusNotFound, "Reconciliation not found")
}

func (h *ReconciliationsHandler) writeExport(w http.ResponseWriter, format string, views []view.RowView) {
	data, contentType, err := report.Build(format, views)
	if err != nil {
		h.log.Error().Err(err).Str("format", format).Msg("Failed to build export")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build export")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reconciliations.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
