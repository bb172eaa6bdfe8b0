package payrunhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/audit"
	"payrun/internal/domain/payrun"
	"payrun/internal/platform/metrics"
	"payrun/internal/requestctx"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
)

type Handler struct {
	Service *payrun.Service
	Audit   *audit.Service
	Idem    *middleware.IdempotencyStore
	Metrics *metrics.Collector
}

func NewHandler(service *payrun.Service, auditSvc *audit.Service, idem *middleware.IdempotencyStore, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Idem: idem, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/periods", h.handleListPeriods)
		r.Post("/periods", h.handleCreatePeriod)
		r.Post("/periods/generate-next", h.handleGenerateNextPeriod)
		r.Post("/periods/{periodID}/archive", h.handleArchivePeriod)
		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handleUpdateSettings)

		r.Get("/pay-runs", h.handleListRuns)
		r.Post("/pay-runs", h.handleCreateRun)
		r.Get("/pay-runs/{runID}", h.handleGetRun)
		r.Patch("/pay-runs/{runID}/status", h.handleUpdateRunStatus)
		r.Get("/pay-runs/{runID}/summary", h.handleRunSummary)
		r.Get("/pay-runs/{runID}/employee-summaries", h.handleEmployeeSummaries)
		r.Post("/pay-runs/{runID}/adjustments", h.handleAddAdjustment)
		r.Delete("/adjustments/{itemID}", h.handleDeleteAdjustment)
		r.Post("/pay-runs/{runID}/process-payments", h.handleProcessPayments)
		r.Post("/pay-runs/{runID}/recalculate-commissions", h.handleRecalculateCommissions)
		r.Get("/pay-runs/{runID}/payslips/{employeeID}", h.handleDownloadPayslip)

		r.Get("/employees/{employeeID}/compensation", h.handleListCompensation)
		r.Post("/employees/{employeeID}/compensation", h.handleAddCompensation)

		r.Get("/closed-periods", h.handleListClosedPeriods)
		r.Post("/closed-periods", h.handleCreateClosedPeriod)
		r.Delete("/closed-periods/{closedPeriodID}", h.handleDeleteClosedPeriod)

		r.Get("/audit-events", h.handleListAuditEvents)
	})
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// failFromError translates domain sentinels into the wire error taxonomy.
func (h *Handler) failFromError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payrun.ErrPeriodNotFound),
		errors.Is(err, payrun.ErrRunNotFound),
		errors.Is(err, payrun.ErrItemNotFound),
		errors.Is(err, payrun.ErrEmployeeNotFound),
		errors.Is(err, payrun.ErrClosedPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, payrun.ErrInvalidDateRange),
		errors.Is(err, payrun.ErrPeriodOverlap),
		errors.Is(err, payrun.ErrScheduleNotConfigured),
		errors.Is(err, payrun.ErrZeroAdjustment),
		errors.Is(err, payrun.ErrNegativeBaseAmount),
		errors.Is(err, payrun.ErrUnknownCompensationType),
		errors.Is(err, payrun.ErrNotManualItem),
		errors.Is(err, payrun.ErrEmptySelection):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, payrun.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
	case errors.Is(err, payrun.ErrImmutableRun):
		api.Fail(w, http.StatusConflict, "immutable_run", err.Error(), requestID)
	case errors.Is(err, payrun.ErrRunNotPaid):
		api.Fail(w, http.StatusConflict, "run_not_paid", err.Error(), requestID)
	case errors.Is(err, middleware.ErrIdempotencyConflict):
		api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
	case errors.Is(err, payrun.ErrExternalService):
		api.Fail(w, http.StatusBadGateway, "external_service_error", err.Error(), requestID)
	default:
		slog.Error("request failed", "path", r.URL.Path, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}

func (h *Handler) recordAudit(r *http.Request, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	ctx := r.Context()
	actor := requestctx.GetActor(ctx)
	if err := h.Audit.Record(ctx, actor, action, entityType, entityID,
		middleware.GetRequestID(ctx), middleware.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
