package payrunhandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/payrun"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

type runPayload struct {
	PayPeriodID string  `json:"payPeriodId"`
	Name        string  `json:"name"`
	LocationID  *string `json:"locationId"`
	OnlyUnpaid  bool    `json:"onlyUnpaid"`
}

type runStatusPayload struct {
	Status string `json:"status"`
}

type runWithSummary struct {
	payrun.PayRun
	Summary payrun.Summary `json:"summary"`
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	filter := payrun.RunFilter{}
	if raw := query.Get("start"); raw != "" {
		filter.Start, _ = v.Date("start", raw)
	}
	if raw := query.Get("end"); raw != "" {
		filter.End, _ = v.Date("end", raw)
	}
	if raw := strings.TrimSpace(query.Get("locationId")); raw != "" {
		filter.LocationID = &raw
	}
	if v.Reject(w, requestID) {
		return
	}

	runs, summaries, err := h.Service.ListPayRuns(r.Context(), filter)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}

	out := make([]runWithSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, runWithSummary{PayRun: run, Summary: summaries[run.ID]})
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload runPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("payPeriodId", payload.PayPeriodID, "payPeriodId is required")
	if v.Reject(w, requestID) {
		return
	}

	run, err := h.Service.CreatePayRun(r.Context(), payload.PayPeriodID, payload.Name, payload.LocationID, payload.OnlyUnpaid)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.run.create", "pay_run", run.ID, nil, run)
	api.Created(w, run, requestID)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	details, err := h.Service.GetPayRunDetails(r.Context(), runID)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateRunStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	runID := chi.URLParam(r, "runID")

	var payload runStatusPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status, "status is required")
	if v.Reject(w, requestID) {
		return
	}

	run, err := h.Service.UpdatePayRunStatus(r.Context(), runID, strings.ToLower(strings.TrimSpace(payload.Status)))
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.run.status", "pay_run", run.ID, nil, map[string]string{"status": run.Status})
	api.Success(w, run, requestID)
}

func (h *Handler) handleRunSummary(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	summary, err := h.Service.GetPayRunSummary(r.Context(), runID)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeSummaries(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	summaries, err := h.Service.GetEmployeePayRunSummaries(r.Context(), runID)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []payrun.EmployeeSummary{}
	}
	api.Success(w, summaries, middleware.GetRequestID(r.Context()))
}
