package payrunhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/payrun"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
)

type processPaymentsPayload struct {
	EmployeeIDs []string `json:"employeeIds"`
}

// handleProcessPayments marks a run paid. The Idempotency-Key header is
// mandatory so a retried request can never pay a run twice.
func (h *Handler) handleProcessPayments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	runID := chi.URLParam(r, "runID")

	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		api.Fail(w, http.StatusBadRequest, "idempotency_key_required", "Idempotency-Key header is required", requestID)
		return
	}

	var payload processPaymentsPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}

	rawHash, err := json.Marshal(struct {
		RunID       string   `json:"runId"`
		EmployeeIDs []string `json:"employeeIds"`
	}{runID, payload.EmployeeIDs})
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	requestHash := middleware.RequestHash(rawHash)

	stored, found, err := h.Idem.Check(r.Context(), "payroll.process-payments", idempotencyKey, requestHash)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	if found {
		api.Success(w, json.RawMessage(stored), requestID)
		return
	}

	run, err := h.Service.ProcessPayments(r.Context(), runID, payload.EmployeeIDs)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordPayment()
	}
	h.recordAudit(r, "payroll.run.process-payments", "pay_run", run.ID, nil, map[string]any{
		"status":      run.Status,
		"paidDate":    run.PaidDate,
		"employeeIds": payload.EmployeeIDs,
	})

	response, err := json.Marshal(run)
	if err != nil {
		slog.Warn("process payments response marshal failed", "err", err)
	} else if err := h.Idem.Save(r.Context(), "payroll.process-payments", idempotencyKey, requestHash, response); err != nil {
		slog.Warn("idempotency save failed", "err", err)
	}

	api.Success(w, run, requestID)
}

func (h *Handler) handleRecalculateCommissions(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	items, err := h.Service.RecalculateCommissions(r.Context(), runID)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	if items == nil {
		items = []payrun.PayRunItem{}
	}
	h.recordAudit(r, "payroll.run.recalculate-commissions", "pay_run", runID, nil, map[string]int{"items": len(items)})
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	employeeID := chi.URLParam(r, "employeeID")

	name, data, err := h.Service.OpenPayslip(r.Context(), runID, employeeID)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
