package payrunhandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"payrun/internal/domain/payrun"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

type adjustmentPayload struct {
	EmployeeID       string          `json:"employeeId"`
	CompensationType string          `json:"compensationType"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	IsAddition       bool            `json:"isAddition"`
}

func (h *Handler) handleAddAdjustment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	runID := chi.URLParam(r, "runID")

	var payload adjustmentPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employeeId is required")
	v.Required("compensationType", payload.CompensationType, "compensationType is required")
	if v.Reject(w, requestID) {
		return
	}

	item, err := h.Service.AddAdjustment(r.Context(), runID, payrun.AdjustmentInput{
		EmployeeID:       payload.EmployeeID,
		CompensationType: strings.ToLower(strings.TrimSpace(payload.CompensationType)),
		Amount:           payload.Amount,
		Description:      payload.Description,
		IsAddition:       payload.IsAddition,
	})
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.adjustment.create", "pay_run_item", item.ID, nil, item)
	api.Created(w, item, requestID)
}

func (h *Handler) handleDeleteAdjustment(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	runID, err := h.Service.DeleteAdjustment(r.Context(), itemID)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.adjustment.delete", "pay_run_item", itemID, map[string]string{"payRunId": runID}, nil)
	api.Success(w, map[string]string{"deleted": itemID}, middleware.GetRequestID(r.Context()))
}
