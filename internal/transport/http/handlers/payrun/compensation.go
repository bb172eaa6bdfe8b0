package payrunhandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"payrun/internal/domain/payrun"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

type compensationPayload struct {
	BaseAmount    decimal.Decimal `json:"baseAmount"`
	EffectiveFrom string          `json:"effectiveFrom"`
}

func (h *Handler) handleListCompensation(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	settings, err := h.Service.ListCompensation(r.Context(), employeeID)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	if settings == nil {
		settings = []payrun.CompensationSetting{}
	}
	api.Success(w, settings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddCompensation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload compensationPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("effectiveFrom", payload.EffectiveFrom, "effectiveFrom is required")
	var effectiveFrom time.Time
	if payload.EffectiveFrom != "" {
		effectiveFrom, _ = v.Date("effectiveFrom", payload.EffectiveFrom)
	}
	if v.Reject(w, requestID) {
		return
	}

	setting, err := h.Service.AddCompensation(r.Context(), employeeID, payload.BaseAmount, effectiveFrom)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.compensation.create", "compensation_setting", setting.ID, nil, setting)
	api.Created(w, setting, requestID)
}
