package payrunhandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/payrun"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

type closedPeriodPayload struct {
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Description string   `json:"description"`
	LocationIDs []string `json:"locationIds"`
}

func (h *Handler) handleListClosedPeriods(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	var start, end time.Time
	if raw := query.Get("start"); raw != "" {
		start, _ = v.Date("start", raw)
	}
	if raw := query.Get("end"); raw != "" {
		end, _ = v.Date("end", raw)
	}
	if v.Reject(w, requestID) {
		return
	}

	closed, err := h.Service.ListClosedPeriods(r.Context(), start, end)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	if closed == nil {
		closed = []payrun.ClosedPeriod{}
	}
	api.Success(w, closed, requestID)
}

func (h *Handler) handleCreateClosedPeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload closedPeriodPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("startDate", payload.StartDate, "startDate is required")
	v.Required("endDate", payload.EndDate, "endDate is required")
	var start, end time.Time
	if payload.StartDate != "" {
		start, _ = v.Date("startDate", payload.StartDate)
	}
	if payload.EndDate != "" {
		end, _ = v.Date("endDate", payload.EndDate)
	}
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, requestID) {
		return
	}

	closed, err := h.Service.CreateClosedPeriod(r.Context(), start, end, payload.Description, payload.LocationIDs)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.closed-period.create", "closed_period", closed.ID, nil, closed)
	api.Created(w, closed, requestID)
}

func (h *Handler) handleDeleteClosedPeriod(w http.ResponseWriter, r *http.Request) {
	closedPeriodID := chi.URLParam(r, "closedPeriodID")
	if err := h.Service.DeleteClosedPeriod(r.Context(), closedPeriodID); err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.closed-period.delete", "closed_period", closedPeriodID, nil, nil)
	api.Success(w, map[string]string{"deleted": closedPeriodID}, middleware.GetRequestID(r.Context()))
}
