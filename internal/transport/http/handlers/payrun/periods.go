package payrunhandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/payrun"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

type periodPayload struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Name      string `json:"name"`
}

type settingsPayload struct {
	Frequency       string `json:"frequency"`
	StartDayOfMonth int    `json:"startDayOfMonth"`
	CustomDays      int    `json:"customDays"`
	NextStartDate   string `json:"nextStartDate"`
}

func (h *Handler) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	periods, err := h.Service.ListPayPeriods(r.Context(), status)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	if periods == nil {
		periods = []payrun.PayPeriod{}
	}
	api.Success(w, periods, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload periodPayload
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
	if v.Reject(w, requestID) {
		return
	}

	period, err := h.Service.CreatePayPeriod(r.Context(), start, end, payload.Name)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.period.create", "pay_period", period.ID, nil, period)
	api.Created(w, period, requestID)
}

func (h *Handler) handleGenerateNextPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.Service.GenerateNextPayPeriod(r.Context())
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.period.generate", "pay_period", period.ID, nil, period)
	api.Created(w, period, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleArchivePeriod(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "periodID")
	period, err := h.Service.ArchivePayPeriod(r.Context(), periodID)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.period.archive", "pay_period", period.ID, nil, map[string]string{"status": period.Status})
	api.Success(w, period, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.GetScheduleSettings(r.Context())
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	api.Success(w, settings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload settingsPayload
	if err := decodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("frequency", payload.Frequency, "frequency is required")
	v.Enum("frequency", payload.Frequency,
		[]string{payrun.FrequencyMonthly, payrun.FrequencyCustom},
		"frequency must be monthly or custom")
	var nextStart time.Time
	if payload.NextStartDate != "" {
		nextStart, _ = v.Date("nextStartDate", payload.NextStartDate)
	}
	if v.Reject(w, requestID) {
		return
	}

	settings, err := h.Service.UpdateScheduleSettings(r.Context(), payrun.ScheduleSettings{
		Frequency:       strings.ToLower(strings.TrimSpace(payload.Frequency)),
		StartDayOfMonth: payload.StartDayOfMonth,
		CustomDays:      payload.CustomDays,
		NextStartDate:   nextStart,
	})
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	h.recordAudit(r, "payroll.settings.update", "schedule_settings", "", nil, settings)
	api.Success(w, settings, requestID)
}
