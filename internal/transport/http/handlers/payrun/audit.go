package payrunhandler

import (
	"net/http"
	"strings"

	"payrun/internal/domain/audit"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

func (h *Handler) handleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	filter := audit.Filter{
		Action:     strings.TrimSpace(query.Get("action")),
		EntityType: strings.TrimSpace(query.Get("entityType")),
		ActorID:    strings.TrimSpace(query.Get("actorId")),
	}
	page := shared.ParsePage(r, 50, 200)

	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	events, err := h.Audit.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		h.failFromError(w, r, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	api.Success(w, map[string]any{
		"items":  events,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, requestID)
}
