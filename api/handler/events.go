package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/choreboard/backend/pkg/httpcontext"
	"github.com/choreboard/backend/repository"
)

type EventsHandler struct {
	baseHandler
	events repository.EventRepository
}

func NewEventsHandler(events repository.EventRepository, adapter *httpcontext.Adapter, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		events:      events,
	}
}

// @Summary Poll change events since a timestamp
// @Tags events
// @Router /api/v1/events [get]
func (h *EventsHandler) GetEvents(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	since := time.Now().Add(-time.Minute)
	if raw := string(ctx.QueryArgs().Peek("since")); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			since = parsed
		}
	}
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.events.ListSince(stdCtx, familyID, since, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, events)
}
