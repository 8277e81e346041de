package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/choreboard/backend/pkg/httpcontext"
	"github.com/choreboard/backend/usecase/analytics"
)

type AnalyticsHandler struct {
	baseHandler
	svc *analytics.Service
}

func NewAnalyticsHandler(svc *analytics.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary Family dashboard figures
// @Tags analytics
// @Router /api/v1/analytics/overview [get]
func (h *AnalyticsHandler) GetOverview(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	overview, err := h.svc.Overview(stdCtx, familyID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, overview)
}

// @Summary Per-member figures
// @Tags analytics
// @Router /api/v1/analytics/members/{id} [get]
func (h *AnalyticsHandler) GetMemberOverview(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	overview, err := h.svc.MemberOverview(stdCtx, familyID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, overview)
}
