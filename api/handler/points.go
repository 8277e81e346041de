package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/choreboard/backend/api/transport"
	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/pkg/httpcontext"
	"github.com/choreboard/backend/repository"
	pointsUC "github.com/choreboard/backend/usecase/points"
)

type PointsHandler struct {
	baseHandler
	uc *pointsUC.UseCase
}

func NewPointsHandler(uc *pointsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PointsHandler {
	return &PointsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Family balances
// @Tags points
// @Router /api/v1/points/balances [get]
func (h *PointsHandler) GetBalances(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	balances, err := h.uc.FamilyBalances(stdCtx, familyID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, balances)
}

// @Summary One member's balance
// @Tags points
// @Router /api/v1/points/balances/{id} [get]
func (h *PointsHandler) GetBalance(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	balance, err := h.uc.Balance(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"member_id": id,
		"balance":   balance,
	})
}

// @Summary Ledger history
// @Tags points
// @Router /api/v1/points/ledger [get]
func (h *PointsHandler) GetLedger(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	filter := repository.LedgerFilter{
		FamilyID: familyID,
		MemberID: string(ctx.QueryArgs().Peek("member_id")),
		Limit:    parseInt(string(ctx.QueryArgs().Peek("limit")), 0),
		Offset:   parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.History(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}

// @Summary Manual balance adjustment
// @Tags points
// @Router /api/v1/points/adjust [post]
func (h *PointsHandler) Adjust(ctx *fasthttp.RequestCtx) {
	memberID := h.memberID(ctx)
	if memberID == "" {
		return
	}

	var req transport.PointsAdjustRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entry, err := h.uc.Adjust(stdCtx, req.MemberID, memberID, req.Delta, req.Reason)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, entry)
}
