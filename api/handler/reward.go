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
	rewardUC "github.com/choreboard/backend/usecase/reward"
)

type RewardHandler struct {
	baseHandler
	uc *rewardUC.UseCase
}

func NewRewardHandler(uc *rewardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *RewardHandler {
	return &RewardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List rewards
// @Tags rewards
// @Router /api/v1/rewards [get]
func (h *RewardHandler) GetRewards(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	filter := repository.RewardFilter{
		FamilyID:   familyID,
		ActiveOnly: string(ctx.QueryArgs().Peek("active")) == "true",
		Limit:      parseInt(string(ctx.QueryArgs().Peek("limit")), 0),
		Offset:     parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rewards, err := h.uc.ListRewards(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, rewards)
}

// @Summary Create reward
// @Tags rewards
// @Router /api/v1/rewards [post]
func (h *RewardHandler) CreateReward(ctx *fasthttp.RequestCtx) {
	memberID := h.memberID(ctx)
	if memberID == "" {
		return
	}

	var req transport.RewardCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}
	if req.FamilyID == "" {
		req.FamilyID = h.familyID(ctx)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateReward(stdCtx, rewardUC.CreateInput{
		FamilyID:    req.FamilyID,
		Title:       req.Title,
		Description: req.Description,
		CostPoints:  req.CostPoints,
		IsShareable: req.IsShareable,
		CreatedByID: memberID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update reward
// @Tags rewards
// @Router /api/v1/rewards/{id} [put]
func (h *RewardHandler) UpdateReward(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	var req transport.RewardUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reward, err := h.uc.GetReward(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	reward.Title = req.Title
	reward.Description = req.Description
	reward.CostPoints = req.CostPoints
	reward.IsShareable = req.IsShareable
	reward.IsActive = req.IsActive

	updated, err := h.uc.UpdateReward(stdCtx, reward)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete reward
// @Tags rewards
// @Router /api/v1/rewards/{id} [delete]
func (h *RewardHandler) DeleteReward(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteReward(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Contribution pool state
// @Tags rewards
// @Router /api/v1/rewards/{id}/progress [get]
func (h *RewardHandler) GetProgress(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	progress, err := h.uc.Progress(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, progress)
}

// @Summary Contribute points to a shareable reward
// @Tags rewards
// @Router /api/v1/rewards/{id}/contribute [post]
func (h *RewardHandler) Contribute(ctx *fasthttp.RequestCtx) {
	memberID := h.memberID(ctx)
	if memberID == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	var req transport.ContributeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	progress, err := h.uc.Contribute(stdCtx, id, memberID, req.Points)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, progress)
}

// @Summary Redeem a personal reward
// @Tags rewards
// @Router /api/v1/rewards/{id}/redeem [post]
func (h *RewardHandler) Redeem(ctx *fasthttp.RequestCtx) {
	memberID := h.memberID(ctx)
	if memberID == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	redemption, err := h.uc.Redeem(stdCtx, id, memberID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, redemption)
}

// @Summary Pending redemption review queue
// @Tags rewards
// @Router /api/v1/redemptions [get]
func (h *RewardHandler) GetPendingRedemptions(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	redemptions, err := h.uc.ListPendingRedemptions(stdCtx, familyID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, redemptions)
}

// @Summary Review a redemption request
// @Tags rewards
// @Router /api/v1/redemptions/{id}/review [post]
func (h *RewardHandler) ReviewRedemption(ctx *fasthttp.RequestCtx) {
	memberID := h.memberID(ctx)
	if memberID == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	var req transport.RedemptionReviewRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	redemption, err := h.uc.ReviewRedemption(stdCtx, id, memberID, req.Approve, req.Comment)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, redemption)
}
