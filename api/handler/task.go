package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/choreboard/backend/api/transport"
	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/pkg/httpcontext"
	"github.com/choreboard/backend/repository"
	"github.com/choreboard/backend/usecase/schedule"
	taskUC "github.com/choreboard/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks (reconciled board view)
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	filter := repository.TaskFilter{
		FamilyID:   familyID,
		AssigneeID: string(ctx.QueryArgs().Peek("assignee_id")),
		Status:     string(ctx.QueryArgs().Peek("status")),
		Limit:      parseInt(string(ctx.QueryArgs().Peek("limit")), 0),
		Offset:     parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Raw occurrence history
// @Tags tasks
// @Router /api/v1/tasks/history [get]
func (h *TaskHandler) GetHistory(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	filter := repository.TaskFilter{
		FamilyID:   familyID,
		AssigneeID: string(ctx.QueryArgs().Peek("assignee_id")),
		Status:     string(ctx.QueryArgs().Peek("status")),
		Limit:      parseInt(string(ctx.QueryArgs().Peek("limit")), 0),
		Offset:     parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListHistory(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	memberID := h.memberID(ctx)
	if memberID == "" {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	input := taskUC.CreateInput{
		FamilyID:        req.FamilyID,
		Title:           req.Title,
		Description:     req.Description,
		AssigneeID:      req.AssigneeID,
		RecurrenceKind:  domain.RecurrenceKind(req.RecurrenceKind),
		DueMode:         domain.DueMode(req.DueMode),
		ActiveWeekdays:  req.ActiveWeekdays,
		DueTime:         parseTimeOfDay(req.DueTime),
		DueAt:           parseTime(req.DueAt),
		Points:          req.Points,
		PenaltyEnabled:  req.PenaltyEnabled,
		PenaltyPoints:   req.PenaltyPoints,
		ReminderOffsets: req.ReminderOffsets,
		CreatedByID:     memberID,
	}
	if input.FamilyID == "" {
		input.FamilyID = h.familyID(ctx)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	input := taskUC.UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		AssigneeID:      req.AssigneeID,
		ActiveWeekdays:  req.ActiveWeekdays,
		DueTime:         parseTimeOfDay(req.DueTime),
		DueAt:           parseTime(req.DueAt),
		Points:          req.Points,
		PenaltyEnabled:  req.PenaltyEnabled,
		PenaltyPoints:   req.PenaltyPoints,
		ReminderOffsets: req.ReminderOffsets,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, id, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Submit task for review
// @Tags tasks
// @Router /api/v1/tasks/{id}/submit [post]
func (h *TaskHandler) SubmitTask(ctx *fasthttp.RequestCtx) {
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

	submitted, err := h.uc.SubmitTask(stdCtx, id, memberID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, submitted)
}

// @Summary Review a submitted task
// @Tags tasks
// @Router /api/v1/tasks/{id}/review [post]
func (h *TaskHandler) ReviewTask(ctx *fasthttp.RequestCtx) {
	memberID := h.memberID(ctx)
	if memberID == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	var req transport.TaskReviewRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reviewed, err := h.uc.ReviewTask(stdCtx, id, memberID, req.Approve)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reviewed)
}

// @Summary Pause or resume a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/active [post]
func (h *TaskHandler) SetActive(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	var req transport.TaskActiveRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.SetActive(stdCtx, id, req.Active)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Upcoming reminders
// @Tags tasks
// @Router /api/v1/tasks/reminders [get]
func (h *TaskHandler) GetReminders(ctx *fasthttp.RequestCtx) {
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reminders, err := h.uc.UpcomingReminders(stdCtx, familyID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reminders)
}

// @Summary Available special task templates
// @Tags templates
// @Router /api/v1/templates [get]
func (h *TaskHandler) GetTemplates(ctx *fasthttp.RequestCtx) {
	memberID := h.memberID(ctx)
	if memberID == "" {
		return
	}
	familyID := h.familyID(ctx)
	if familyID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	availability, err := h.uc.TemplateAvailability(stdCtx, familyID, memberID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, availability)
}

// @Summary Claim a special task template
// @Tags templates
// @Router /api/v1/templates/{id}/claim [post]
func (h *TaskHandler) ClaimTemplate(ctx *fasthttp.RequestCtx) {
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

	claimed, err := h.uc.ClaimTemplate(stdCtx, id, memberID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, claimed)
}

func (h baseHandler) pathID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing id", nil))
		return "", false
	}
	return id, true
}

func (h baseHandler) memberID(ctx *fasthttp.RequestCtx) string {
	memberID := string(ctx.Request.Header.Peek("X-Member-ID"))
	if memberID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing member id", nil))
	}
	return memberID
}

func (h baseHandler) familyID(ctx *fasthttp.RequestCtx) string {
	familyID := string(ctx.Request.Header.Peek("X-Family-ID"))
	if familyID == "" {
		familyID = string(ctx.QueryArgs().Peek("family_id"))
	}
	if familyID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing family id", nil))
	}
	return familyID
}

func parseTimeOfDay(req *transport.TimeOfDayRequest) *schedule.TimeOfDay {
	if req == nil {
		return nil
	}
	return &schedule.TimeOfDay{Hour: req.Hour, Minute: req.Minute}
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
