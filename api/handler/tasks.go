package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/api/transport"
	"github.com/sustaingain/backend/pkg/httpcontext"
	tasksUC "github.com/sustaingain/backend/usecase/tasks"
)

type TasksHandler struct {
	baseHandler
	uc *tasksUC.UseCase
}

func NewTasksHandler(uc *tasksUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TasksHandler {
	return &TasksHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks currently available to the caller
// @Tags tasks
// @Router /api/v1/tasks/available [get]
func (h *TasksHandler) Available(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.AvailableTasks(stdCtx, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary List the caller's task instances
// @Tags tasks
// @Router /api/v1/tasks/mine [get]
func (h *TasksHandler) Mine(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	instances, err := h.uc.MyTasks(stdCtx, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, instances)
}

// @Summary Get one task instance
// @Tags tasks
// @Router /api/v1/tasks/instances/{id} [get]
func (h *TasksHandler) GetInstance(ctx *fasthttp.RequestCtx) {
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing instance id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	instance, err := h.uc.GetInstance(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, instance)
}

// @Summary Accept a catalog task
// @Tags tasks
// @Router /api/v1/tasks/{id}/accept [post]
func (h *TasksHandler) Accept(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	taskID := pathParam(ctx, "id")
	if taskID == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	instance, err := h.uc.Accept(stdCtx, taskID, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, instance)
}

// @Summary Hand in a task with photo evidence
// @Tags tasks
// @Router /api/v1/tasks/instances/{id}/complete [post]
func (h *TasksHandler) Complete(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing instance id")
		return
	}
	var req transport.CompleteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	instance, err := h.uc.Complete(stdCtx, id, profileID, tasksUC.CompletionInput{
		PhotoRef: req.PhotoRef,
		Note:     req.Note,
		Lat:      req.Lat,
		Lon:      req.Lon,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, instance)
}

// @Summary Tag a friend with the instance's task
// @Tags tasks
// @Router /api/v1/tasks/instances/{id}/tag [post]
func (h *TasksHandler) Tag(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing instance id")
		return
	}
	var req transport.TagRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Username == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Tag(stdCtx, id, profileID, req.Username)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Like a handed-in task
// @Tags tasks
// @Router /api/v1/tasks/instances/{id}/like [post]
func (h *TasksHandler) Like(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing instance id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	instance, err := h.uc.Like(stdCtx, id, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, instance)
}

// @Summary Report a task for staff review
// @Tags tasks
// @Router /api/v1/tasks/instances/{id}/report [post]
func (h *TasksHandler) Report(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing instance id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	instance, err := h.uc.Report(stdCtx, id, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, instance)
}

// @Summary Remove a reported task (staff)
// @Tags tasks
// @Router /api/v1/tasks/instances/{id} [delete]
func (h *TasksHandler) ModerateDelete(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing instance id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ModerateDelete(stdCtx, id, profileID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Clear reports and restore a task (staff)
// @Tags tasks
// @Router /api/v1/tasks/instances/{id}/restore [post]
func (h *TasksHandler) ModerateRestore(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing instance id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ModerateRestore(stdCtx, id, profileID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
