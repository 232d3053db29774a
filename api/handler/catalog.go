package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/api/transport"
	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/pkg/httpcontext"
	"github.com/sustaingain/backend/repository"
	catalogUC "github.com/sustaingain/backend/usecase/catalog"
)

type CatalogHandler struct {
	baseHandler
	uc *catalogUC.UseCase
}

func NewCatalogHandler(uc *catalogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List catalog tasks
// @Tags catalog
// @Router /api/v1/catalog/tasks [get]
func (h *CatalogHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	filter := repository.TaskFilter{
		CategoryID: string(ctx.QueryArgs().Peek("category_id")),
		Rarity:     domain.Rarity(parseInt(string(ctx.QueryArgs().Peek("rarity")), 0)),
		Limit:      parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
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

// @Summary Get one catalog task
// @Tags catalog
// @Router /api/v1/catalog/tasks/{id} [get]
func (h *CatalogHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create a catalog task
// @Tags catalog
// @Router /api/v1/catalog/tasks [post]
func (h *CatalogHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	actorID := h.profileID(ctx)
	if actorID == "" {
		return
	}
	task, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, actorID, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a catalog task
// @Tags catalog
// @Router /api/v1/catalog/tasks/{id} [put]
func (h *CatalogHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	actorID := h.profileID(ctx)
	if actorID == "" {
		return
	}
	task, ok := h.parseTask(ctx)
	if !ok {
		return
	}
	task.ID = pathParam(ctx, "id")
	if task.ID == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, actorID, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a catalog task
// @Tags catalog
// @Router /api/v1/catalog/tasks/{id} [delete]
func (h *CatalogHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	actorID := h.profileID(ctx)
	if actorID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, actorID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary List categories
// @Tags catalog
// @Router /api/v1/catalog/categories [get]
func (h *CatalogHandler) ListCategories(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	categories, err := h.uc.ListCategories(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, categories)
}

// @Summary Create a category
// @Tags catalog
// @Router /api/v1/catalog/categories [post]
func (h *CatalogHandler) CreateCategory(ctx *fasthttp.RequestCtx) {
	actorID := h.profileID(ctx)
	if actorID == "" {
		return
	}
	var req transport.CategoryRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateCategory(stdCtx, actorID, &domain.TaskCategory{Name: req.Name})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Delete a category
// @Tags catalog
// @Router /api/v1/catalog/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(ctx *fasthttp.RequestCtx) {
	actorID := h.profileID(ctx)
	if actorID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing category id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteCategory(stdCtx, actorID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *CatalogHandler) parseTask(ctx *fasthttp.RequestCtx) (*domain.Task, bool) {
	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return nil, false
	}

	rarity := domain.Rarity(req.Rarity)
	if req.Rarity == 0 {
		rarity = domain.RarityNormal
	}

	return &domain.Task{
		Title:         req.Title,
		Description:   req.Description,
		Points:        req.Points,
		TimeToRepeat:  time.Duration(req.TimeToRepeatSecs) * time.Second,
		CategoryID:    req.CategoryID,
		Rarity:        rarity,
		IsBomb:        req.IsBomb,
		BombTimeLimit: time.Duration(req.BombLimitSecs) * time.Second,
	}, true
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
