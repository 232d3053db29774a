package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/pkg/httpcontext"
	feedUC "github.com/sustaingain/backend/usecase/feed"
)

type FeedHandler struct {
	baseHandler
	uc *feedUC.UseCase
}

func NewFeedHandler(uc *feedUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Recent activity from the caller and their friends
// @Tags feed
// @Router /api/v1/feed [get]
func (h *FeedHandler) Get(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 20)
	offset := parseInt(string(ctx.QueryArgs().Peek("offset")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.For(stdCtx, profileID, limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}
