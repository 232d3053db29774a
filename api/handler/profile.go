package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/api/transport"
	"github.com/sustaingain/backend/pkg/httpcontext"
	profilesUC "github.com/sustaingain/backend/usecase/profiles"
)

type ProfileHandler struct {
	baseHandler
	uc *profilesUC.UseCase
}

func NewProfileHandler(uc *profilesUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Public profile page with points and friend count
// @Tags profiles
// @Router /api/v1/profiles/{username} [get]
func (h *ProfileHandler) Get(ctx *fasthttp.RequestCtx) {
	username := pathParam(ctx, "username")
	if username == "" {
		h.respondInvalid(ctx, "missing username")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.Get(stdCtx, username)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, page)
}

// @Summary List profiles
// @Tags profiles
// @Router /api/v1/profiles [get]
func (h *ProfileHandler) List(ctx *fasthttp.RequestCtx) {
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 50)
	offset := parseInt(string(ctx.QueryArgs().Peek("offset")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profiles, err := h.uc.List(stdCtx, limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profiles)
}

// @Summary Update the caller's own profile
// @Tags profiles
// @Router /api/v1/profiles/me [patch]
func (h *ProfileHandler) UpdateMe(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	var req transport.ProfileUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, profileID, profilesUC.UpdateInput{
		Bio:       req.Bio,
		ImagePath: req.ImagePath,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}
