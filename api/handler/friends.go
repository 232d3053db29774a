package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/api/transport"
	"github.com/sustaingain/backend/pkg/httpcontext"
	friendsUC "github.com/sustaingain/backend/usecase/friends"
)

type FriendsHandler struct {
	baseHandler
	uc *friendsUC.UseCase
}

func NewFriendsHandler(uc *friendsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *FriendsHandler {
	return &FriendsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Send a friend request
// @Tags friends
// @Router /api/v1/friends/requests [post]
func (h *FriendsHandler) Request(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	var req transport.FriendRequestCreate
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Username == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Request(stdCtx, profileID, req.Username)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Accept an incoming friend request
// @Tags friends
// @Router /api/v1/friends/requests/{id}/accept [post]
func (h *FriendsHandler) Accept(ctx *fasthttp.RequestCtx) {
	h.resolveRequest(ctx, h.uc.Accept)
}

// @Summary Decline an incoming friend request
// @Tags friends
// @Router /api/v1/friends/requests/{id}/decline [post]
func (h *FriendsHandler) Decline(ctx *fasthttp.RequestCtx) {
	h.resolveRequest(ctx, h.uc.Decline)
}

// @Summary Cancel an outgoing friend request
// @Tags friends
// @Router /api/v1/friends/requests/{id}/cancel [post]
func (h *FriendsHandler) Cancel(ctx *fasthttp.RequestCtx) {
	h.resolveRequest(ctx, h.uc.Cancel)
}

// @Summary Remove an accepted friend
// @Tags friends
// @Router /api/v1/friends/{profileID} [delete]
func (h *FriendsHandler) Unfriend(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	otherID := pathParam(ctx, "profileID")
	if otherID == "" {
		h.respondInvalid(ctx, "missing profile id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Unfriend(stdCtx, profileID, otherID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary List accepted friends
// @Tags friends
// @Router /api/v1/friends [get]
func (h *FriendsHandler) List(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	friends, err := h.uc.Friends(stdCtx, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, friends)
}

// @Summary Friends plus pending requests in both directions
// @Tags friends
// @Router /api/v1/friends/overview [get]
func (h *FriendsHandler) Overview(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	overview, err := h.uc.Overview(stdCtx, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, overview)
}

func (h *FriendsHandler) resolveRequest(ctx *fasthttp.RequestCtx, action func(ctx context.Context, requestID, actorID string) error) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	requestID := pathParam(ctx, "id")
	if requestID == "" {
		h.respondInvalid(ctx, "missing request id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := action(stdCtx, requestID, profileID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
