package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/api/transport"
	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/pkg/httpcontext"
	"github.com/sustaingain/backend/repository"
	leaguesUC "github.com/sustaingain/backend/usecase/leagues"
)

type LeaguesHandler struct {
	baseHandler
	uc *leaguesUC.UseCase
}

func NewLeaguesHandler(uc *leaguesUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LeaguesHandler {
	return &LeaguesHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create a league
// @Tags leagues
// @Router /api/v1/leagues [post]
func (h *LeaguesHandler) Create(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	var req transport.LeagueRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, &domain.League{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  domain.LeagueVisibility(req.Visibility),
		InviteOnly:  req.InviteOnly,
	}, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary List public leagues
// @Tags leagues
// @Router /api/v1/leagues [get]
func (h *LeaguesHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.LeagueFilter{
		Limit:  parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset: parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	leagues, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, leagues)
}

// @Summary Get one league
// @Tags leagues
// @Router /api/v1/leagues/{id} [get]
func (h *LeaguesHandler) Get(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing league id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	league, err := h.uc.Get(stdCtx, id, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, league)
}

// @Summary Join or request to join a league
// @Tags leagues
// @Router /api/v1/leagues/{id}/join [post]
func (h *LeaguesHandler) Join(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing league id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Join(stdCtx, id, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Invite a profile into the league (admin)
// @Tags leagues
// @Router /api/v1/leagues/{id}/invite [post]
func (h *LeaguesHandler) Invite(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing league id")
		return
	}
	var req transport.LeagueInviteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Username == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Invite(stdCtx, id, profileID, req.Username)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Approve a pending join request (admin)
// @Tags leagues
// @Router /api/v1/leagues/{id}/approve [post]
func (h *LeaguesHandler) Approve(ctx *fasthttp.RequestCtx) {
	h.memberAction(ctx, h.uc.Approve)
}

// @Summary Promote a member to admin
// @Tags leagues
// @Router /api/v1/leagues/{id}/promote [post]
func (h *LeaguesHandler) Promote(ctx *fasthttp.RequestCtx) {
	h.memberAction(ctx, h.uc.Promote)
}

// @Summary Demote an admin to member
// @Tags leagues
// @Router /api/v1/leagues/{id}/demote [post]
func (h *LeaguesHandler) Demote(ctx *fasthttp.RequestCtx) {
	h.memberAction(ctx, h.uc.Demote)
}

// @Summary Remove a member (admin)
// @Tags leagues
// @Router /api/v1/leagues/{id}/kick [post]
func (h *LeaguesHandler) Kick(ctx *fasthttp.RequestCtx) {
	h.memberAction(ctx, h.uc.Kick)
}

// @Summary Leave the league
// @Tags leagues
// @Router /api/v1/leagues/{id}/leave [post]
func (h *LeaguesHandler) Leave(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing league id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Leave(stdCtx, id, profileID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary League ranking by points, best first
// @Tags leagues
// @Router /api/v1/leagues/{id}/ranking [get]
func (h *LeaguesHandler) Ranking(ctx *fasthttp.RequestCtx) {
	profileID := h.profileID(ctx)
	if profileID == "" {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing league id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	ranking, err := h.uc.Ranking(stdCtx, id, profileID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, ranking)
}

func (h *LeaguesHandler) memberAction(ctx *fasthttp.RequestCtx, action func(ctx context.Context, leagueID, actorID, profileID string) error) {
	actorID := h.profileID(ctx)
	if actorID == "" {
		return
	}
	leagueID := pathParam(ctx, "id")
	if leagueID == "" {
		h.respondInvalid(ctx, "missing league id")
		return
	}
	var req transport.LeagueMemberRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.ProfileID == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := action(stdCtx, leagueID, actorID, req.ProfileID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
