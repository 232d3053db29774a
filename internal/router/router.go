package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/api/handler"
	"github.com/sustaingain/backend/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Catalog *handler.CatalogHandler
	Tasks   *handler.TasksHandler
	Friends *handler.FriendsHandler
	Leagues *handler.LeaguesHandler
	Feed    *handler.FeedHandler
	Health  *handler.HealthHandler
}

// New wires all routes. Everything under /api/v1 except register and login
// requires a valid bearer token.
func New(h Handlers, jwtSecret string, logger *zap.Logger) fasthttp.RequestHandler {
	r := router.New()
	auth := middleware.JWTAuth(jwtSecret, logger)

	r.GET("/health", h.Health.Check)

	r.POST("/api/v1/auth/register", h.Auth.Register)
	r.POST("/api/v1/auth/login", h.Auth.Login)
	r.POST("/api/v1/auth/refresh", auth(h.Auth.Refresh))
	r.POST("/api/v1/auth/logout", auth(h.Auth.Logout))

	r.GET("/api/v1/profiles", auth(h.Profile.List))
	r.GET("/api/v1/profiles/{username}", auth(h.Profile.Get))
	r.PATCH("/api/v1/profiles/me", auth(h.Profile.UpdateMe))

	r.GET("/api/v1/catalog/tasks", auth(h.Catalog.ListTasks))
	r.POST("/api/v1/catalog/tasks", auth(h.Catalog.CreateTask))
	r.GET("/api/v1/catalog/tasks/{id}", auth(h.Catalog.GetTask))
	r.PUT("/api/v1/catalog/tasks/{id}", auth(h.Catalog.UpdateTask))
	r.DELETE("/api/v1/catalog/tasks/{id}", auth(h.Catalog.DeleteTask))
	r.GET("/api/v1/catalog/categories", auth(h.Catalog.ListCategories))
	r.POST("/api/v1/catalog/categories", auth(h.Catalog.CreateCategory))
	r.DELETE("/api/v1/catalog/categories/{id}", auth(h.Catalog.DeleteCategory))

	r.GET("/api/v1/tasks/available", auth(h.Tasks.Available))
	r.GET("/api/v1/tasks/mine", auth(h.Tasks.Mine))
	r.POST("/api/v1/tasks/{id}/accept", auth(h.Tasks.Accept))
	r.GET("/api/v1/tasks/instances/{id}", auth(h.Tasks.GetInstance))
	r.POST("/api/v1/tasks/instances/{id}/complete", auth(h.Tasks.Complete))
	r.POST("/api/v1/tasks/instances/{id}/tag", auth(h.Tasks.Tag))
	r.POST("/api/v1/tasks/instances/{id}/like", auth(h.Tasks.Like))
	r.POST("/api/v1/tasks/instances/{id}/report", auth(h.Tasks.Report))
	r.DELETE("/api/v1/tasks/instances/{id}", auth(h.Tasks.ModerateDelete))
	r.POST("/api/v1/tasks/instances/{id}/restore", auth(h.Tasks.ModerateRestore))

	r.GET("/api/v1/friends", auth(h.Friends.List))
	r.GET("/api/v1/friends/overview", auth(h.Friends.Overview))
	r.POST("/api/v1/friends/requests", auth(h.Friends.Request))
	r.POST("/api/v1/friends/requests/{id}/accept", auth(h.Friends.Accept))
	r.POST("/api/v1/friends/requests/{id}/decline", auth(h.Friends.Decline))
	r.POST("/api/v1/friends/requests/{id}/cancel", auth(h.Friends.Cancel))
	r.DELETE("/api/v1/friends/{profileID}", auth(h.Friends.Unfriend))

	r.GET("/api/v1/leagues", auth(h.Leagues.List))
	r.POST("/api/v1/leagues", auth(h.Leagues.Create))
	r.GET("/api/v1/leagues/{id}", auth(h.Leagues.Get))
	r.POST("/api/v1/leagues/{id}/join", auth(h.Leagues.Join))
	r.POST("/api/v1/leagues/{id}/invite", auth(h.Leagues.Invite))
	r.POST("/api/v1/leagues/{id}/approve", auth(h.Leagues.Approve))
	r.POST("/api/v1/leagues/{id}/promote", auth(h.Leagues.Promote))
	r.POST("/api/v1/leagues/{id}/demote", auth(h.Leagues.Demote))
	r.POST("/api/v1/leagues/{id}/kick", auth(h.Leagues.Kick))
	r.POST("/api/v1/leagues/{id}/leave", auth(h.Leagues.Leave))
	r.GET("/api/v1/leagues/{id}/ranking", auth(h.Leagues.Ranking))

	r.GET("/api/v1/feed", auth(h.Feed.Get))

	return r.Handler
}
