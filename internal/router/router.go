package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/choreboard/backend/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Task      *apiHandler.TaskHandler
	Reward    *apiHandler.RewardHandler
	Points    *apiHandler.PointsHandler
	Analytics *apiHandler.AnalyticsHandler
	Events    *apiHandler.EventsHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Task board
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.GET("/api/v1/tasks/history", authMiddleware(handlers.Task.GetHistory))
	r.GET("/api/v1/tasks/reminders", authMiddleware(handlers.Task.GetReminders))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.POST("/api/v1/tasks/{id}/submit", authMiddleware(handlers.Task.SubmitTask))
	r.POST("/api/v1/tasks/{id}/review", authMiddleware(handlers.Task.ReviewTask))
	r.PUT("/api/v1/tasks/{id}/active", authMiddleware(handlers.Task.SetActive))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	// Special task templates
	r.GET("/api/v1/templates", authMiddleware(handlers.Task.GetTemplates))
	r.POST("/api/v1/templates/{id}/claim", authMiddleware(handlers.Task.ClaimTemplate))

	// Rewards and redemptions
	r.GET("/api/v1/rewards", authMiddleware(handlers.Reward.GetRewards))
	r.POST("/api/v1/rewards", authMiddleware(handlers.Reward.CreateReward))
	r.PUT("/api/v1/rewards/{id}", authMiddleware(handlers.Reward.UpdateReward))
	r.DELETE("/api/v1/rewards/{id}", authMiddleware(handlers.Reward.DeleteReward))
	r.GET("/api/v1/rewards/{id}/progress", authMiddleware(handlers.Reward.GetProgress))
	r.POST("/api/v1/rewards/{id}/contribute", authMiddleware(handlers.Reward.Contribute))
	r.POST("/api/v1/rewards/{id}/redeem", authMiddleware(handlers.Reward.Redeem))
	r.GET("/api/v1/redemptions", authMiddleware(handlers.Reward.GetPendingRedemptions))
	r.POST("/api/v1/redemptions/{id}/review", authMiddleware(handlers.Reward.ReviewRedemption))

	// Points ledger
	r.GET("/api/v1/points/balances", authMiddleware(handlers.Points.GetBalances))
	r.GET("/api/v1/points/balances/{id}", authMiddleware(handlers.Points.GetBalance))
	r.GET("/api/v1/points/ledger", authMiddleware(handlers.Points.GetLedger))
	r.POST("/api/v1/points/adjust", authMiddleware(handlers.Points.Adjust))

	// Analytics
	r.GET("/api/v1/analytics/overview", authMiddleware(handlers.Analytics.GetOverview))
	r.GET("/api/v1/analytics/members/{id}", authMiddleware(handlers.Analytics.GetMemberOverview))

	// Live activity feed
	r.GET("/api/v1/events", authMiddleware(handlers.Events.GetEvents))

	return r
}
