package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dkondrashov/marketplace-backend/internal/config"
	"github.com/dkondrashov/marketplace-backend/internal/http/handlers"
	"github.com/dkondrashov/marketplace-backend/internal/http/middleware"
	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	walletHandler *handlers.WalletHandler,
	jobHandler *handlers.JobHandler,
	applicationHandler *handlers.ApplicationHandler,
	milestoneHandler *handlers.MilestoneHandler,
	escrowHandler *handlers.EscrowHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/jobs", jobHandler.ListOpen)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.POST("/wallet/deposit", walletHandler.Deposit)
		protected.POST("/wallet/withdraw", walletHandler.Withdraw)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)

		protected.GET("/jobs/mine",
			middleware.RequireRole(models.RoleEmployer), jobHandler.ListMine)
		protected.GET("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.GetJob)
		protected.GET("/jobs/:id/budget", middleware.UUIDValidator("id"), jobHandler.RemainingBudget)
		protected.POST("/jobs",
			middleware.RequireRole(models.RoleEmployer), jobHandler.PostJob)

		protected.POST("/jobs/:id/apply",
			middleware.RequireRole(models.RoleFreelancer), middleware.UUIDValidator("id"), applicationHandler.Apply)
		protected.GET("/jobs/:id/applicants",
			middleware.RequireRole(models.RoleEmployer), middleware.UUIDValidator("id"), applicationHandler.ListApplicants)
		protected.GET("/applications",
			middleware.RequireRole(models.RoleFreelancer), applicationHandler.ListMy)
		protected.POST("/applications/:id/accept",
			middleware.RequireRole(models.RoleEmployer), middleware.UUIDValidator("id"), applicationHandler.Accept)
		protected.POST("/applications/:id/reject",
			middleware.RequireRole(models.RoleEmployer), middleware.UUIDValidator("id"), applicationHandler.Reject)

		protected.POST("/jobs/:id/milestones",
			middleware.RequireRole(models.RoleEmployer), middleware.UUIDValidator("id"), milestoneHandler.AddMilestone)
		protected.GET("/jobs/:id/milestones", middleware.UUIDValidator("id"), milestoneHandler.ListJobMilestones)
		protected.POST("/milestones/:id/submit",
			middleware.RequireRole(models.RoleFreelancer), middleware.UUIDValidator("id"), milestoneHandler.Submit)
		protected.POST("/milestones/:id/approve",
			middleware.RequireRole(models.RoleEmployer), middleware.UUIDValidator("id"), milestoneHandler.Approve)

		protected.GET("/escrow",
			middleware.RequireRole(models.RoleFreelancer), escrowHandler.ListMine)
		protected.POST("/jobs/:id/finalize",
			middleware.RequireRole(models.RoleFreelancer), middleware.UUIDValidator("id"), escrowHandler.Finalize)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.CountUnread)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	return r
}
