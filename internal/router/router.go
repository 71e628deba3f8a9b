package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/config"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/handlers"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/middleware"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services"
)

// Dependencies are the long-lived services the routes are served from.
// All of them are required; the caller owns their lifecycle.
type Dependencies struct {
	Config      *config.Config
	Sessions    *services.CampaignSessionService
	Planner     *services.CampaignPlannerService
	SSEHub      *services.SSEHub
	RateLimiter *middleware.RateLimiter
}

// SetupRouter configures the Gin router with the campaign dashboard routes
func SetupRouter(deps Dependencies) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(middleware.SentryRecovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(deps.Config.JWTSecret)

	rateLimiter := deps.RateLimiter

	campaignHandler := handlers.NewCampaignHandler(deps.Sessions, deps.SSEHub)
	orchestrationHandler := handlers.NewOrchestrationHandler(deps.Planner)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logrus.Info("Swagger UI endpoint registered at /swagger/index.html")

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":   "ok",
				"time":     time.Now().Format(time.RFC3339),
				"trackers": deps.Sessions.Registry().Len(),
			})
		})

		protected := api.Group("")
		protected.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			campaigns := protected.Group("/campaigns/:id")
			{
				campaigns.GET("", campaignHandler.GetCampaign)
				campaigns.POST("/refresh", campaignHandler.RefreshCampaign)
				campaigns.GET("/history", campaignHandler.GetHistory)
				campaigns.GET("/history/export", campaignHandler.ExportHistory)
				campaigns.GET("/stream", campaignHandler.StreamCampaign)

				// Control actions are user initiated; bursts are double submissions
				actions := campaigns.Group("", rateLimiter.Middleware())
				actions.POST("/pause", campaignHandler.PauseCampaign)
				actions.POST("/resume", campaignHandler.ResumeCampaign)
				actions.POST("/cancel/request", campaignHandler.RequestCancel)
				actions.POST("/cancel/dismiss", campaignHandler.DismissCancel)
				actions.POST("/cancel", campaignHandler.ConfirmCancel)
			}

			protected.POST("/duration/preview", orchestrationHandler.PreviewDuration)
			protected.POST("/orchestration/start", rateLimiter.Middleware(), orchestrationHandler.StartOrchestration)
		}
	}

	return r
}
