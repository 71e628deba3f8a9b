package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/onegreenvn/outreach-campaign-dashboard/docs"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/config"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/middleware"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/router"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/orchestration"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/services/tracker"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Set Swagger base path dynamically
	docs.SwaggerInfo.BasePath = cfg.BasePath

	configureLogging(cfg.LogLevel)

	if utils.InitSentry() {
		defer utils.FlushSentry()
	}

	orchestrationConfig := config.GetOrchestrationConfig()
	logrus.Infof("Orchestration service: %s", orchestrationConfig.BaseURL)
	client := orchestration.NewClient(orchestrationConfig)

	// Shared SSE hub for campaign views and worker events
	sseHub := services.NewSSEHub()
	sseHub.Start(cfg.SSEHeartbeatInterval)
	defer sseHub.Stop()

	sessions := services.NewCampaignSessionService(client, sseHub, tracker.RegistryOptions{
		IdleTTL:       cfg.TrackerIdleTTL,
		SweepInterval: cfg.TrackerSweepInterval,
		Tracker:       tracker.Options{Interval: cfg.CampaignPollInterval},
	})
	sessions.Start()
	defer sessions.Stop()

	planner := services.NewCampaignPlannerService(client, sessions)

	// Worker events only shorten the wait for the next poll, so the broker is optional
	rabbitMQService, err := services.NewRabbitMQService(cfg.RabbitMQ)
	if err != nil {
		logrus.Warnf("Failed to initialize RabbitMQ: %v", err)
	} else {
		defer rabbitMQService.Close()

		eventService := services.NewCampaignEventService(rabbitMQService, sessions.Registry(), sseHub, cfg.RabbitMQ.EventQueue)
		if err := eventService.StartRabbitMQConsumer(); err != nil {
			logrus.Warnf("Failed to start RabbitMQ campaign event consumer: %v", err)
		} else {
			logrus.Info("RabbitMQ campaign event consumer started")
			defer eventService.StopRabbitMQConsumer()
		}
	}

	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.ActionRateLimit), cfg.ActionBurst)
	defer rateLimiter.Stop()

	r := router.SetupRouter(router.Dependencies{
		Config:      cfg,
		Sessions:    sessions,
		Planner:     planner,
		SSEHub:      sseHub,
		RateLimiter: rateLimiter,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", cfg.Port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", cfg.Port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// SSE streams end once their trackers stop, so stop them before draining connections
	sessions.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logrus.Info("Server exited properly")
}

func configureLogging(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
