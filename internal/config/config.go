package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

// Config holds the dashboard backend settings
type Config struct {
	Port     string
	BasePath string
	LogLevel string

	JWTSecret string

	CampaignPollInterval time.Duration
	TrackerIdleTTL       time.Duration
	TrackerSweepInterval time.Duration
	SSEHeartbeatInterval time.Duration

	// ActionRateLimit is the number of control actions per second allowed per user
	ActionRateLimit float64
	ActionBurst     int

	RabbitMQ RabbitMQConfig
}

// RabbitMQConfig holds the broker connection the worker publishes campaign events to
type RabbitMQConfig struct {
	Host       string
	Port       string
	User       string
	Pass       string
	EventQueue string
}

// Load reads configuration from environment variables
func Load() *Config {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = defaultJWTSecret
		logrus.Warn("JWT_SECRET not set, using default secret for bearer token validation")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		BasePath: getEnv("BASE_PATH", "/outreach-dashboard-api"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: jwtSecret,

		CampaignPollInterval: getEnvAsDuration("CAMPAIGN_POLL_INTERVAL", 30*time.Second),
		TrackerIdleTTL:       getEnvAsDuration("TRACKER_IDLE_TTL", 10*time.Minute),
		TrackerSweepInterval: getEnvAsDuration("TRACKER_SWEEP_INTERVAL", time.Minute),
		SSEHeartbeatInterval: getEnvAsDuration("SSE_HEARTBEAT_INTERVAL", 15*time.Second),

		ActionRateLimit: getEnvAsFloat("ACTION_RATE_LIMIT", 1),
		ActionBurst:     getEnvAsInt("ACTION_BURST", 3),

		RabbitMQ: RabbitMQConfig{
			Host:       getEnv("RABBITMQ_HOST", "localhost"),
			Port:       getEnv("RABBITMQ_PORT", "5672"),
			User:       getEnv("RABBITMQ_USER", "guest"),
			Pass:       getEnv("RABBITMQ_PASS", "guest"),
			EventQueue: getEnv("RABBITMQ_CAMPAIGN_EVENT_QUEUE", "campaign_events"),
		},
	}
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
