package config

import (
	"fmt"
	"strings"
	"time"
)

// OrchestrationConfig contains the remote orchestration service configuration
type OrchestrationConfig struct {
	Name    string            `json:"name"`
	BaseURL string            `json:"base_url"`
	Timeout time.Duration     `json:"timeout"`
	Routes  map[string]string `json:"routes"`
}

// GetOrchestrationConfig returns orchestration service configuration from the environment
func GetOrchestrationConfig() *OrchestrationConfig {
	return &OrchestrationConfig{
		Name:    "Orchestration",
		BaseURL: strings.TrimRight(getEnv("ORCHESTRATION_BASE_URL", "http://localhost:8000/api"), "/"),
		Timeout: getEnvAsDuration("ORCHESTRATION_TIMEOUT", 30*time.Second),
		Routes: map[string]string{
			// Campaign status & control
			"campaign_status": "/campaign/{campaign_id}/status", //Get Method
			"campaign_pause":  "/campaign/{campaign_id}/pause",  //Post Method
			"campaign_resume": "/campaign/{campaign_id}/resume", //Post Method
			"campaign_cancel": "/campaign/{campaign_id}/cancel", //Post Method

			// Orchestration
			"orchestration_start": "/orchestration/start", //Post Method

			// Auth collaborator
			"current_user": getEnv("ORCHESTRATION_CURRENT_USER_PATH", "/auth/me"), //Get Method
		},
	}
}

// Route returns the path for name with {placeholders} substituted
func (c *OrchestrationConfig) Route(name string, params map[string]string) (string, error) {
	route, exists := c.Routes[name]
	if !exists {
		return "", fmt.Errorf("%s route not found in %s config", name, c.Name)
	}
	for key, value := range params {
		route = strings.ReplaceAll(route, "{"+key+"}", value)
	}
	return route, nil
}
