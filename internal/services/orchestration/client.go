package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/config"
	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
)

var (
	// ErrInsufficientCredits is returned when the service answers 402
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrUnauthenticated is returned when the service rejects the caller's credentials
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned when the requested resource does not exist
	ErrNotFound = errors.New("not found")
	// ErrMalformedResponse is returned when a 2xx body cannot be decoded
	ErrMalformedResponse = errors.New("malformed response from orchestration service")
)

// APIError is a non-2xx answer from the orchestration service
type APIError struct {
	StatusCode int
	// Message is the human readable error taken from the response payload, if any
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("orchestration service returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("orchestration service returned status %d", e.StatusCode)
}

// Is maps well-known status codes onto the package's sentinel errors
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInsufficientCredits:
		return e.StatusCode == http.StatusPaymentRequired
	case ErrUnauthenticated:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Client is the authenticated request primitive towards the orchestration service
type Client struct {
	config     *config.OrchestrationConfig
	httpClient *http.Client
	token      string
	users      *singleflight.Group
}

// NewClient creates an unauthenticated client; use WithToken per user
func NewClient(cfg *config.OrchestrationConfig) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		users: &singleflight.Group{},
	}
}

// WithToken returns a copy of the client that sends token as bearer credentials
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// GetCampaignStatus fetches the latest campaign snapshot
func (c *Client) GetCampaignStatus(ctx context.Context, campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := c.do(ctx, http.MethodGet, "campaign_status", map[string]string{"campaign_id": campaignID}, nil, &campaign)
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// PerformAction sends pause, resume or cancel and returns the updated snapshot
func (c *Client) PerformAction(ctx context.Context, campaignID string, action models.CampaignAction) (*models.Campaign, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("unsupported campaign action %q", action)
	}

	var campaign models.Campaign
	err := c.do(ctx, http.MethodPost, "campaign_"+string(action), map[string]string{"campaign_id": campaignID}, nil, &campaign)
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// StartOrchestration creates a campaign. A 402 answer matches ErrInsufficientCredits.
func (c *Client) StartOrchestration(ctx context.Context, req *models.StartOrchestrationRequest) (*models.StartOrchestrationResponse, error) {
	var resp models.StartOrchestrationResponse
	if err := c.do(ctx, http.MethodPost, "orchestration_start", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.CampaignID == "" {
		return nil, fmt.Errorf("%w: missing campaign_id", ErrMalformedResponse)
	}
	return &resp, nil
}

// GetCurrentUser returns the caller's user record. Concurrent lookups for the
// same credentials share one request.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.CurrentUser, error) {
	v, err, shared := c.users.Do(c.token, func() (interface{}, error) {
		var user models.CurrentUser
		if err := c.do(ctx, http.MethodGet, "current_user", nil, nil, &user); err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logrus.Debug("Current user lookup shared with a concurrent request")
	}
	user := v.(models.CurrentUser)
	return &user, nil
}

func (c *Client) do(ctx context.Context, method, routeName string, params map[string]string, body, out interface{}) error {
	escaped := make(map[string]string, len(params))
	for key, value := range params {
		escaped[key] = url.PathEscape(value)
	}
	route, err := c.config.Route(routeName, escaped)
	if err != nil {
		return err
	}
	apiURL := c.config.BaseURL + route

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to orchestration service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.Debugf("%s %s returned %d: %s", method, route, resp.StatusCode, string(respBody))
		return &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(respBody)}
	}

	return decodeBody(respBody, out)
}

// decodeBody accepts both a bare object and one wrapped in a "data" envelope
func decodeBody(body []byte, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if data, ok := envelope["data"]; ok && len(data) > 0 && data[0] == '{' {
		body = data
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// extractErrorMessage pulls a human readable message out of an error payload
func extractErrorMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"error", "detail", "message"} {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
		case []interface{}:
			if len(v) > 0 {
				if first, ok := v[0].(map[string]interface{}); ok {
					if msg, ok := first["msg"].(string); ok && msg != "" {
						return msg
					}
				}
			}
		}
	}
	return ""
}
