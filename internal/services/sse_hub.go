package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SSEHub fans out Server-Sent Events to dashboard streams
type SSEHub struct {
	// Map of stream keys to channels
	// Key format: "session:user_id:campaign_id"
	clients map[string]map[chan []byte]bool
	mu      sync.RWMutex

	stopChan chan bool
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]map[chan []byte]bool),
	}
}

// SessionStreamKey addresses the streams of one user's view of a campaign
func SessionStreamKey(userID, campaignID string) (string, string) {
	return "session", userID + ":" + campaignID
}

// RegisterClient registers a new SSE client for an entity
func (h *SSEHub) RegisterClient(entityType, entityID string) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := fmt.Sprintf("%s:%s", entityType, entityID)
	clientChan := make(chan []byte, 10)

	if h.clients[key] == nil {
		h.clients[key] = make(map[chan []byte]bool)
	}
	h.clients[key][clientChan] = true

	logrus.Infof("SSE client registered for %s (total clients: %d)", key, len(h.clients[key]))
	return clientChan
}

// UnregisterClient unregisters an SSE client
func (h *SSEHub) UnregisterClient(entityType, entityID string, clientChan chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := fmt.Sprintf("%s:%s", entityType, entityID)
	if h.clients[key] != nil {
		if _, ok := h.clients[key][clientChan]; ok {
			delete(h.clients[key], clientChan)
			close(clientChan)
		}

		if len(h.clients[key]) == 0 {
			delete(h.clients, key)
		}
	}

	logrus.Infof("SSE client unregistered for %s (remaining clients: %d)", key, len(h.clients[key]))
}

// Broadcast sends payload as a named event to every client of the entity
func (h *SSEHub) Broadcast(entityType, entityID, event string, payload interface{}) {
	message, err := FormatEvent(event, payload)
	if err != nil {
		logrus.Errorf("Failed to marshal %s event for SSE: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	key := fmt.Sprintf("%s:%s", entityType, entityID)
	for clientChan := range h.clients[key] {
		select {
		case clientChan <- message:
		default:
			// Channel is full, skip this client
			logrus.Warnf("SSE client channel full, skipping: %s", key)
		}
	}
}

// FormatEvent encodes payload as an SSE message with an event type
func FormatEvent(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, string(data))), nil
}

// GetClientCount returns the number of clients for a specific entity
func (h *SSEHub) GetClientCount(entityType, entityID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	key := fmt.Sprintf("%s:%s", entityType, entityID)
	if clients, exists := h.clients[key]; exists {
		return len(clients)
	}
	return 0
}

// SendHeartbeat sends a heartbeat comment to every connected client
func (h *SSEHub) SendHeartbeat() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	heartbeat := []byte(fmt.Sprintf(": heartbeat %s\n\n", time.Now().Format(time.RFC3339)))
	for _, clients := range h.clients {
		for clientChan := range clients {
			select {
			case clientChan <- heartbeat:
			default:
			}
		}
	}
}

// Start sends heartbeats on interval to keep idle streams open through proxies
func (h *SSEHub) Start(interval time.Duration) {
	h.stopChan = make(chan bool)
	stopChan := h.stopChan

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				h.SendHeartbeat()
			case <-stopChan:
				logrus.Info("SSE heartbeat stopped")
				return
			}
		}
	}()

	logrus.Infof("SSE heartbeat started (interval: %v)", interval)
}

// Stop stops the heartbeat loop
func (h *SSEHub) Stop() {
	if h.stopChan != nil {
		close(h.stopChan)
		h.stopChan = nil
	}
}
