// Package sse implements Server-Sent Events for broadcasting recipe changes.
package sse

import (
	"time"

	"github.com/recipebox/recipebox-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventRecipeCreated is sent after a recipe is stored.
	EventRecipeCreated EventType = "recipe.created"
	// EventRecipeDeleted is sent after a recipe is removed.
	EventRecipeDeleted EventType = "recipe.deleted"

	// EventHeartbeat keeps idle connections open through proxies.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// RecipeDeletedEventData is the payload of recipe.deleted.
type RecipeDeletedEventData struct {
	ID string `json:"id"`
}

// HeartbeatEventData is the payload of heartbeat.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewRecipeCreatedEvent creates a recipe.created event carrying the stored recipe.
func NewRecipeCreatedEvent(r *domain.Recipe) Event {
	return Event{
		Type:      EventRecipeCreated,
		Data:      r,
		Timestamp: time.Now(),
	}
}

// NewRecipeDeletedEvent creates a recipe.deleted event.
func NewRecipeDeletedEvent(id string) Event {
	return Event{
		Type:      EventRecipeDeleted,
		Data:      RecipeDeletedEventData{ID: id},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
