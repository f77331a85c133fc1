package session

import (
	"context"
	"time"
)

// Lifecycle event types published on the events channel.
const (
	EventRacked         = "table_racked"
	EventResized        = "table_resized"
	EventCueDragStarted = "cue_drag_started"
	EventCueDragEnded   = "cue_drag_ended"
	EventClosed         = "table_closed"
)

// TableEvent is a lifecycle notification for one table.
type TableEvent struct {
	Type  string                 `json:"type"`
	Table string                 `json:"table"`
	Data  map[string]interface{} `json:"data,omitempty"`
	At    int64                  `json:"at"`
}

// EventPublisher fans lifecycle events out to other processes.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event TableEvent)
}

func newEvent(eventType, table string, data map[string]interface{}) TableEvent {
	return TableEvent{Type: eventType, Table: table, Data: data, At: time.Now().Unix()}
}

type nopPublisher struct{}

func (nopPublisher) PublishEvent(context.Context, TableEvent) {}
