// Package events contains the WebSocket message contracts of the dashboard.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle
	MessageTypeDatasetReloaded    MessageType = "dataset:reloaded"
	MessageTypeDatasetInvalidated MessageType = "dataset:invalidated"
	MessageTypeDatasetError       MessageType = "dataset:error"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetEvent is the payload of dataset lifecycle messages
type DatasetEvent struct {
	SourcePath string         `json:"source_path"`
	Rows       int            `json:"rows,omitempty"`
	Dropped    map[string]int `json:"dropped,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Error      string         `json:"error,omitempty"`
}
