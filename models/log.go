package models

import (
	"encoding/json"
	"time"
)

// LogEntry is an append-only audit record. Old/new values are compact JSON
// snapshots of the entity around the mutation.
type LogEntry struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}
