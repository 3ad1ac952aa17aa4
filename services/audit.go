package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/heavensdreams/rental-api/models"
)

// RecordLog appends an audit entry to the document. Values that fail to
// marshal are recorded without a snapshot rather than blocking the mutation.
func RecordLog(doc *models.Document, userID, action, entityType, entityID string, oldValue, newValue any) {
	entry := models.LogEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
	}
	if oldValue != nil {
		if data, err := json.Marshal(oldValue); err == nil {
			entry.OldValue = data
		}
	}
	if newValue != nil {
		if data, err := json.Marshal(newValue); err == nil {
			entry.NewValue = data
		}
	}
	doc.Logs = append(doc.Logs, entry)
}
