package models

import "time"

// AuditLog rows are write-only from the services; the table assigns its own
// serial id.
type AuditLog struct {
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
