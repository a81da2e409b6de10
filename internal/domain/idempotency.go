package domain

import "time"

// Idempotency records a previously processed tracking request, keyed by
// (client_id, action_id, key). Event ingestion is open to anonymous embed
// clients that retry aggressively on flaky connections; a stored record lets
// a retried POST be acknowledged without appending a duplicate event.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	ClientID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_action_key,priority:1"`
	ActionID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_action_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_action_key,priority:3"`
	EventID   string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
