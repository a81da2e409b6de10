// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// event log.
//
// The log exposes no update or delete path: events are immutable once
// recorded, and the status projection is always computed from the full set.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
)

// CreateEvent appends an immutable event to an action's log. No validation
// happens here beyond the database constraints; the service layer checks the
// event type against the closed enumeration and the action's existence.
func CreateEvent(ctx context.Context, db *gorm.DB, actionID string, eventType domain.EventType) (*domain.Event, error) {
	e := &domain.Event{
		ID:        uuid.NewString(),
		ActionID:  actionID,
		EventType: eventType,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// EventsForAction returns every event recorded for the action. No ordering is
// imposed: the projection is order-independent by construction, and display
// consumers sort separately.
func EventsForAction(ctx context.Context, db *gorm.DB, actionID string) ([]domain.Event, error) {
	var out []domain.Event
	err := db.WithContext(ctx).
		Where("action_id = ?", actionID).
		Find(&out).Error
	return out, err
}

// ListEvents returns the action's events ordered by creation time descending
// (most recent first), for display consumers.
func ListEvents(ctx context.Context, db *gorm.DB, actionID string, limit int) ([]domain.Event, error) {
	q := db.WithContext(ctx).
		Where("action_id = ?", actionID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Event
	err := q.Find(&out).Error
	return out, err
}

// HasEventOfType reports whether the action has at least one event whose type
// is in the given set.
func HasEventOfType(ctx context.Context, db *gorm.DB, actionID string, types []domain.EventType) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("action_id = ? AND event_type IN ?", actionID, types).
		Count(&n).Error
	return n > 0, err
}
