// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for delayed task
// descriptors, including the atomic claim used by the delivery sweep.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
)

// CreateDelayedTask persists a task descriptor with a due time. Scheduling
// has no side effect beyond this insert; the sweep picks the row up once
// due_at passes.
func CreateDelayedTask(ctx context.Context, db *gorm.DB, taskName, args string, dueAt time.Time) (*domain.DelayedTask, error) {
	t := &domain.DelayedTask{
		ID:        uuid.NewString(),
		TaskName:  taskName,
		Args:      args,
		DueAt:     dueAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// DueTasks returns undelivered tasks whose due time has passed, oldest first.
func DueTasks(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.DelayedTask, error) {
	q := db.WithContext(ctx).
		Where("started_at IS NULL AND due_at <= ?", now.UTC()).
		Order("due_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.DelayedTask
	err := q.Find(&out).Error
	return out, err
}

// ClaimTask marks a task started if and only if it is still unclaimed. The
// conditional update makes the claim atomic under concurrent sweeps: exactly
// one caller observes claimed=true for a given task.
func ClaimTask(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.DelayedTask{}).
		Where("id = ? AND started_at IS NULL", id).
		Update("started_at", now.UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
