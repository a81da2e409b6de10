// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Action
// aggregate and its owning tool records.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an action is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service layer
// and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateAction inserts a new Action row with a generated UUID.
func CreateAction(ctx context.Context, db *gorm.DB) (*domain.Action, error) {
	a := &domain.Action{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetAction fetches an Action by id, or ErrNotFound if missing.
func GetAction(ctx context.Context, db *gorm.DB, id string) (*domain.Action, error) {
	var a domain.Action
	if err := db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ActionExists reports whether an Action with the given id exists.
func ActionExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Action{}).
		Where("id = ?", id).
		Count(&n).Error
	return n > 0, err
}

// GetSourceItem returns the single tool record owning the action, trying each
// tool table in turn. It returns (nil, nil) when no tool record claims the
// action: that is a legal state for a freshly created handle, not an error.
func GetSourceItem(ctx context.Context, db *gorm.DB, actionID string) (domain.ToolRecord, error) {
	var br domain.BallotRequest
	err := db.WithContext(ctx).First(&br, "action_id = ?", actionID).Error
	if err == nil {
		return br, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var reg domain.Registration
	err = db.WithContext(ctx).First(&reg, "action_id = ?", actionID).Error
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var rem domain.ReminderRequest
	err = db.WithContext(ctx).First(&rem, "action_id = ?", actionID).Error
	if err == nil {
		return rem, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var lk domain.Lookup
	err = db.WithContext(ctx).First(&lk, "action_id = ?", actionID).Error
	if err == nil {
		return lk, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

// GetBallotRequest fetches a ballot request by id, or ErrNotFound.
func GetBallotRequest(ctx context.Context, db *gorm.DB, id string) (*domain.BallotRequest, error) {
	var br domain.BallotRequest
	if err := db.WithContext(ctx).First(&br, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &br, nil
}

// CreateBallotRequest inserts a ballot request row bound to an action.
func CreateBallotRequest(ctx context.Context, db *gorm.DB, br *domain.BallotRequest) error {
	if br.ID == "" {
		br.ID = uuid.NewString()
	}
	br.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(br).Error
}
