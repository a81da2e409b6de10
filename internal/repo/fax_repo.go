// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for outbound fax
// dispatch records.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
)

// CreateFax inserts a dispatch record in PENDING state with a fresh
// correlation token.
func CreateFax(ctx context.Context, db *gorm.DB, storageItemID, to, onCompleteTask, onCompleteTaskArg string) (*domain.Fax, error) {
	f := &domain.Fax{
		ID:                uuid.NewString(),
		Token:             uuid.NewString(),
		StorageItemID:     storageItemID,
		To:                to,
		Status:            domain.FaxPending,
		OnCompleteTask:    onCompleteTask,
		OnCompleteTaskArg: onCompleteTaskArg,
		CreatedAt:         time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// GetFax fetches a fax by id, or ErrNotFound.
func GetFax(ctx context.Context, db *gorm.DB, id string) (*domain.Fax, error) {
	var f domain.Fax
	if err := db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// GetStorageItem fetches a storage item by id, or ErrNotFound.
func GetStorageItem(ctx context.Context, db *gorm.DB, id string) (*domain.StorageItem, error) {
	var s domain.StorageItem
	if err := db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStorageItem inserts a storage item row.
func CreateStorageItem(ctx context.Context, db *gorm.DB, fileURL string) (*domain.StorageItem, error) {
	s := &domain.StorageItem{
		ID:        uuid.NewString(),
		FileURL:   fileURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// TransitionFax records a gateway-reported status if and only if the fax is
// still in a non-terminal state. The conditional update is what makes
// redelivered callbacks no-ops: once a terminal status lands, later callbacks
// affect zero rows and the caller sees applied=false.
func TransitionFax(ctx context.Context, db *gorm.DB, id string, status domain.FaxStatus, message string, at time.Time) (bool, error) {
	ts := at.UTC()
	res := db.WithContext(ctx).
		Model(&domain.Fax{}).
		Where("id = ? AND status IN ?", id, []domain.FaxStatus{domain.FaxPending, domain.FaxTemporaryFailure}).
		Updates(map[string]any{
			"status":         status,
			"status_message": message,
			"status_at":      ts,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
