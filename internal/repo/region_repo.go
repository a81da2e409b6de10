// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for regions,
// per-region ballot-delivery override links, and statewide information
// fields.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
)

// ListRegionsByState returns every region in the given state.
func ListRegionsByState(ctx context.Context, db *gorm.DB, state string) ([]domain.Region, error) {
	var out []domain.Region
	err := db.WithContext(ctx).
		Where("state = ?", state).
		Find(&out).Error
	return out, err
}

// ReplaceRegionLinks atomically replaces all override links for one state's
// regions with the given set: stale rows are removed and the new rows are
// inserted in a single transaction. Rolling back on any failure leaves the
// previous links untouched, which is what the refresh contract requires.
func ReplaceRegionLinks(ctx context.Context, db *gorm.DB, state string, links []domain.RegionOVBMLink) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("region_id IN (?)",
				tx.Model(&domain.Region{}).Select("external_id").Where("state = ?", state),
			).
			Delete(&domain.RegionOVBMLink{}).Error
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range links {
			if links[i].ID == "" {
				links[i].ID = uuid.NewString()
			}
			links[i].CreatedAt = now
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}

// GetRegionLink returns the override link for a region, or nil when the
// region has none.
func GetRegionLink(ctx context.Context, db *gorm.DB, regionID int64) (*domain.RegionOVBMLink, error) {
	var link domain.RegionOVBMLink
	err := db.WithContext(ctx).First(&link, "region_id = ?", regionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// CountRegionLinks returns the total number of stored override links.
func CountRegionLinks(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.RegionOVBMLink{}).Count(&n).Error
	return n, err
}

// GetStateInfo returns a state's information field, or nil when the field is
// not present for that state.
func GetStateInfo(ctx context.Context, db *gorm.DB, state, fieldType string) (*domain.StateInformation, error) {
	var info domain.StateInformation
	err := db.WithContext(ctx).
		First(&info, "state = ? AND field_type = ?", state, fieldType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}
