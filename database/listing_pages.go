package database

import (
	"context"

	"github.com/1rvyn/web-stories-editor/models"
	"gorm.io/gorm"
)

type ListingPages struct {
	db *gorm.DB
}

func NewListingPages(db *gorm.DB) *ListingPages {
	return &ListingPages{db: db}
}

// Live returns the live listing page, or nil when there is none.
func (r *ListingPages) Live(ctx context.Context) (*models.ListingPage, error) {
	var pages []models.ListingPage
	err := r.db.WithContext(ctx).Where("live = ?", true).Order("id").Limit(1).Find(&pages).Error
	if err != nil || len(pages) == 0 {
		return nil, err
	}
	return &pages[0], nil
}

// Put stores page as the only listing page, updating the existing row if any.
func (r *ListingPages) Put(ctx context.Context, page *models.ListingPage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.ListingPage
		if err := tx.Order("id").Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) > 0 {
			page.ID = existing[0].ID
		}
		return tx.Save(page).Error
	})
}
