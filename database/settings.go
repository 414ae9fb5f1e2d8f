package database

import (
	"context"
	"fmt"

	"github.com/1rvyn/web-stories-editor/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Settings struct {
	db *gorm.DB
}

func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// ForSite loads the settings of site, creating the row with defaults the
// first time a site asks for it.
func (r *Settings) ForSite(ctx context.Context, site string) (*models.Settings, error) {
	duration := models.DefaultPageDuration
	var settings models.Settings
	err := r.db.WithContext(ctx).
		Where(models.Settings{Site: site}).
		Attrs(models.Settings{DefaultPageDuration: &duration}).
		FirstOrCreate(&settings).Error
	if err != nil {
		return nil, fmt.Errorf("loading settings for %q: %w", site, err)
	}
	logos, err := r.Logos(ctx, settings.ID)
	if err != nil {
		return nil, err
	}
	settings.PublisherLogos = logos
	return &settings, nil
}

func (r *Settings) Save(ctx context.Context, settings *models.Settings) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(settings).Error
}

func (r *Settings) Logos(ctx context.Context, settingsID uint) ([]models.PublisherLogo, error) {
	var logos []models.PublisherLogo
	err := r.db.WithContext(ctx).Preload("Image").
		Where("settings_id = ?", settingsID).
		Order("sort_order").Order("id").Find(&logos).Error
	return logos, err
}

// AddLogos attaches images that are not yet logos, in the given order. If
// no logo is the default afterwards, the first one becomes it.
func (r *Settings) AddLogos(ctx context.Context, settingsID uint, imageIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.PublisherLogo
		if err := tx.Where("settings_id = ?", settingsID).Order("sort_order").Find(&existing).Error; err != nil {
			return err
		}
		have := make(map[uint]bool, len(existing))
		next := 0
		for _, l := range existing {
			have[l.ImageID] = true
			if l.SortOrder >= next {
				next = l.SortOrder + 1
			}
		}

		for _, id := range imageIDs {
			if have[id] {
				continue
			}
			var count int64
			if err := tx.Model(&models.Image{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("image %d: %w", id, models.ErrNotFound)
			}
			logo := models.PublisherLogo{SettingsID: settingsID, ImageID: id, SortOrder: next}
			if err := tx.Create(&logo).Error; err != nil {
				return err
			}
			have[id] = true
			next++
		}
		return ensureDefaultLogo(tx, settingsID)
	})
}

// RemoveLogo detaches the logo showing imageID.
func (r *Settings) RemoveLogo(ctx context.Context, settingsID, imageID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("settings_id = ? AND image_id = ?", settingsID, imageID).Delete(&models.PublisherLogo{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return ensureDefaultLogo(tx, settingsID)
	})
}

// SetDefaultLogo makes the logo showing imageID the only default.
func (r *Settings) SetDefaultLogo(ctx context.Context, settingsID, imageID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var logo models.PublisherLogo
		err := tx.Where("settings_id = ? AND image_id = ?", settingsID, imageID).First(&logo).Error
		if err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.PublisherLogo{}).Where("settings_id = ?", settingsID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&logo).Update("is_default", true).Error
	})
}

func ensureDefaultLogo(tx *gorm.DB, settingsID uint) error {
	var defaults int64
	if err := tx.Model(&models.PublisherLogo{}).
		Where("settings_id = ? AND is_default = ?", settingsID, true).
		Count(&defaults).Error; err != nil {
		return err
	}
	if defaults > 0 {
		return nil
	}
	var first models.PublisherLogo
	err := tx.Where("settings_id = ?", settingsID).Order("sort_order").Order("id").Limit(1).Find(&first).Error
	if err != nil || first.ID == 0 {
		return err
	}
	return tx.Model(&first).Update("is_default", true).Error
}
