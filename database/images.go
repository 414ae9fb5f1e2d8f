package database

import (
	"context"

	"github.com/1rvyn/web-stories-editor/models"
	"gorm.io/gorm"
)

type Images struct {
	db *gorm.DB
}

func NewImages(db *gorm.DB) *Images {
	return &Images{db: db}
}

func (r *Images) Create(ctx context.Context, img *models.Image) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *Images) Get(ctx context.Context, id uint) (*models.Image, error) {
	var img models.Image
	if err := r.db.WithContext(ctx).First(&img, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &img, nil
}

// Page lists images newest first together with the total count.
func (r *Images) Page(ctx context.Context, offset, limit int) ([]models.Image, int64, error) {
	return page[models.Image](r.db.WithContext(ctx).Model(&models.Image{}), offset, limit)
}
