package database

import (
	"context"

	"github.com/1rvyn/web-stories-editor/models"
	"gorm.io/gorm"
)

// page runs q newest first and counts every row it matches.
func page[T any](q *gorm.DB, offset, limit int) ([]T, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []T
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

type MediaItems struct {
	db *gorm.DB
}

func NewMediaItems(db *gorm.DB) *MediaItems {
	return &MediaItems{db: db}
}

func (r *MediaItems) Create(ctx context.Context, item *models.MediaItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *MediaItems) Get(ctx context.Context, id uint) (*models.MediaItem, error) {
	var item models.MediaItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// Page lists media items newest first. An empty mediaType lists every kind.
func (r *MediaItems) Page(ctx context.Context, mediaType string, offset, limit int) ([]models.MediaItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.MediaItem{})
	if mediaType != "" {
		q = q.Where("type = ?", mediaType)
	}
	return page[models.MediaItem](q, offset, limit)
}

type Documents struct {
	db *gorm.DB
}

func NewDocuments(db *gorm.DB) *Documents {
	return &Documents{db: db}
}

func (r *Documents) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *Documents) Get(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (r *Documents) Page(ctx context.Context, offset, limit int) ([]models.Document, int64, error) {
	return page[models.Document](r.db.WithContext(ctx).Model(&models.Document{}), offset, limit)
}
