package database

import (
	"context"
	"errors"
	"strconv"

	"github.com/1rvyn/web-stories-editor/models"
	"gorm.io/gorm"
)

// slugAttempts bounds how often a write re-derives the slug after losing a
// race on the unique index.
const slugAttempts = 3

type Stories struct {
	db *gorm.DB
}

func NewStories(db *gorm.DB) *Stories {
	return &Stories{db: db}
}

func (r *Stories) Get(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &story, nil
}

// GetLive resolves a public identifier: a numeric id first, then a slug.
func (r *Stories) GetLive(ctx context.Context, identifier string) (*models.Story, error) {
	var story models.Story
	q := r.db.WithContext(ctx).Where("live = ?", true)
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", identifier)
	}
	if err := q.First(&story).Error; err != nil {
		return nil, notFound(err)
	}
	return &story, nil
}

// Create inserts a story and its first revision.
func (r *Stories) Create(ctx context.Context, story *models.Story, userID *uint) (*models.Revision, error) {
	var rev *models.Revision
	err := r.writeWithSlug(ctx, story, func(tx *gorm.DB) error {
		if err := tx.Create(story).Error; err != nil {
			return err
		}
		var err error
		rev, err = saveRevision(tx, story, models.SnapshotOf(story, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Save writes every field of story.
func (r *Stories) Save(ctx context.Context, story *models.Story) error {
	return r.writeWithSlug(ctx, story, func(tx *gorm.DB) error {
		return tx.Save(story).Error
	})
}

// SaveRevision writes story and appends rev to its history.
func (r *Stories) SaveRevision(ctx context.Context, story *models.Story, rev *models.Revision) error {
	return r.writeWithSlug(ctx, story, func(tx *gorm.DB) error {
		if err := tx.Save(story).Error; err != nil {
			return err
		}
		_, err := saveRevision(tx, story, rev)
		return err
	})
}

func saveRevision(tx *gorm.DB, story *models.Story, rev *models.Revision) (*models.Revision, error) {
	rev.ID = 0
	rev.StoryID = story.ID
	if err := tx.Create(rev).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Story{}).Where("id = ?", story.ID).
		Update("latest_revision_id", rev.ID).Error; err != nil {
		return nil, err
	}
	story.LatestRevisionID = &rev.ID
	return rev, nil
}

func (r *Stories) writeWithSlug(ctx context.Context, story *models.Story, write func(tx *gorm.DB) error) error {
	candidate := story.SlugValue()
	for attempt := 0; attempt < slugAttempts; attempt++ {
		story.SetSlug(candidate)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := story.AssignUniqueSlug(tx); err != nil {
				return err
			}
			return write(tx)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return models.ErrSlugConflict
}

// LatestRevision returns nil when the story has no revisions.
func (r *Stories) LatestRevision(ctx context.Context, storyID uint) (*models.Revision, error) {
	var revs []models.Revision
	err := r.db.WithContext(ctx).Where("story_id = ?", storyID).
		Order("created_at DESC").Order("id DESC").Limit(1).Find(&revs).Error
	if err != nil || len(revs) == 0 {
		return nil, err
	}
	return &revs[0], nil
}

func (r *Stories) Revisions(ctx context.Context, storyID uint) ([]models.Revision, error) {
	var revs []models.Revision
	err := r.db.WithContext(ctx).Where("story_id = ?", storyID).
		Order("created_at DESC").Order("id DESC").Find(&revs).Error
	return revs, err
}

// Page lists stories in dashboard order.
func (r *Stories) Page(ctx context.Context, offset, limit int) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.WithContext(ctx).Order("first_published_at").Order("id").
		Offset(offset).Limit(limit).Find(&stories).Error
	return stories, err
}

// Counts returns the number of all stories and of live ones.
func (r *Stories) Counts(ctx context.Context) (all, live int64, err error) {
	db := r.db.WithContext(ctx).Model(&models.Story{})
	if err = db.Count(&all).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&models.Story{}).Where("live = ?", true).Count(&live).Error; err != nil {
		return 0, 0, err
	}
	return all, live, nil
}

// ListLive returns live stories, most recently published first.
func (r *Stories) ListLive(ctx context.Context) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.WithContext(ctx).Where("live = ?", true).
		Order("last_published_at DESC").Order("id DESC").Find(&stories).Error
	return stories, err
}
