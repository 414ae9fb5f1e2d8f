package models

import (
	"time"

	"gorm.io/datatypes"
)

// Revision is an immutable snapshot of a story's content.
type Revision struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	StoryID   uint           `json:"story_id" gorm:"index;not null"`
	Title     string         `json:"title" gorm:"size:255"`
	Config    datatypes.JSON `json:"config"`
	HTML      string         `json:"html" gorm:"type:text"`
	UserID    *uint          `json:"user_id"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

func (Revision) TableName() string { return "web_story_revisions" }

// SnapshotOf copies the content fields of s.
func SnapshotOf(s *Story, userID *uint) *Revision {
	return &Revision{
		StoryID: s.ID,
		Title:   s.Title,
		Config:  append(datatypes.JSON(nil), s.Config...),
		HTML:    s.HTML,
		UserID:  userID,
	}
}

// ApplyTo copies the snapshot back onto its story.
func (r *Revision) ApplyTo(s *Story) {
	s.Title = r.Title
	s.Config = append(datatypes.JSON(nil), r.Config...)
	s.HTML = r.HTML
}
