package models

import "time"

const (
	MediaVideo = "video"
	MediaAudio = "audio"
)

// IsMediaType reports whether t names a kind of MediaItem.
func IsMediaType(t string) bool {
	return t == MediaVideo || t == MediaAudio
}

// MediaItem is an uploaded video or audio file, with an optional poster
// image stored under ThumbnailKey.
type MediaItem struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"size:255"`
	Type         string    `json:"type" gorm:"size:16;index;not null"`
	FileKey      string    `json:"file_key" gorm:"size:512;uniqueIndex;not null"`
	FileName     string    `json:"file_name" gorm:"size:255"`
	MimeType     string    `json:"mime_type" gorm:"size:100"`
	FileSize     int64     `json:"file_size"`
	Duration     float64   `json:"duration"`
	Width        *int      `json:"width"`
	Height       *int      `json:"height"`
	ThumbnailKey *string   `json:"thumbnail_key" gorm:"size:512"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MediaItem) TableName() string { return "media_items" }

// Document is any other uploaded file.
type Document struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255"`
	FileKey   string    `json:"file_key" gorm:"size:512;uniqueIndex;not null"`
	FileName  string    `json:"file_name" gorm:"size:255"`
	MimeType  string    `json:"mime_type" gorm:"size:100"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

func (Document) TableName() string { return "documents" }
