package models

import "time"

// Image is an uploaded media file. The file itself lives in object storage
// under FileKey.
type Image struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255"`
	FileKey   string    `json:"file_key" gorm:"size:512;uniqueIndex;not null"`
	FileName  string    `json:"file_name" gorm:"size:255"`
	MimeType  string    `json:"mime_type" gorm:"size:100"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

func (Image) TableName() string { return "images" }
