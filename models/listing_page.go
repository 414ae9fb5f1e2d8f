package models

import (
	"strings"
	"time"
)

// ListingPage is the single public page live stories are served under.
type ListingPage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:255"`
	Slug        string    `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Live        bool      `json:"live"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ListingPage) TableName() string { return "web_story_listing_pages" }

// URLPath is the page path, always with a trailing slash.
func (p *ListingPage) URLPath() string {
	return "/" + strings.Trim(p.Slug, "/") + "/"
}

// FullURL joins the page path onto a site root such as https://example.org.
func (p *ListingPage) FullURL(root string) string {
	return strings.TrimRight(root, "/") + p.URLPath()
}
