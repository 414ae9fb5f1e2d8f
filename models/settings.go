package models

import "time"

const DefaultPageDuration = 7

// Settings is the per-site web stories configuration.
type Settings struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	Site                 string          `json:"site" gorm:"size:255;uniqueIndex;not null"`
	AnalyticsID          *string         `json:"google_analytics_id" gorm:"size:255"`
	UsingLegacyAnalytics bool            `json:"using_legacy_analytics"`
	VideoCache           bool            `json:"video_cache"`
	AutoAdvance          bool            `json:"auto_advance"`
	DefaultPageDuration  *int            `json:"default_page_duration" gorm:"default:7"`
	PublisherLogos       []PublisherLogo `json:"publisher_logos" gorm:"foreignKey:SettingsID;constraint:OnDelete:CASCADE"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (Settings) TableName() string { return "web_stories_settings" }

func (s *Settings) AnalyticsIDValue() string {
	if s.AnalyticsID == nil {
		return ""
	}
	return *s.AnalyticsID
}

// EditorConfig is the settings shape the story editor consumes.
type EditorConfig struct {
	GoogleAnalyticsID    *string `json:"googleAnalyticsId"`
	UsingLegacyAnalytics bool    `json:"usingLegacyAnalytics"`
	VideoCache           bool    `json:"videoCache"`
	AutoAdvance          bool    `json:"autoAdvance"`
	DefaultPageDuration  *int    `json:"defaultPageDuration"`
}

func (s *Settings) Config() EditorConfig {
	return EditorConfig{
		GoogleAnalyticsID:    s.AnalyticsID,
		UsingLegacyAnalytics: s.UsingLegacyAnalytics,
		VideoCache:           s.VideoCache,
		AutoAdvance:          s.AutoAdvance,
		DefaultPageDuration:  s.DefaultPageDuration,
	}
}

// PublisherLogo attaches an image to the site settings. At most one logo per
// settings row is the default.
type PublisherLogo struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	SettingsID uint   `json:"settings_id" gorm:"index;not null"`
	ImageID    uint   `json:"image_id" gorm:"not null"`
	Image      *Image `json:"image,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Default    bool   `json:"default" gorm:"column:is_default"`
	SortOrder  int    `json:"sort_order"`
}

func (PublisherLogo) TableName() string { return "web_stories_publisher_logos" }
