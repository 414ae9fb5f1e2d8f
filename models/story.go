package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultStoryTitle = "Untitled"

// Story is a web story. Its own fields hold the live content; drafts of a
// live story only exist as revisions until they are published.
type Story struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	Title                 string         `json:"title" gorm:"size:255;default:Untitled"`
	Slug                  *string        `json:"slug" gorm:"size:255;uniqueIndex"`
	Config                datatypes.JSON `json:"config"`
	HTML                  string         `json:"html" gorm:"type:text"`
	Live                  bool           `json:"live" gorm:"index"`
	HasUnpublishedChanges bool           `json:"has_unpublished_changes"`
	FirstPublishedAt      *time.Time     `json:"first_published_at"`
	LastPublishedAt       *time.Time     `json:"last_published_at" gorm:"index"`
	LiveRevisionID        *uint          `json:"live_revision_id"`
	LatestRevisionID      *uint          `json:"latest_revision_id"`
	Locked                bool           `json:"locked"`
	LockedAt              *time.Time     `json:"locked_at"`
	LockedByID            *uint          `json:"locked_by_id"`
}

func (Story) TableName() string { return "web_stories" }

func (s *Story) SlugValue() string {
	if s.Slug == nil {
		return ""
	}
	return *s.Slug
}

func (s *Story) SetSlug(slug string) {
	if slug == "" {
		s.Slug = nil
		return
	}
	s.Slug = &slug
}

// Identifier is the path segment a story is served under.
func (s *Story) Identifier() string {
	if slug := s.SlugValue(); slug != "" {
		return slug
	}
	return strconv.FormatUint(uint64(s.ID), 10)
}

func (s *Story) Status() string {
	if s.Live {
		return "publish"
	}
	return "draft"
}

// SlugIsAvailable reports whether no other story uses candidate.
func (s *Story) SlugIsAvailable(db *gorm.DB, candidate string) (bool, error) {
	q := db.Model(&Story{}).Where("slug = ?", candidate)
	if s.ID != 0 {
		q = q.Where("id <> ?", s.ID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking slug %q: %w", candidate, err)
	}
	return count == 0, nil
}

// AssignUniqueSlug suffixes the slug with -2, -3, ... until no other story
// holds it. An empty slug is left unset.
func (s *Story) AssignUniqueSlug(db *gorm.DB) error {
	base := s.SlugValue()
	if base == "" {
		s.Slug = nil
		return nil
	}
	candidate := base
	for suffix := 1; ; {
		ok, err := s.SlugIsAvailable(db, candidate)
		if err != nil {
			return err
		}
		if ok {
			break
		}
		suffix++
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
	s.Slug = &candidate
	return nil
}

// PosterImageURL returns the featured media url, falling back to the first
// image element of the story pages. Malformed config yields "".
func (s *Story) PosterImageURL() string {
	return PosterImageURL(s.Config)
}

type storyConfig struct {
	FeaturedMedia *struct {
		URL string `json:"url"`
	} `json:"featuredMedia"`
	StoryData struct {
		Pages []struct {
			Elements []struct {
				Type     string `json:"type"`
				Resource *struct {
					Src string `json:"src"`
				} `json:"resource"`
			} `json:"elements"`
		} `json:"pages"`
	} `json:"storyData"`
}

func PosterImageURL(config []byte) string {
	if len(config) == 0 {
		return ""
	}
	var cfg storyConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return ""
	}
	if cfg.FeaturedMedia != nil && cfg.FeaturedMedia.URL != "" {
		return cfg.FeaturedMedia.URL
	}
	for _, page := range cfg.StoryData.Pages {
		for _, el := range page.Elements {
			if el.Type == "image" && el.Resource != nil {
				return el.Resource.Src
			}
		}
	}
	return ""
}

// FeaturedMediaURL extracts featuredMedia.url from a story config tree.
func FeaturedMediaURL(config []byte) (string, error) {
	if len(config) == 0 {
		return "", errors.New("empty config")
	}
	var tree map[string]any
	if err := json.Unmarshal(config, &tree); err != nil {
		return "", fmt.Errorf("decoding config: %w", err)
	}
	media, ok := tree["featuredMedia"].(map[string]any)
	if !ok {
		return "", errors.New("featuredMedia is not an object")
	}
	url, ok := media["url"].(string)
	if !ok || url == "" {
		return "", errors.New("featuredMedia.url is missing")
	}
	return url, nil
}
