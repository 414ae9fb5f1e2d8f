// Package dashboard derives the story summaries the stories dashboard lists.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/1rvyn/web-stories-editor/models"
	"go.uber.org/zap"
)

const (
	localLayout = "2006-01-02T15:04:05"
	gmtLayout   = "2006-01-02T15:04:05Z"

	pageNamePlaceholder = "%pagename%/"
)

// Config is the dashboard view of one story.
type Config struct {
	ID                 uint         `json:"id"`
	Title              string       `json:"title"`
	Created            string       `json:"created"`
	CreatedGmt         string       `json:"createdGmt"`
	Modified           string       `json:"modified,omitempty"`
	Status             string       `json:"status"`
	BottomTargetAction string       `json:"bottomTargetAction"`
	EditStoryLink      string       `json:"editStoryLink"`
	Link               string       `json:"link,omitempty"`
	PreviewLink        string       `json:"previewLink,omitempty"`
	FeaturedMediaURL   string       `json:"featuredMediaUrl,omitempty"`
	Capabilities       Capabilities `json:"capabilities"`
}

type Capabilities struct {
	HasEditAction   bool `json:"hasEditAction"`
	HasDeleteAction bool `json:"hasDeleteAction"`
}

// Request is the part of an incoming request links are resolved against.
type Request struct {
	// BaseURL is scheme and host, e.g. https://example.org.
	BaseURL string
}

// ListingResolver finds the full URL of the live listing page. ok is false
// when there is no such page.
type ListingResolver interface {
	ListingURL(ctx context.Context, baseURL string) (link string, ok bool, err error)
}

type EditURLResolver interface {
	EditURL(storyID uint) string
}

type Builder struct {
	Listing  ListingResolver
	EditURLs EditURLResolver
	Location *time.Location
	Logger   *zap.Logger
}

// Build derives the dashboard config of story. latest is the story's most
// recent revision and may be nil; req may be nil outside a request.
func (b *Builder) Build(ctx context.Context, story *models.Story, latest *models.Revision, req *Request) (*Config, error) {
	editURL := b.EditURLs.EditURL(story.ID)
	if req != nil {
		editURL = absolute(req.BaseURL, editURL)
	}

	created := story.CreatedAt
	if story.LastPublishedAt != nil {
		created = *story.LastPublishedAt
	}

	cfg := &Config{
		ID:                 story.ID,
		Title:              story.Title,
		Created:            created.In(b.location()).Format(localLayout),
		CreatedGmt:         created.UTC().Format(gmtLayout),
		Status:             story.Status(),
		BottomTargetAction: editURL,
		EditStoryLink:      editURL,
		Capabilities:       Capabilities{HasEditAction: true, HasDeleteAction: false},
	}

	content := story.Config
	if latest != nil {
		content = latest.Config
		cfg.Modified = latest.CreatedAt.UTC().Format(gmtLayout)
	}
	if media, err := models.FeaturedMediaURL(content); err == nil {
		cfg.FeaturedMediaURL = media
	} else {
		b.logger().Debug("No featured media for story", zap.Uint("story_id", story.ID), zap.Error(err))
	}

	if story.Live {
		link, err := b.Link(ctx, story, req)
		if err != nil {
			return nil, err
		}
		if link != "" {
			cfg.Link = link
			cfg.PreviewLink = link
		}
	}
	return cfg, nil
}

// Link is the public URL of story, or "" without a live listing page.
func (b *Builder) Link(ctx context.Context, story *models.Story, req *Request) (string, error) {
	parent, ok, err := b.parentLink(ctx, req)
	if err != nil || !ok {
		return "", err
	}
	return parent + story.Identifier(), nil
}

// PermalinkTemplate is the link pattern handed to the story editor.
func (b *Builder) PermalinkTemplate(ctx context.Context, story *models.Story, req *Request) (string, error) {
	parent, ok, err := b.parentLink(ctx, req)
	if err != nil || !ok {
		return "", err
	}
	return parent + story.Identifier() + pageNamePlaceholder, nil
}

func (b *Builder) parentLink(ctx context.Context, req *Request) (string, bool, error) {
	base := ""
	if req != nil {
		base = req.BaseURL
	}
	link, ok, err := b.Listing.ListingURL(ctx, base)
	if err != nil {
		return "", false, fmt.Errorf("resolving listing page: %w", err)
	}
	return link, ok && link != "", nil
}

func (b *Builder) location() *time.Location {
	if b.Location == nil {
		return time.UTC
	}
	return b.Location
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func absolute(base, ref string) string {
	if base == "" {
		return ref
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return u.ResolveReference(r).String()
}
