// Package stories runs the editing and publishing workflow of web stories.
package stories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/1rvyn/web-stories-editor/amp"
	"github.com/1rvyn/web-stories-editor/dashboard"
	"github.com/1rvyn/web-stories-editor/database"
	"github.com/1rvyn/web-stories-editor/lifecycle"
	"github.com/1rvyn/web-stories-editor/metrics"
	"github.com/1rvyn/web-stories-editor/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Input is a save from the story editor. Nil fields are left as they are.
type Input struct {
	Title  *string          `json:"title"`
	Slug   *string          `json:"slug"`
	Config *json.RawMessage `json:"config"`
	HTML   *string          `json:"html"`
}

func (in *Input) empty() bool {
	return in == nil || (in.Title == nil && in.Slug == nil && in.Config == nil && in.HTML == nil)
}

type Service struct {
	stories  *database.Stories
	settings *database.Settings
	builder  *dashboard.Builder
	site     string
	log      *zap.Logger

	// now is replaced in tests.
	now func() time.Time
}

func NewService(stories *database.Stories, settings *database.Settings, builder *dashboard.Builder, site string, log *zap.Logger) *Service {
	return &Service{
		stories:  stories,
		settings: settings,
		builder:  builder,
		site:     site,
		log:      log.Named("stories"),
		now:      time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Story, error) {
	return s.stories.Get(ctx, id)
}

// GetLive resolves the public identifier of a live story.
func (s *Service) GetLive(ctx context.Context, identifier string) (*models.Story, error) {
	return s.stories.GetLive(ctx, identifier)
}

// ListLive returns the stories shown on the listing page.
func (s *Service) ListLive(ctx context.Context) ([]models.Story, error) {
	return s.stories.ListLive(ctx)
}

// Create stores a new draft story and its first revision.
func (s *Service) Create(ctx context.Context, in *Input, userID uint) (*models.Story, error) {
	story := &models.Story{Title: models.DefaultStoryTitle}
	rev := models.SnapshotOf(story, nil)
	if err := s.applyInput(ctx, story, rev, in); err != nil {
		return nil, err
	}
	rev.ApplyTo(story)

	if _, err := s.stories.Create(ctx, story, optionalUser(userID)); err != nil {
		return nil, fmt.Errorf("creating story: %w", err)
	}
	s.log.Info("Story created", zap.Uint("story_id", story.ID), zap.Uint("user_id", userID))
	return story, nil
}

// SaveDraft writes in as a new revision. A draft story takes the new content
// directly; a live one keeps serving its published content until the next
// publish.
func (s *Service) SaveDraft(ctx context.Context, id uint, in *Input, userID uint) (*models.Story, *models.Revision, error) {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if _, err := lifecycle.Next(lifecycle.Of(story), lifecycle.Edit, userID); err != nil {
		return nil, nil, err
	}
	rev, err := s.draftFrom(ctx, story, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.applyInput(ctx, story, rev, in); err != nil {
		return nil, nil, err
	}

	if story.Live {
		story.HasUnpublishedChanges = true
	} else {
		rev.ApplyTo(story)
	}
	if err := s.stories.SaveRevision(ctx, story, rev); err != nil {
		return nil, nil, fmt.Errorf("saving story %d: %w", id, err)
	}
	return story, rev, nil
}

// Publish optionally saves in first, then makes the latest revision live.
func (s *Service) Publish(ctx context.Context, id uint, in *Input, userID uint) (*models.Story, error) {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := lifecycle.Next(lifecycle.Of(story), lifecycle.Publish, userID); err != nil {
		return nil, err
	}
	if !in.empty() {
		if story, _, err = s.SaveDraft(ctx, id, in, userID); err != nil {
			return nil, err
		}
	}

	latest, err := s.stories.LatestRevision(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		latest = models.SnapshotOf(story, optionalUser(userID))
		if err := s.stories.SaveRevision(ctx, story, latest); err != nil {
			return nil, err
		}
	}

	now := s.now()
	latest.ApplyTo(story)
	story.Live = true
	story.HasUnpublishedChanges = false
	if story.FirstPublishedAt == nil {
		story.FirstPublishedAt = &now
	}
	story.LastPublishedAt = &now
	story.LiveRevisionID = &latest.ID
	if err := s.stories.Save(ctx, story); err != nil {
		return nil, fmt.Errorf("publishing story %d: %w", id, err)
	}

	metrics.StoryEvents.WithLabelValues(string(lifecycle.Publish)).Inc()
	s.log.Info("Story published", zap.Uint("story_id", story.ID), zap.Uint("revision_id", latest.ID))
	return story, nil
}

// Unpublish takes a story offline. Its fields fall back to the latest draft.
func (s *Service) Unpublish(ctx context.Context, id uint, userID uint) (*models.Story, error) {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := lifecycle.Next(lifecycle.Of(story), lifecycle.Unpublish, userID); err != nil {
		return nil, err
	}
	latest, err := s.stories.LatestRevision(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		latest.ApplyTo(story)
	}
	story.Live = false
	story.HasUnpublishedChanges = true
	story.LiveRevisionID = nil
	if err := s.stories.Save(ctx, story); err != nil {
		return nil, fmt.Errorf("unpublishing story %d: %w", id, err)
	}

	metrics.StoryEvents.WithLabelValues(string(lifecycle.Unpublish)).Inc()
	s.log.Info("Story unpublished", zap.Uint("story_id", story.ID))
	return story, nil
}

func (s *Service) Lock(ctx context.Context, id uint, userID uint) (*models.Story, error) {
	return s.setLock(ctx, id, lifecycle.Lock, userID)
}

func (s *Service) Unlock(ctx context.Context, id uint, userID uint) (*models.Story, error) {
	return s.setLock(ctx, id, lifecycle.Unlock, userID)
}

func (s *Service) setLock(ctx context.Context, id uint, ev lifecycle.Event, userID uint) (*models.Story, error) {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := lifecycle.Next(lifecycle.Of(story), ev, userID)
	if err != nil {
		return nil, err
	}
	story.Locked = st.Locked
	if st.Locked {
		now := s.now()
		story.LockedAt = &now
		story.LockedByID = &st.LockedBy
	} else {
		story.LockedAt = nil
		story.LockedByID = nil
	}
	if err := s.stories.Save(ctx, story); err != nil {
		return nil, err
	}
	metrics.StoryEvents.WithLabelValues(string(ev)).Inc()
	return story, nil
}

// UpdateTitle renames a story and records the change as a revision.
func (s *Service) UpdateTitle(ctx context.Context, id uint, title string, userID uint) (*models.Story, error) {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := lifecycle.Next(lifecycle.Of(story), lifecycle.Edit, userID); err != nil {
		return nil, err
	}
	rev, err := s.draftFrom(ctx, story, userID)
	if err != nil {
		return nil, err
	}
	title = normalizeTitle(title)
	rev.Title = title
	story.Title = title
	if err := s.stories.SaveRevision(ctx, story, rev); err != nil {
		return nil, fmt.Errorf("renaming story %d: %w", id, err)
	}
	return story, nil
}

// Duplicate copies a story's content into a new unpublished story without a
// slug. The copy starts its own history.
func (s *Service) Duplicate(ctx context.Context, id uint, userID uint) (*models.Story, error) {
	src, err := s.stories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	copied := &models.Story{
		Title:  normalizeTitle(src.Title) + " - Copy",
		Config: append(datatypes.JSON(nil), src.Config...),
		HTML:   src.HTML,
	}
	if _, err := s.stories.Create(ctx, copied, optionalUser(userID)); err != nil {
		return nil, fmt.Errorf("duplicating story %d: %w", id, err)
	}

	metrics.StoryEvents.WithLabelValues("duplicate").Inc()
	s.log.Info("Story duplicated", zap.Uint("story_id", id), zap.Uint("copy_id", copied.ID))
	return copied, nil
}

func (s *Service) Revisions(ctx context.Context, id uint) ([]models.Revision, error) {
	if _, err := s.stories.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.stories.Revisions(ctx, id)
}

// Preview returns the HTML of the latest revision.
func (s *Service) Preview(ctx context.Context, id uint) (string, error) {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return "", err
	}
	latest, err := s.stories.LatestRevision(ctx, id)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return story.HTML, nil
	}
	return latest.HTML, nil
}

// draftFrom starts a revision from the most recent content of story.
func (s *Service) draftFrom(ctx context.Context, story *models.Story, userID uint) (*models.Revision, error) {
	latest, err := s.stories.LatestRevision(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	rev := models.SnapshotOf(story, optionalUser(userID))
	if latest != nil {
		rev.Title = latest.Title
		rev.Config = append(datatypes.JSON(nil), latest.Config...)
		rev.HTML = latest.HTML
	}
	return rev, nil
}

// applyInput copies in onto rev, post-processing fresh HTML with the site
// settings. The slug is not versioned and goes straight to story.
func (s *Service) applyInput(ctx context.Context, story *models.Story, rev *models.Revision, in *Input) error {
	if in == nil {
		return nil
	}
	if in.Title != nil {
		rev.Title = normalizeTitle(*in.Title)
	}
	if in.Slug != nil {
		story.SetSlug(strings.TrimSpace(*in.Slug))
	}
	if in.Config != nil {
		rev.Config = normalizeConfig(*in.Config)
	}
	if in.HTML != nil {
		html, err := s.process(ctx, *in.HTML)
		if err != nil {
			return err
		}
		rev.HTML = html
	}
	return nil
}

func (s *Service) process(ctx context.Context, doc string) (string, error) {
	settings, err := s.settings.ForSite(ctx, s.site)
	if err != nil {
		return "", err
	}
	out, applied := amp.Process(doc, amp.Options{
		VideoCache:  settings.VideoCache,
		AnalyticsID: settings.AnalyticsIDValue(),
	})
	for _, name := range applied {
		metrics.TransformsApplied.WithLabelValues(name).Inc()
	}
	if len(applied) > 0 {
		s.log.Debug("Processed story HTML", zap.Strings("transforms", applied))
	}
	return out, nil
}

func normalizeTitle(title string) string {
	if title = strings.TrimSpace(title); title == "" {
		return models.DefaultStoryTitle
	}
	return title
}

func normalizeConfig(raw json.RawMessage) datatypes.JSON {
	if string(raw) == "null" {
		return nil
	}
	return append(datatypes.JSON(nil), raw...)
}

func optionalUser(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
