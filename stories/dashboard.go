package stories

import (
	"context"
	"strconv"

	"github.com/1rvyn/web-stories-editor/dashboard"
	"github.com/1rvyn/web-stories-editor/models"
	"gorm.io/datatypes"
)

// PageSize is the number of stories per dashboard page.
const PageSize = 20

type StatusTotals struct {
	All     int64 `json:"all"`
	Publish int64 `json:"publish"`
}

// ListResult is one page of the stories dashboard.
type ListResult struct {
	Stories              map[uint]*dashboard.Config `json:"stories"`
	FetchedStoryIDs      []uint                     `json:"fetchedStoryIds"`
	TotalPages           int                        `json:"totalPages"`
	TotalStoriesByStatus StatusTotals               `json:"totalStoriesByStatus"`
}

// List builds the dashboard page named by page. A page that is not a
// number yields the first page; one out of range yields the last.
func (s *Service) List(ctx context.Context, page string, req *dashboard.Request) (*ListResult, error) {
	all, live, err := s.stories.Counts(ctx)
	if err != nil {
		return nil, err
	}
	totalPages := numPages(all)
	number := pageNumber(page, totalPages)

	items, err := s.stories.Page(ctx, (number-1)*PageSize, PageSize)
	if err != nil {
		return nil, err
	}

	res := &ListResult{
		Stories:              make(map[uint]*dashboard.Config, len(items)),
		FetchedStoryIDs:      make([]uint, 0, len(items)),
		TotalPages:           totalPages,
		TotalStoriesByStatus: StatusTotals{All: all, Publish: live},
	}
	for i := range items {
		cfg, err := s.Dashboard(ctx, &items[i], req)
		if err != nil {
			return nil, err
		}
		res.Stories[items[i].ID] = cfg
		res.FetchedStoryIDs = append(res.FetchedStoryIDs, items[i].ID)
	}
	return res, nil
}

// Dashboard builds the dashboard config of a single story.
func (s *Service) Dashboard(ctx context.Context, story *models.Story, req *dashboard.Request) (*dashboard.Config, error) {
	latest, err := s.stories.LatestRevision(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(ctx, story, latest, req)
}

// EditorView is what the story editor loads.
type EditorView struct {
	ID                    uint                `json:"id"`
	Title                 string              `json:"title"`
	Slug                  string              `json:"slug"`
	Config                datatypes.JSON      `json:"config"`
	HTML                  string              `json:"html"`
	Status                string              `json:"status"`
	HasUnpublishedChanges bool                `json:"hasUnpublishedChanges"`
	Locked                bool                `json:"locked"`
	LockedBy              *uint               `json:"lockedBy,omitempty"`
	PermalinkTemplate     string              `json:"permalinkTemplate"`
	Link                  string              `json:"link,omitempty"`
	Settings              models.EditorConfig `json:"settings"`
}

// EditorConfig loads the latest content of a story for editing.
func (s *Service) EditorConfig(ctx context.Context, id uint, req *dashboard.Request) (*EditorView, error) {
	story, err := s.stories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	latest, err := s.stories.LatestRevision(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.ForSite(ctx, s.site)
	if err != nil {
		return nil, err
	}
	permalink, err := s.builder.PermalinkTemplate(ctx, story, req)
	if err != nil {
		return nil, err
	}

	view := &EditorView{
		ID:                    story.ID,
		Title:                 story.Title,
		Slug:                  story.SlugValue(),
		Config:                story.Config,
		HTML:                  story.HTML,
		Status:                story.Status(),
		HasUnpublishedChanges: story.HasUnpublishedChanges,
		Locked:                story.Locked,
		LockedBy:              story.LockedByID,
		PermalinkTemplate:     permalink,
		Settings:              settings.Config(),
	}
	if latest != nil {
		view.Title = latest.Title
		view.Config = latest.Config
		view.HTML = latest.HTML
	}
	if story.Live {
		if view.Link, err = s.builder.Link(ctx, story, req); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func numPages(count int64) int {
	if count == 0 {
		return 1
	}
	return int((count + PageSize - 1) / PageSize)
}

func pageNumber(raw string, totalPages int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	if n < 1 || n > totalPages {
		return totalPages
	}
	return n
}
