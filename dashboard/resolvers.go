package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/1rvyn/web-stories-editor/models"
)

// AdminURLs builds admin edit links under Prefix, e.g. /admin.
type AdminURLs struct {
	Prefix string
}

func (a AdminURLs) EditURL(storyID uint) string {
	return fmt.Sprintf("%s/web-stories/edit/%d/", strings.TrimRight(a.Prefix, "/"), storyID)
}

type LivePageFinder interface {
	Live(ctx context.Context) (*models.ListingPage, error)
}

// ListingPages resolves the listing page URL against SiteURL, falling back
// to the request's base URL.
type ListingPages struct {
	Pages   LivePageFinder
	SiteURL string
}

func (l ListingPages) ListingURL(ctx context.Context, baseURL string) (string, bool, error) {
	page, err := l.Pages.Live(ctx)
	if err != nil || page == nil {
		return "", false, err
	}
	root := l.SiteURL
	if root == "" {
		root = baseURL
	}
	return page.FullURL(root), true, nil
}
