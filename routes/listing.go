package routes

import (
	"encoding/xml"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/1rvyn/web-stories-editor/models"
	"github.com/gofiber/fiber/v2"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSlugs are top-level segments owned by other routes.
var reservedSlugs = map[string]bool{
	"api":      true,
	"admin":    true,
	"login":    true,
	"callback": true,
	"metrics":  true,
	"media":    true,
}

type listingPageRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Live        *bool  `json:"live"`
}

// PutListingPage creates or replaces the single listing page.
func (h *Handler) PutListingPage(c *fiber.Ctx) error {
	var req listingPageRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Cannot parse JSON")
	}
	req.Slug = strings.TrimSpace(req.Slug)
	if !slugPattern.MatchString(req.Slug) {
		return h.badRequest(c, "slug must be lowercase letters, digits and dashes")
	}
	if reservedSlugs[req.Slug] || strings.Trim(h.AdminPath, "/") == req.Slug {
		return h.badRequest(c, "slug "+req.Slug+" is reserved")
	}
	page := &models.ListingPage{
		Title:       strings.TrimSpace(req.Title),
		Slug:        req.Slug,
		Description: req.Description,
		Live:        req.Live == nil || *req.Live,
	}
	if page.Title == "" {
		page.Title = "Web Stories"
	}
	if err := h.Listing.Put(c.UserContext(), page); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(page)
}

type listedStory struct {
	Title  string
	Link   string
	Poster string
}

// ListingPage renders the live listing page under its slug.
func (h *Handler) ListingPage(c *fiber.Ctx) error {
	page, err := h.livePage(c)
	if err != nil {
		return h.notFoundPage(c, err)
	}
	ctx := c.UserContext()
	live, err := h.Stories.ListLive(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	pageURL := page.FullURL(h.root(c))
	items := make([]listedStory, 0, len(live))
	for i := range live {
		items = append(items, listedStory{
			Title:  live[i].Title,
			Link:   pageURL + live[i].Identifier(),
			Poster: live[i].PosterImageURL(),
		})
	}
	return c.Render("listing", fiber.Map{
		"Title":       page.Title,
		"Description": page.Description,
		"URL":         pageURL,
		"Stories":     items,
	})
}

// StoryPage serves a live story by id or slug.
func (h *Handler) StoryPage(c *fiber.Ctx) error {
	if _, err := h.livePage(c); err != nil {
		return h.notFoundPage(c, err)
	}
	story, err := h.Stories.GetLive(c.UserContext(), c.Params("story"))
	if err != nil {
		return h.notFoundPage(c, err)
	}
	c.Type("html", "utf-8")
	return c.SendString(story.HTML)
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists the listing page and every live story.
func (h *Handler) Sitemap(c *fiber.Ctx) error {
	ctx := c.UserContext()
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	page, err := h.Listing.Live(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	if page != nil {
		pageURL := page.FullURL(h.root(c))
		set.URLs = append(set.URLs, sitemapURL{Loc: pageURL, LastMod: lastMod(page.UpdatedAt)})

		live, err := h.Stories.ListLive(ctx)
		if err != nil {
			return h.fail(c, err)
		}
		for _, story := range live {
			u := sitemapURL{Loc: pageURL + story.Identifier()}
			if story.LastPublishedAt != nil {
				u.LastMod = lastMod(*story.LastPublishedAt)
			}
			set.URLs = append(set.URLs, u)
		}
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return h.fail(c, err)
	}
	c.Type("xml", "utf-8")
	return c.Send(append([]byte(xml.Header), out...))
}

func (h *Handler) livePage(c *fiber.Ctx) (*models.ListingPage, error) {
	page, err := h.Listing.Live(c.UserContext())
	if err != nil {
		return nil, err
	}
	if page == nil || page.Slug != c.Params("listing") {
		return nil, models.ErrNoListingPage
	}
	return page, nil
}

func (h *Handler) notFoundPage(c *fiber.Ctx, err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrNoListingPage) {
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	}
	return h.fail(c, err)
}

// root is the site root links are built on.
func (h *Handler) root(c *fiber.Ctx) string {
	if h.SiteURL != "" {
		return h.SiteURL
	}
	return requestOf(c).BaseURL
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
