package routes

import (
	"errors"
	"strconv"

	"github.com/1rvyn/web-stories-editor/dashboard"
	"github.com/1rvyn/web-stories-editor/database"
	"github.com/1rvyn/web-stories-editor/media"
	"github.com/1rvyn/web-stories-editor/models"
	"github.com/1rvyn/web-stories-editor/stories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the admin API and the public pages.
type Handler struct {
	Stories  *stories.Service
	Settings *database.Settings
	Images   *database.Images
	Media    *media.Images
	// MediaItems and MediaFiles serve video and audio; Documents and
	// DocumentFiles serve everything else.
	MediaItems    *database.MediaItems
	MediaFiles    *media.Items
	Documents     *database.Documents
	DocumentFiles *media.Documents
	Listing       *database.ListingPages
	Users         *database.Users
	Site          string
	SiteURL       string
	// AdminPath is where Admin is mounted; listing pages may not claim it.
	AdminPath string
	Log       *zap.Logger
}

// API mounts the JSON endpoints of the editor and the dashboard on r.
func (h *Handler) API(r fiber.Router) {
	r.Get("/web-stories-list", h.WebStoriesList)
	r.Get("/web-stories-update/:id", h.UpdateWebStory)
	r.Post("/web-stories-update/:id", h.UpdateWebStory)
	r.Post("/web-stories-duplicate/:id", h.DuplicateWebStory)

	r.Post("/stories", h.CreateStory)
	r.Get("/stories/:id", h.GetStory)
	r.Put("/stories/:id", h.SaveStory)
	r.Post("/stories/:id/publish", h.PublishStory)
	r.Post("/stories/:id/unpublish", h.UnpublishStory)
	r.Post("/stories/:id/lock", h.LockStory)
	r.Post("/stories/:id/unlock", h.UnlockStory)
	r.Get("/stories/:id/revisions", h.StoryRevisions)
	r.Get("/stories/:id/preview", h.PreviewStory)

	r.Get("/settings", h.GetSettings)
	r.Post("/settings", h.UpdateSettings)
	r.Get("/publisher-logos", h.PublisherLogos)
	r.Post("/publisher-logos", h.AddPublisherLogos)
	r.Delete("/publisher-logos/:id", h.RemovePublisherLogo)
	r.Post("/publisher-logos/:id/default", h.SetDefaultPublisherLogo)

	r.Get("/images", h.ListImages)
	r.Post("/images", h.UploadImage)
	r.Get("/images/:id", h.GetImage)

	r.Get("/media", h.ListMedia)
	r.Post("/media", h.UploadMedia)
	r.Get("/media/:id", h.GetMedia)

	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.UploadDocument)
	r.Get("/documents/:id", h.GetDocument)

	r.Put("/listing-page", h.PutListingPage)
}

// Admin mounts the browser pages hosting the dashboard and editor apps.
func (h *Handler) Admin(r fiber.Router) {
	r.Get("/web-stories/", h.Dashboard)
	r.Get("/web-stories/edit/:id/", h.Editor)
}

// Public mounts the pages readers see. It must come last since its
// patterns catch every top-level path.
func (h *Handler) Public(r fiber.Router) {
	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/:listing/", h.ListingPage)
	r.Get("/:listing/:story/", h.StoryPage)
}

func requestOf(c *fiber.Ctx) *dashboard.Request {
	return &dashboard.Request{BaseURL: c.BaseURL()}
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func (h *Handler) badRequest(c *fiber.Ctx, msg string) error {
	h.Log.Warn("Rejected request", zap.String("path", c.Path()), zap.String("reason", msg))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps service errors to responses.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrNoListingPage):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrSlugConflict), errors.Is(err, models.ErrInvalidTransition):
		status = fiber.StatusConflict
	case errors.Is(err, models.ErrLocked):
		status = fiber.StatusLocked
	case errors.Is(err, media.ErrUnsupportedImage), errors.Is(err, media.ErrUnsupportedMedia):
		status = fiber.StatusBadRequest
	}
	if status == fiber.StatusInternalServerError {
		h.Log.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
