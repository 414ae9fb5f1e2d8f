package routes

import (
	"strings"

	"github.com/1rvyn/web-stories-editor/models"
	"github.com/gofiber/fiber/v2"
)

type publisherLogo struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Default bool   `json:"default"`
}

type settingsResponse struct {
	Settings       models.EditorConfig `json:"settings"`
	PublisherLogos []publisherLogo     `json:"publisherLogos"`
}

type settingsRequest struct {
	GoogleAnalyticsID    *string `json:"googleAnalyticsId"`
	UsingLegacyAnalytics *bool   `json:"usingLegacyAnalytics"`
	VideoCache           *bool   `json:"videoCache"`
	AutoAdvance          *bool   `json:"autoAdvance"`
	DefaultPageDuration  *int    `json:"defaultPageDuration"`
}

func (h *Handler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.Settings.ForSite(c.UserContext(), h.Site)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.settingsResponse(settings))
}

// UpdateSettings applies the fields present in the body.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Cannot parse JSON")
	}
	if req.DefaultPageDuration != nil && *req.DefaultPageDuration < 1 {
		return h.badRequest(c, "defaultPageDuration must be at least 1")
	}

	ctx := c.UserContext()
	settings, err := h.Settings.ForSite(ctx, h.Site)
	if err != nil {
		return h.fail(c, err)
	}
	if req.GoogleAnalyticsID != nil {
		id := strings.TrimSpace(*req.GoogleAnalyticsID)
		settings.AnalyticsID = nil
		if id != "" {
			settings.AnalyticsID = &id
		}
	}
	if req.UsingLegacyAnalytics != nil {
		settings.UsingLegacyAnalytics = *req.UsingLegacyAnalytics
	}
	if req.VideoCache != nil {
		settings.VideoCache = *req.VideoCache
	}
	if req.AutoAdvance != nil {
		settings.AutoAdvance = *req.AutoAdvance
	}
	if req.DefaultPageDuration != nil {
		settings.DefaultPageDuration = req.DefaultPageDuration
	}
	if err := h.Settings.Save(ctx, settings); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.settingsResponse(settings))
}

func (h *Handler) PublisherLogos(c *fiber.Ctx) error {
	settings, err := h.Settings.ForSite(c.UserContext(), h.Site)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.logos(settings.PublisherLogos))
}

type addLogosRequest struct {
	ImageIDs []uint `json:"imageIds"`
}

func (h *Handler) AddPublisherLogos(c *fiber.Ctx) error {
	var req addLogosRequest
	if err := c.BodyParser(&req); err != nil || len(req.ImageIDs) == 0 {
		return h.badRequest(c, "imageIds is required")
	}
	return h.withSettings(c, func(settingsID uint) error {
		return h.Settings.AddLogos(c.UserContext(), settingsID, req.ImageIDs)
	})
}

func (h *Handler) RemovePublisherLogo(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	return h.withSettings(c, func(settingsID uint) error {
		return h.Settings.RemoveLogo(c.UserContext(), settingsID, id)
	})
}

func (h *Handler) SetDefaultPublisherLogo(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	return h.withSettings(c, func(settingsID uint) error {
		return h.Settings.SetDefaultLogo(c.UserContext(), settingsID, id)
	})
}

// withSettings runs change against the site's settings and responds with
// the resulting logo list.
func (h *Handler) withSettings(c *fiber.Ctx, change func(settingsID uint) error) error {
	ctx := c.UserContext()
	settings, err := h.Settings.ForSite(ctx, h.Site)
	if err != nil {
		return h.fail(c, err)
	}
	if err := change(settings.ID); err != nil {
		return h.fail(c, err)
	}
	logos, err := h.Settings.Logos(ctx, settings.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.logos(logos))
}

func (h *Handler) settingsResponse(s *models.Settings) settingsResponse {
	return settingsResponse{Settings: s.Config(), PublisherLogos: h.logos(s.PublisherLogos)}
}

// logos lists publisher logos under their image ids.
func (h *Handler) logos(logos []models.PublisherLogo) []publisherLogo {
	out := make([]publisherLogo, 0, len(logos))
	for _, l := range logos {
		logo := publisherLogo{ID: l.ImageID, Default: l.Default}
		if l.Image != nil {
			logo.Title = l.Image.Title
			logo.URL = h.Media.URL(l.Image)
		}
		out = append(out, logo)
	}
	return out
}
