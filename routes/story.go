package routes

import (
	"context"

	"github.com/1rvyn/web-stories-editor/middleware"
	"github.com/1rvyn/web-stories-editor/models"
	"github.com/1rvyn/web-stories-editor/stories"
	"github.com/gofiber/fiber/v2"
)

// parseInput reads an optional editor save from the body.
func parseInput(c *fiber.Ctx) (*stories.Input, error) {
	if len(c.Body()) == 0 {
		return nil, nil
	}
	in := new(stories.Input)
	if err := c.BodyParser(in); err != nil {
		return nil, err
	}
	return in, nil
}

func (h *Handler) CreateStory(c *fiber.Ctx) error {
	in, err := parseInput(c)
	if err != nil {
		return h.badRequest(c, "Cannot parse JSON")
	}
	story, err := h.Stories.Create(c.UserContext(), in, middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.Stories.EditorConfig(c.UserContext(), story.ID, requestOf(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *Handler) GetStory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	view, err := h.Stories.EditorConfig(c.UserContext(), id, requestOf(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

// SaveStory stores an editor save as a draft revision.
func (h *Handler) SaveStory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	in, err := parseInput(c)
	if err != nil || in == nil {
		return h.badRequest(c, "Cannot parse JSON")
	}
	if _, _, err := h.Stories.SaveDraft(c.UserContext(), id, in, middleware.UserID(c)); err != nil {
		return h.fail(c, err)
	}
	return h.GetStory(c)
}

func (h *Handler) PublishStory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	in, err := parseInput(c)
	if err != nil {
		return h.badRequest(c, "Cannot parse JSON")
	}
	story, err := h.Stories.Publish(c.UserContext(), id, in, middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondDashboard(c, story)
}

func (h *Handler) UnpublishStory(c *fiber.Ctx) error {
	return h.transition(c, h.Stories.Unpublish)
}

func (h *Handler) LockStory(c *fiber.Ctx) error {
	return h.transition(c, h.Stories.Lock)
}

func (h *Handler) UnlockStory(c *fiber.Ctx) error {
	return h.transition(c, h.Stories.Unlock)
}

func (h *Handler) StoryRevisions(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	revs, err := h.Stories.Revisions(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"revisions": revs})
}

// PreviewStory serves the latest revision as a page.
func (h *Handler) PreviewStory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	html, err := h.Stories.Preview(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	c.Type("html", "utf-8")
	return c.SendString(html)
}

type transitionFunc func(ctx context.Context, id uint, userID uint) (*models.Story, error)

func (h *Handler) transition(c *fiber.Ctx, fn transitionFunc) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	story, err := fn(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondDashboard(c, story)
}

func (h *Handler) respondDashboard(c *fiber.Ctx, story *models.Story) error {
	cfg, err := h.Stories.Dashboard(c.UserContext(), story, requestOf(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(cfg)
}
