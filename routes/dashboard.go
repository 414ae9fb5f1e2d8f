package routes

import (
	"github.com/1rvyn/web-stories-editor/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WebStoriesList handles GET /api/web-stories-list?page=N.
func (h *Handler) WebStoriesList(c *fiber.Ctx) error {
	res, err := h.Stories.List(c.UserContext(), c.Query("page"), requestOf(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

type updateRequest struct {
	Title *string `json:"title"`
}

// UpdateWebStory renames a story on POST and returns its dashboard config.
func (h *Handler) UpdateWebStory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	ctx := c.UserContext()

	if c.Method() == fiber.MethodPost {
		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return h.badRequest(c, "Cannot parse JSON")
		}
		if req.Title == nil {
			return h.badRequest(c, "title is required")
		}
		if _, err := h.Stories.UpdateTitle(ctx, id, *req.Title, middleware.UserID(c)); err != nil {
			return h.fail(c, err)
		}
	}

	story, err := h.Stories.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	cfg, err := h.Stories.Dashboard(ctx, story, requestOf(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(cfg)
}

// DuplicateWebStory copies a story and returns the copy's dashboard config.
func (h *Handler) DuplicateWebStory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	ctx := c.UserContext()

	copied, err := h.Stories.Duplicate(ctx, id, middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	cfg, err := h.Stories.Dashboard(ctx, copied, requestOf(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(cfg)
}

// Dashboard renders the stories dashboard page for a signed in editor.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	user, err := h.Users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		h.Log.Error("Error fetching user", zap.Uint("user_id", middleware.UserID(c)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
	res, err := h.Stories.List(c.UserContext(), c.Query("page"), requestOf(c))
	if err != nil {
		return h.fail(c, err)
	}

	h.Log.Info("Editor opened the dashboard", zap.Uint("user_id", user.ID))
	return c.Render("dashboard", fiber.Map{
		"User":   user.DisplayName(),
		"Config": res,
	})
}

// Editor renders the story editor page.
func (h *Handler) Editor(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	}
	user, err := h.Users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		h.Log.Error("Error fetching user", zap.Uint("user_id", middleware.UserID(c)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
	view, err := h.Stories.EditorConfig(c.UserContext(), id, requestOf(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Render("editor", fiber.Map{
		"User":  user.DisplayName(),
		"Story": view,
	})
}
