package routes

import (
	"errors"
	"strconv"

	"github.com/1rvyn/web-stories-editor/media"
	"github.com/1rvyn/web-stories-editor/models"
	"github.com/gofiber/fiber/v2"
)

type mediaResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Duration    float64 `json:"duration"`
	Width       *int    `json:"width"`
	Height      *int    `json:"height"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	DownloadURL string  `json:"download_url"`
	MimeType    string  `json:"mime_type"`
}

func (h *Handler) mediaItem(item *models.MediaItem) mediaResponse {
	return mediaResponse{
		ID:          item.ID,
		Title:       item.Title,
		Type:        item.Type,
		Duration:    item.Duration,
		Width:       item.Width,
		Height:      item.Height,
		Thumbnail:   h.MediaFiles.ThumbnailURL(item),
		DownloadURL: h.MediaFiles.URL(item),
		MimeType:    item.MimeType,
	}
}

// ListMedia handles GET /api/media?type=video|audio&page=N.
func (h *Handler) ListMedia(c *fiber.Ctx) error {
	kind := c.Query("type")
	if kind != "" && !models.IsMediaType(kind) {
		return h.badRequest(c, "type must be video or audio")
	}
	page := pageParam(c)
	rows, total, err := h.MediaItems.Page(c.UserContext(), kind, (page-1)*filesPerPage, filesPerPage)
	if err != nil {
		return h.fail(c, err)
	}
	items := make([]mediaResponse, 0, len(rows))
	for i := range rows {
		items = append(items, h.mediaItem(&rows[i]))
	}
	return c.JSON(pageOf(items, total))
}

func (h *Handler) GetMedia(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	item, err := h.MediaItems.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.mediaItem(item))
}

// UploadMedia accepts a multipart form with a "file" and optional
// "thumbnail", "title", "type", "duration", "width" and "height" fields.
func (h *Handler) UploadMedia(c *fiber.Ctx) error {
	f, err := formFile(c, "file", media.MaxFileSize)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	up := media.ItemUpload{
		File:  *f,
		Title: c.FormValue("title"),
		Type:  c.FormValue("type"),
	}
	if up.Type != "" && !models.IsMediaType(up.Type) {
		return h.badRequest(c, "type must be video or audio")
	}
	thumb, err := formFile(c, "thumbnail", media.MaxImageSize)
	switch {
	case err == nil:
		up.Thumbnail = thumb
	case !errors.Is(err, errMissingFile):
		return h.badRequest(c, err.Error())
	}
	if v := c.FormValue("duration"); v != "" {
		if up.Duration, err = strconv.ParseFloat(v, 64); err != nil {
			return h.badRequest(c, "duration must be a number of seconds")
		}
	}
	if up.Width, err = optionalInt(c, "width"); err != nil {
		return h.badRequest(c, err.Error())
	}
	if up.Height, err = optionalInt(c, "height"); err != nil {
		return h.badRequest(c, err.Error())
	}

	item, err := h.MediaFiles.Upload(c.UserContext(), up)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.mediaItem(item))
}

func optionalInt(c *fiber.Ctx, field string) (*int, error) {
	v := c.FormValue(field)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, errors.New(field + " must be a non-negative integer")
	}
	return &n, nil
}

type documentResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	DownloadURL string `json:"download_url"`
	MimeType    string `json:"mime_type"`
}

func (h *Handler) document(doc *models.Document) documentResponse {
	return documentResponse{
		ID:          doc.ID,
		Title:       doc.Title,
		DownloadURL: h.DocumentFiles.URL(doc),
		MimeType:    doc.MimeType,
	}
}

func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	page := pageParam(c)
	docs, total, err := h.Documents.Page(c.UserContext(), (page-1)*filesPerPage, filesPerPage)
	if err != nil {
		return h.fail(c, err)
	}
	items := make([]documentResponse, 0, len(docs))
	for i := range docs {
		items = append(items, h.document(&docs[i]))
	}
	return c.JSON(pageOf(items, total))
}

func (h *Handler) GetDocument(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	doc, err := h.Documents.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.document(doc))
}

// UploadDocument accepts a multipart form with a "file" and an optional "title".
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	f, err := formFile(c, "file", media.MaxFileSize)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	doc, err := h.DocumentFiles.Upload(c.UserContext(), *f, c.FormValue("title"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.document(doc))
}
