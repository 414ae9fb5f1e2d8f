package routes

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/1rvyn/web-stories-editor/media"
	"github.com/1rvyn/web-stories-editor/models"
	"github.com/gofiber/fiber/v2"
)

const filesPerPage = 50

type imageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type imageResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	DownloadURL string    `json:"download_url"`
	MimeType    string    `json:"mime_type"`
	Size        imageSize `json:"size"`
}

func (h *Handler) image(img *models.Image) imageResponse {
	return imageResponse{
		ID:          img.ID,
		Title:       img.Title,
		DownloadURL: h.Media.URL(img),
		MimeType:    img.MimeType,
		Size:        imageSize{Width: img.Width, Height: img.Height},
	}
}

func (h *Handler) ListImages(c *fiber.Ctx) error {
	page := pageParam(c)
	imgs, total, err := h.Images.Page(c.UserContext(), (page-1)*filesPerPage, filesPerPage)
	if err != nil {
		return h.fail(c, err)
	}
	items := make([]imageResponse, 0, len(imgs))
	for i := range imgs {
		items = append(items, h.image(&imgs[i]))
	}
	return c.JSON(pageOf(items, total))
}

func (h *Handler) GetImage(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	img, err := h.Images.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.image(img))
}

// UploadImage accepts a multipart form with a "file" and an optional "title".
func (h *Handler) UploadImage(c *fiber.Ctx) error {
	f, err := formFile(c, "file", media.MaxImageSize)
	if err != nil {
		return h.badRequest(c, err.Error())
	}
	img, err := h.Media.Upload(c.UserContext(), f.Name, c.FormValue("title"), f.Data)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.image(img))
}

type listPage[T any] struct {
	Meta  listMeta `json:"meta"`
	Items []T      `json:"items"`
}

type listMeta struct {
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

func pageOf[T any](items []T, total int64) listPage[T] {
	return listPage[T]{
		Meta: listMeta{
			TotalCount: total,
			TotalPages: int(math.Ceil(float64(total) / filesPerPage)),
		},
		Items: items,
	}
}

func pageParam(c *fiber.Ctx) int {
	if page := c.QueryInt("page", 1); page > 1 {
		return page
	}
	return 1
}

var errMissingFile = errors.New("is required")

// formFile reads a multipart file field of at most limit bytes.
func formFile(c *fiber.Ctx, field string, limit int64) (*media.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s %w", field, errMissingFile)
	}
	if fh.Size > limit {
		return nil, fmt.Errorf("%s is too large", field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &media.File{Name: fh.Filename, Data: data}, nil
}
