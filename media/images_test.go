package media

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/1rvyn/web-stories-editor/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	created []*models.Image
}

func (f *fakeStore) Create(_ context.Context, img *models.Image) error {
	img.ID = uint(len(f.created) + 1)
	f.created = append(f.created, img)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUploadRecordsImage(t *testing.T) {
	storage := &Memory{BaseURL: "https://media.example/"}
	store := &fakeStore{}
	images := NewImages(storage, store, zap.NewNop())

	data := pngBytes(t, 40, 30)
	img, err := images.Upload(context.Background(), "dir/Logo.PNG", "", data)
	require.NoError(t, err)

	assert.Equal(t, "Logo", img.Title)
	assert.Equal(t, "Logo.PNG", img.FileName)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 30, img.Height)
	assert.Equal(t, int64(len(data)), img.FileSize)
	assert.True(t, strings.HasPrefix(img.FileKey, "images/"))
	assert.True(t, strings.HasSuffix(img.FileKey, ".png"))

	stored, ok := storage.Get(img.FileKey)
	require.True(t, ok)
	assert.Equal(t, data, stored)
	assert.Equal(t, "https://media.example/"+img.FileKey, images.URL(img))
	assert.Len(t, store.created, 1)
}

func TestUploadRejectsNonImages(t *testing.T) {
	images := NewImages(&Memory{}, &fakeStore{}, zap.NewNop())

	_, err := images.Upload(context.Background(), "notes.txt", "", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = images.Upload(context.Background(), "empty.png", "", nil)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/jpeg", MimeType("a.jpg", nil))
	assert.Equal(t, "image/png", MimeType("noext", pngBytes(t, 1, 1)))
}

func TestMemoryServe(t *testing.T) {
	storage := &Memory{BaseURL: "/media"}
	require.NoError(t, storage.Put(context.Background(), "images/a.png", "image/png", []byte("png")))

	app := fiber.New()
	app.Get("/media/*", storage.Serve)

	resp, err := app.Test(httptest.NewRequest("GET", "/media/images/a.png", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = app.Test(httptest.NewRequest("GET", "/media/images/missing.png", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

type fakeItemStore struct {
	created []*models.MediaItem
}

func (f *fakeItemStore) Create(_ context.Context, item *models.MediaItem) error {
	item.ID = uint(len(f.created) + 1)
	f.created = append(f.created, item)
	return nil
}

func TestItemsUploadVideoWithThumbnail(t *testing.T) {
	storage := &Memory{BaseURL: "https://media.example"}
	store := &fakeItemStore{}
	items := NewItems(storage, store, zap.NewNop())

	width := 720
	item, err := items.Upload(context.Background(), ItemUpload{
		File:      File{Name: "clips/Intro.mp4", Data: []byte("not really mp4")},
		Thumbnail: &File{Name: "poster.png", Data: pngBytes(t, 8, 8)},
		Duration:  12.5,
		Width:     &width,
	})
	require.NoError(t, err)

	assert.Equal(t, models.MediaVideo, item.Type)
	assert.Equal(t, "Intro", item.Title)
	assert.Equal(t, "video/mp4", item.MimeType)
	assert.Equal(t, 12.5, item.Duration)
	assert.Equal(t, &width, item.Width)
	assert.Nil(t, item.Height)
	assert.True(t, strings.HasPrefix(item.FileKey, "media/"))
	assert.True(t, strings.HasSuffix(item.FileKey, ".mp4"))
	require.NotNil(t, item.ThumbnailKey)
	assert.True(t, strings.HasPrefix(*item.ThumbnailKey, "media/thumbnails/"))

	_, ok := storage.Get(item.FileKey)
	assert.True(t, ok)
	assert.Equal(t, "https://media.example/"+item.FileKey, items.URL(item))
	assert.Equal(t, "https://media.example/"+*item.ThumbnailKey, items.ThumbnailURL(item))
	assert.Len(t, store.created, 1)
}

func TestItemsUploadRejectsMismatches(t *testing.T) {
	items := NewItems(&Memory{}, &fakeItemStore{}, zap.NewNop())
	ctx := context.Background()

	audio, err := items.Upload(ctx, ItemUpload{File: File{Name: "theme.mp3", Data: []byte("ID3")}, Title: "Theme"})
	require.NoError(t, err)
	assert.Equal(t, models.MediaAudio, audio.Type)
	assert.Empty(t, items.ThumbnailURL(audio))

	cases := map[string]ItemUpload{
		"declared type differs": {File: File{Name: "theme.mp3", Data: []byte("ID3")}, Type: models.MediaVideo},
		"not media":             {File: File{Name: "notes.txt", Data: []byte("hello")}},
		"empty":                 {File: File{Name: "empty.mp4"}},
		"negative duration":     {File: File{Name: "a.mp4", Data: []byte("x")}, Duration: -1},
		"bad thumbnail":         {File: File{Name: "a.mp4", Data: []byte("x")}, Thumbnail: &File{Name: "t.png", Data: []byte("nope")}},
	}
	for name, up := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := items.Upload(ctx, up)
			assert.ErrorIs(t, err, ErrUnsupportedMedia)
		})
	}
}

type fakeDocumentStore struct {
	created []*models.Document
}

func (f *fakeDocumentStore) Create(_ context.Context, doc *models.Document) error {
	doc.ID = uint(len(f.created) + 1)
	f.created = append(f.created, doc)
	return nil
}

func TestDocumentsUpload(t *testing.T) {
	storage := &Memory{BaseURL: "/media"}
	docs := NewDocuments(storage, &fakeDocumentStore{}, zap.NewNop())

	doc, err := docs.Upload(context.Background(), File{Name: "Brief.pdf", Data: []byte("%PDF-1.4")}, "")
	require.NoError(t, err)
	assert.Equal(t, "Brief", doc.Title)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.True(t, strings.HasPrefix(doc.FileKey, "documents/"))
	assert.Equal(t, "/media/"+doc.FileKey, docs.URL(doc))

	_, err = docs.Upload(context.Background(), File{Name: "empty.pdf"}, "")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}
