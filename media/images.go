package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/1rvyn/web-stories-editor/metrics"
	"github.com/1rvyn/web-stories-editor/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageSize bounds a single upload.
const MaxImageSize = 20 << 20

var ErrUnsupportedImage = errors.New("unsupported image")

type ImageStore interface {
	Create(ctx context.Context, img *models.Image) error
}

// Images uploads image files and records them.
type Images struct {
	storage Storage
	store   ImageStore
	log     *zap.Logger
}

func NewImages(storage Storage, store ImageStore, log *zap.Logger) *Images {
	return &Images{storage: storage, store: store, log: log.Named("media")}
}

// Upload stores data under a fresh key and records the image. title
// defaults to the file name without its extension.
func (i *Images) Upload(ctx context.Context, fileName, title string, data []byte) (*models.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedImage)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrUnsupportedImage, MaxImageSize)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	mimeType := MimeType(fileName, data)
	ext := path.Ext(fileName)
	if ext == "" {
		ext = "." + format
	}
	key := "images/" + uuid.NewString() + strings.ToLower(ext)
	if err := i.storage.Put(ctx, key, mimeType, data); err != nil {
		return nil, err
	}

	img := &models.Image{
		Title:    titleOf(title, fileName),
		FileKey:  key,
		FileName: path.Base(fileName),
		MimeType: mimeType,
		Width:    cfg.Width,
		Height:   cfg.Height,
		FileSize: int64(len(data)),
	}
	if err := i.store.Create(ctx, img); err != nil {
		return nil, fmt.Errorf("recording image %s: %w", key, err)
	}

	metrics.MediaUploads.WithLabelValues("image").Inc()
	i.log.Info("Image uploaded", zap.Uint("image_id", img.ID), zap.String("key", key), zap.String("mime_type", mimeType))
	return img, nil
}

// URL is the download URL of img.
func (i *Images) URL(img *models.Image) string {
	return i.storage.URL(img.FileKey)
}

// mediaTypes covers extensions the platform mime tables may lack.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
}

// MimeType guesses from the file name first and sniffs the content after.
func MimeType(fileName string, data []byte) string {
	ext := strings.ToLower(path.Ext(fileName))
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if base, _, err := mime.ParseMediaType(t); err == nil {
			return base
		}
	}
	t := http.DetectContentType(data)
	if base, _, err := mime.ParseMediaType(t); err == nil {
		return base
	}
	return t
}
