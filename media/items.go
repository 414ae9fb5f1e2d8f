package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"strings"

	"github.com/1rvyn/web-stories-editor/metrics"
	"github.com/1rvyn/web-stories-editor/models"
	"go.uber.org/zap"
)

var ErrUnsupportedMedia = errors.New("unsupported media")

type MediaItemStore interface {
	Create(ctx context.Context, item *models.MediaItem) error
}

// ItemUpload describes a video or audio upload. An empty Type is taken
// from the file's mime type.
type ItemUpload struct {
	File      File
	Thumbnail *File
	Title     string
	Type      string
	Duration  float64
	Width     *int
	Height    *int
}

// Items uploads video and audio files and records them.
type Items struct {
	storage Storage
	store   MediaItemStore
	log     *zap.Logger
}

func NewItems(storage Storage, store MediaItemStore, log *zap.Logger) *Items {
	return &Items{storage: storage, store: store, log: log.Named("media")}
}

func (i *Items) Upload(ctx context.Context, up ItemUpload) (*models.MediaItem, error) {
	if len(up.File.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedMedia)
	}
	if len(up.File.Data) > MaxFileSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrUnsupportedMedia, MaxFileSize)
	}
	if up.Duration < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrUnsupportedMedia)
	}

	mimeType := MimeType(up.File.Name, up.File.Data)
	kind, _, _ := strings.Cut(mimeType, "/")
	if up.Type != "" && up.Type != kind {
		return nil, fmt.Errorf("%w: %s is not %s", ErrUnsupportedMedia, mimeType, up.Type)
	}
	if !models.IsMediaType(kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
	}

	var thumbKey *string
	if up.Thumbnail != nil {
		if _, _, err := image.DecodeConfig(bytes.NewReader(up.Thumbnail.Data)); err != nil {
			return nil, fmt.Errorf("%w: thumbnail: %v", ErrUnsupportedMedia, err)
		}
		key, err := put(ctx, i.storage, "media/thumbnails", *up.Thumbnail, MimeType(up.Thumbnail.Name, up.Thumbnail.Data))
		if err != nil {
			return nil, err
		}
		thumbKey = &key
	}
	key, err := put(ctx, i.storage, "media", up.File, mimeType)
	if err != nil {
		return nil, err
	}

	item := &models.MediaItem{
		Title:        titleOf(up.Title, up.File.Name),
		Type:         kind,
		FileKey:      key,
		FileName:     path.Base(up.File.Name),
		MimeType:     mimeType,
		FileSize:     int64(len(up.File.Data)),
		Duration:     up.Duration,
		Width:        up.Width,
		Height:       up.Height,
		ThumbnailKey: thumbKey,
	}
	if err := i.store.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("recording media %s: %w", key, err)
	}

	metrics.MediaUploads.WithLabelValues(kind).Inc()
	i.log.Info("Media uploaded", zap.Uint("media_id", item.ID), zap.String("type", kind), zap.String("key", key))
	return item, nil
}

// URL is the download URL of item.
func (i *Items) URL(item *models.MediaItem) string {
	return i.storage.URL(item.FileKey)
}

// ThumbnailURL is "" when item has no thumbnail.
func (i *Items) ThumbnailURL(item *models.MediaItem) string {
	if item.ThumbnailKey == nil {
		return ""
	}
	return i.storage.URL(*item.ThumbnailKey)
}
