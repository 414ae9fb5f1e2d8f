package media

import (
	"context"
	"fmt"
	"path"

	"github.com/1rvyn/web-stories-editor/metrics"
	"github.com/1rvyn/web-stories-editor/models"
	"go.uber.org/zap"
)

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
}

// Documents uploads files of any type and records them.
type Documents struct {
	storage Storage
	store   DocumentStore
	log     *zap.Logger
}

func NewDocuments(storage Storage, store DocumentStore, log *zap.Logger) *Documents {
	return &Documents{storage: storage, store: store, log: log.Named("documents")}
}

func (d *Documents) Upload(ctx context.Context, f File, title string) (*models.Document, error) {
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedMedia)
	}
	if len(f.Data) > MaxFileSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrUnsupportedMedia, MaxFileSize)
	}
	mimeType := MimeType(f.Name, f.Data)
	key, err := put(ctx, d.storage, "documents", f, mimeType)
	if err != nil {
		return nil, err
	}
	doc := &models.Document{
		Title:    titleOf(title, f.Name),
		FileKey:  key,
		FileName: path.Base(f.Name),
		MimeType: mimeType,
		FileSize: int64(len(f.Data)),
	}
	if err := d.store.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("recording document %s: %w", key, err)
	}
	metrics.MediaUploads.WithLabelValues("document").Inc()
	d.log.Info("Document uploaded", zap.Uint("document_id", doc.ID), zap.String("key", key))
	return doc, nil
}

func (d *Documents) URL(doc *models.Document) string {
	return d.storage.URL(doc.FileKey)
}
