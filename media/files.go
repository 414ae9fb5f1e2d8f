package media

import (
	"context"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize bounds a single media or document upload.
const MaxFileSize = 200 << 20

// File is an uploaded file held in memory.
type File struct {
	Name string
	Data []byte
}

// put stores f under dir with a fresh key. The extension comes from the
// file name, or from mimeType when the name has none.
func put(ctx context.Context, storage Storage, dir string, f File, mimeType string) (string, error) {
	ext := strings.ToLower(path.Ext(f.Name))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	key := dir + "/" + uuid.NewString() + ext
	if err := storage.Put(ctx, key, mimeType, f.Data); err != nil {
		return "", err
	}
	return key, nil
}

// titleOf defaults an empty title to the file name without its extension.
func titleOf(title, fileName string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	return strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
}
