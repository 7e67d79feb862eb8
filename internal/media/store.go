package media

import (
	"context"
	"errors"
	"fmt"

	"pipi/internal/config"
	"pipi/internal/storage"
)

// ErrUploadRejected marks an upload the media host did not accept.
var ErrUploadRejected = errors.New("upload rejected by media host")

type UploadResult struct {
	PublicID string
}

// Store is the media host: it takes a local file and hands back an opaque
// public id, and renders display URLs for ids it issued.
type Store interface {
	Upload(ctx context.Context, path string, contentType string) (UploadResult, error)
	DisplayURL(publicID string, t Transform) (string, error)
}

// NewStore builds the backend selected by cfg.Media.Driver.
func NewStore(ctx context.Context, cfg *config.AppConfig) (Store, error) {
	switch cfg.Media.Driver {
	case "cloudinary":
		return NewCloudinaryStore(cfg.Media)
	case "objectstore":
		objects, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return NewObjectStoreBackend(objects, cfg.Media.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Media.Driver)
	}
}
