package media

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/segmentio/ksuid"

	"pipi/internal/storage"
)

// ObjectStoreBackend keeps originals in an S3 compatible bucket. Objects are
// served as uploaded, so display URLs ignore the transform.
type ObjectStoreBackend struct {
	objects *storage.ObjectStore
	timeout time.Duration
}

func NewObjectStoreBackend(objects *storage.ObjectStore, timeout time.Duration) *ObjectStoreBackend {
	return &ObjectStoreBackend{objects: objects, timeout: timeout}
}

func (b *ObjectStoreBackend) Upload(ctx context.Context, filePath string, contentType string) (UploadResult, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	key := buildObjectKey(time.Now().UTC(), ksuid.New().String())
	if err := b.objects.PutFile(ctx, key, filePath, contentType); err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}
	return UploadResult{PublicID: key}, nil
}

func (b *ObjectStoreBackend) DisplayURL(publicID string, _ Transform) (string, error) {
	return b.objects.PublicURL(publicID), nil
}

func buildObjectKey(now time.Time, id string) string {
	return path.Join(now.Format("2006/01/02"), id)
}
