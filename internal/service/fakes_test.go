package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"pipi/internal/config"
	"pipi/internal/media"
	"pipi/internal/models"
)

var jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0x42}, 2048)...)

type memImages struct {
	mu     sync.Mutex
	rows   []models.Image
	failOn error
}

func (m *memImages) Create(_ context.Context, image models.Image) (models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return models.Image{}, m.failOn
	}
	image.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, image)
	return image, nil
}

type fakeMedia struct {
	uploads   []string
	reject    bool
	sawExists bool
}

func (f *fakeMedia) Upload(_ context.Context, path string, contentType string) (media.UploadResult, error) {
	_, err := os.Stat(path)
	f.sawExists = err == nil
	if f.reject {
		return media.UploadResult{}, fmt.Errorf("%w: Invalid image file", media.ErrUploadRejected)
	}
	id := fmt.Sprintf("pub%d", len(f.uploads)+1)
	f.uploads = append(f.uploads, contentType)
	return media.UploadResult{PublicID: id}, nil
}

func (f *fakeMedia) DisplayURL(publicID string, t media.Transform) (string, error) {
	return demoDelivery.DisplayURL(publicID, t)
}

// demoDelivery renders real delivery URLs for the "demo" cloud without
// touching the network.
var demoDelivery = func() *media.CloudinaryStore {
	store, err := media.NewCloudinaryStore(config.MediaConfig{
		Cloudinary: config.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"},
	})
	if err != nil {
		panic(err)
	}
	return store
}()

type countingNotifier struct {
	count int
}

func (n *countingNotifier) Notify(context.Context) { n.count++ }

type sentReply struct {
	token string
	text  string
}

type fakeMessenger struct {
	replies    []sentReply
	content    map[string][]byte
	fetched    []string
	contentErr error
}

func (m *fakeMessenger) Reply(_ context.Context, replyToken string, text string) error {
	m.replies = append(m.replies, sentReply{token: replyToken, text: text})
	return nil
}

func (m *fakeMessenger) Content(_ context.Context, messageID string) (io.ReadCloser, error) {
	m.fetched = append(m.fetched, messageID)
	if m.contentErr != nil {
		return nil, m.contentErr
	}
	data, ok := m.content[messageID]
	if !ok {
		return nil, errors.New("content not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type mapDeduper struct {
	seen map[string]bool
}

func (d *mapDeduper) FirstSeen(_ context.Context, id string) (bool, error) {
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

type fixture struct {
	images    *memImages
	media     *fakeMedia
	notifier  *countingNotifier
	messenger *fakeMessenger
	tempDir   string
	intake    *IntakeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		images:    &memImages{},
		media:     &fakeMedia{},
		notifier:  &countingNotifier{},
		messenger: &fakeMessenger{content: map[string][]byte{}},
		tempDir:   t.TempDir(),
	}
	f.intake = NewIntakeService(f.images, f.media, f.notifier, f.tempDir, zerolog.Nop())
	return f
}

func (f *fixture) requireTempDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	require.Empty(t, entries, "temp files left behind")
}
