package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"pipi/internal/config"
	"pipi/internal/media"
	"pipi/internal/middleware"
	"pipi/internal/models"
	"pipi/internal/realtime"
	"pipi/internal/repository"
	"pipi/internal/service"
	"pipi/internal/web"
)

const testChannelSecret = "channel-secret"

var jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0x42}, 1024)...)

func init() {
	gin.SetMode(gin.TestMode)
}

// memImages keeps rows in insertion order and reads them newest first.
type memImages struct {
	mu   sync.Mutex
	rows []models.Image
}

func (m *memImages) Create(_ context.Context, image models.Image) (models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	image.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, image)
	return image, nil
}

func (m *memImages) newestFirst() []models.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Image, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		out = append(out, m.rows[i])
	}
	return out
}

func (m *memImages) ListAll(context.Context) ([]models.Image, error) {
	return m.newestFirst(), nil
}

func (m *memImages) ListLatest(_ context.Context, limit int) ([]models.Image, error) {
	all := m.newestFirst()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memImages) Page(_ context.Context, page int) ([]models.Image, error) {
	offset, err := repository.PageOffset(page)
	if err != nil {
		return nil, err
	}
	all := m.newestFirst()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + repository.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memImages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// fakeMedia hands out p1, p2, ... as public ids.
type fakeMedia struct {
	mu      sync.Mutex
	uploads int
}

func (f *fakeMedia) Upload(context.Context, string, string) (media.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return media.UploadResult{PublicID: fmt.Sprintf("p%d", f.uploads)}, nil
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

type reply struct {
	token string
	text  string
}

type fakeMessenger struct {
	mu      sync.Mutex
	replies []reply
	content map[string][]byte
}

func (m *fakeMessenger) Reply(_ context.Context, replyToken string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply{token: replyToken, text: text})
	return nil
}

func (m *fakeMessenger) Content(_ context.Context, messageID string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.content[messageID]
	if !ok {
		return nil, errors.New("content not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testEnv struct {
	router    *gin.Engine
	images    *memImages
	media     *fakeMedia
	messenger *fakeMessenger
	hub       *realtime.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.AppConfig{
		Environment:   "test",
		PublicBaseURL: "https://pipi.test",
		LINE:          config.LINEConfig{ChannelSecret: testChannelSecret, ChannelAccessToken: "token"},
		Auth:          config.AuthConfig{Username: "admin", Password: "default", SessionSecret: "session-secret"},
	}

	env := &testEnv{
		images:    &memImages{},
		media:     &fakeMedia{},
		messenger: &fakeMessenger{content: map[string][]byte{}},
		hub:       realtime.NewHub(),
	}

	intake := service.NewIntakeService(env.images, env.media, env.hub, t.TempDir(), zerolog.Nop())
	dispatcher := service.NewDispatcher(env.messenger, intake, nil, cfg.PublicBaseURL, zerolog.Nop())

	tmpl, err := web.Templates()
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		middleware.RequestID(zerolog.Nop()),
		sessions.Sessions(middleware.SessionName, cookie.NewStore([]byte(cfg.Auth.SessionSecret))),
		middleware.SessionStateLoader(),
	)

	NewHandlerSet(zerolog.Nop(), cfg, Dependencies{
		Images:     env.images,
		Intake:     intake,
		Dispatcher: dispatcher,
		Media:      env.media,
		Hub:        env.hub,
		DB:         okPinger{},
	}).Register(router.Group(""))

	env.router = router
	return env
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}
