package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"pipi/internal/media"
	"pipi/internal/media/sniffer"
	"pipi/internal/models"
	"pipi/internal/realtime"
)

// TempPrefix names spooled attachments so the sweeper can find leftovers.
const TempPrefix = "jpg-"

var ErrUnsupportedAttachment = errors.New("unsupported attachment")

type ImageStore interface {
	Create(ctx context.Context, image models.Image) (models.Image, error)
}

// IntakeService runs upload, transform, insert and notify for one image.
// A failing step stops the sequence; nothing is rolled back.
type IntakeService struct {
	images   ImageStore
	media    media.Store
	notifier realtime.Notifier
	tempDir  string
	log      zerolog.Logger
}

func NewIntakeService(images ImageStore, store media.Store, notifier realtime.Notifier, tempDir string, log zerolog.Logger) *IntakeService {
	return &IntakeService{
		images:   images,
		media:    store,
		notifier: notifier,
		tempDir:  tempDir,
		log:      log,
	}
}

func (s *IntakeService) Ingest(ctx context.Context, r io.Reader, transform media.Transform) (models.Image, error) {
	path, contentType, err := s.spool(r)
	if err != nil {
		return models.Image{}, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", path).Msg("remove temp file failed")
		}
	}()

	uploaded, err := s.media.Upload(ctx, path, contentType)
	if err != nil {
		return models.Image{}, err
	}

	displayURL, err := s.media.DisplayURL(uploaded.PublicID, transform)
	if err != nil {
		return models.Image{}, fmt.Errorf("display url: %w", err)
	}

	image, err := s.images.Create(ctx, models.Image{
		PublicID: uploaded.PublicID,
		URL:      displayURL,
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("save image: %w", err)
	}

	s.notifier.Notify(ctx)

	s.log.Info().
		Int64("image_id", image.ID).
		Str("public_id", image.PublicID).
		Str("content_type", contentType).
		Msg("image stored")

	return image, nil
}

// spool writes r to a temp file after checking that it starts like an image.
func (s *IntakeService) spool(r io.Reader) (string, string, error) {
	detected, head, err := sniffer.Detect(r)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnknownType) {
			return "", "", ErrUnsupportedAttachment
		}
		return "", "", fmt.Errorf("read content: %w", err)
	}

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create temp dir: %w", err)
	}

	f, err := os.CreateTemp(s.tempDir, TempPrefix)
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}

	if err := writeAll(f, head, r); err != nil {
		_ = os.Remove(f.Name())
		return "", "", fmt.Errorf("write temp file: %w", err)
	}

	return f.Name(), detected.MIME, nil
}

func writeAll(f *os.File, head []byte, rest io.Reader) error {
	if _, err := f.Write(head); err != nil {
		_ = f.Close()
		return err
	}
	if _, err := io.Copy(f, rest); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
