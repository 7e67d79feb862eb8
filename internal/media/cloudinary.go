package media

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"pipi/internal/config"
)

type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	timeout time.Duration
}

func NewCloudinaryStore(cfg config.MediaConfig) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	cld.Config.URL.ForceVersion = false
	cld.Config.URL.Analytics = false

	return &CloudinaryStore{
		cld:     cld,
		timeout: cfg.Timeout,
	}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, path string, _ string) (UploadResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.cld.Upload.Upload(ctx, path, uploader.UploadParams{})
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}
	if resp == nil {
		return UploadResult{}, fmt.Errorf("%w: empty response", ErrUploadRejected)
	}
	if resp.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUploadRejected, resp.Error.Message)
	}
	if resp.PublicID == "" {
		return UploadResult{}, fmt.Errorf("%w: missing public id", ErrUploadRejected)
	}

	return UploadResult{PublicID: resp.PublicID}, nil
}

// DisplayURL renders the delivery URL through the SDK's asset builder, e.g.
// https://res.cloudinary.com/<cloud>/image/upload/c_fill,h_150,w_100/<id>.jpg.
func (s *CloudinaryStore) DisplayURL(publicID string, t Transform) (string, error) {
	if t.Format != "" {
		publicID += "." + t.Format
	}

	img, err := s.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("build image asset: %w", err)
	}
	img.Transformation = t.String()

	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("render image url: %w", err)
	}
	return url, nil
}
