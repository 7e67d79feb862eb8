package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipi/internal/models"
)

// PageSize is the number of images per page and in the latest listing.
const PageSize = 30

var ErrInvalidPage = errors.New("invalid page")

type ImageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

func (r *ImageRepository) Create(ctx context.Context, image models.Image) (models.Image, error) {
	const query = `
		INSERT INTO images (public_id, url)
		VALUES ($1, $2)
		RETURNING id
	`

	if err := r.pool.QueryRow(ctx, query, image.PublicID, image.URL).Scan(&image.ID); err != nil {
		return models.Image{}, err
	}
	return image, nil
}

// ListAll returns every image, newest first.
func (r *ImageRepository) ListAll(ctx context.Context) ([]models.Image, error) {
	const query = `
		SELECT id, public_id, url
		FROM images
		ORDER BY id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

// ListLatest returns up to limit images, newest first.
func (r *ImageRepository) ListLatest(ctx context.Context, limit int) ([]models.Image, error) {
	const query = `
		SELECT id, public_id, url
		FROM images
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

// Page returns the 1-based page of PageSize images, newest first. A page past
// the end is empty, not an error.
func (r *ImageRepository) Page(ctx context.Context, page int) ([]models.Image, error) {
	offset, err := PageOffset(page)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT id, public_id, url
		FROM images
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, PageSize, offset)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

func PageOffset(page int) (int, error) {
	if page < 1 {
		return 0, ErrInvalidPage
	}
	return (page - 1) * PageSize, nil
}

func collectImages(rows pgx.Rows) ([]models.Image, error) {
	defer rows.Close()

	images := make([]models.Image, 0)
	for rows.Next() {
		var image models.Image
		if err := rows.Scan(&image.ID, &image.PublicID, &image.URL); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}
