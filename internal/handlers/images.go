package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pipi/internal/media"
	"pipi/internal/middleware"
	"pipi/internal/models"
	"pipi/internal/repository"
	"pipi/internal/service"
	"pipi/internal/web"
)

const (
	flashPosted      = "New entry was successfully posted"
	flashUnsupported = "Only image files can be added"
	flashFailed      = "Upload failed, please try again"
)

func (h HandlerSet) ShowImages(c *gin.Context) {
	images, err := h.images.ListAll(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "list images failed")
		return
	}

	c.HTML(http.StatusOK, web.ShowImagesTemplate, gin.H{
		"images":    images,
		"flashes":   middleware.TakeFlashes(c),
		"logged_in": middleware.CurrentSession(c).LoggedIn,
	})
}

func (h HandlerSet) ListPage(c *gin.Context) {
	c.HTML(http.StatusOK, web.ListTemplate, gin.H{})
}

// LatestImages feeds the slideshow page with the newest display URLs,
// rendered with the list transform rather than the stored one.
func (h HandlerSet) LatestImages(c *gin.Context) {
	images, err := h.images.ListLatest(c.Request.Context(), repository.PageSize)
	if err != nil {
		h.internalError(c, err, "list latest images failed")
		return
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := h.media.DisplayURL(img.PublicID, media.ListTransform)
		if err != nil {
			h.internalError(c, err, "display url failed")
			return
		}
		urls = append(urls, url)
	}

	c.JSON(http.StatusOK, gin.H{"images": urls})
}

func (h HandlerSet) AllImages(c *gin.Context) {
	images, err := h.images.ListAll(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "list images failed")
		return
	}
	if images == nil {
		images = []models.Image{}
	}

	body, err := json.Marshal(images)
	if err != nil {
		h.internalError(c, err, "encode images failed")
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// Page serves /page and /page/:page. The first page is a full document,
// later pages are fragments appended by the client.
func (h HandlerSet) Page(c *gin.Context) {
	page := 1
	if raw := c.Param("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		page = n
	}

	images, err := h.images.Page(c.Request.Context(), page)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidPage) {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		h.internalError(c, err, "page images failed")
		return
	}

	data := gin.H{
		"images": images,
		"page":   page,
		"next":   page + 1,
		"more":   len(images) == repository.PageSize,
	}
	if page == 1 {
		c.HTML(http.StatusOK, web.PageTopTemplate, data)
		return
	}
	c.HTML(http.StatusOK, web.ItemsTemplate, data)
}

func (h HandlerSet) AddImage(c *gin.Context) {
	log := zerolog.Ctx(c.Request.Context())

	header, err := c.FormFile("file")
	if err != nil {
		c.String(http.StatusBadRequest, "file required")
		return
	}

	file, err := header.Open()
	if err != nil {
		c.String(http.StatusBadRequest, "file unreadable")
		return
	}
	defer file.Close()

	image, err := h.intake.Ingest(c.Request.Context(), file, media.ManualTransform)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("manual upload failed")
		if errors.Is(err, service.ErrUnsupportedAttachment) {
			h.flash(c, flashUnsupported)
		} else {
			h.flash(c, flashFailed)
		}
		c.Redirect(http.StatusFound, "/sh")
		return
	}

	log.Info().Str("public_id", image.PublicID).Msg("manual upload stored")
	h.flash(c, flashPosted)
	c.Redirect(http.StatusFound, "/sh")
}

func (h HandlerSet) internalError(c *gin.Context, err error, msg string) {
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}
