package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"imagegallery/models"
	"imagegallery/repository"
	"imagegallery/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	flashMessage = "message"
	flashError   = "error"

	uploadSuccess = "File uploaded successfully"
	deleteSuccess = "File deleted successfully"
	uploadFailure = "Error uploading file: "
	deleteFailure = "Error deleting file: "
)

// ImageCatalog is the part of service.Catalog the handlers use.
type ImageCatalog interface {
	Upload(ctx context.Context, in service.UploadInput) (*models.Image, error)
	List(ctx context.Context) ([]models.DisplayImage, error)
	Delete(ctx context.Context, name string) (int64, error)
	ViewURL(ctx context.Context, name string) (string, error)
}

type ImageController struct {
	catalog        ImageCatalog
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewImageController(catalog ImageCatalog, logger *zap.Logger, maxUploadBytes int64) *ImageController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageController{
		catalog:        catalog,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Index renders the gallery together with any pending flash messages.
func (ic *ImageController) Index(c *gin.Context) {
	session := sessions.Default(c)
	messages := session.Flashes(flashMessage)
	errs := session.Flashes(flashError)
	if err := session.Save(); err != nil {
		ic.logger.Warn("session save failed", zap.Error(err))
	}

	images, err := ic.catalog.List(c.Request.Context())
	if err != nil {
		ic.logger.Error("list images failed", zap.Error(err))
		errs = append(errs, "Error loading images: "+err.Error())
		images = []models.DisplayImage{}
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Images":   images,
		"Messages": messages,
		"Errors":   errs,
	})
}

// Upload handles the multipart form from the index page.
func (ic *ImageController) Upload(c *gin.Context) {
	in, closeFn, err := ic.readUpload(c)
	if err != nil {
		ic.redirectWithFlash(c, flashError, uploadFailure+err.Error())
		return
	}
	defer closeFn()

	if _, err := ic.catalog.Upload(c.Request.Context(), in); err != nil {
		ic.redirectWithFlash(c, flashError, uploadFailure+err.Error())
		return
	}
	ic.redirectWithFlash(c, flashMessage, uploadSuccess)
}

// Delete removes the image named in the path.
func (ic *ImageController) Delete(c *gin.Context) {
	if _, err := ic.catalog.Delete(c.Request.Context(), c.Param("name")); err != nil {
		ic.redirectWithFlash(c, flashError, deleteFailure+err.Error())
		return
	}
	ic.redirectWithFlash(c, flashMessage, deleteSuccess)
}

// View redirects to a short lived presigned URL for the image.
func (ic *ImageController) View(c *gin.Context) {
	name := c.Param("name")
	u, err := ic.catalog.ViewURL(c.Request.Context(), name)
	if err != nil {
		if !errors.Is(err, repository.ErrImageNotFound) {
			ic.logger.Error("presign failed", zap.String("key", name), zap.Error(err))
		}
		ic.redirectWithFlash(c, flashError, "Error opening file: "+err.Error())
		return
	}
	c.Redirect(http.StatusFound, u)
}

func (ic *ImageController) readUpload(c *gin.Context) (service.UploadInput, func(), error) {
	if ic.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return service.UploadInput{}, nil, fmt.Errorf("file exceeds the %d MB upload limit", tooLarge.Limit>>20)
		case errors.Is(err, http.ErrMissingFile):
			return service.UploadInput{}, nil, errors.New("no file provided")
		default:
			return service.UploadInput{}, nil, fmt.Errorf("read upload: %w", err)
		}
	}
	f, err := fh.Open()
	if err != nil {
		return service.UploadInput{}, nil, err
	}

	return service.UploadInput{
		Filename:    fh.Filename,
		Description: c.PostForm("description"),
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { f.Close() }, nil
}

func (ic *ImageController) redirectWithFlash(c *gin.Context, kind, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, kind)
	if err := session.Save(); err != nil {
		ic.logger.Warn("session save failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}
