package controller

import (
	"errors"
	"net/http"

	"imagegallery/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListImages returns the gallery as JSON.
func (ic *ImageController) ListImages(c *gin.Context) {
	images, err := ic.catalog.List(c.Request.Context())
	if err != nil {
		ic.logger.Error("list images failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error getting images"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"images": images,
		"total":  len(images),
	})
}

func (ic *ImageController) CreateImage(c *gin.Context) {
	in, closeFn, err := ic.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeFn()

	img, err := ic.catalog.Upload(c.Request.Context(), in)
	if errors.Is(err, service.ErrEmptyFilename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": uploadFailure + err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": uploadFailure + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, img.Display())
}

func (ic *ImageController) DeleteImage(c *gin.Context) {
	n, err := ic.catalog.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": deleteFailure + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
