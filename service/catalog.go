package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"imagegallery/models"
	"imagegallery/repository"

	"go.uber.org/zap"
)

// ImageRepository is the metadata store the catalog writes to.
type ImageRepository interface {
	Insert(ctx context.Context, img *models.Image) (int64, error)
	ListAll(ctx context.Context) ([]models.Image, error)
	FindByName(ctx context.Context, name string) (*models.Image, error)
	DeleteByName(ctx context.Context, name string) (int64, error)
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ObjectStore holds the image bytes. Delete of a missing key must succeed.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// UploadInput is one file received from a client.
type UploadInput struct {
	Filename    string
	Description string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Catalog coordinates the object store and the metadata store. The two are
// written sequentially; only the metadata part runs in a transaction.
type Catalog struct {
	images     ImageRepository
	objects    ObjectStore
	logger     *zap.Logger
	now        func() time.Time
	key        KeyFunc
	presignTTL time.Duration
}

type Option func(*Catalog)

func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

func WithKeyFunc(fn KeyFunc) Option {
	return func(c *Catalog) { c.key = fn }
}

func WithPresignTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.presignTTL = ttl }
}

func NewCatalog(images ImageRepository, objects ObjectStore, logger *zap.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		images:     images,
		objects:    objects,
		logger:     logger,
		now:        time.Now,
		key:        UniqueKey,
		presignTTL: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload stores the file under a fresh key and records its metadata.
// If the metadata insert fails the uploaded object is deleted again.
func (c *Catalog) Upload(ctx context.Context, in UploadInput) (*models.Image, error) {
	filename := cleanFilename(in.Filename)
	if filename == "" {
		return nil, &UploadError{Op: "validate", Err: ErrEmptyFilename}
	}
	if in.Body == nil {
		return nil, &UploadError{Op: "validate", Err: errors.New("file content is missing")}
	}

	key := c.key(c.now(), filename)
	log := c.logger.With(zap.String("key", key))

	if err := c.objects.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		log.Error("object put failed", zap.Error(err))
		return nil, &UploadError{Op: "put", Key: key, Err: err}
	}

	img := &models.Image{
		Name:        key,
		URL:         c.objects.PublicURL(key),
		Description: in.Description,
	}

	err := c.images.WithinTx(ctx, func(txCtx context.Context) error {
		_, err := c.images.Insert(txCtx, img)
		return err
	})
	if err != nil {
		log.Error("metadata insert failed, removing uploaded object", zap.Error(err))
		if delErr := c.objects.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Error("orphan blob left in object store", zap.Error(delErr))
		}
		return nil, &UploadError{Op: "insert", Key: key, Err: err}
	}

	log.Info("image uploaded", zap.Int64("id", img.ID), zap.Int64("size", in.Size))
	return img, nil
}

// List returns every image, newest first.
func (c *Catalog) List(ctx context.Context) ([]models.DisplayImage, error) {
	images, err := c.images.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	out := make([]models.DisplayImage, 0, len(images))
	for _, img := range images {
		out = append(out, img.Display())
	}
	return out, nil
}

// Delete removes the object and then its metadata, returning how many
// metadata records were removed. The object is deleted even if no record
// exists. When the object delete fails the metadata is left in place.
func (c *Catalog) Delete(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, &DeleteError{Op: "validate", Err: ErrEmptyName}
	}
	log := c.logger.With(zap.String("key", name))

	if err := c.objects.Delete(ctx, name); err != nil {
		log.Error("object delete failed, metadata kept", zap.Error(err))
		return 0, &DeleteError{Op: "object", Name: name, Err: err}
	}

	var removed int64
	err := c.images.WithinTx(ctx, func(txCtx context.Context) error {
		_, err := c.images.FindByName(txCtx, name)
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		removed, err = c.images.DeleteByName(txCtx, name)
		return err
	})
	if err != nil {
		log.Error("metadata delete failed after object removal", zap.Error(err))
		return 0, &DeleteError{Op: "metadata", Name: name, Err: err}
	}

	log.Info("image deleted", zap.Int64("records", removed))
	return removed, nil
}

// ViewURL returns a presigned link for a catalogued image.
func (c *Catalog) ViewURL(ctx context.Context, name string) (string, error) {
	if _, err := c.images.FindByName(ctx, name); err != nil {
		return "", err
	}
	return c.objects.PresignGet(ctx, name, c.presignTTL)
}
