package repository

import (
	"context"
	"testing"
	"time"

	"imagegallery/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imageRepository interface {
	Insert(ctx context.Context, img *models.Image) (int64, error)
	ListAll(ctx context.Context) ([]models.Image, error)
	FindByName(ctx context.Context, name string) (*models.Image, error)
	DeleteByName(ctx context.Context, name string) (int64, error)
}

// newRepoFunc returns an empty store. A nil clock keeps the store's default.
type newRepoFunc func(t *testing.T, now func() time.Time) imageRepository

// stepClock returns a clock advancing one second per call.
func stepClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

// runImageRepositoryContract checks the behavior every metadata store shares.
func runImageRepositoryContract(t *testing.T, newRepo newRepoFunc) {
	ctx := context.Background()

	t.Run("insert then find", func(t *testing.T) {
		repo := newRepo(t, nil)

		img := &models.Image{Name: "1_cat.jpg", URL: "https://b.s3.r.amazonaws.com/1_cat.jpg", Description: "a cat"}
		id, err := repo.Insert(ctx, img)
		require.NoError(t, err)

		assert.NotZero(t, id)
		assert.Equal(t, id, img.ID)
		assert.False(t, img.CreatedAt.IsZero())

		got, err := repo.FindByName(ctx, "1_cat.jpg")
		require.NoError(t, err)
		assert.Equal(t, img.ID, got.ID)
		assert.Equal(t, "1_cat.jpg", got.Name)
		assert.Equal(t, "a cat", got.Description)
		assert.Equal(t, img.URL, got.URL)
		assert.True(t, img.CreatedAt.Equal(got.CreatedAt), "inserted %v, read back %v", img.CreatedAt, got.CreatedAt)
	})

	t.Run("ids increase", func(t *testing.T) {
		repo := newRepo(t, nil)

		first, err := repo.Insert(ctx, &models.Image{Name: "a.png"})
		require.NoError(t, err)
		second, err := repo.Insert(ctx, &models.Image{Name: "b.png"})
		require.NoError(t, err)
		assert.Greater(t, second, first)
	})

	t.Run("list newest first", func(t *testing.T) {
		repo := newRepo(t, stepClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

		empty, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		for _, name := range []string{"a.png", "b.png", "c.png"} {
			_, err := repo.Insert(ctx, &models.Image{Name: name, URL: "u/" + name})
			require.NoError(t, err)
		}

		images, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, images, 3)
		assert.Equal(t, "c.png", images[0].Name)
		assert.Equal(t, "b.png", images[1].Name)
		assert.Equal(t, "a.png", images[2].Name)
		assert.Equal(t, "u/c.png", images[0].URL)
	})

	t.Run("same timestamp lists latest id first", func(t *testing.T) {
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		repo := newRepo(t, func() time.Time { return fixed })

		_, err := repo.Insert(ctx, &models.Image{Name: "first.png"})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, &models.Image{Name: "second.png"})
		require.NoError(t, err)

		images, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, images, 2)
		assert.Equal(t, "second.png", images[0].Name)
	})

	t.Run("find missing name", func(t *testing.T) {
		repo := newRepo(t, nil)

		_, err := repo.FindByName(ctx, "nope.png")
		assert.ErrorIs(t, err, ErrImageNotFound)
	})

	t.Run("find returns oldest duplicate", func(t *testing.T) {
		repo := newRepo(t, stepClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

		first, err := repo.Insert(ctx, &models.Image{Name: "dup.png", Description: "one"})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, &models.Image{Name: "dup.png", Description: "two"})
		require.NoError(t, err)

		got, err := repo.FindByName(ctx, "dup.png")
		require.NoError(t, err)
		assert.Equal(t, first, got.ID)
	})

	t.Run("delete by name", func(t *testing.T) {
		repo := newRepo(t, nil)

		for i := 0; i < 2; i++ {
			_, err := repo.Insert(ctx, &models.Image{Name: "dup.png"})
			require.NoError(t, err)
		}
		_, err := repo.Insert(ctx, &models.Image{Name: "keep.png"})
		require.NoError(t, err)

		n, err := repo.DeleteByName(ctx, "dup.png")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = repo.DeleteByName(ctx, "dup.png")
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)

		_, err = repo.FindByName(ctx, "dup.png")
		assert.ErrorIs(t, err, ErrImageNotFound)

		images, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "keep.png", images[0].Name)
	})
}
