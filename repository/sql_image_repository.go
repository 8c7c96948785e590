package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"imagegallery/database"
	"imagegallery/models"
)

// SQLImageRepository stores image metadata in Postgres or SQLite.
type SQLImageRepository struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
}

func NewSQLImageRepository(db *sql.DB, dialect database.Dialect) *SQLImageRepository {
	return &SQLImageRepository{
		db:      db,
		dialect: dialect,
		now:     time.Now,
	}
}

const insertImageQuery = `
	INSERT INTO images (name, url, description, created_at)
	VALUES (?, ?, ?, ?)
	RETURNING id
`

// Insert persists img and fills in its ID and CreatedAt.
func (r *SQLImageRepository) Insert(ctx context.Context, img *models.Image) (int64, error) {
	if img == nil {
		return 0, fmt.Errorf("image cannot be nil")
	}

	createdAt := r.now().UTC()
	var id int64
	err := database.ExecutorFor(ctx, r.db).
		QueryRowContext(ctx, r.dialect.Rebind(insertImageQuery), img.Name, img.URL, img.Description, createdAt).
		Scan(&id)
	if err != nil {
		return 0, storeErr("insert", err)
	}

	img.ID = id
	img.CreatedAt = createdAt
	return id, nil
}

const listImagesQuery = `
	SELECT id, name, url, description, created_at
	FROM images
	ORDER BY created_at DESC, id DESC
`

// ListAll returns every record, newest first.
func (r *SQLImageRepository) ListAll(ctx context.Context) ([]models.Image, error) {
	rows, err := database.ExecutorFor(ctx, r.db).QueryContext(ctx, listImagesQuery)
	if err != nil {
		return nil, storeErr("list", err)
	}
	defer rows.Close()

	images := make([]models.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, storeErr("list", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", err)
	}
	return images, nil
}

const findImageByNameQuery = `
	SELECT id, name, url, description, created_at
	FROM images
	WHERE name = ?
	ORDER BY id
	LIMIT 1
`

// FindByName returns the oldest record with the given name.
func (r *SQLImageRepository) FindByName(ctx context.Context, name string) (*models.Image, error) {
	row := database.ExecutorFor(ctx, r.db).QueryRowContext(ctx, r.dialect.Rebind(findImageByNameQuery), name)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, storeErr("find", err)
	}
	return &img, nil
}

// DeleteByName removes every record with the given name. Zero matches is not an error.
func (r *SQLImageRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	res, err := database.ExecutorFor(ctx, r.db).ExecContext(ctx, r.dialect.Rebind("DELETE FROM images WHERE name = ?"), name)
	if err != nil {
		return 0, storeErr("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete", err)
	}
	return n, nil
}

// WithinTx runs fn in a local transaction shared by all repository calls made with its context.
func (r *SQLImageRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.RunInTransaction(ctx, r.db, fn)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(s rowScanner) (models.Image, error) {
	var img models.Image
	err := s.Scan(&img.ID, &img.Name, &img.URL, &img.Description, &img.CreatedAt)
	return img, err
}
