package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/ids"
	"portfolio/internal/models"
)

const photoColumns = `ph.id, ph.title, ph.description, ph.image_url, ph.thumbnail_url, ph.alt_text,
	ph.category, ph.tags, ph.display_order, ph.featured, ph.uploaded_by_id, ph.created_at, ph.updated_at`

const photoSelect = `SELECT ` + photoColumns + `, a.id, a.name, a.email
	FROM photos ph LEFT JOIN admins a ON a.id = ph.uploaded_by_id`

const DefaultPhotoCategory = "general"

type PhotoFilter struct {
	Category     string
	FeaturedOnly bool
}

func (f PhotoFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Category != "" {
		conds = append(conds, "ph.category = ?")
		args = append(args, f.Category)
	}
	if f.FeaturedOnly {
		conds = append(conds, "ph.featured = ?")
		args = append(args, true)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type PhotoUpdate struct {
	Title        *string
	Description  *string
	ImageURL     *string
	ThumbnailURL *string
	AltText      *string
	Category     *string
	Tags         *string
	DisplayOrder *int
	Featured     *bool
}

func scanPhotoFields(photo *models.Photo) []any {
	return []any{&photo.ID, &photo.Title, &photo.Description, &photo.ImageURL, &photo.ThumbnailURL,
		&photo.AltText, &photo.Category, &photo.Tags, &photo.DisplayOrder, &photo.Featured,
		&photo.UploadedByID, &photo.CreatedAt, &photo.UpdatedAt}
}

func scanPhoto(row scanner) (*models.Photo, error) {
	var photo models.Photo
	var uploaderID, uploaderName, uploaderEmail sql.NullString
	dest := append(scanPhotoFields(&photo), &uploaderID, &uploaderName, &uploaderEmail)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if uploaderID.Valid {
		photo.Uploader = &models.Author{ID: uploaderID.String, Name: uploaderName.String, Email: uploaderEmail.String}
	}
	return &photo, nil
}

// ListPhotos returns photos by ascending display order.
func (db *DB) ListPhotos(ctx context.Context, filter PhotoFilter, page Page) ([]*models.Photo, error) {
	where, args := filter.where()
	limit, limitArgs := page.clause()
	query := photoSelect + where + ` ORDER BY ph.display_order ASC, ph.created_at ASC` + limit

	rows, err := db.conn.QueryContext(ctx, db.rebind(query), append(args, limitArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	photos := []*models.Photo{}
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (db *DB) CountPhotos(ctx context.Context, filter PhotoFilter) (int, error) {
	where, args := filter.where()
	var count int
	if err := db.conn.QueryRowContext(ctx, db.rebind(`SELECT COUNT(*) FROM photos ph`+where), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

func (db *DB) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	photo, err := scanPhoto(db.conn.QueryRowContext(ctx, db.rebind(photoSelect+` WHERE ph.id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

func (db *DB) CreatePhoto(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate photo id: %w", err)
	}
	if photo.Category == "" {
		photo.Category = DefaultPhotoCategory
	}
	now := time.Now().UTC()

	query := `INSERT INTO photos (id, title, description, image_url, thumbnail_url, alt_text, category, tags,
		display_order, featured, uploaded_by_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.conn.ExecContext(ctx, db.rebind(query), id, photo.Title, photo.Description, photo.ImageURL,
		photo.ThumbnailURL, photo.AltText, photo.Category, photo.Tags, photo.DisplayOrder, photo.Featured,
		photo.UploadedByID, now, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}
	return db.GetPhoto(ctx, id)
}

func (db *DB) UpdatePhoto(ctx context.Context, id string, upd PhotoUpdate) (*models.Photo, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	for _, f := range []struct {
		col string
		v   *string
	}{
		{"title", upd.Title},
		{"description", upd.Description},
		{"image_url", upd.ImageURL},
		{"thumbnail_url", upd.ThumbnailURL},
		{"alt_text", upd.AltText},
		{"category", upd.Category},
		{"tags", upd.Tags},
	} {
		if f.v != nil {
			set(f.col, *f.v)
		}
	}
	if upd.DisplayOrder != nil {
		set("display_order", *upd.DisplayOrder)
	}
	if upd.Featured != nil {
		set("featured", *upd.Featured)
	}
	set("updated_at", time.Now().UTC())

	query := `UPDATE photos SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, db.rebind(query), append(args, id)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update photo: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return nil, err
	}
	return db.GetPhoto(ctx, id)
}

func (db *DB) DeletePhoto(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.rebind(`DELETE FROM photos WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return checkAffected(res)
}
