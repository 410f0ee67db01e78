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

const gallerySelect = `SELECT id, name, slug, description, cover_image, sort_order, published, created_at, updated_at FROM galleries`

func scanGallery(row scanner) (*models.Gallery, error) {
	var g models.Gallery
	if err := row.Scan(&g.ID, &g.Name, &g.Slug, &g.Description, &g.CoverImage, &g.Order, &g.Published, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Items = []models.GalleryItem{}
	return &g, nil
}

// ListGalleries returns galleries by ascending order, each with its items and photos.
func (db *DB) ListGalleries(ctx context.Context, publishedOnly bool) ([]*models.Gallery, error) {
	query := gallerySelect
	var args []any
	if publishedOnly {
		query += ` WHERE published = ?`
		args = append(args, true)
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list galleries: %w", err)
	}
	galleries := []*models.Gallery{}
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan gallery: %w", err)
		}
		galleries = append(galleries, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.loadGalleryItems(ctx, galleries); err != nil {
		return nil, err
	}
	return galleries, nil
}

func (db *DB) GetGallery(ctx context.Context, id string) (*models.Gallery, error) {
	g, err := scanGallery(db.conn.QueryRowContext(ctx, db.rebind(gallerySelect+` WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gallery: %w", err)
	}
	if err := db.loadGalleryItems(ctx, []*models.Gallery{g}); err != nil {
		return nil, err
	}
	return g, nil
}

func (db *DB) loadGalleryItems(ctx context.Context, galleries []*models.Gallery) error {
	if len(galleries) == 0 {
		return nil
	}
	byID := make(map[string]*models.Gallery, len(galleries))
	placeholders := make([]string, 0, len(galleries))
	args := make([]any, 0, len(galleries))
	for _, g := range galleries {
		byID[g.ID] = g
		placeholders = append(placeholders, "?")
		args = append(args, g.ID)
	}

	query := `SELECT gi.id, gi.gallery_id, gi.photo_id, gi.sort_order, ` + photoColumns + `
		FROM gallery_items gi JOIN photos ph ON ph.id = gi.photo_id
		WHERE gi.gallery_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY gi.sort_order ASC`
	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to list gallery items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.GalleryItem
		photo := &models.Photo{}
		dest := append([]any{&item.ID, &item.GalleryID, &item.PhotoID, &item.Order}, scanPhotoFields(photo)...)
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan gallery item: %w", err)
		}
		item.Photo = photo
		if g := byID[item.GalleryID]; g != nil {
			g.Items = append(g.Items, item)
		}
	}
	return rows.Err()
}

// CreateGallery inserts the gallery and one item per photo id, ordered as given.
func (db *DB) CreateGallery(ctx context.Context, gallery *models.Gallery, photoIDs []string) (*models.Gallery, error) {
	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate gallery id: %w", err)
	}
	now := time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO galleries (id, name, slug, description, cover_image, sort_order, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, db.rebind(query), id, gallery.Name, gallery.Slug, gallery.Description,
		gallery.CoverImage, gallery.Order, gallery.Published, now, now); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create gallery: %w", err)
	}

	for i, photoID := range photoIDs {
		itemID, err := ids.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate gallery item id: %w", err)
		}
		if _, err := tx.ExecContext(ctx, db.rebind(`INSERT INTO gallery_items (id, gallery_id, photo_id, sort_order) VALUES (?, ?, ?, ?)`),
			itemID, id, photoID, i); err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("photo %s: %w", photoID, ErrInvalidReference)
			}
			return nil, fmt.Errorf("failed to create gallery item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit gallery: %w", err)
	}
	return db.GetGallery(ctx, id)
}
