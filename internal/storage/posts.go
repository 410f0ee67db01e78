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

const postSelect = `SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.cover_image, p.alt_text,
	p.meta_title, p.meta_description, p.meta_keywords, p.published, p.featured, p.author_id,
	p.published_at, p.created_at, p.updated_at, a.id, a.name, a.email
	FROM posts p LEFT JOIN admins a ON a.id = p.author_id`

type PostFilter struct {
	PublishedOnly bool
	FeaturedOnly  bool
}

func (f PostFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.PublishedOnly {
		conds = append(conds, "p.published = ?")
		args = append(args, true)
	}
	if f.FeaturedOnly {
		conds = append(conds, "p.featured = ?")
		args = append(args, true)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// PostUpdate carries the fields to change; nil fields are left untouched.
type PostUpdate struct {
	Title           *string
	Slug            *string
	Excerpt         *string
	Content         *string
	CoverImage      *string
	AltText         *string
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
	Published       *bool
	Featured        *bool
}

func scanPost(row scanner) (*models.Post, error) {
	var post models.Post
	var publishedAt sql.NullTime
	var authorID, authorName, authorEmail sql.NullString
	err := row.Scan(&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Content, &post.CoverImage,
		&post.AltText, &post.MetaTitle, &post.MetaDescription, &post.MetaKeywords, &post.Published,
		&post.Featured, &post.AuthorID, &publishedAt, &post.CreatedAt, &post.UpdatedAt,
		&authorID, &authorName, &authorEmail)
	if err != nil {
		return nil, err
	}
	post.PublishedAt = timePtr(publishedAt)
	if authorID.Valid {
		post.Author = &models.Author{ID: authorID.String, Name: authorName.String, Email: authorEmail.String}
	}
	return &post, nil
}

// ListPosts returns posts newest first.
func (db *DB) ListPosts(ctx context.Context, filter PostFilter, page Page) ([]*models.Post, error) {
	where, args := filter.where()
	limit, limitArgs := page.clause()
	query := postSelect + where + ` ORDER BY p.created_at DESC` + limit

	rows, err := db.conn.QueryContext(ctx, db.rebind(query), append(args, limitArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (db *DB) CountPosts(ctx context.Context, filter PostFilter) (int, error) {
	where, args := filter.where()
	var count int
	if err := db.conn.QueryRowContext(ctx, db.rebind(`SELECT COUNT(*) FROM posts p`+where), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (db *DB) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return db.getPostWhere(ctx, "p.id = ?", id)
}

func (db *DB) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return db.getPostWhere(ctx, "p.slug = ?", slug)
}

func (db *DB) getPostWhere(ctx context.Context, cond string, arg any) (*models.Post, error) {
	post, err := scanPost(db.conn.QueryRowContext(ctx, db.rebind(postSelect+" WHERE "+cond), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// CreatePost inserts the post and returns the stored row with its author.
func (db *DB) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate post id: %w", err)
	}
	now := time.Now().UTC()
	if post.Published && post.PublishedAt == nil {
		post.PublishedAt = &now
	}

	query := `INSERT INTO posts (id, title, slug, excerpt, content, cover_image, alt_text, meta_title,
		meta_description, meta_keywords, published, featured, author_id, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.conn.ExecContext(ctx, db.rebind(query), id, post.Title, post.Slug, post.Excerpt, post.Content,
		post.CoverImage, post.AltText, post.MetaTitle, post.MetaDescription, post.MetaKeywords,
		post.Published, post.Featured, post.AuthorID, nullTime(post.PublishedAt), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return db.GetPost(ctx, id)
}

// UpdatePost applies the non-nil fields. Setting Published also resets published_at.
func (db *DB) UpdatePost(ctx context.Context, id string, upd PostUpdate) (*models.Post, error) {
	now := time.Now().UTC()
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	setString := func(col string, v *string) {
		if v != nil {
			set(col, *v)
		}
	}

	setString("title", upd.Title)
	setString("slug", upd.Slug)
	setString("excerpt", upd.Excerpt)
	setString("content", upd.Content)
	setString("cover_image", upd.CoverImage)
	setString("alt_text", upd.AltText)
	setString("meta_title", upd.MetaTitle)
	setString("meta_description", upd.MetaDescription)
	setString("meta_keywords", upd.MetaKeywords)
	if upd.Published != nil {
		set("published", *upd.Published)
		if *upd.Published {
			set("published_at", now)
		} else {
			set("published_at", sql.NullTime{})
		}
	}
	if upd.Featured != nil {
		set("featured", *upd.Featured)
	}
	set("updated_at", now)

	query := `UPDATE posts SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, db.rebind(query), append(args, id)...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return nil, err
	}
	return db.GetPost(ctx, id)
}

func (db *DB) DeletePost(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return checkAffected(res)
}
