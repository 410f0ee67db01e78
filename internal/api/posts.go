package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio/internal/auth"
	"portfolio/internal/httpjson"
	"portfolio/internal/markdown"
	"portfolio/internal/models"
	"portfolio/internal/storage"
)

type postRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	Excerpt         *string `json:"excerpt"`
	Content         *string `json:"content"`
	CoverImage      *string `json:"coverImage"`
	AltText         *string `json:"altText"`
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
	MetaKeywords    *string `json:"metaKeywords"`
	Published       *bool   `json:"published"`
	Featured        *bool   `json:"featured"`
	AuthorID        *string `json:"authorId"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolean(p *bool) bool {
	return p != nil && *p
}

func (s *Server) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.PostFilter{
		PublishedOnly: flag(q, "published") || auth.AdminFromContext(r.Context()) == nil,
		FeaturedOnly:  flag(q, "featured"),
	}
	page := parsePage(q, defaultPostPageSize)

	posts, err := s.db.ListPosts(r.Context(), filter, page.window())
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching posts")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	total, err := s.db.CountPosts(r.Context(), filter)
	if err != nil {
		s.log.Error().Err(err).Msg("Error counting posts")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"posts":      posts,
		"pagination": page.result(total, len(posts)),
	})
}

func (s *Server) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if str(req.Title) == "" || str(req.Slug) == "" || str(req.Content) == "" {
		httpjson.Error(w, http.StatusBadRequest, "Title, slug, and content are required")
		return
	}

	authorID := str(req.AuthorID)
	if authorID == "" {
		authorID = auth.AdminFromContext(r.Context()).ID
	}
	post, err := s.db.CreatePost(r.Context(), &models.Post{
		Title:           str(req.Title),
		Slug:            str(req.Slug),
		Excerpt:         str(req.Excerpt),
		Content:         str(req.Content),
		CoverImage:      str(req.CoverImage),
		AltText:         str(req.AltText),
		MetaTitle:       str(req.MetaTitle),
		MetaDescription: str(req.MetaDescription),
		MetaKeywords:    str(req.MetaKeywords),
		Published:       boolean(req.Published),
		Featured:        boolean(req.Featured),
		AuthorID:        authorID,
	})
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		httpjson.Error(w, http.StatusConflict, "A post with this slug already exists")
	case errors.Is(err, storage.ErrInvalidReference):
		httpjson.Error(w, http.StatusBadRequest, "Author not found")
	case err != nil:
		s.log.Error().Err(err).Msg("Error creating post")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create post")
	default:
		httpjson.Write(w, http.StatusCreated, post)
	}
}

// visiblePost hides drafts from callers without an admin session.
func visiblePost(r *http.Request, post *models.Post) bool {
	return post != nil && (post.Published || auth.AdminFromContext(r.Context()) != nil)
}

func (s *Server) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.db.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching post")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	if !visiblePost(r, post) {
		httpjson.Error(w, http.StatusNotFound, "Post not found")
		return
	}
	httpjson.Write(w, http.StatusOK, post)
}

func (s *Server) HandleGetPostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := s.db.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.log.Error().Err(err).Msg("Error fetching post")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	if !visiblePost(r, post) {
		httpjson.Error(w, http.StatusNotFound, "Post not found")
		return
	}

	html, err := markdown.Render(post.Content)
	if err != nil {
		s.log.Error().Err(err).Str("post_id", post.ID).Msg("Error rendering post")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	post.ContentHTML = html
	httpjson.Write(w, http.StatusOK, post)
}

func (s *Server) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if (req.Title != nil && *req.Title == "") || (req.Slug != nil && *req.Slug == "") {
		httpjson.Error(w, http.StatusBadRequest, "Title and slug cannot be empty")
		return
	}

	post, err := s.db.UpdatePost(r.Context(), chi.URLParam(r, "id"), storage.PostUpdate{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		CoverImage:      req.CoverImage,
		AltText:         req.AltText,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		Published:       req.Published,
		Featured:        req.Featured,
	})
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, storage.ErrDuplicate):
		httpjson.Error(w, http.StatusConflict, "A post with this slug already exists")
	case err != nil:
		s.log.Error().Err(err).Msg("Error updating post")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to update post")
	default:
		httpjson.Write(w, http.StatusOK, post)
	}
}

func (s *Server) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeletePost(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Post not found")
	case err != nil:
		s.log.Error().Err(err).Msg("Error deleting post")
		httpjson.Error(w, http.StatusInternalServerError, "Failed to delete post")
	default:
		httpjson.Write(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
	}
}
