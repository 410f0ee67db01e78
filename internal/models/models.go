package models

import (
	"time"
)

// Admin is a full admin record, including the stored credential.
type Admin struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity returns the public projection of the admin.
func (a *Admin) Identity() *AdminIdentity {
	return &AdminIdentity{ID: a.ID, Email: a.Email, Name: a.Name}
}

// AdminIdentity is what a verified session resolves to.
type AdminIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Author is the admin summary embedded in posts and photos.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Post struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         string     `json:"excerpt"`
	Content         string     `json:"content"`
	ContentHTML     string     `json:"contentHtml,omitempty"`
	CoverImage      string     `json:"coverImage"`
	AltText         string     `json:"altText"`
	MetaTitle       string     `json:"metaTitle"`
	MetaDescription string     `json:"metaDescription"`
	MetaKeywords    string     `json:"metaKeywords"`
	Published       bool       `json:"published"`
	Featured        bool       `json:"featured"`
	AuthorID        string     `json:"authorId"`
	Author          *Author    `json:"author,omitempty"`
	PublishedAt     *time.Time `json:"publishedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type Photo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	AltText      string    `json:"altText"`
	Category     string    `json:"category"`
	Tags         string    `json:"tags"`
	DisplayOrder int       `json:"displayOrder"`
	Featured     bool      `json:"featured"`
	UploadedByID string    `json:"uploadedById"`
	Uploader     *Author   `json:"uploader,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Gallery struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	CoverImage  string        `json:"coverImage"`
	Order       int           `json:"order"`
	Published   bool          `json:"published"`
	Items       []GalleryItem `json:"items"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type GalleryItem struct {
	ID        string `json:"id"`
	GalleryID string `json:"galleryId"`
	PhotoID   string `json:"photoId"`
	Order     int    `json:"order"`
	Photo     *Photo `json:"photo,omitempty"`
}

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
