package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"portfolio/internal/models"
)

func openTempDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.db")
	db, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func mustCreateAdmin(t *testing.T, db *DB, email string) *models.Admin {
	t.Helper()
	admin, err := db.CreateAdmin(context.Background(), email, "Test Admin", "secret")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(DriverSQLite, ""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.db")
	first, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := first.CreateAdmin(context.Background(), "a@x.com", "A", "pw"); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	first.Close()

	second, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	count, err := second.CountAdmins(context.Background())
	if err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 admin after reopen, got %d", count)
	}
}

func TestRebind(t *testing.T) {
	sqliteDB := &DB{driver: DriverSQLite}
	if got := sqliteDB.rebind("a = ? AND b = ?"); got != "a = ? AND b = ?" {
		t.Fatalf("sqlite rebind = %q", got)
	}
	pgDB := &DB{driver: DriverPostgres}
	if got := pgDB.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("postgres rebind = %q", got)
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a (x);\n")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if !strings.HasPrefix(stmts[1], "CREATE INDEX") {
		t.Fatalf("unexpected second statement %q", stmts[1])
	}
}

func TestPageClause(t *testing.T) {
	if clause, args := (Page{}).clause(); clause != "" || args != nil {
		t.Fatalf("expected empty clause for zero page, got %q %v", clause, args)
	}
	clause, args := Page{Limit: 10, Offset: 20}.clause()
	if clause != " LIMIT ? OFFSET ?" || len(args) != 2 {
		t.Fatalf("unexpected clause %q %v", clause, args)
	}
}

func TestAdminLifecycle(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()

	created := mustCreateAdmin(t, db, "a@x.com")
	if strings.Contains(created.ID, "-") {
		t.Fatalf("admin id %q contains a dash", created.ID)
	}

	byEmail, err := db.FindAdminByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != created.ID || byEmail.Password != "secret" {
		t.Fatalf("unexpected admin by email: %+v", byEmail)
	}

	identity, err := db.FindAdminByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if identity == nil || identity.Email != "a@x.com" || identity.Name != "Test Admin" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if err := db.UpdateAdminPassword(ctx, created.ID, "rotated"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	full, err := db.GetAdmin(ctx, created.ID)
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if full.Password != "rotated" {
		t.Fatalf("expected rotated password, got %q", full.Password)
	}

	admins, err := db.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(admins) != 1 {
		t.Fatalf("expected 1 admin, got %d", len(admins))
	}
}

func TestAdminNotFoundReturnsNil(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()

	admin, err := db.FindAdminByEmail(ctx, "missing@x.com")
	if err != nil || admin != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", admin, err)
	}
	identity, err := db.FindAdminByID(ctx, "missing")
	if err != nil || identity != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", identity, err)
	}
	if err := db.UpdateAdminPassword(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAdminDuplicateEmail(t *testing.T) {
	db := openTempDB(t)
	mustCreateAdmin(t, db, "a@x.com")

	_, err := db.CreateAdmin(context.Background(), "a@x.com", "Other", "pw")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPostCRUD(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()
	admin := mustCreateAdmin(t, db, "a@x.com")

	draft, err := db.CreatePost(ctx, &models.Post{Title: "Draft", Slug: "draft", Content: "# Hi", AuthorID: admin.ID})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if draft.PublishedAt != nil {
		t.Fatal("expected draft to have no publishedAt")
	}
	if draft.Author == nil || draft.Author.Email != "a@x.com" {
		t.Fatalf("expected embedded author, got %+v", draft.Author)
	}

	live, err := db.CreatePost(ctx, &models.Post{Title: "Live", Slug: "live", Published: true, Featured: true, AuthorID: admin.ID})
	if err != nil {
		t.Fatalf("create live: %v", err)
	}
	if live.PublishedAt == nil {
		t.Fatal("expected publishedAt on published post")
	}

	if _, err := db.CreatePost(ctx, &models.Post{Title: "Dup", Slug: "live", AuthorID: admin.ID}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for slug, got %v", err)
	}
	if _, err := db.CreatePost(ctx, &models.Post{Title: "Orphan", Slug: "orphan", AuthorID: "nobody"}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference for author, got %v", err)
	}

	published, err := db.ListPosts(ctx, PostFilter{PublishedOnly: true}, Page{})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 1 || published[0].Slug != "live" {
		t.Fatalf("unexpected published posts: %+v", published)
	}

	total, err := db.CountPosts(ctx, PostFilter{})
	if err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 posts, got %d", total)
	}

	firstPage, err := db.ListPosts(ctx, PostFilter{}, Page{Limit: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(firstPage) != 1 {
		t.Fatalf("expected 1 post on page, got %d", len(firstPage))
	}

	publish := true
	title := "Draft v2"
	updated, err := db.UpdatePost(ctx, draft.ID, PostUpdate{Title: &title, Published: &publish})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if updated.Title != "Draft v2" || !updated.Published || updated.PublishedAt == nil {
		t.Fatalf("unexpected updated post: %+v", updated)
	}

	unpublish := false
	updated, err = db.UpdatePost(ctx, draft.ID, PostUpdate{Published: &unpublish})
	if err != nil {
		t.Fatalf("unpublish post: %v", err)
	}
	if updated.Published || updated.PublishedAt != nil {
		t.Fatalf("expected unpublished post without publishedAt: %+v", updated)
	}

	bySlug, err := db.GetPostBySlug(ctx, "live")
	if err != nil || bySlug == nil || bySlug.ID != live.ID {
		t.Fatalf("get by slug: %+v, %v", bySlug, err)
	}

	if _, err := db.UpdatePost(ctx, "missing", PostUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := db.DeletePost(ctx, draft.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if err := db.DeletePost(ctx, draft.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPhotoCRUD(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()
	admin := mustCreateAdmin(t, db, "a@x.com")

	second, err := db.CreatePhoto(ctx, &models.Photo{Title: "Second", ImageURL: "https://img/2", DisplayOrder: 2, UploadedByID: admin.ID})
	if err != nil {
		t.Fatalf("create photo: %v", err)
	}
	if second.Category != DefaultPhotoCategory {
		t.Fatalf("expected default category, got %q", second.Category)
	}
	first, err := db.CreatePhoto(ctx, &models.Photo{Title: "First", ImageURL: "https://img/1", DisplayOrder: 1, Category: "design", Featured: true, UploadedByID: admin.ID})
	if err != nil {
		t.Fatalf("create photo: %v", err)
	}

	photos, err := db.ListPhotos(ctx, PhotoFilter{}, Page{})
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(photos) != 2 || photos[0].ID != first.ID {
		t.Fatalf("expected display order ascending, got %+v", photos)
	}
	if photos[0].Uploader == nil || photos[0].Uploader.ID != admin.ID {
		t.Fatalf("expected embedded uploader, got %+v", photos[0].Uploader)
	}

	design, err := db.CountPhotos(ctx, PhotoFilter{Category: "design"})
	if err != nil || design != 1 {
		t.Fatalf("count design photos = %d, %v", design, err)
	}
	featured, err := db.ListPhotos(ctx, PhotoFilter{FeaturedOnly: true}, Page{})
	if err != nil || len(featured) != 1 {
		t.Fatalf("list featured = %d, %v", len(featured), err)
	}

	feature := true
	updated, err := db.UpdatePhoto(ctx, second.ID, PhotoUpdate{Featured: &feature})
	if err != nil || !updated.Featured {
		t.Fatalf("update photo: %+v, %v", updated, err)
	}

	if err := db.DeletePhoto(ctx, second.ID); err != nil {
		t.Fatalf("delete photo: %v", err)
	}
	gone, err := db.GetPhoto(ctx, second.ID)
	if err != nil || gone != nil {
		t.Fatalf("expected deleted photo to be gone: %+v, %v", gone, err)
	}
}

func TestCreateGalleryKeepsPhotoOrder(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()
	admin := mustCreateAdmin(t, db, "a@x.com")

	a, _ := db.CreatePhoto(ctx, &models.Photo{Title: "A", ImageURL: "a", UploadedByID: admin.ID})
	b, _ := db.CreatePhoto(ctx, &models.Photo{Title: "B", ImageURL: "b", UploadedByID: admin.ID})

	gallery, err := db.CreateGallery(ctx, &models.Gallery{Name: "Work", Slug: "work", Published: true}, []string{b.ID, a.ID})
	if err != nil {
		t.Fatalf("create gallery: %v", err)
	}
	if len(gallery.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(gallery.Items))
	}
	if gallery.Items[0].PhotoID != b.ID || gallery.Items[1].PhotoID != a.ID {
		t.Fatalf("items not in requested order: %+v", gallery.Items)
	}
	if gallery.Items[0].Photo == nil || gallery.Items[0].Photo.Title != "B" {
		t.Fatalf("expected embedded photo, got %+v", gallery.Items[0].Photo)
	}

	if _, err := db.CreateGallery(ctx, &models.Gallery{Name: "Hidden", Slug: "hidden"}, nil); err != nil {
		t.Fatalf("create hidden gallery: %v", err)
	}
	published, err := db.ListGalleries(ctx, true)
	if err != nil {
		t.Fatalf("list galleries: %v", err)
	}
	if len(published) != 1 || published[0].Slug != "work" {
		t.Fatalf("unexpected published galleries: %+v", published)
	}
	all, err := db.ListGalleries(ctx, false)
	if err != nil || len(all) != 2 {
		t.Fatalf("list all galleries = %d, %v", len(all), err)
	}
}

func TestCreateGalleryRollsBackOnMissingPhoto(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()

	_, err := db.CreateGallery(ctx, &models.Gallery{Name: "Broken", Slug: "broken"}, []string{"missing"})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	galleries, err := db.ListGalleries(ctx, false)
	if err != nil {
		t.Fatalf("list galleries: %v", err)
	}
	if len(galleries) != 0 {
		t.Fatalf("expected rollback to leave no galleries, got %d", len(galleries))
	}
}

func TestContacts(t *testing.T) {
	db := openTempDB(t)
	ctx := context.Background()

	c, err := db.CreateContact(ctx, "Jo", "jo@x.com", "Hello", "Message body")
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	if _, err := db.CreateContact(ctx, "Al", "al@x.com", "Hi", "Other body"); err != nil {
		t.Fatalf("create contact: %v", err)
	}

	read, err := db.SetContactRead(ctx, c.ID, true)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.Read {
		t.Fatal("expected contact to be read")
	}

	unread, err := db.ListContacts(ctx, true)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 || unread[0].Name != "Al" {
		t.Fatalf("unexpected unread contacts: %+v", unread)
	}

	if _, err := db.SetContactRead(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
