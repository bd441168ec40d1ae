package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/carlos18bp/editor-publisher-feature/blogerr"
	"github.com/carlos18bp/editor-publisher-feature/models"
	"github.com/carlos18bp/editor-publisher-feature/repo"
	"github.com/carlos18bp/editor-publisher-feature/storage"
)

// 1x1 transparent png
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func embeddedImg(payload string) string {
	return `<img src="data:image/png;base64,` + payload + `">`
}

func newTestService(t *testing.T) (*BlogService, *gorm.DB, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Blog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	root := t.TempDir()
	store := storage.NewImageStore(root, "/media/", "http://testserver", zap.NewNop())
	extractor := storage.NewExtractor(store, zap.NewNop())
	svc := NewBlogService(repo.NewBlogRepository(db), store, extractor, zap.NewNop())
	return svc, db, root
}

func mediaFiles(t *testing.T, root, sub string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, sub))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCreateExtractsEmbeddedImages(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	blog, err := svc.Create(ctx, CreateInput{
		Title:   "launch post",
		Content: "<p>intro</p>" + embeddedImg(tinyPNG),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if strings.Contains(blog.Content, "base64") {
		t.Errorf("content should not keep base64 data, got %q", blog.Content)
	}
	if !strings.Contains(blog.Content, "http://testserver/media/blog_images/") {
		t.Errorf("content should reference the stored image URL, got %q", blog.Content)
	}
	if files := mediaFiles(t, root, "blog_images"); len(files) != 1 {
		t.Errorf("expected 1 stored file, found %v", files)
	}

	// the stored record carries the rewritten content
	stored, err := svc.Get(ctx, blog.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Content != blog.Content {
		t.Errorf("persisted content %q differs from returned %q", stored.Content, blog.Content)
	}
}

func TestCreateWithHeaderImage(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	blog, err := svc.Create(ctx, CreateInput{
		Title:   "with header",
		Content: "<p>body</p>",
		Header:  &HeaderUpload{Filename: "cover.png", Reader: strings.NewReader("header-data")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if blog.HeaderImage != "blog_headers/cover.png" {
		t.Errorf("HeaderImage = %q, want blog_headers/cover.png", blog.HeaderImage)
	}
	if _, err := os.Stat(filepath.Join(root, "blog_headers", "cover.png")); err != nil {
		t.Errorf("header file missing: %v", err)
	}

	stored, err := svc.Get(ctx, blog.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.HeaderImage != "blog_headers/cover.png" {
		t.Errorf("persisted HeaderImage = %q", stored.HeaderImage)
	}
}

func TestUpdateReplacesHeaderAndDeletesOldFile(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	blog, err := svc.Create(ctx, CreateInput{
		Title:  "header swap",
		Header: &HeaderUpload{Filename: "old.png", Reader: strings.NewReader("old")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, blog.ID, UpdateInput{
		Header: &HeaderUpload{Filename: "new.png", Reader: strings.NewReader("new")},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.HeaderImage != "blog_headers/new.png" {
		t.Errorf("HeaderImage = %q, want blog_headers/new.png", updated.HeaderImage)
	}
	if _, err := os.Stat(filepath.Join(root, "blog_headers", "old.png")); !os.IsNotExist(err) {
		t.Errorf("old header file should be deleted, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "blog_headers", "new.png")); err != nil {
		t.Errorf("new header file missing: %v", err)
	}
}

func TestUpdateContentPurgesAllOldImageFiles(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	blog, err := svc.Create(ctx, CreateInput{
		Title:   "image reuse",
		Content: "<p>v1</p>" + embeddedImg(tinyPNG),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	files := mediaFiles(t, root, "blog_images")
	if len(files) != 1 {
		t.Fatalf("expected 1 stored file after create, found %v", files)
	}

	// new content keeps the extracted URL verbatim, yet the changed content
	// string causes the file behind it to be purged
	newContent := blog.Content + "<p>v2 appendix</p>"
	updated, err := svc.Update(ctx, blog.ID, UpdateInput{Content: &newContent})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !strings.Contains(updated.Content, "blog_images/"+files[0]) {
		t.Errorf("content should still reference the old URL, got %q", updated.Content)
	}
	if left := mediaFiles(t, root, "blog_images"); len(left) != 0 {
		t.Errorf("old image files should be purged on content change, found %v", left)
	}
}

func TestUpdateTitleOnlyLeavesFilesAlone(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	blog, err := svc.Create(ctx, CreateInput{
		Title:   "original",
		Content: embeddedImg(tinyPNG),
		Header:  &HeaderUpload{Filename: "cover.png", Reader: strings.NewReader("h")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "renamed"
	updated, err := svc.Update(ctx, blog.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Title != "renamed" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Content != blog.Content {
		t.Errorf("content must be untouched, got %q", updated.Content)
	}
	if files := mediaFiles(t, root, "blog_images"); len(files) != 1 {
		t.Errorf("embedded image file must survive, found %v", files)
	}
	if files := mediaFiles(t, root, "blog_headers"); len(files) != 1 {
		t.Errorf("header file must survive, found %v", files)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	title := "nope"
	_, err := svc.Update(context.Background(), 9999, UpdateInput{Title: &title})
	if !errors.Is(err, blogerr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesRecordAndAllImageFiles(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	blog, err := svc.Create(ctx, CreateInput{
		Title:   "doomed",
		Content: "<p>bye</p>" + embeddedImg(tinyPNG),
		Header:  &HeaderUpload{Filename: "cover.png", Reader: strings.NewReader("h")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, blog.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.Get(ctx, blog.ID); !errors.Is(err, blogerr.ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("List should be empty, got %d records", len(all))
	}
	if files := mediaFiles(t, root, "blog_images"); len(files) != 0 {
		t.Errorf("embedded image files should be deleted, found %v", files)
	}
	if files := mediaFiles(t, root, "blog_headers"); len(files) != 0 {
		t.Errorf("header file should be deleted, found %v", files)
	}

	if err := svc.Delete(ctx, blog.ID); !errors.Is(err, blogerr.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 3; i++ {
		blog, err := svc.Create(ctx, CreateInput{Title: "post"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, blog.ID)
		err = db.Model(&models.Blog{}).Where("id = ?", blog.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error
		if err != nil {
			t.Fatalf("force created_at: %v", err)
		}
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != ids[2] || all[1].ID != ids[1] || all[2].ID != ids[0] {
		t.Errorf("order = [%d %d %d], want newest first [%d %d %d]",
			all[0].ID, all[1].ID, all[2].ID, ids[2], ids[1], ids[0])
	}
}
