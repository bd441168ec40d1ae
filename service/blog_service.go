package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/carlos18bp/editor-publisher-feature/models"
	"github.com/carlos18bp/editor-publisher-feature/repo"
	"github.com/carlos18bp/editor-publisher-feature/storage"
)

// HeaderUpload carries a client supplied header image file.
type HeaderUpload struct {
	Filename string
	Reader   io.Reader
}

// CreateInput holds the fields for a new blog.
type CreateInput struct {
	Title   string
	Content string
	Header  *HeaderUpload
}

// UpdateInput holds a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title   *string
	Content *string
	Header  *HeaderUpload
}

// BlogService orchestrates blog record lifecycle against the record store and
// the image store. The two stores are not transactionally linked: the record
// is the source of truth, image writes and deletions are best-effort and
// never abort the record mutation they accompany.
type BlogService struct {
	blogs     repo.BlogRepository
	store     *storage.ImageStore
	extractor *storage.Extractor
	logger    *zap.Logger
}

// NewBlogService wires the service from its dependencies.
func NewBlogService(blogs repo.BlogRepository, store *storage.ImageStore, extractor *storage.Extractor, logger *zap.Logger) *BlogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogService{
		blogs:     blogs,
		store:     store,
		extractor: extractor,
		logger:    logger,
	}
}

// Create persists a new blog. Embedded base64 images are extracted to files
// before the insert. When a header image is supplied it is attached in a
// second write after the record has its ID; a crash between the two writes
// leaves a blog without the requested header image.
func (s *BlogService) Create(ctx context.Context, in CreateInput) (*models.Blog, error) {
	content := s.extractor.Process(in.Content)

	blog := &models.Blog{
		Title:   in.Title,
		Content: content,
	}
	if err := s.blogs.Insert(ctx, blog); err != nil {
		return nil, fmt.Errorf("insert blog: %w", err)
	}

	if in.Header != nil {
		ref, err := s.store.SaveHeader(in.Header.Filename, in.Header.Reader)
		if err != nil {
			s.logger.Error("failed to store header image, blog saved without it",
				zap.Uint("blog_id", blog.ID), zap.Error(err))
			return blog, nil
		}
		if err := s.blogs.Update(ctx, blog.ID, map[string]interface{}{"header_image": ref}); err != nil {
			s.logger.Error("failed to attach header image to blog",
				zap.Uint("blog_id", blog.ID), zap.String("ref", ref), zap.Error(err))
			return blog, nil
		}
		blog.HeaderImage = ref
	}
	return blog, nil
}

// Update applies a partial update. Cleanup of superseded images is planned
// from the old snapshot before the write — once the new values commit the
// previous content is unrecoverable from the database — and executed only
// after the write succeeded.
func (s *BlogService) Update(ctx context.Context, id uint, in UpdateInput) (*models.Blog, error) {
	old, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var plan storage.CleanupPlan
	fields := map[string]interface{}{}

	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Content != nil {
		newContent := s.extractor.Process(*in.Content)
		plan.PlanContentChange(old.Content, newContent)
		fields["content"] = newContent
	}
	if in.Header != nil {
		ref, err := s.store.SaveHeader(in.Header.Filename, in.Header.Reader)
		if err != nil {
			s.logger.Error("failed to store replacement header image, keeping current one",
				zap.Uint("blog_id", id), zap.Error(err))
		} else {
			plan.PlanHeaderChange(old.HeaderImage, ref)
			fields["header_image"] = ref
		}
	}

	if err := s.blogs.Update(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update blog %d: %w", id, err)
	}

	plan.Run(s.store)

	return s.blogs.GetByID(ctx, id)
}

// Delete removes the blog record together with its header image and every
// embedded image referenced by its current content. Image cleanup runs first
// and is best-effort; record removal proceeds regardless of its outcome.
func (s *BlogService) Delete(ctx context.Context, id uint) error {
	old, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var plan storage.CleanupPlan
	plan.PlanHeaderChange(old.HeaderImage, "")
	plan.PlanContentChange(old.Content, "")
	plan.Run(s.store)

	if err := s.blogs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete blog %d: %w", id, err)
	}
	return nil
}

// Get loads a single blog.
func (s *BlogService) Get(ctx context.Context, id uint) (*models.Blog, error) {
	return s.blogs.GetByID(ctx, id)
}

// List returns all blogs, newest first.
func (s *BlogService) List(ctx context.Context) ([]models.Blog, error) {
	return s.blogs.ListByCreatedDesc(ctx)
}
