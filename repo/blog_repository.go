package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/carlos18bp/editor-publisher-feature/blogerr"
	"github.com/carlos18bp/editor-publisher-feature/models"
)

// BlogRepository defines persistence operations for blog records, decoupling
// the lifecycle logic in the service layer from GORM specifics.
type BlogRepository interface {
	// Insert persists a new blog; the record store assigns the ID.
	Insert(ctx context.Context, blog *models.Blog) error

	// GetByID loads a single blog, returning blogerr.ErrNotFound when absent.
	GetByID(ctx context.Context, id uint) (*models.Blog, error)

	// Update applies the given column values to the record. An empty map is
	// a no-op. updated_at is maintained by GORM.
	Update(ctx context.Context, id uint, fields map[string]interface{}) error

	// Delete removes the record. Deleting an absent id is not an error at
	// this layer; existence checks belong to the caller.
	Delete(ctx context.Context, id uint) error

	// ListByCreatedDesc returns all blogs, newest first.
	ListByCreatedDesc(ctx context.Context) ([]models.Blog, error)
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a GORM-backed BlogRepository.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Insert(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Create(blog).Error
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, blogerr.ErrNotFound
		}
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).Updates(fields).Error
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Blog{}, id).Error
}

func (r *blogRepository) ListByCreatedDesc(ctx context.Context) ([]models.Blog, error) {
	var blogs []models.Blog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&blogs).Error; err != nil {
		return nil, err
	}
	return blogs, nil
}
