package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carlos18bp/editor-publisher-feature/blogerr"
	"github.com/carlos18bp/editor-publisher-feature/models"
	"github.com/carlos18bp/editor-publisher-feature/service"
	"github.com/carlos18bp/editor-publisher-feature/storage"
	"github.com/carlos18bp/editor-publisher-feature/utils"
)

// BlogController manages CRUD operations for blogs.
type BlogController struct {
	blogs *service.BlogService
	store *storage.ImageStore
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(blogs *service.BlogService, store *storage.ImageStore) *BlogController {
	return &BlogController{blogs: blogs, store: store}
}

// BlogVO is the external representation of a blog. ImageHeader carries the
// absolute URL of the header image, null when the blog has none or the URL
// cannot be resolved.
type BlogVO struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ImageHeader *string   `json:"image_header"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListBlogs returns all blogs ordered by creation date, newest first.
func (b *BlogController) ListBlogs(ctx *gin.Context) {
	blogs, err := b.blogs.List(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list blogs")
		return
	}

	items := make([]BlogVO, 0, len(blogs))
	for i := range blogs {
		items = append(items, b.toVO(ctx, &blogs[i]))
	}
	utils.Success(ctx, gin.H{"items": items})
}

// CreateBlog creates a new blog from a multipart form (title, content,
// image_header file) or a JSON body (title, content). Embedded base64 images
// in the content are converted to stored files by the service.
func (b *BlogController) CreateBlog(ctx *gin.Context) {
	var in service.CreateInput

	if isMultipart(ctx) {
		in.Title = ctx.PostForm("title")
		in.Content = ctx.PostForm("content")
		if fh, err := ctx.FormFile("image_header"); err == nil {
			f, err := fh.Open()
			if err != nil {
				utils.Error(ctx, http.StatusBadRequest, 40012, "unreadable header image upload")
				return
			}
			defer f.Close()
			in.Header = &service.HeaderUpload{Filename: fh.Filename, Reader: f}
		}
	} else {
		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
			return
		}
		in.Title = req.Title
		in.Content = req.Content
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		utils.ValidationError(ctx, 40011, map[string]string{"title": "title is required"})
		return
	}

	blog, err := b.blogs.Create(ctx.Request.Context(), in)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create blog")
		return
	}
	utils.Created(ctx, gin.H{"blog": b.toVO(ctx, blog)})
}

// UpdateBlog applies a partial update to an existing blog. Fields absent from
// the request keep their stored values; replaced content and header images
// release the files they orphan.
func (b *BlogController) UpdateBlog(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var in service.UpdateInput

	if isMultipart(ctx) {
		form, err := ctx.MultipartForm()
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40020, "invalid multipart form")
			return
		}
		if vals, present := form.Value["title"]; present && len(vals) > 0 {
			title := vals[0]
			in.Title = &title
		}
		if vals, present := form.Value["content"]; present && len(vals) > 0 {
			content := vals[0]
			in.Content = &content
		}
		if files := form.File["image_header"]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				utils.Error(ctx, http.StatusBadRequest, 40022, "unreadable header image upload")
				return
			}
			defer f.Close()
			in.Header = &service.HeaderUpload{Filename: files[0].Filename, Reader: f}
		}
	} else {
		var req struct {
			Title   *string `json:"title"`
			Content *string `json:"content"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
			return
		}
		in.Title = req.Title
		in.Content = req.Content
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			utils.ValidationError(ctx, 40021, map[string]string{"title": "title cannot be empty"})
			return
		}
		in.Title = &title
	}

	blog, err := b.blogs.Update(ctx.Request.Context(), id, in)
	if err != nil {
		if errors.Is(err, blogerr.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to update blog")
		return
	}
	utils.Success(ctx, gin.H{"blog": b.toVO(ctx, blog)})
}

// DeleteBlog removes a blog and its image files.
func (b *BlogController) DeleteBlog(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := b.blogs.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, blogerr.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to delete blog")
		return
	}
	utils.Success(ctx, gin.H{"message": "blog deleted"})
}

// toVO serializes a blog, resolving the header image against the request
// host; any resolution shortfall leaves image_header null.
func (b *BlogController) toVO(ctx *gin.Context, blog *models.Blog) BlogVO {
	vo := BlogVO{
		ID:        blog.ID,
		Title:     blog.Title,
		Content:   blog.Content,
		CreatedAt: blog.CreatedAt,
		UpdatedAt: blog.UpdatedAt,
	}
	if blog.HeaderImage != "" {
		if url := b.store.ResolveURL(requestBase(ctx), blog.HeaderImage); url != "" {
			vo.ImageHeader = &url
		}
	}
	return vo
}

func requestBase(ctx *gin.Context) string {
	if ctx == nil || ctx.Request == nil || ctx.Request.Host == "" {
		return ""
	}
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + ctx.Request.Host
}

func isMultipart(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.ContentType(), "multipart/form-data")
}

func parseID(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid blog id")
		return 0, false
	}
	return uint(id), true
}
