package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carlos18bp/editor-publisher-feature/blogerr"
)

const (
	embeddedImageDir = "blog_images"
	headerImageDir   = "blog_headers"
)

// ImageStore persists blog image files under a media root and maps between
// filesystem paths and the public URLs embedded in blog content. Liveness of
// a stored file is implicit: a file is alive as long as some blog's content
// or header still points at it, and every mutation path is responsible for
// releasing files it orphans. There is no reference count and no background
// reconciliation; keeping all path/URL mapping in this type is what would
// make such a pass possible later.
type ImageStore struct {
	mediaRoot      string
	mediaURLPrefix string
	siteBaseURL    string
	logger         *zap.Logger
}

// NewImageStore builds a store rooted at mediaRoot. mediaURLPrefix is the URL
// path the media root is served under ("/media/"), siteBaseURL the scheme+host
// used for absolute URLs.
func NewImageStore(mediaRoot, mediaURLPrefix, siteBaseURL string, logger *zap.Logger) *ImageStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !strings.HasPrefix(mediaURLPrefix, "/") {
		mediaURLPrefix = "/" + mediaURLPrefix
	}
	if !strings.HasSuffix(mediaURLPrefix, "/") {
		mediaURLPrefix += "/"
	}
	return &ImageStore{
		mediaRoot:      mediaRoot,
		mediaURLPrefix: mediaURLPrefix,
		siteBaseURL:    strings.TrimSuffix(siteBaseURL, "/"),
		logger:         logger,
	}
}

// SaveImage writes an extracted embedded image to blog_images/ under a random
// uuid name and returns its absolute public URL.
func (s *ImageStore) SaveImage(data []byte, format string) (string, error) {
	name := uuid.NewString() + "." + format
	dir := filepath.Join(s.mediaRoot, embeddedImageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &blogerr.StorageWriteError{Path: dir, Err: err}
	}
	fullPath := filepath.Join(dir, name)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", &blogerr.StorageWriteError{Path: fullPath, Err: err}
	}
	rel := path.Join(embeddedImageDir, name)
	s.logger.Debug("stored embedded image", zap.String("path", fullPath))
	return s.PublicURL(rel), nil
}

// SaveHeader writes a header image under blog_headers/ keeping the client
// supplied filename, and returns the media-root relative reference that gets
// persisted on the blog record.
func (s *ImageStore) SaveHeader(filename string, r io.Reader) (string, error) {
	name := filepath.Base(filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid header image filename %q", filename)
	}
	dir := filepath.Join(s.mediaRoot, headerImageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &blogerr.StorageWriteError{Path: dir, Err: err}
	}
	fullPath := filepath.Join(dir, name)
	out, err := os.Create(fullPath)
	if err != nil {
		return "", &blogerr.StorageWriteError{Path: fullPath, Err: err}
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(fullPath)
		return "", &blogerr.StorageWriteError{Path: fullPath, Err: err}
	}
	return path.Join(headerImageDir, name), nil
}

// Delete removes the file behind ref, which may be a media-root relative
// reference (header images) or an absolute public URL (embedded images).
// A missing file is success; any other failure is logged and swallowed —
// image cleanup is best-effort and must never fail the record mutation it
// is attached to. References outside the media URL space are ignored.
func (s *ImageStore) Delete(ref string) {
	rel, ok := s.relativePath(ref)
	if !ok {
		s.logger.Debug("skipping deletion of reference outside media space", zap.String("ref", ref))
		return
	}
	fullPath := filepath.Join(s.mediaRoot, filepath.FromSlash(rel))
	err := os.Remove(fullPath)
	switch {
	case err == nil:
		s.logger.Info("deleted image file", zap.String("path", fullPath))
	case os.IsNotExist(err):
		// already gone, deletion is idempotent
	default:
		s.logger.Error("failed to delete image file", zap.String("path", fullPath), zap.Error(err))
	}
}

// PublicURL returns the absolute URL for a media-root relative path.
func (s *ImageStore) PublicURL(rel string) string {
	return s.siteBaseURL + s.mediaURLPrefix + strings.TrimPrefix(rel, "/")
}

// ResolveURL builds the absolute URL for a stored reference against base
// (scheme+host of the current request). With an empty base the configured
// site URL is used; an empty ref resolves to "".
func (s *ImageStore) ResolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	if base == "" {
		base = s.siteBaseURL
	}
	return strings.TrimSuffix(base, "/") + s.mediaURLPrefix + strings.TrimPrefix(ref, "/")
}

// relativePath maps a reference back to a media-root relative path. Foreign
// URLs, data URIs, and traversal attempts report ok=false.
func (s *ImageStore) relativePath(ref string) (string, bool) {
	var rel string
	switch {
	case ref == "" || strings.HasPrefix(ref, "data:"):
		return "", false
	case strings.HasPrefix(ref, s.siteBaseURL+s.mediaURLPrefix):
		rel = strings.TrimPrefix(ref, s.siteBaseURL+s.mediaURLPrefix)
	case strings.HasPrefix(ref, s.mediaURLPrefix):
		rel = strings.TrimPrefix(ref, s.mediaURLPrefix)
	case strings.Contains(ref, "://"):
		// URL under some other host or prefix; not ours to delete
		return "", false
	default:
		rel = ref
	}
	if rel == "" || strings.Contains(rel, "..") {
		return "", false
	}
	return rel, true
}
