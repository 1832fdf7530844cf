package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"propnest/internal/config"
	"propnest/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaDir             = "/tmp/propnest/media"
	DefaultImageMaxUploadSizeMB = 10
	ThumbnailMaxSize            = 480
	WebPQuality                 = 75
)

// ImageUpload carries one decoded multipart file into the store.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// StoredImage describes a persisted original plus its thumbnail.
type StoredImage struct {
	StoredPath    string
	ThumbnailPath string
	URL           string
	ThumbnailURL  string
	ContentType   string
	SizeBytes     int64
	Width         int
	Height        int
}

// ImageStore validates uploads and writes originals with webp thumbnails
// under a per-image uuid directory on local disk.
type ImageStore struct {
	mediaDir           string
	maxUploadSizeBytes int64
}

func NewImageStore(cfg *config.Config) *ImageStore {
	mediaDir := DefaultMediaDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.MediaDir != "" {
			mediaDir = cfg.MediaDir
		}
		if cfg.MaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.MaxUploadSizeMB
		}
	}

	return &ImageStore{
		mediaDir:           mediaDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Save validates, decodes and persists one upload. The returned paths are
// relative to the media dir; callers must Remove them if the surrounding
// database transaction fails.
func (s *ImageStore) Save(in ImageUpload) (*StoredImage, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	sourceMimeType := decodedFormatToMime(format)
	if sourceMimeType == "" {
		return nil, models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, sourceMimeType) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	key := uuid.NewString()
	originalRel := filepath.ToSlash(filepath.Join(key, "original"+extensionFor(format)))
	thumbRel := filepath.ToSlash(filepath.Join(key, "thumb.webp"))
	writtenPaths := []string{originalRel}

	if err := writeBytesToFile(filepath.Join(s.mediaDir, originalRel), in.Content); err != nil {
		return nil, models.NewInternalError(err)
	}

	thumb := resizeToFit(decoded, ThumbnailMaxSize, ThumbnailMaxSize)
	thumbBytes, err := encodeWebP(thumb, WebPQuality)
	if err != nil {
		s.Remove(writtenPaths...)
		return nil, models.NewInternalError(err)
	}
	if err := writeBytesToFile(filepath.Join(s.mediaDir, thumbRel), thumbBytes); err != nil {
		s.Remove(writtenPaths...)
		return nil, models.NewInternalError(err)
	}

	b := decoded.Bounds()
	return &StoredImage{
		StoredPath:    originalRel,
		ThumbnailPath: thumbRel,
		URL:           "/media/" + originalRel,
		ThumbnailURL:  "/media/" + thumbRel,
		ContentType:   sourceMimeType,
		SizeBytes:     int64(len(in.Content)),
		Width:         b.Dx(),
		Height:        b.Dy(),
	}, nil
}

// Remove deletes stored files and their uuid directories. Used both for
// rollback after a failed insert and for cascade cleanup on delete.
func (s *ImageStore) Remove(relPaths ...string) {
	for _, rel := range relPaths {
		if rel == "" {
			continue
		}
		abs := filepath.Join(s.mediaDir, filepath.FromSlash(rel))
		_ = os.Remove(abs)
		// The uuid directory is empty once both files are gone.
		_ = os.Remove(filepath.Dir(abs))
	}
}

// MediaDir exposes the root for static file serving.
func (s *ImageStore) MediaDir() string {
	return s.mediaDir
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func extensionFor(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return ".jpg"
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	default:
		return ".bin"
	}
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
