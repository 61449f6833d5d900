// Package storage persists uploaded avatar images on the local filesystem
// and hands back the public URL they are served under.
package storage

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/models"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultUploadDir       = "/tmp/inkwell/uploads"
	DefaultMaxUploadSizeMB = 5

	// PublicPrefix is the URL path the upload directory is served under.
	PublicPrefix = "/static/uploads"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadInput carries one uploaded file from the handler layer.
type UploadInput struct {
	Filename string
	Content  []byte
}

// AvatarStore writes validated avatar uploads to disk. Safe for concurrent
// use; stored filenames embed an upload timestamp so repeated uploads of the
// same file do not collide.
type AvatarStore struct {
	uploadDir          string
	maxUploadSizeBytes int64
	now                func() time.Time
}

// NewAvatarStore builds a store rooted at uploadDir. Zero values fall back
// to the package defaults.
func NewAvatarStore(uploadDir string, maxUploadSizeMB int) *AvatarStore {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultMaxUploadSizeMB
	}
	return &AvatarStore{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		now:                time.Now,
	}
}

// Dir returns the directory uploads are written to.
func (s *AvatarStore) Dir() string { return s.uploadDir }

// Save validates and writes one upload, returning the public URL of the
// stored file. Validation checks the extension allow list, the size cap and
// that the bytes actually decode as an image of an allowed format, so a
// renamed script cannot slip through on extension alone.
func (s *AvatarStore) Save(in UploadInput) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !allowedExtensions[ext] {
		return "", models.NewValidationError("File type not allowed")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if !extensionMatchesFormat(ext, format) {
		return "", models.NewValidationError("Image content does not match file extension")
	}

	name := s.buildFilename(in.Filename, ext)
	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), in.Content, 0o600); err != nil {
		return "", models.NewInternalError(err)
	}

	return PublicPrefix + "/" + name, nil
}

// buildFilename flattens the uploaded name to a safe base and appends the
// upload timestamp: "me.png" becomes "me_1714000000.png". Path separators
// and anything exotic in the base are replaced so the stored name can never
// escape the upload directory.
func (s *AvatarStore) buildFilename(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = sanitizeBase(base)
	if base == "" {
		base = "avatar"
	}
	return fmt.Sprintf("%s_%d%s", base, s.now().Unix(), ext)
}

func sanitizeBase(base string) string {
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func extensionMatchesFormat(ext, format string) bool {
	switch format {
	case "jpeg":
		return ext == ".jpg" || ext == ".jpeg"
	case "png", "gif", "webp":
		return ext == "."+format
	default:
		return false
	}
}
