package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedExtension is returned when an uploaded file does not carry
// one of the allow-listed image extensions.
var ErrUnsupportedExtension = errors.New("unsupported image extension")

// allowedExtensions is read-only after start.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store persists uploaded images under a single directory. Stored filenames
// are random UUIDs plus the validated extension; the client-supplied filename
// is never used for path construction.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store for it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the uploaded file under a collision-resistant name and returns
// the stored path. Only the extension of the original filename is kept, and
// only when it is allow-listed.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst := filepath.Join(s.dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to flush %s: %w", dst, err)
	}

	return dst, nil
}

// Remove deletes a previously stored file. Paths outside the store's
// directory are rejected so a crafted path cannot escape it.
func (s *Store) Remove(path string) error {
	cleaned := filepath.Clean(path)
	if filepath.Dir(cleaned) != filepath.Clean(s.dir) {
		return fmt.Errorf("path %q is outside the upload directory", path)
	}
	if err := os.Remove(cleaned); err != nil {
		return fmt.Errorf("failed to remove %s: %w", cleaned, err)
	}
	return nil
}
