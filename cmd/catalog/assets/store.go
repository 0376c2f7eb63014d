package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/toolworks/catalog/common/logger"
)

var (
	// ErrInvalidMediaType rejects uploads whose extension or declared
	// media type is outside the image allow-list
	ErrInvalidMediaType = errors.New("file type not allowed")

	// ErrTooLarge rejects uploads above the configured size cap
	ErrTooLarge = errors.New("file exceeds size limit")
)

// PublicPrefix is the URL namespace under which stored assets are served.
// A reference under this prefix is store-owned; anything else is an
// external URL the store never touches.
const PublicPrefix = "/uploads"

// Allow-list checked against BOTH the file extension and the declared
// media type. Deliberately simple; swap this pair out for content
// sniffing without touching callers.
var (
	allowedExts = map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}
	allowedTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
)

// Store manages uploaded image files in a single directory, addressed by
// generated filename.
type Store struct {
	dir      string
	maxBytes int64
	log      *logger.Logger
}

// NewStore creates an asset store rooted at dir
func NewStore(dir string, maxBytes int64, log *logger.Logger) *Store {
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		log:      log,
	}
}

// Save validates and writes an uploaded file, returning its store-owned
// reference. Nothing is written for rejected uploads; a partial write from
// an oversized or failed copy is removed before returning.
func (s *Store) Save(r io.Reader, originalName, mediaType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if err := validate(ext, mediaType); err != nil {
		return "", err
	}

	name := newAssetName() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset file: %w", err)
	}

	// One byte past the cap distinguishes "exactly at the limit" from over it
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write asset file: %w", err)
	}
	if n > s.maxBytes {
		f.Close()
		os.Remove(dst)
		return "", ErrTooLarge
	}

	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close asset file: %w", err)
	}

	s.log.Debug("stored asset", "name", name, "bytes", n)
	return path.Join(PublicPrefix, name), nil
}

// SaveUpload stores a multipart file upload
func (s *Store) SaveUpload(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.Save(src, fh.Filename, fh.Header.Get("Content-Type"))
}

// Owns reports whether ref points into the store's public namespace
func (s *Store) Owns(ref string) bool {
	return strings.HasPrefix(ref, PublicPrefix+"/")
}

// Delete removes the file backing a store-owned reference. External
// references and already-missing files are no-ops.
func (s *Store) Delete(ref string) error {
	if !s.Owns(ref) {
		return nil
	}

	// Base name only, so a crafted ref cannot escape the asset directory
	name := path.Base(ref)
	if name == "." || name == "/" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete asset %s: %w", name, err)
	}

	return nil
}

// PublicURL maps a stored reference to its externally servable path
func (s *Store) PublicURL(ref string) string {
	return ref
}

func validate(ext, mediaType string) error {
	if !allowedExts[ext] {
		return ErrInvalidMediaType
	}

	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	if !allowedTypes[mt] {
		return ErrInvalidMediaType
	}

	return nil
}

// newAssetName returns a short unique filename stem
func newAssetName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
