package receipt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gastoscl/rendiciones/internal"
)

// FileStore keeps receipt files on local disk under a flat directory. Stored
// names are uuid-prefixed so uploads can never collide or overwrite.
type FileStore struct {
	dir          string
	maxSizeBytes int64
	allowedExts  map[string]struct{}
}

func NewFileStore(cfg internal.UploadsConfig) (*FileStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	exts := make(map[string]struct{})
	for _, e := range cfg.Extensions() {
		exts[e] = struct{}{}
	}

	maxSize := cfg.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = 16 << 20
	}

	return &FileStore{
		dir:          cfg.Dir,
		maxSizeBytes: maxSize,
		allowedExts:  exts,
	}, nil
}

// Save writes the upload and returns the stored reference. The reference is
// an opaque filename, not a path; Open resolves it back inside the store dir.
func (s *FileStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if _, ok := s.allowedExts[ext]; !ok {
		return "", internal.NewValidationError(
			fmt.Sprintf("file extension %q is not allowed", ext),
			internal.ErrCodeValidationFailed,
		)
	}

	name := fmt.Sprintf("%s_%s", uuid.New().String(), sanitize(originalName))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, s.maxSizeBytes+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	if n > s.maxSizeBytes {
		os.Remove(path)
		return "", internal.NewValidationError("file exceeds the maximum upload size", internal.ErrCodeValidationFailed)
	}

	return name, nil
}

// Open returns the stored file for a reference. References containing path
// separators are rejected outright.
func (s *FileStore) Open(reference string) (*os.File, error) {
	if reference != filepath.Base(reference) || strings.Contains(reference, "..") {
		return nil, internal.NewValidationError("invalid receipt reference", internal.ErrCodeValidationFailed)
	}
	f, err := os.Open(filepath.Join(s.dir, reference))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal.NewNotFoundError("receipt not found", internal.ErrCodeReceiptNotFound)
		}
		return nil, err
	}
	return f, nil
}

func (s *FileStore) Path(reference string) string {
	return filepath.Join(s.dir, filepath.Base(reference))
}

func sanitize(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
