package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store writes uploaded files to a local directory. File names are prefixed
// with a UUID so concurrent uploads of the same name never collide.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the root upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save streams the reader to disk and returns the stored path.
func (s *Store) Save(fileName string, r io.Reader) (string, int64, error) {
	name := uuid.NewString() + "_" + sanitizeName(fileName)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	return path, size, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// CleanupOrphans deletes every file under the upload dir whose path is not in
// the known set. It returns the number of files removed.
func (s *Store) CleanupOrphans(known map[string]struct{}) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if _, ok := known[path]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove orphaned file", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "file"
	}
	return name
}
