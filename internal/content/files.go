package content

import (
	"os"
	"path/filepath"
	"strings"

	"imhub/internal/models"
)

// FileStore resolves download names inside a single directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Resolve returns the on-disk path of name. Names escaping the directory are
// Forbidden; anything that is not a regular file is NotFound.
func (s *FileStore) Resolve(name string) (string, error) {
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if name == "" || strings.ContainsRune(name, 0) {
		return "", models.NewNotFoundMessage("File not found")
	}

	target := filepath.Join(root, filepath.FromSlash(name))
	if !within(root, target) {
		return "", models.NewForbiddenError("Access denied")
	}

	// Links may point anywhere, so containment is checked again on the real path.
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", models.NewNotFoundMessage("File not found")
	}
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return "", models.NewNotFoundMessage("File not found")
	}
	if !within(realRoot, resolved) {
		return "", models.NewForbiddenError("Access denied")
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", models.NewNotFoundMessage("File not found")
	}
	return target, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
