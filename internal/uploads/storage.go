package uploads

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path uploads are served under.
const PublicPrefix = "/uploads/"

const maxExtLen = 10

// ErrMissingFile is returned when an upload request carries no file.
var ErrMissingFile = errors.New("missing file")

// File describes where an upload is written and how it is linked.
type File struct {
	Name  string // generated file name
	Path  string // location on disk
	Link  string // public URL path
	Label string // original file name shown to users
}

// Storage assigns collision-free names inside the upload directory.
type Storage struct {
	dir string
}

// NewStorage ensures dir exists.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("upload dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *Storage) Dir() string {
	return s.dir
}

// Prepare returns the destination for a new upload named original.
func (s *Storage) Prepare(original string) File {
	label := cleanLabel(original)
	name := uuid.NewString() + safeExt(label)
	return File{
		Name:  name,
		Path:  filepath.Join(s.dir, name),
		Link:  PublicPrefix + name,
		Label: label,
	}
}

// IsPublicLink reports whether link points at a file served from the upload directory.
func IsPublicLink(link string) bool {
	if !strings.HasPrefix(link, PublicPrefix) {
		return false
	}
	name := strings.TrimPrefix(link, PublicPrefix)
	return name != "" && path.Clean(link) == link && !strings.Contains(name, "/")
}

func cleanLabel(original string) string {
	label := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if label == "." || label == "/" || label == "" {
		return "file"
	}
	return label
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
