package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/models"
)

// ArtifactExt is the extension appended to every rendered artifact.
const ArtifactExt = ".png"

// ErrArtifactExists is returned by Save when the target file is already present.
var ErrArtifactExists = errors.New("artifact already exists")

// ArtifactInfo describes a verified artifact on disk.
type ArtifactInfo struct {
	Path     string
	Size     int64
	Checksum string // hex BLAKE3-256
}

// ArtifactStore keeps rendered barcode images in a single flat directory.
type ArtifactStore struct {
	root   string
	logger *zap.Logger
}

// NewArtifactStore creates the storage directory when needed.
func NewArtifactStore(root string, logger *zap.Logger) (*ArtifactStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", root, err)
	}
	return &ArtifactStore{root: root, logger: logger}, nil
}

func (s *ArtifactStore) Root() string {
	return s.root
}

// Save encodes img as PNG into <root>/<name>.png and returns the full path.
//
// The image is written to a temp file, fsynced and then hard-linked into
// place, so a reader never observes a partial file and an existing artifact
// is never replaced.
func (s *ArtifactStore) Save(name string, img image.Image) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	fullPath := filepath.Join(s.root, name+ArtifactExt)

	tmp, err := os.CreateTemp(s.root, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode png: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Link(tmpPath, fullPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrArtifactExists, fullPath)
		}
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	s.logger.Debug("artifact saved", zap.String("path", fullPath))
	return fullPath, nil
}

// Verify checks that path exists and is non-empty and returns its digest.
func (s *ArtifactStore) Verify(path string) (*ArtifactInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	hasher := blake3.New()
	size, err := io.Copy(hasher, f)
	if err != nil {
		return nil, fmt.Errorf("hash artifact %s: %w", path, err)
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: %s is empty", models.ErrArtifactMissing, path)
	}

	return &ArtifactInfo{
		Path:     path,
		Size:     size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open returns the artifact with the given base name. Anything that is not
// a plain file name inside the root is reported as not found.
func (s *ArtifactStore) Open(filename string) (*os.File, error) {
	if !validName(filename) {
		return nil, fmt.Errorf("%w: %q", models.ErrNotFound, filename)
	}

	f, err := os.Open(filepath.Join(s.root, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", models.ErrNotFound, filename)
		}
		return nil, fmt.Errorf("open artifact %q: %w", filename, err)
	}

	if info, err := f.Stat(); err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%w: %q", models.ErrNotFound, filename)
	}
	return f, nil
}

// Remove deletes an artifact. A missing file is not an error.
func (s *ArtifactStore) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove artifact %s: %w", path, err)
	}
	return nil
}

// Stat reports file information for an artifact path.
func (s *ArtifactStore) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// List returns the full paths of all artifacts, sorted by name.
func (s *ArtifactStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ArtifactExt || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(s.root, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

func validName(name string) bool {
	return name != "" &&
		name != "." &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`) &&
		filepath.Base(name) == name
}
