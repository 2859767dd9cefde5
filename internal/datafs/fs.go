// Package datafs manages the clipvault data directory: the database file
// and the month-partitioned archive of original clipboard images.
package datafs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

const (
	DataDir   = ".config/clipvault"
	ImagesDir = "images"
	DBFile    = "clipvault.db"

	// monthLayout names the archive partitions, e.g. images/2024-03.
	monthLayout = "2006-01"
)

// DataFS is a filesystem rooted at the clipvault data directory
type DataFS struct {
	root string
}

// New creates a DataFS rooted at ~/.config/clipvault/
func New() (*DataFS, error) {
	return NewWithDataPath("")
}

// NewWithDataPath creates a DataFS with a custom location.
// If dataPath is empty, uses ~/.config/clipvault/
// If dataPath is absolute, uses it directly
// If dataPath is relative, treats it as a subdirectory of ~/.config/clipvault/
func NewWithDataPath(dataPath string) (*DataFS, error) {
	var root string
	if filepath.IsAbs(dataPath) {
		root = dataPath
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		root = filepath.Join(homeDir, DataDir, dataPath)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Join(root, ImagesDir), 0755); err != nil {
		return nil, err
	}

	return &DataFS{root: root}, nil
}

// NewWithRoot creates a DataFS with a custom root (for testing)
func NewWithRoot(root string) *DataFS {
	return &DataFS{root: root}
}

// Open implements fs.FS
func (d *DataFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return os.Open(filepath.Join(d.root, name))
}

// ReadDir implements fs.ReadDirFS
func (d *DataFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return os.ReadDir(filepath.Join(d.root, name))
}

// WriteFile writes data to a file relative to the data directory,
// creating parent directories on demand
func (d *DataFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}

	fullPath := filepath.Join(d.root, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, perm)
}

// Root returns the root directory path
func (d *DataFS) Root() string {
	return d.root
}

// DBPath returns the database file path
func (d *DataFS) DBPath() string {
	return filepath.Join(d.root, DBFile)
}

// ImagesRoot returns the absolute image archive directory
func (d *DataFS) ImagesRoot() string {
	return filepath.Join(d.root, ImagesDir)
}

// SaveImage archives an original image as images/<YYYY-MM>/<uuid>.<ext>
// and returns its absolute path
func (d *DataFS) SaveImage(data []byte, ext string, now time.Time) (string, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return "", fmt.Errorf("image extension cannot be empty")
	}

	name := filepath.ToSlash(filepath.Join(ImagesDir, now.Format(monthLayout), uuid.NewString()+"."+ext))
	if err := d.WriteFile(name, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return filepath.Join(d.root, filepath.FromSlash(name)), nil
}

// ImageFile is an archived image found on disk
type ImageFile struct {
	Path    string
	ModTime time.Time
}

// ImageFiles lists every file in the month partitions of the archive with
// absolute paths. Entries directly under images/ are not partitions and
// are ignored. A partition that cannot be read is skipped and its error
// is returned alongside the files that were found.
func (d *DataFS) ImageFiles() ([]ImageFile, error) {
	return listImageFiles(d, d.ImagesRoot())
}

func listImageFiles(fsys fs.FS, imagesRoot string) ([]ImageFile, error) {
	months, err := fs.ReadDir(fsys, ImagesDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var result *multierror.Error
	var files []ImageFile
	for _, month := range months {
		if !month.IsDir() {
			continue
		}
		entries, err := fs.ReadDir(fsys, ImagesDir+"/"+month.Name())
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to read %s: %w", month.Name(), err))
			continue
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			files = append(files, ImageFile{
				Path:    filepath.Join(imagesRoot, month.Name(), entry.Name()),
				ModTime: info.ModTime(),
			})
		}
	}
	return files, result.ErrorOrNil()
}

// IsManagedImage reports whether path lies inside the image archive
func (d *DataFS) IsManagedImage(path string) bool {
	rel, err := filepath.Rel(d.ImagesRoot(), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RemoveImages deletes archived images. Missing files are not errors.
// Paths outside the archive are refused. All failures are collected and
// returned together; a failure does not stop the remaining removals.
func (d *DataFS) RemoveImages(paths []string) (int, error) {
	var result *multierror.Error
	removed := 0
	for _, path := range paths {
		if path == "" {
			continue
		}
		if !d.IsManagedImage(path) {
			result = multierror.Append(result, fmt.Errorf("refusing to remove %s: outside image archive", path))
			continue
		}
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			result = multierror.Append(result, err)
			continue
		}
		removed++
	}
	return removed, result.ErrorOrNil()
}
