package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrFileNotFound is matched by every *NotFoundError
var ErrFileNotFound = errors.New("file not found")

// SupportedExtensions lists the tabular formats the loader understands
var SupportedExtensions = []string{".csv", ".txt", ".xlsx"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// NotFoundError reports a file that could not be resolved, together with
// what the directory actually contains so the caller can show it.
type NotFoundError struct {
	SearchedPath string
	Directory    string
	Available    []string
	Cause        error
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "file not found: %s", e.SearchedPath)
	switch {
	case e.Cause != nil && errors.Is(e.Cause, os.ErrNotExist) && e.Available == nil:
		fmt.Fprintf(&b, " (directory %s does not exist)", e.Directory)
	case len(e.Available) == 0:
		fmt.Fprintf(&b, " (directory %s is empty)", e.Directory)
	default:
		fmt.Fprintf(&b, " (directory %s contains: %s)", e.Directory, strings.Join(e.Available, ", "))
	}
	return b.String()
}

// Is lets errors.Is(err, ErrFileNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) fullPath(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// Resolve locates name inside dir. An exact match wins; otherwise the
// directory is scanned for a case-insensitive match. When several entries
// differ only in case the lexically first one is used.
func (d *Discovery) Resolve(dir, name string) (FileInfo, error) {
	fullDir := d.fullPath(dir)
	exact := filepath.Join(fullDir, name)

	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return toFileInfo(exact, info), nil
	}

	entries, err := os.ReadDir(fullDir)
	if err != nil {
		return FileInfo{}, &NotFoundError{SearchedPath: exact, Directory: fullDir, Cause: err}
	}

	available := make([]string, 0, len(entries))
	var match string
	for _, entry := range entries {
		available = append(available, entry.Name())
		if entry.IsDir() || match != "" {
			continue
		}
		if strings.EqualFold(entry.Name(), name) {
			match = entry.Name()
		}
	}

	if match == "" {
		sort.Strings(available)
		return FileInfo{}, &NotFoundError{SearchedPath: exact, Directory: fullDir, Available: available}
	}

	path := filepath.Join(fullDir, match)
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, &NotFoundError{SearchedPath: exact, Directory: fullDir, Available: available, Cause: err}
	}
	return toFileInfo(path, info), nil
}

// FindDatasets lists the files in dir with a supported tabular extension,
// oldest first.
func (d *Discovery) FindDatasets(dir string) ([]FileInfo, error) {
	fullDir := d.fullPath(dir)

	entries, err := os.ReadDir(fullDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullDir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, toFileInfo(filepath.Join(fullDir, entry.Name()), info))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// IsSupported reports whether the file extension is a known tabular format
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func toFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}
