package cloudcity

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"slices"
	"strings"
	"time"
)

// FileStorage defines the physical file operations the service needs.
// Paths are resolved, slash separated and relative to the storage root ("." is the root).
//
// Implementations must map missing targets to ErrNotFound and OS permission
// failures to ErrPermissionDenied so callers can classify errors with errors.Is.
type FileStorage interface {
	// Stat describes a single file or directory.
	Stat(ctx context.Context, path string) (DirEntry, error)

	// ReadDir returns the immediate children of a directory in no particular order.
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)

	// Open opens a regular file for reading. The caller closes the returned reader.
	Open(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Write stores content at path, creating parent directories as needed.
	//
	// Implementations should:
	//   - write atomically so a failed or truncated copy never shows up at path
	//   - stop and clean up when ctx is canceled or content returns an error
	//   - return the number of bytes written
	Write(ctx context.Context, path string, content io.Reader) (int64, error)

	// Delete removes a single file.
	Delete(ctx context.Context, path string) error

	// Touch sets the access and modification times of a file.
	Touch(ctx context.Context, path string, t time.Time) error

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(ctx context.Context, path string) error
}

// ServiceConfig holds configuration options for FileService.
type ServiceConfig struct {
	// FilesDir is the directory, relative to the root, used by the device
	// operations (upload, download by name, delete, touch, first file, JSON listing).
	FilesDir string
}

type FileService struct {
	storage  FileStorage
	filesDir string
	now      func() time.Time
}

func NewFileService(storage FileStorage, cfg ServiceConfig) (*FileService, error) {
	if storage == nil {
		return nil, errors.New("new file service: storage is required")
	}

	filesDir, err := ResolvePath(cfg.FilesDir)
	if err != nil {
		return nil, fmt.Errorf("new file service: files dir: %w", err)
	}

	return &FileService{
		storage:  storage,
		filesDir: filesDir,
		now:      time.Now,
	}, nil
}

// FilesDir returns the resolved files directory relative to the root.
func (s *FileService) FilesDir() string {
	return s.filesDir
}

// Stat resolves a logical path and describes what it points at.
func (s *FileService) Stat(ctx context.Context, logical string) (DirEntry, error) {
	p, err := ResolvePath(logical)
	if err != nil {
		return DirEntry{}, err
	}
	return s.storage.Stat(ctx, p)
}

// List returns the children of the directory at a logical path,
// directories first, then by case-insensitive name.
func (s *FileService) List(ctx context.Context, logical string) ([]DirEntry, error) {
	p, err := ResolvePath(logical)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, p)
}

// ListFiles lists the files directory in the same order as List.
func (s *FileService) ListFiles(ctx context.Context) ([]DirEntry, error) {
	return s.list(ctx, s.filesDir)
}

func (s *FileService) list(ctx context.Context, p string) ([]DirEntry, error) {
	entries, err := s.storage.ReadDir(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	SortEntries(entries)
	return entries, nil
}

// Open opens the regular file at a logical path.
func (s *FileService) Open(ctx context.Context, logical string) (File, error) {
	p, err := ResolvePath(logical)
	if err != nil {
		return File{}, err
	}
	return s.open(ctx, p)
}

// OpenFile opens a file of the files directory by name.
func (s *FileService) OpenFile(ctx context.Context, name string) (File, error) {
	n, err := ResolveName(name)
	if err != nil {
		return File{}, err
	}
	return s.open(ctx, JoinPath(s.filesDir, n))
}

func (s *FileService) open(ctx context.Context, p string) (File, error) {
	info, err := s.storage.Stat(ctx, p)
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", p, err)
	}

	if info.IsDir {
		return File{}, fmt.Errorf("open %s: %w", p, ErrNotAFile)
	}

	content, err := s.storage.Open(ctx, p)
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", p, err)
	}

	return File{
		Name:        info.Name,
		Path:        p,
		Size:        info.Size,
		ModTime:     info.ModTime,
		ContentType: ContentTypeOf(p),
		Content:     content,
	}, nil
}

// Touch sets the modification time of a file below the files directory to now.
func (s *FileService) Touch(ctx context.Context, logical string) (time.Time, error) {
	rel, err := ResolvePath(logical)
	if err != nil {
		return time.Time{}, err
	}
	p := JoinPath(s.filesDir, rel)

	info, err := s.storage.Stat(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return time.Time{}, fmt.Errorf("touch %s: %w", p, ErrNotAFile)
		}
		return time.Time{}, fmt.Errorf("touch %s: %w", p, err)
	}

	if info.IsDir {
		return time.Time{}, fmt.Errorf("touch %s: %w", p, ErrNotAFile)
	}

	now := s.now()
	if err := s.storage.Touch(ctx, p, now); err != nil {
		return time.Time{}, fmt.Errorf("touch %s: %w", p, err)
	}

	return now, nil
}

// Delete removes a file of the files directory by name. The content is gone for good.
func (s *FileService) Delete(ctx context.Context, name string) error {
	n, err := ResolveName(name)
	if err != nil {
		return err
	}
	p := JoinPath(s.filesDir, n)

	info, err := s.storage.Stat(ctx, p)
	if err != nil {
		return fmt.Errorf("delete %s: %w", p, err)
	}

	if info.IsDir {
		return fmt.Errorf("delete %s: %w", p, ErrNotAFile)
	}

	if err := s.storage.Delete(ctx, p); err != nil {
		return fmt.Errorf("delete %s: %w", p, err)
	}

	return nil
}

// FirstFile returns the name of the first regular file of the files directory.
func (s *FileService) FirstFile(ctx context.Context) (string, error) {
	entries, err := s.ListFiles(ctx)
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		if !e.IsDir {
			return e.Name, nil
		}
	}

	return "", fmt.Errorf("first file: %w: %s is empty", ErrNotFound, s.filesDir)
}

// Upload stores content as fileName inside the files directory, creating the
// directory when it is missing. Client supplied directory components are dropped.
func (s *FileService) Upload(ctx context.Context, fileName string, content io.Reader) (UploadResult, error) {
	name, err := ResolveName(BaseName(fileName))
	if err != nil {
		return UploadResult{}, err
	}
	if strings.HasPrefix(name, TempFilePrefix) {
		return UploadResult{}, fmt.Errorf("upload %s: %w: reserved name", name, ErrInvalidPath)
	}

	if err := s.storage.MkdirAll(ctx, s.filesDir); err != nil {
		return UploadResult{}, fmt.Errorf("upload: create files dir: %w", err)
	}

	p := JoinPath(s.filesDir, name)
	n, err := s.storage.Write(ctx, p, content)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", p, err)
	}

	return UploadResult{Path: p, FileName: name, BytesWritten: n}, nil
}

// SortEntries orders entries directories first, then by case-insensitive name.
// Names equal ignoring case fall back to byte order so the result is stable.
func SortEntries(entries []DirEntry) {
	slices.SortFunc(entries, func(a, b DirEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// BaseName returns the last element of a client supplied file name,
// accepting both "/" and "\" separators.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimRight(name, "/")
	if name == "" {
		return ""
	}
	return path.Base(name)
}

// ContentTypeOf returns the MIME type for a path based on its extension.
func ContentTypeOf(p string) string {
	contentType := mime.TypeByExtension(path.Ext(p))

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}
