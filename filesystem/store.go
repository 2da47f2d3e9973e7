// Package filesystem provides the local file system storage backend for cloudcity.
// All access goes through an os.Root so no operation can leave the served directory,
// not even through symlinks. Writes are atomic using a temp file and rename.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frankcohen/cloudcity"
)

// tmpPrefix marks in-flight uploads. Entries carrying it are hidden from listings.
const tmpPrefix = cloudcity.TempFilePrefix

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

var _ cloudcity.FileStorage = (*Store)(nil)

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Stat describes the file or directory at path.
func (s *Store) Stat(ctx context.Context, p string) (cloudcity.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return cloudcity.DirEntry{}, err
	}

	info, err := s.root.Stat(p)
	if err != nil {
		return cloudcity.DirEntry{}, classify("stat", err)
	}

	return entryFromInfo(info), nil
}

// ReadDir lists the immediate children of a directory.
func (s *Store) ReadDir(ctx context.Context, p string) ([]cloudcity.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), p)
	if err != nil {
		return nil, classify("read dir", err)
	}

	entries := make([]cloudcity.DirEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// removed between readdir and stat
				continue
			}
			return nil, classify("read dir", err)
		}

		e := entryFromInfo(info)
		if entry.Type()&fs.ModeSymlink != 0 {
			if target, statErr := s.root.Stat(path.Join(p, entry.Name())); statErr == nil {
				e = entryFromInfo(target)
				e.Name = entry.Name()
			}
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Open opens a file for reading. Returns cloudcity.ErrNotFound if the file does not exist.
func (s *Store) Open(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(p)
	if err != nil {
		return nil, classify("open file", err)
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// ioWriter tags write failures so they are told apart from failures of the source reader.
type ioWriter struct {
	w io.Writer
}

func (w ioWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", cloudcity.ErrIO, err)
	}
	return n, nil
}

// Write atomically writes content to the given path using a temp file in the
// destination directory and a rename. It creates intermediate directories as needed.
// When the copy fails, including when content reports an error or ctx is canceled,
// the temp file is removed and nothing appears at path.
func (s *Store) Write(ctx context.Context, p string, content io.Reader) (int64, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}

	destDir := path.Dir(p)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return 0, classify("could not create intermediate directories", err)
		}
	}

	tmpFile := path.Join(destDir, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return 0, classify("could not open temp file", createErr)
	}

	success := false
	closed := false
	defer func() {
		if !closed {
			if closeErr := t.Close(); closeErr != nil {
				slog.Warn("failed to close tmp file", "err", closeErr)
			}
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				slog.Warn("failed to remove tmp file", "path", tmpFile, "err", rmErr)
			}
		}
	}()

	written, err := io.Copy(ioWriter{w: t}, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return written, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return written, fmt.Errorf("could not sync written file: %w: %w", cloudcity.ErrIO, err)
	}

	closed = true
	if err := t.Close(); err != nil {
		return written, fmt.Errorf("could not close written file: %w: %w", cloudcity.ErrIO, err)
	}

	if renameErr := s.root.Rename(tmpFile, p); renameErr != nil {
		return written, classify("failed to rename file", renameErr)
	}

	success = true
	return written, nil
}

// Delete removes a file. Returns cloudcity.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Remove(p); err != nil {
		return classify("could not delete file", err)
	}
	return nil
}

// Touch sets the access and modification time of a file.
func (s *Store) Touch(ctx context.Context, p string, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Chtimes(p, t, t); err != nil {
		return classify("could not touch file", err)
	}
	return nil
}

// MkdirAll creates a directory and its missing parents.
func (s *Store) MkdirAll(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p == "." {
		return nil
	}

	if err := s.root.MkdirAll(p, 0o755); err != nil {
		return classify("could not create directory", err)
	}
	return nil
}

// CleanupTemp removes in-flight upload files below dir that were last written before
// cutoff. They are left behind only when the process died mid-upload.
func (s *Store) CleanupTemp(ctx context.Context, dir string, cutoff time.Time) (int, error) {
	removed := 0

	walkErr := fs.WalkDir(s.root.FS(), dir, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), tmpPrefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}

		if err := s.root.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		slog.Debug("removed stale upload", "path", p, "mtime", info.ModTime())
		removed++
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return removed, walkErr
		}
		return removed, classify("cleanup temp files", walkErr)
	}

	return removed, nil
}

func entryFromInfo(info fs.FileInfo) cloudcity.DirEntry {
	return cloudcity.DirEntry{
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
}

// classify maps OS errors onto the cloudcity error taxonomy.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", op, cloudcity.ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w: %w", op, cloudcity.ErrPermissionDenied, err)
	case strings.Contains(err.Error(), "path escapes from parent"):
		return fmt.Errorf("%s: %w: %w", op, cloudcity.ErrInvalidPath, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, cloudcity.ErrIO, err)
	}
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}
