package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// uploadField is the form field name used by the server's upload form.
	uploadField = "file"
)

// Client performs operations against a cloudcity server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: &Config{
			Endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
			Timeout:     cfg.Timeout,
			DownloadDir: cfg.DownloadDir,
		},
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the normalized server URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Upload uploads file(s) to the server's files directory.
// The server keeps only the base name, so a recursive upload flattens the tree.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}
	result, err := c.uploadSingle(ctx, opts.LocalPath, opts.Name)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		result, uploadErr := c.uploadSingle(ctx, opts.LocalPath, opts.Name)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult

	walkErr := filepath.WalkDir(opts.LocalPath, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		result, uploadErr := c.uploadSingle(ctx, path, "")
		if uploadErr != nil {
			result = UploadResult{
				LocalPath: path,
				Name:      d.Name(),
				Err:       uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle posts one file as a multipart form. The body is streamed and
// its exact length is announced so the server can tell a truncated upload apart.
func (c *Client) uploadSingle(ctx context.Context, localPath, name string) (UploadResult, error) {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return UploadResult{}, fmt.Errorf("upload %s: is a directory", localPath)
	}

	if name == "" {
		name = filepath.Base(localPath)
	}

	prefix, suffix, contentType, err := multipartEnvelope(name)
	if err != nil {
		return UploadResult{}, err
	}

	body := io.MultiReader(bytes.NewReader(prefix), file, bytes.NewReader(suffix))
	req, err := c.newRequest(ctx, http.MethodPost, "/", body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(prefix)) + info.Size() + int64(len(suffix))

	if _, err := c.doText(req); err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		LocalPath: localPath,
		Name:      name,
		Size:      info.Size(),
	}, nil
}

// multipartEnvelope returns the bytes written before and after the file content
// of a single-part form, along with the request content type.
func multipartEnvelope(name string) (prefix, suffix []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if _, err := mw.CreateFormFile(uploadField, name); err != nil {
		return nil, nil, "", fmt.Errorf("create form part: %w", err)
	}
	prefix = bytes.Clone(buf.Bytes())
	buf.Reset()

	if err := mw.Close(); err != nil {
		return nil, nil, "", fmt.Errorf("close form: %w", err)
	}
	suffix = bytes.Clone(buf.Bytes())

	return prefix, suffix, mw.FormDataContentType(), nil
}

// Download downloads a file from the server's files directory.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.Name == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/download?"+url.Values{"file": {opts.Name}}.Encode(), http.NoBody)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		Name:        opts.Name,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	if lm, parseErr := http.ParseTime(resp.Header.Get("Last-Modified")); parseErr == nil {
		result.LastModified = lm
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = filepath.Join(c.config.DownloadDir, filepath.Base(opts.Name))
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		_ = os.Remove(localPath)
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		_ = os.Remove(localPath)
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	if !result.LastModified.IsZero() {
		if chErr := os.Chtimes(localPath, result.LastModified, result.LastModified); chErr != nil {
			return nil, nil, fmt.Errorf("set file time: %w", chErr)
		}
	}

	result.Size = written
	return result, nil, nil
}

// Delete deletes one or more files from the server.
// Continues on error, collecting results for all names.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Names) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]DeleteResult, 0, len(opts.Names))

	for _, name := range opts.Names {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := DeleteResult{Name: name, Deleted: true}
		if err := c.getText(ctx, "/delete?"+url.Values{"file": {name}}.Encode()); err != nil {
			result.Deleted = false
			result.Err = err
		}
		results = append(results, result)
	}

	return results, nil
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Touch sets the modification time of existing files to now.
// Continues on error, collecting results for all paths.
func (c *Client) Touch(ctx context.Context, opts TouchOptions) ([]TouchResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]TouchResult, 0, len(opts.Paths))

	for _, p := range opts.Paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := TouchResult{Path: p, Touched: true}
		if err := c.getText(ctx, "/touch/"+escapeSegments(p)); err != nil {
			result.Touched = false
			result.Err = err
		}
		results = append(results, result)
	}

	return results, nil
}

// HasTouchErrors returns true if any touch operation failed.
func HasTouchErrors(results []TouchResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// List returns the files directory listing in server order.
func (c *Client) List(ctx context.Context) (*ListResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/listfiles", http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, body)
	}

	items, err := parseListing(body)
	if err != nil {
		return nil, err
	}

	return &ListResult{Items: items}, nil
}

// parseListing decodes the server's object keyed "1", "2", ... into a slice ordered by key.
func parseListing(body []byte) ([]FileInfo, error) {
	var raw map[string]serverListEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	items := make([]FileInfo, 0, len(raw))
	for key, entry := range raw {
		index, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("parse response: invalid index %q: %w", key, err)
		}

		modTime, err := parseWhen(entry.When)
		if err != nil {
			return nil, fmt.Errorf("parse response: entry %d: %w", index, err)
		}

		items = append(items, FileInfo{
			Index:   index,
			Name:    entry.File,
			ModTime: modTime,
		})
	}

	slices.SortFunc(items, func(a, b FileInfo) int {
		return a.Index - b.Index
	})

	return items, nil
}

// parseWhen converts fractional epoch seconds into a time.
func parseWhen(when string) (time.Time, error) {
	whole, frac, _ := strings.Cut(when, ".")

	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", when, err)
	}

	var nsec int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		nsec, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", when, err)
		}
	}

	return time.Unix(sec, nsec), nil
}

// FirstFile returns the name of the first regular file of the listing.
// Returns ErrNotFound when the files directory holds no files.
func (c *Client) FirstFile(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/onefilename", http.NoBody)
	if err != nil {
		return "", err
	}
	return c.doText(req)
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.getText(ctx, "/healthz")
}

func (c *Client) getText(ctx context.Context, target string) error {
	req, err := c.newRequest(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return err
	}
	_, err = c.doText(req)
	return err
}

// newRequest builds a request against the endpoint. Every request carries a fresh
// X-Request-Id so client invocations can be found in the server log.
func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// doText executes req and returns the trimmed plain-text body of a 200 response.
func (c *Client) doText(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", parseServerError(resp.StatusCode, body)
	}

	return strings.TrimSpace(string(body)), nil
}

// escapeSegments path-escapes each segment of p while keeping the separators.
func escapeSegments(p string) string {
	segments := strings.Split(strings.Trim(filepath.ToSlash(p), "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// parseServerError extracts error message from server response.
func parseServerError(statusCode int, body []byte) error {
	return &APIError{
		StatusCode: statusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested file does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned for invalid paths and malformed uploads (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrForbidden is returned when the server lacks permission on the file (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrTooLarge is returned when an upload exceeds the server limit (413).
	ErrTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}
)
