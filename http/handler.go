package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/frankcohen/cloudcity"
	"github.com/frankcohen/cloudcity/formdata"
)

type Service interface {
	Stat(ctx context.Context, path string) (cloudcity.DirEntry, error)
	List(ctx context.Context, path string) ([]cloudcity.DirEntry, error)
	ListFiles(ctx context.Context) ([]cloudcity.DirEntry, error)
	Open(ctx context.Context, path string) (cloudcity.File, error)
	OpenFile(ctx context.Context, name string) (cloudcity.File, error)
	Touch(ctx context.Context, path string) (time.Time, error)
	Delete(ctx context.Context, name string) error
	FirstFile(ctx context.Context) (string, error)
	Upload(ctx context.Context, fileName string, content io.Reader) (cloudcity.UploadResult, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Mode cloudcity.ServerMode
	// MaxUploadSize caps an upload body in bytes, 0 means no limit.
	MaxUploadSize int64
	CORS          CORSConfig
	// Metrics instruments every request when set and exposes /metrics.
	Metrics *Metrics
}

// Handler provides HTTP handlers for the file service routes.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with the route table built from the handler config.
// In browse mode GET / lists the root directory, in device mode it serves the upload form.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteText(w, http.StatusOK, "ok")
	})

	if h.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.config.Metrics.Handler())
	}

	r.Get("/listfiles", h.handleListFiles)
	r.Get("/touch/*", h.handleTouch)
	r.Get("/download", h.handleDownload)
	r.Get("/onefilename", h.handleFirstFile)
	r.Get("/delete", h.handleDelete)

	r.Post("/", h.handleUpload)
	r.Post("/fileupload", h.handleUpload)

	if h.config.Mode == cloudcity.ModeDevice {
		r.Get("/", h.handleUploadForm)
	}
	r.Get("/*", h.handleBrowse)

	return r
}

func (h *Handler) handleBrowse(w http.ResponseWriter, r *http.Request) {
	logical := r.URL.Path

	info, err := h.service.Stat(r.Context(), logical)
	if err != nil {
		HandleError(w, err)
		return
	}

	if info.IsDir {
		resolved, err := cloudcity.ResolvePath(logical)
		if err != nil {
			HandleError(w, err)
			return
		}

		if !strings.HasSuffix(r.URL.Path, "/") {
			// built from the resolved path so "//host" never becomes a protocol-relative URL
			target := url.URL{Path: "/" + resolved + "/", RawQuery: r.URL.RawQuery}
			http.Redirect(w, r, target.String(), http.StatusMovedPermanently)
			return
		}

		entries, err := h.service.List(r.Context(), logical)
		if err != nil {
			HandleError(w, err)
			return
		}

		if err := WriteListing(w, resolved != ".", entries); err != nil {
			slog.Warn("failed to render listing", "path", logical, "err", err)
		}
		return
	}

	file, err := h.service.Open(r.Context(), logical)
	if err != nil {
		HandleError(w, err)
		return
	}
	serveFile(w, r, file)
}

func (h *Handler) handleUploadForm(w http.ResponseWriter, _ *http.Request) {
	if err := WriteUploadForm(w); err != nil {
		slog.Warn("failed to render upload form", "err", err)
	}
}

func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListFiles(r.Context())
	if err != nil {
		HandleJSONError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, IndexedListing(entries)); err != nil {
		slog.Warn("failed to encode listing", "err", err)
	}
}

func (h *Handler) handleTouch(w http.ResponseWriter, r *http.Request) {
	logical := strings.TrimPrefix(r.URL.Path, "/touch/")

	touched, err := h.service.Touch(r.Context(), logical)
	if err != nil {
		HandleError(w, err)
		return
	}

	slog.Debug("file touched", "path", logical, "mtime", touched)
	WriteText(w, http.StatusOK, "Touched")
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")

	file, err := h.service.OpenFile(r.Context(), name)
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	serveFile(w, r, file)
}

func (h *Handler) handleFirstFile(w http.ResponseWriter, r *http.Request) {
	name, err := h.service.FirstFile(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteText(w, http.StatusOK, name)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")

	if err := h.service.Delete(r.Context(), name); err != nil {
		HandleError(w, err)
		return
	}

	slog.Info("file deleted", "name", name)
	h.config.Metrics.observeDelete()
	WriteText(w, http.StatusOK, "removed")
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.config.MaxUploadSize > 0 {
		if r.ContentLength > h.config.MaxUploadSize {
			HandleError(w, &http.MaxBytesError{Limit: h.config.MaxUploadSize})
			return
		}
		body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	boundary, err := formdata.Boundary(r.Header.Get("Content-Type"))
	if err != nil {
		HandleError(w, err)
		return
	}

	dec := formdata.NewDecoder(body, boundary, r.ContentLength)
	part, err := dec.NextPart()
	if err != nil {
		HandleError(w, err)
		return
	}

	result, err := h.service.Upload(r.Context(), part.FileName, dec)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if !errors.As(err, &maxBytesErr) {
			slog.Warn("upload aborted", "file", part.FileName, "state", dec.State(), "received", dec.Written())
		}
		HandleError(w, err)
		return
	}

	slog.Info("file uploaded", "path", result.Path, "field", part.FieldName, "bytes", result.BytesWritten)
	h.config.Metrics.observeUpload(result.BytesWritten)
	WriteText(w, http.StatusOK, "Uploaded")
}

func serveFile(w http.ResponseWriter, r *http.Request, file cloudcity.File) {
	defer func() { _ = file.Content.Close() }()

	w.Header().Set("Content-Type", file.ContentType)
	http.ServeContent(w, r, file.Name, file.ModTime, file.Content)
}
