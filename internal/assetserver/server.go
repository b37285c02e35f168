// Package assetserver exposes an assets.Store over the upload/view HTTP
// endpoints used by the editor and the compute pipeline.
package assetserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"rgbyp-maskeditor/internal/assets"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxUploadBytes bounds the size of one uploaded blob.
const MaxUploadBytes = 256 << 20

// Server serves a Store over HTTP.
type Server struct {
	store  assets.Store
	logger *slog.Logger
	router *chi.Mux
	http   *http.Server
}

// New builds the router for store.
func New(store assets.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	s := &Server{store: store, logger: logger, router: r}
	r.Get("/health", s.handleHealth)
	r.Post("/upload/image", s.handleUpload)
	r.Get("/view", s.handleView)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Asset server listening", "addr", addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("Stopping asset server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResponse struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "missing image field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	area, err := assets.ParseArea(r.FormValue("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	overwrite := false
	if v := r.FormValue("overwrite"); v != "" {
		overwrite, _ = strconv.ParseBool(v)
	}

	ref := assets.Ref{
		Filename:  filepath.Base(header.Filename),
		Subfolder: r.FormValue("subfolder"),
		Area:      area,
	}
	stored, err := s.store.Upload(r.Context(), ref, data, overwrite)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, assets.ErrInvalidRef) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("Upload failed", "ref", ref.Key(), "error", err)
		http.Error(w, "upload failed", status)
		return
	}

	s.logger.Info("Stored asset", "ref", stored.Key(), "bytes", len(data))
	writeJSON(w, http.StatusOK, uploadResponse{
		Name:      stored.Filename,
		Subfolder: stored.Subfolder,
		Type:      string(stored.Area),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	area, err := assets.ParseArea(q.Get("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ref := assets.Ref{
		Filename:  q.Get("filename"),
		Subfolder: q.Get("subfolder"),
		Area:      area,
	}

	data, err := s.store.Fetch(r.Context(), ref)
	switch {
	case errors.Is(err, assets.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, assets.ErrInvalidRef):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.logger.Warn("Fetch failed", "ref", ref.Key(), "error", err)
		http.Error(w, "fetch failed", http.StatusInternalServerError)
		return
	}

	ctype := mime.TypeByExtension(filepath.Ext(ref.Filename))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
