// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package server is the filebox UI server: it accepts authenticated uploads
// and serves the uploaded files back from object storage.
package server

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.filebox.dev/filebox/internal/storage"
)

const (
	// FormField is the multipart field holding the uploaded file.
	FormField = "file"

	maxMemory       = 32 << 20
	shutdownTimeout = 10 * time.Second
)

// ObjectStore is the subset of storage.Store the server needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (*storage.Object, error)
}

type Options struct {
	// BaseURL prefixes the links returned for uploads.
	BaseURL string
	// UploadToken is the bearer token uploads must present. An empty token
	// rejects every upload.
	UploadToken string
	// KeySalt is mixed into object keys. It defaults to the process ID.
	KeySalt string
	Logger  *slog.Logger
}

type Server struct {
	store  ObjectStore
	opts   Options
	logger *slog.Logger
}

func New(store ObjectStore, opts Options) *Server {
	if opts.KeySalt == "" {
		opts.KeySalt = strconv.Itoa(os.Getpid())
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, opts: opts, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("GET /files/{key}", s.handleFile)
	return s.withRequestID(mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WithStack(err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return errors.WithStack(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.WithStack(err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}
	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST supported", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		http.Error(w, "No file", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()
	file, header, err := r.FormFile(FormField)
	if err != nil {
		http.Error(w, "No file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	key := s.ObjectKey(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if err := s.store.Put(r.Context(), key, file, contentType); err != nil {
		s.log(r).Error("upload failed", "key", key, "err", err)
		http.Error(w, "Upload error", http.StatusInternalServerError)
		return
	}
	s.log(r).Info("uploaded", "key", key, "filename", header.Filename, "size", header.Size)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, s.Link(key))
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	obj, err := s.store.Get(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log(r).Error("download failed", "key", key, "err", err)
		http.Error(w, "Download error", http.StatusInternalServerError)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		s.log(r).Warn("download interrupted", "key", key, "err", err)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.opts.UploadToken == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && token == s.opts.UploadToken
}

// ObjectKey is the key a file uploaded under filename is stored as. The same
// filename maps to the same key for the lifetime of the salt, so re-uploads
// replace the previous object.
func (s *Server) ObjectKey(filename string) string {
	sum := md5.Sum([]byte(filename + s.opts.KeySalt))
	return hex.EncodeToString(sum[:])
}

// Link is the public URL of the object stored under key.
func (s *Server) Link(key string) string {
	return strings.TrimSuffix(s.opts.BaseURL, "/") + "/" + key
}

type requestIDKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) log(r *http.Request) *slog.Logger {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return s.logger.With("request_id", id, "method", r.Method, "path", r.URL.Path)
}
