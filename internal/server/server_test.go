package server

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.filebox.dev/filebox/internal/storage"
)

type memObject struct {
	data        []byte
	contentType string
}

type memStore struct {
	mu      sync.Mutex
	objects map[string]memObject
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]memObject{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func newTestServer(store ObjectStore, token string) *Server {
	return New(store, Options{
		BaseURL:     "http://localhost:3333/files/",
		UploadToken: token,
		KeySalt:     "1234",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func uploadRequest(t *testing.T, field, filename, contentType, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAndDownload(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(store, "s3cret")
	h := srv.Handler()

	req := uploadRequest(t, FormField, "notes.txt", "text/plain", "hello filebox")
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	key := srv.ObjectKey("notes.txt")
	assert.Equal(t, "http://localhost:3333/files/"+key, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/"+key, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello filebox", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		req      func(t *testing.T) *http.Request
		wantCode int
		wantBody string
	}{
		{
			name:  "no token",
			token: "s3cret",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, FormField, "a.txt", "text/plain", "a")
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:  "wrong token",
			token: "s3cret",
			req: func(t *testing.T) *http.Request {
				req := uploadRequest(t, FormField, "a.txt", "text/plain", "a")
				req.Header.Set("Authorization", "Bearer nope")
				return req
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:  "token without scheme",
			token: "s3cret",
			req: func(t *testing.T) *http.Request {
				req := uploadRequest(t, FormField, "a.txt", "text/plain", "a")
				req.Header.Set("Authorization", "s3cret")
				return req
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:  "server without token",
			token: "",
			req: func(t *testing.T) *http.Request {
				req := uploadRequest(t, FormField, "a.txt", "text/plain", "a")
				req.Header.Set("Authorization", "Bearer ")
				return req
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:  "unauthorized GET",
			token: "s3cret",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodGet, "/upload", nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:  "authorized GET",
			token: "s3cret",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/upload", nil)
				req.Header.Set("Authorization", "Bearer s3cret")
				return req
			},
			wantCode: http.StatusMethodNotAllowed,
			wantBody: "Only POST supported",
		},
		{
			name:  "wrong field",
			token: "s3cret",
			req: func(t *testing.T) *http.Request {
				req := uploadRequest(t, "upload", "a.txt", "text/plain", "a")
				req.Header.Set("Authorization", "Bearer s3cret")
				return req
			},
			wantCode: http.StatusBadRequest,
			wantBody: "No file",
		},
		{
			name:  "not multipart",
			token: "s3cret",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("a"))
				req.Header.Set("Authorization", "Bearer s3cret")
				return req
			},
			wantCode: http.StatusBadRequest,
			wantBody: "No file",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newMemStore()
			rec := httptest.NewRecorder()
			newTestServer(store, test.token).Handler().ServeHTTP(rec, test.req(t))

			assert.Equal(t, test.wantCode, rec.Code)
			if test.wantBody != "" {
				assert.Contains(t, rec.Body.String(), test.wantBody)
			}
			assert.Empty(t, store.objects)
		})
	}
}

func TestUploadStoreError(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("bucket is gone")

	req := uploadRequest(t, FormField, "a.txt", "text/plain", "a")
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	newTestServer(store, "s3cret").Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload error")
}

func TestDownloadNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(newMemStore(), "s3cret").Handler().
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestObjectKey(t *testing.T) {
	srv := newTestServer(newMemStore(), "s3cret")
	sum := md5.Sum([]byte("notes.txt1234"))
	assert.Equal(t, hex.EncodeToString(sum[:]), srv.ObjectKey("notes.txt"))
	assert.NotEqual(t, srv.ObjectKey("notes.txt"), srv.ObjectKey("notes2.txt"))

	other := New(newMemStore(), Options{KeySalt: "5678"})
	assert.NotEqual(t, srv.ObjectKey("notes.txt"), other.ObjectKey("notes.txt"))

	defaultSalt := New(newMemStore(), Options{})
	assert.NotEmpty(t, defaultSalt.opts.KeySalt)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- newTestServer(newMemStore(), "s3cret").Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/files/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
