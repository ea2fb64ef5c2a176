package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigEndpointURL(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Endpoint: "localhost:3334"}, "http://localhost:3334"},
		{Config{Endpoint: "minio.example.com", UseSSL: true}, "https://minio.example.com"},
		{Config{Endpoint: "http://127.0.0.1:9000", UseSSL: true}, "http://127.0.0.1:9000"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, test.cfg.endpointURL())
	}
}

func TestNewValidatesConfig(t *testing.T) {
	valid := Config{Endpoint: "localhost:3334", Bucket: "files", AccessKey: "a", SecretKey: "b"}

	tests := []struct {
		name    string
		edit    func(*Config)
		wantErr string
	}{
		{"endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint is required"},
		{"bucket", func(c *Config) { c.Bucket = "" }, "bucket is required"},
		{"access key", func(c *Config) { c.AccessKey = "" }, "credentials are required"},
		{"secret key", func(c *Config) { c.SecretKey = "" }, "credentials are required"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := valid
			test.edit(&cfg)
			_, err := New(context.Background(), cfg)
			assert.ErrorContains(t, err, test.wantErr)
		})
	}

	s, err := New(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, "files", s.Bucket())
}

// fakeS3 answers the few path-style S3 requests Store makes.
type fakeS3 struct {
	mu       sync.Mutex
	buckets  map[string]bool
	requests []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	switch {
	case key == "" && r.Method == http.MethodHead:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
		}
	case key == "" && r.Method == http.MethodPut:
		f.buckets[bucket] = true
	case key == "hello.txt" && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Length", "5")
		_, _ = io.WriteString(w, "hello")
	case r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
	case r.Method == http.MethodPut:
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{buckets: map[string]bool{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), Config{
		Endpoint:  srv.URL,
		Bucket:    "files",
		AccessKey: "filebox",
		SecretKey: "filebox-secret",
	})
	require.NoError(t, err)
	return s, fake
}

func TestEnsureBucket(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureBucket(ctx))
	assert.True(t, fake.buckets["files"])
	require.NoError(t, s.EnsureBucket(ctx))

	assert.Equal(t, []string{"HEAD /files", "PUT /files", "HEAD /files"}, fake.requests)
}

func TestGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	obj, err := s.Get(ctx, "hello.txt")
	require.NoError(t, err)
	defer obj.Body.Close()
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Equal(t, int64(5), obj.Size)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPut(t *testing.T) {
	s, fake := newTestStore(t)
	require.NoError(t, s.Put(context.Background(), "abc", strings.NewReader("hello"), "text/plain"))
	assert.Contains(t, fake.requests, "PUT /files/abc")
}

func TestStoreIgnoresAWSProfile(t *testing.T) {
	badConfig := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(badConfig, []byte("[profile broken\nregion"), 0o600))
	t.Setenv("AWS_PROFILE", "does-not-exist")
	t.Setenv("AWS_CONFIG_FILE", badConfig)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", badConfig)

	s, fake := newTestStore(t)
	require.NoError(t, s.EnsureBucket(context.Background()))
	assert.True(t, fake.buckets["files"])
}
