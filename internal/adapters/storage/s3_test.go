package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-be/internal/adapters/storage"
	"github.com/ammerola/stock-be/test/helpers"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        []byte
}

// fakeS3 answers just enough of the S3 API for bucket checks and single part uploads
type fakeS3 struct {
	mu           sync.Mutex
	bucketExists bool
	requests     []recordedRequest
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        body,
	})

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	isBucket := len(parts) == 1 || parts[1] == ""

	switch {
	case r.Method == http.MethodHead && isBucket:
		if !f.bucketExists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && isBucket:
		f.bucketExists = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeS3) find(method, path string) (recordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		if req.method == method && strings.TrimSuffix(req.path, "/") == path {
			return req, true
		}
	}
	return recordedRequest{}, false
}

func newTestS3(t *testing.T, fake *fakeS3) *storage.S3Storage {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	s3Storage, err := storage.NewS3Storage(context.Background(), &storage.S3Config{
		Region:          "us-east-1",
		Bucket:          "inventory-backups",
		AccessKeyID:     "test",
		SecretAccessKey: "test-secret",
		Endpoint:        server.URL,
		UsePathStyle:    true,
	}, helpers.TestLogger())
	require.NoError(t, err)
	return s3Storage
}

func TestS3Storage_Upload(t *testing.T) {
	fake := &fakeS3{bucketExists: true}
	s3Storage := newTestS3(t, fake)

	body := []byte(`[{"code":"A1","name":"Caneta azul","quantity":3}]`)
	_, err := s3Storage.Upload(context.Background(), "backups/2025/03/01/inventory_20250301_120000.json", body, "application/json")
	require.NoError(t, err)

	req, ok := fake.find(http.MethodPut, "/inventory-backups/backups/2025/03/01/inventory_20250301_120000.json")
	require.True(t, ok, "object was not uploaded")
	assert.Equal(t, "application/json", req.contentType)
	assert.Contains(t, string(req.body), `"code":"A1"`)

	_, created := fake.find(http.MethodPut, "/inventory-backups")
	assert.False(t, created, "existing bucket must not be recreated")
}

func TestS3Storage_CreatesMissingBucket(t *testing.T) {
	fake := &fakeS3{}
	newTestS3(t, fake)

	_, ok := fake.find(http.MethodPut, "/inventory-backups")
	assert.True(t, ok, "bucket was not created")
}
