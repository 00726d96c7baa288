package storage

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
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap/zaptest"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	status  int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(body)
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeStorage(t *testing.T) (*S3ObjectStorage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3ObjectStorage(config.StorageConfig{
		Endpoint:        srv.URL,
		Bucket:          "pet-images",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s, fake
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		msg  string
	}{
		{"missing bucket", config.StorageConfig{AccessKeyID: "k", SecretAccessKey: "s"}, "bucket is required"},
		{"missing access key", config.StorageConfig{Bucket: "b", SecretAccessKey: "s"}, "access key"},
		{"missing secret", config.StorageConfig{Bucket: "b", AccessKeyID: "k"}, "secret access key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{
			name: "explicit public base",
			cfg:  config.StorageConfig{PublicBaseURL: "https://cdn.wagginmeals.com/", Bucket: "b"},
			want: "https://cdn.wagginmeals.com/uploads/a.png",
		},
		{
			name: "aws virtual host",
			cfg:  config.StorageConfig{Bucket: "b", Region: "us-west-2"},
			want: "https://b.s3.us-west-2.amazonaws.com/uploads/a.png",
		},
		{
			name: "custom endpoint path style",
			cfg:  config.StorageConfig{Bucket: "b", Endpoint: "http://minio:9000", UsePathStyle: true},
			want: "http://minio:9000/b/uploads/a.png",
		},
		{
			name: "custom endpoint virtual host",
			cfg:  config.StorageConfig{Bucket: "b", Endpoint: "https://nyc3.digitaloceanspaces.com"},
			want: "https://b.nyc3.digitaloceanspaces.com/uploads/a.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.AccessKeyID = "k"
			tt.cfg.SecretAccessKey = "s"
			s, err := NewS3ObjectStorage(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.PublicURL("/uploads/a.png"))
		})
	}
}

func TestS3ObjectStorage_UploadAndDelete(t *testing.T) {
	s, fake := newFakeStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "uploads/bowl.png", strings.NewReader("png-bytes"), 9, "image/png"))
	assert.Equal(t, "png-bytes", fake.objects["/pet-images/uploads/bowl.png"])
	assert.Equal(t, "image/png", fake.types["/pet-images/uploads/bowl.png"])

	require.NoError(t, s.Delete(ctx, "uploads/bowl.png"))
	assert.NotContains(t, fake.objects, "/pet-images/uploads/bowl.png")
}

func TestS3ObjectStorage_UploadNonSeekableBody(t *testing.T) {
	s, fake := newFakeStorage(t)
	pr, pw := io.Pipe()
	go func() {
		_, _ = pw.Write([]byte("streamed"))
		_ = pw.Close()
	}()

	require.NoError(t, s.Upload(context.Background(), "uploads/stream.jpg", pr, 0, "image/jpeg"))
	assert.Equal(t, "streamed", fake.objects["/pet-images/uploads/stream.jpg"])
}

func TestS3ObjectStorage_Errors(t *testing.T) {
	s, fake := newFakeStorage(t)
	ctx := context.Background()

	assert.Error(t, s.Upload(ctx, "", strings.NewReader("x"), 1, "image/png"))
	assert.Error(t, s.Delete(ctx, ""))

	fake.mu.Lock()
	fake.status = http.StatusForbidden
	fake.mu.Unlock()
	err := s.Upload(ctx, "uploads/a.png", strings.NewReader("x"), 1, "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload object")
}
