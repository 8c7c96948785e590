package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"imagegallery/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// fakeS3 answers the handful of path-style calls the adapter makes.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   map[string]int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	status, ok := f.status[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	code := map[int]string{
		http.StatusNotFound:  "NoSuchKey",
		http.StatusForbidden: "AccessDenied",
	}[status]
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>`+code+`</Code><Message>fake</Message></Error>`)
}

func (f *fakeS3) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStorage(t *testing.T, fake *fakeS3) *S3Storage {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:                     "eu-west-1",
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		Credentials:                credentials.NewStaticCredentialsProvider("AKIDTEST", "SECRETTEST", ""),
		RetryMaxAttempts:           1,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	return NewS3StorageFromClient(client, config.StorageConfig{Region: "eu-west-1", Bucket: "gallery"})
}

func TestS3Storage_Put(t *testing.T) {
	fake := &fakeS3{}
	store := newTestStorage(t, fake)

	content := []byte("fake image bytes")
	err := store.Put(context.Background(), "1_cat.jpg", bytes.NewReader(content), int64(len(content)), "image/jpeg")
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/gallery/1_cat.jpg", req.Path)
	assert.Equal(t, content, req.Body)
}

func TestS3Storage_PutFailure(t *testing.T) {
	fake := &fakeS3{status: map[string]int{"PUT /gallery/x.jpg": http.StatusForbidden}}
	store := newTestStorage(t, fake)

	err := store.Put(context.Background(), "x.jpg", strings.NewReader("x"), 1, "")
	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "put", storeErr.Op)
	assert.Equal(t, "x.jpg", storeErr.Key)
}

func TestS3Storage_Delete(t *testing.T) {
	fake := &fakeS3{status: map[string]int{
		"DELETE /gallery/missing.jpg": http.StatusNotFound,
		"DELETE /gallery/denied.jpg":  http.StatusForbidden,
	}}
	store := newTestStorage(t, fake)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "present.jpg"))
	assert.Equal(t, "/gallery/present.jpg", fake.last().Path)

	assert.NoError(t, store.Delete(ctx, "missing.jpg"))

	err := store.Delete(ctx, "denied.jpg")
	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "delete", storeErr.Op)
	assert.False(t, IsNotFound(err))
}

func TestS3Storage_PublicURL(t *testing.T) {
	store := NewS3StorageFromClient(s3.New(s3.Options{Region: "eu-west-1"}), config.StorageConfig{Region: "eu-west-1", Bucket: "gallery"})
	assert.Equal(t, "https://gallery.s3.eu-west-1.amazonaws.com/T_photo.jpg", store.PublicURL("T_photo.jpg"))
	assert.Equal(t, "https://gallery.s3.eu-west-1.amazonaws.com/T_my%20photo.jpg", store.PublicURL("T_my photo.jpg"))

	custom := NewS3StorageFromClient(s3.New(s3.Options{Region: "eu-west-1"}), config.StorageConfig{
		Region:   "eu-west-1",
		Bucket:   "gallery",
		Endpoint: "http://localhost:9000/",
	})
	assert.Equal(t, "http://localhost:9000/gallery/a.png", custom.PublicURL("a.png"))

	public := NewS3StorageFromClient(s3.New(s3.Options{Region: "eu-west-1"}), config.StorageConfig{
		Region:        "eu-west-1",
		Bucket:        "gallery",
		Endpoint:      "http://localhost:9000",
		PublicBaseURL: "https://cdn.example.com",
	})
	assert.Equal(t, "https://cdn.example.com/a.png", public.PublicURL("a.png"))
}

func TestS3Storage_PresignGet(t *testing.T) {
	store := newTestStorage(t, &fakeS3{})

	u, err := store.PresignGet(context.Background(), "1_cat.jpg", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "/gallery/1_cat.jpg")
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.Contains(t, u, "X-Amz-Expires=300")
}
