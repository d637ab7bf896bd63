package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/AdilMir1433/User-Service/internal/config"
)

func TestHTTPHostUploadAndFetch(t *testing.T) {
	stored := map[string][]byte{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if r.FormValue("api_key") != "key" || r.FormValue("signature") == "" || r.FormValue("timestamp") != "1700000000" {
				http.Error(w, "unsigned", http.StatusUnauthorized)
				return
			}
			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(file)
			stored["pic-1"] = data
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"public_id":"pic-1"}`))
		case r.Method == http.MethodGet:
			data, ok := stored[r.URL.Path[1:]]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(data)
		default:
			http.Error(w, "unexpected", http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	host := NewHTTPHost(srv.URL+"/", "key", "secret", time.Second)
	host.now = func() time.Time { return time.Unix(1700000000, 0) }

	id, err := host.Upload(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("upload error: %v", err)
	}
	if id != "pic-1" {
		t.Fatalf("unexpected public id %q", id)
	}
	data, err := host.Fetch(context.Background(), id)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !bytes.Equal(data, []byte("png-bytes")) {
		t.Fatalf("unexpected payload %q", data)
	}
	if _, err := host.Fetch(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := host.Fetch(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	host, closeFn, err := New(context.Background(), config.MediaConfig{Backend: "none"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := host.(NoopHost); !ok {
		t.Fatalf("expected noop host, got %T", host)
	}
	_ = closeFn(context.Background())

	if _, _, err := New(context.Background(), config.MediaConfig{Backend: "http"}); err == nil {
		t.Fatalf("expected missing base url to fail")
	}
	if _, _, err := New(context.Background(), config.MediaConfig{Backend: "ftp"}); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}

func TestMongoHostRoundTrip(t *testing.T) {
	uri := os.Getenv("MEDIA_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MEDIA_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	host, err := NewMongoHost(ctx, uri, "devxam_test", "display_pictures")
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}
	defer host.Close(ctx)

	id, err := host.Upload(ctx, []byte("jpeg"))
	if err != nil {
		t.Fatalf("upload error: %v", err)
	}
	data, err := host.Fetch(ctx, id)
	if err != nil || string(data) != "jpeg" {
		t.Fatalf("unexpected fetch result %q err=%v", data, err)
	}
}
