package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"audio-digest/internal/domain"
)

func TestAcquireURLDownload(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Pipeline.AllowRemote = true

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote audio bytes"))
	}))
	defer server.Close()

	job := domain.Job{ID: "job-url", Source: domain.SourceURL, SourceRef: server.URL + "/pod.mp3"}

	result, err := env.pipeline.acquire(context.Background(), job)
	if err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	if !result.temp {
		t.Error("downloaded file must be marked temporary")
	}

	data, err := os.ReadFile(result.path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "remote audio bytes" {
		t.Errorf("downloaded content = %q", data)
	}
	if !strings.HasSuffix(result.path, ".mp3") {
		t.Errorf("download path %q should keep the url extension", result.path)
	}

	os.Remove(result.path)
}

func TestAcquireURLSizeLimit(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Pipeline.AllowRemote = true
	env.cfg.Pipeline.MaxDownloadMB = 0 // validated configs never hit 0; forced here

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 1024))
	}))
	defer server.Close()

	job := domain.Job{ID: "job-big", Source: domain.SourceURL, SourceRef: server.URL + "/big.mp3"}

	if _, err := env.pipeline.acquire(context.Background(), job); err == nil {
		t.Fatal("acquire() should reject downloads over the limit")
	}
	if n := tempFileCount(t, env.cfg.Paths.Temp); n != 0 {
		t.Errorf("oversized download left %d temp files", n)
	}
}

func TestAcquireURLRemoteError(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Pipeline.AllowRemote = true

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	job := domain.Job{ID: "job-404", Source: domain.SourceURL, SourceRef: server.URL + "/gone.mp3"}

	_, err := env.pipeline.acquire(context.Background(), job)
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("acquire() error = %v, want remote status failure", err)
	}
}

func TestAcquireFileAbsolutePath(t *testing.T) {
	env := newTestEnv(t)

	path := env.cfg.Paths.Uploads + "/abs.mp3"
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := env.pipeline.acquireFile(path)
	if err != nil {
		t.Fatalf("acquireFile() error = %v", err)
	}
	if result.path != path || result.temp {
		t.Errorf("result = %+v", result)
	}
}
