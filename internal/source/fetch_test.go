package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ademuri/movie-stats/internal/store"
)

func testFetcher(attempts uint) *Fetcher {
	return NewFetcher(Options{
		Attempts: attempts,
		Delay:    time.Millisecond,
		Logger:   log.New(io.Discard, "", 0),
	})
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(b)
}

func TestFetchDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		io.WriteString(w, "movie_title\nHeat\n")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "cache", "data.csv")
	result, err := testFetcher(3).Fetch(context.Background(), srv.URL, dest, nil)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := readFile(t, dest); got != "movie_title\nHeat\n" {
		t.Errorf("cached content = %q", got)
	}
	if !result.Changed || result.NotModified {
		t.Errorf("result = %+v, want Changed", result)
	}
	if result.Info.ETag != `"v1"` || result.Info.Size != 17 || result.Info.SHA256 == "" {
		t.Errorf("info = %+v", result.Info)
	}
}

func TestFetchNotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		io.WriteString(w, "fresh")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(dest, []byte("cached"), 0644); err != nil {
		t.Fatal(err)
	}
	prev := &store.SourceInfo{URL: srv.URL, Path: dest, ETag: `"v1"`, Rows: 12}

	result, err := testFetcher(3).Fetch(context.Background(), srv.URL, dest, prev)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !result.NotModified {
		t.Errorf("result = %+v, want NotModified", result)
	}
	if result.Info.Rows != 12 {
		t.Errorf("Rows = %d, want 12 carried over", result.Info.Rows)
	}
	if got := readFile(t, dest); got != "cached" {
		t.Errorf("cached content replaced: %q", got)
	}
}

func TestFetchIgnoresStaleMetadataWithoutFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" {
			t.Errorf("conditional request sent without a cached file")
		}
		io.WriteString(w, "fresh")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data.csv")
	prev := &store.SourceInfo{URL: srv.URL, Path: dest, ETag: `"v1"`}
	if _, err := testFetcher(1).Fetch(context.Background(), srv.URL, dest, prev); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := readFile(t, dest); got != "fresh" {
		t.Errorf("content = %q", got)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data.csv")
	if _, err := testFetcher(3).Fetch(context.Background(), srv.URL, dest, nil); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestFetchLogsOnlyRealRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	f := NewFetcher(Options{
		Attempts: 3,
		Delay:    time.Millisecond,
		Logger:   log.New(&buf, "", 0),
	})
	if _, err := f.Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "data.csv"), nil); err == nil {
		t.Fatal("Fetch() succeeded, want error")
	}
	if got := strings.Count(buf.String(), "retrying"); got != 2 {
		t.Errorf("logged %d retries, want 2:\n%s", got, buf.String())
	}
}

func TestFetchGivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(dest, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := testFetcher(2).Fetch(context.Background(), srv.URL, dest, nil)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Fetch() error = %v, want ErrSourceUnavailable", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
	if got := readFile(t, dest); got != "old" {
		t.Errorf("cached file changed after failed fetch: %q", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in cache dir: %v", entries)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testFetcher(3).Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "data.csv"), nil)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Fetch() error = %v, want ErrSourceUnavailable", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://drive.google.com/uc?id=x": true,
		"http://localhost:8080/data.csv":   true,
		"data.csv":                         false,
		"/tmp/data.csv":                    false,
		"file:///tmp/data.csv":             false,
	}
	for in, want := range tests {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
	if got := DriveURL(DefaultFileID); got != "https://drive.google.com/uc?export=download&id="+DefaultFileID {
		t.Errorf("DriveURL() = %q", got)
	}
}

func TestCachePath(t *testing.T) {
	a := CachePath("cache", "https://example.com/a/ratings.csv")
	b := CachePath("cache", "https://example.com/b/ratings.csv")
	if a == b {
		t.Errorf("distinct sources share cache path %q", a)
	}
	if filepath.Dir(a) != "cache" || filepath.Ext(a) != ".csv" {
		t.Errorf("CachePath() = %q", a)
	}
}
