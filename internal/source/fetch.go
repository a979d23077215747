// Package source downloads the ratings file into a local cache.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"

	"github.com/ademuri/movie-stats/internal/store"
)

var ErrSourceUnavailable = errors.New("source unavailable")

// DefaultFileID is the Google Drive file holding the movie ratings.
const DefaultFileID = "1QPIs-M-0Mc44hu_vGW5PuB-TCx7Ro7ca"

// DriveURL returns the direct download URL of a Google Drive file.
func DriveURL(fileID string) string {
	return "https://drive.google.com/uc?export=download&id=" + url.QueryEscape(fileID)
}

// IsRemote reports whether src is an http(s) URL rather than a local path.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// statusError is returned for non-2xx, non-304 responses.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

type Options struct {
	// Attempts is the total number of tries, including the first.
	Attempts uint
	// Delay is the base of the exponential backoff between attempts.
	Delay   time.Duration
	Timeout time.Duration
	// Limit paces attempts; zero disables pacing.
	Limit  rate.Limit
	Client *http.Client
	Logger *log.Logger
}

type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
	logger   *log.Logger
}

func NewFetcher(opts Options) *Fetcher {
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.Delay <= 0 {
		opts.Delay = 500 * time.Millisecond
	}
	if opts.Client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = time.Minute
		}
		opts.Client = &http.Client{Timeout: timeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	limit := opts.Limit
	if limit == 0 {
		limit = rate.Inf
	}
	return &Fetcher{
		client:   opts.Client,
		limiter:  rate.NewLimiter(limit, 1),
		attempts: opts.Attempts,
		delay:    opts.Delay,
		logger:   opts.Logger,
	}
}

// Result describes the outcome of a fetch.
type Result struct {
	Info store.SourceInfo
	// NotModified is set when the server confirmed the cached copy.
	NotModified bool
	// Changed is set when the cached file was replaced with different content.
	Changed bool
}

// Fetch downloads src into dest. When prev describes a cached copy that still
// exists, the request is conditional and a 304 keeps that copy. New content is
// written to a temporary file next to dest and renamed over it, so readers
// never observe a partial file. Failures wrap ErrSourceUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, src, dest string, prev *store.SourceInfo) (Result, error) {
	if prev != nil && (prev.Path != dest || !fileExists(prev.Path)) {
		prev = nil
	}

	var result Result
	err := retry.Do(
		func() error {
			if err := f.limiter.Wait(ctx); err != nil {
				return err
			}
			var err error
			result, err = f.fetchOnce(ctx, src, dest, prev)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			// retry-go also calls this after the final attempt.
			if n+1 >= f.attempts {
				return
			}
			f.logger.Printf("fetching %s failed (attempt %d of %d), retrying: %v", src, n+1, f.attempts, err)
		}),
	)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src, err)
	}
	return result, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (f *Fetcher) fetchOnce(ctx context.Context, src, dest string, prev *store.SourceInfo) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "movie-stats/1.0")
	if prev != nil {
		if prev.ETag != "" {
			req.Header.Set("If-None-Match", prev.ETag)
		}
		if prev.LastModified != "" {
			req.Header.Set("If-Modified-Since", prev.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	now := time.Now()
	if resp.StatusCode == http.StatusNotModified && prev != nil {
		info := *prev
		info.FetchedAt = now
		return Result{Info: info, NotModified: true}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return Result{}, &statusError{code: resp.StatusCode}
	}

	sum, size, err := writeAtomic(dest, resp.Body)
	if err != nil {
		return Result{}, err
	}

	info := store.SourceInfo{
		URL:          src,
		Path:         dest,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		SHA256:       sum,
		Size:         size,
		FetchedAt:    now,
	}
	changed := prev == nil || prev.SHA256 != sum
	if !changed {
		info.Rows = prev.Rows
	}
	return Result{Info: info, Changed: changed}, nil
}

// writeAtomic streams r into a temporary file in dest's directory, syncs it and
// renames it over dest. It returns the hex SHA-256 and size of the content.
func writeAtomic(dest string, r io.Reader) (string, int64, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		cleanup()
		return "", 0, fmt.Errorf("downloading: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", 0, fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CachePath returns the cache file used for src inside dir. Distinct sources
// get distinct files.
func CachePath(dir, src string) string {
	sum := sha256.Sum256([]byte(src))
	name := "data.csv"
	if u, err := url.Parse(src); err == nil {
		if base := filepath.Base(u.Path); base != "." && base != "/" && strings.HasSuffix(base, ".csv") {
			name = base
		}
	}
	return filepath.Join(dir, hex.EncodeToString(sum[:6])+"-"+name)
}
