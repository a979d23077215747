package source

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ademuri/movie-stats/internal/store"
)

// Cache keeps local copies of remote sources and records their metadata.
type Cache struct {
	fetcher *Fetcher
	store   *store.Store
	dir     string
	logger  *log.Logger
	// MaxAge skips revalidation of copies fetched more recently than this.
	// Zero always revalidates.
	MaxAge time.Duration
}

func NewCache(fetcher *Fetcher, st *store.Store, dir string, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{fetcher: fetcher, store: st, dir: dir, logger: logger}
}

// Get returns a local path holding the content of src. Local paths are
// returned unchanged. Remote sources are fetched, or revalidated against the
// cached copy; refresh forces a full download.
func (c *Cache) Get(ctx context.Context, src string, refresh bool) (string, error) {
	if !IsRemote(src) {
		return src, nil
	}
	dest := CachePath(c.dir, src)

	var prev *store.SourceInfo
	info, ok, err := c.store.GetSource(src)
	if err != nil {
		return "", err
	}
	if ok && !refresh {
		prev = &info
		if c.MaxAge > 0 && time.Since(info.FetchedAt) < c.MaxAge && info.Path == dest && fileExists(dest) {
			c.logger.Printf("using cached copy of %s from %s", src, info.FetchedAt.Format("2006-01-02 15:04"))
			return dest, nil
		}
	}

	result, err := c.fetcher.Fetch(ctx, src, dest, prev)
	if err != nil {
		return "", err
	}
	switch {
	case result.NotModified:
		c.logger.Printf("cached copy of %s is current", src)
	case result.Changed:
		c.logger.Printf("downloaded %s (%d bytes)", src, result.Info.Size)
	default:
		c.logger.Printf("downloaded %s, content unchanged", src)
	}

	if err := c.store.SaveSource(result.Info); err != nil {
		return "", fmt.Errorf("recording fetch: %w", err)
	}
	return dest, nil
}

// RecordRows stores the number of rows loaded from a remote source.
func (c *Cache) RecordRows(src string, rows int) error {
	if !IsRemote(src) {
		return nil
	}
	return c.store.SetRows(src, rows)
}
