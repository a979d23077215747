package store

import (
	"fmt"
)

// SaveSource records the metadata of a completed fetch, replacing any
// previous entry for the same URL.
func (s *Store) SaveSource(info SourceInfo) error {
	_, err := s.db.Exec(`
		INSERT INTO Source (url, path, etag, last_modified, sha256, size, row_count, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			path = excluded.path,
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			sha256 = excluded.sha256,
			size = excluded.size,
			row_count = excluded.row_count,
			fetched_at = excluded.fetched_at
	`, info.URL, info.Path, info.ETag, info.LastModified, info.SHA256, info.Size, info.Rows, info.FetchedAt)
	if err != nil {
		return fmt.Errorf("saving source %q: %w", info.URL, err)
	}
	return nil
}

// SetRows records how many rows were loaded from the cached copy of url.
func (s *Store) SetRows(url string, rows int) error {
	_, err := s.db.Exec("UPDATE Source SET row_count = ? WHERE url = ?", rows, url)
	if err != nil {
		return fmt.Errorf("updating rows for %q: %w", url, err)
	}
	return nil
}

func (s *Store) DeleteSource(url string) error {
	_, err := s.db.Exec("DELETE FROM Source WHERE url = ?", url)
	if err != nil {
		return fmt.Errorf("deleting source %q: %w", url, err)
	}
	return nil
}
