package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SourceInfo describes the cached copy of one remote dataset.
type SourceInfo struct {
	URL          string
	Path         string
	ETag         string
	LastModified string
	SHA256       string
	Size         int64
	Rows         int
	FetchedAt    time.Time
}

const sourceColumns = "url, path, etag, last_modified, sha256, size, row_count, fetched_at"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row scanner) (SourceInfo, error) {
	var info SourceInfo
	var fetchedAt sql.NullTime
	err := row.Scan(&info.URL, &info.Path, &info.ETag, &info.LastModified, &info.SHA256, &info.Size, &info.Rows, &fetchedAt)
	if err != nil {
		return SourceInfo{}, err
	}
	if fetchedAt.Valid {
		info.FetchedAt = fetchedAt.Time
	}
	return info, nil
}

// GetSource returns the metadata recorded for url. ok is false if the source
// has never been fetched.
func (s *Store) GetSource(url string) (info SourceInfo, ok bool, err error) {
	row := s.db.QueryRow("SELECT "+sourceColumns+" FROM Source WHERE url = ?", url)
	info, err = scanSource(row)
	if err == sql.ErrNoRows {
		return SourceInfo{}, false, nil
	}
	if err != nil {
		return SourceInfo{}, false, fmt.Errorf("getting source %q: %w", url, err)
	}
	return info, true, nil
}

// ListSources returns every cached source, most recently fetched first.
func (s *Store) ListSources() ([]SourceInfo, error) {
	rows, err := s.db.Query("SELECT " + sourceColumns + " FROM Source ORDER BY fetched_at DESC")
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceInfo
	for rows.Next() {
		info, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, info)
	}
	return sources, rows.Err()
}
