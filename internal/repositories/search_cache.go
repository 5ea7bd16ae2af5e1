package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmtroyer/playferry/internal/services"
	"github.com/dmtroyer/playferry/internal/shared"
)

// SearchCacheRepository persists destination search results.
//
// Implements tasks.SearchCacher. Rows are keyed by the normalized
// "title|artist" key, so lookups survive case and spacing differences
// between runs. Duplicate puts are silently ignored.
type SearchCacheRepository struct {
	db *sql.DB
}

// CacheStats summarizes the cache contents for the CLI.
type CacheStats struct {
	Entries int    `json:"entries"`
	Oldest  string `json:"oldest,omitempty"`
	Newest  string `json:"newest,omitempty"`
}

// NewSearchCacheRepository creates a new SearchCacheRepository with the given database connection
func NewSearchCacheRepository(db *sql.DB) *SearchCacheRepository {
	return &SearchCacheRepository{db: db}
}

// Get looks up a cached video id for an artist/title pair, excluding
// soft-deleted rows. ok is false on miss.
func (r *SearchCacheRepository) Get(artist, title string) (string, bool) {
	query := `
		SELECT video_id
		FROM search_cache
		WHERE track_key = ? AND deleted_at IS NULL
	`

	var videoID string
	err := r.db.QueryRow(query, shared.NormalizeTrackKey(title, artist)).Scan(&videoID)
	if err != nil {
		return "", false
	}

	return videoID, true
}

// Put stores a search result with a generated id and sequence.
// Returns nil when the key is already cached (deduplication).
func (r *SearchCacheRepository) Put(artist, title string, result services.SearchResult) error {
	key := shared.NormalizeTrackKey(title, artist)

	if _, ok := r.Get(artist, title); ok {
		return nil
	}

	sequence, err := NextSequence(r.db, "search_cache")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO search_cache (id, sequence, track_key, artist, title, video_id, result_title, result_artist, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		shared.GenerateID(),
		sequence,
		key,
		artist,
		title,
		result.VideoID,
		result.Title,
		result.Artist,
		now,
		now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache search result: %w", err)
	}

	return nil
}

// Stats reports entry count and age range of live cache rows.
func (r *SearchCacheRepository) Stats() (*CacheStats, error) {
	stats := &CacheStats{}

	err := r.db.QueryRow(`SELECT COUNT(*) FROM search_cache WHERE deleted_at IS NULL`).Scan(&stats.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to count cache entries: %w", err)
	}

	if stats.Entries == 0 {
		return stats, nil
	}

	// MIN/MAX are expression columns, so the driver hands back strings.
	var oldest, newest string
	err = r.db.QueryRow(`
		SELECT MIN(created_at), MAX(created_at)
		FROM search_cache
		WHERE deleted_at IS NULL
	`).Scan(&oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache age range: %w", err)
	}

	stats.Oldest = oldest
	stats.Newest = newest
	return stats, nil
}

// Clear soft-deletes all live cache rows and returns how many were cleared.
func (r *SearchCacheRepository) Clear() (int, error) {
	res, err := r.db.Exec(
		`UPDATE search_cache SET deleted_at = ? WHERE deleted_at IS NULL`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared rows: %w", err)
	}

	return int(n), nil
}
