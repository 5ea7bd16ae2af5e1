package services

import (
	"context"
	"net/http"
	"time"
)

// defaultHTTPTimeout bounds every catalog round-trip when the caller does
// not inject its own client.
const defaultHTTPTimeout = 30 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// SourceClient reads playlists and tracks from the source catalog.
type SourceClient interface {
	// Authenticate establishes the client's session. Must be called before
	// any fetch operation.
	Authenticate(ctx context.Context) error

	// PlaylistMetadata resolves a playlist reference (URL, URI or bare id)
	// to its metadata.
	PlaylistMetadata(ctx context.Context, ref string) (*PlaylistInfo, error)

	// PlaylistTracks returns every available track of a playlist in
	// playlist order. Unavailable placeholder entries are skipped.
	PlaylistTracks(ctx context.Context, ref string) ([]Track, error)

	// LikedTracks returns the user's saved tracks, up to limit when
	// limit > 0. Requires an authorized session.
	LikedTracks(ctx context.Context, limit int) ([]Track, error)

	// UserPlaylists lists playlists owned by userID, or by the current
	// user when userID is empty.
	UserPlaylists(ctx context.Context, userID string) ([]PlaylistInfo, error)

	// Name returns the catalog name (e.g. "Spotify")
	Name() string
}

// DestinationClient searches and mutates the destination catalog.
type DestinationClient interface {
	// SearchSong returns the best-effort top hit for artist + title, or nil
	// when the catalog has no results.
	SearchSong(ctx context.Context, artist, title string) (*SearchResult, error)

	// CreatePlaylist creates a private playlist and returns its id.
	CreatePlaylist(ctx context.Context, title, description string) (string, error)

	// AddPlaylistItems adds items to a playlist, de-duplicating ids while
	// preserving first-occurrence order. Empty input is a no-op success.
	AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) (bool, error)

	// Authenticated reports whether a stored credential bundle is available
	// for mutation calls.
	Authenticated() bool

	// Name returns the catalog name (e.g. "YouTube Music")
	Name() string
}

// Track represents a source catalog track. Immutable once built.
type Track struct {
	Name     string   `json:"name"`
	Artist   string   `json:"artist"`  // primary (first credited) artist
	Artists  []string `json:"artists"` // all credited artists, in credit order
	Album    string   `json:"album"`
	Duration int      `json:"duration_s"` // whole seconds, truncated
}

// Label formats a track as "artist - name" for progress lines and the not-found log.
func (t Track) Label() string {
	return t.Artist + " - " + t.Name
}

// SearchResult represents a destination catalog search hit.
type SearchResult struct {
	VideoID  string   `json:"videoId"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Artists  []string `json:"artists"`
	Album    string   `json:"album"`
	Duration string   `json:"duration"` // presentational, e.g. "3:45"
}

// PlaylistInfo represents playlist metadata from either catalog.
type PlaylistInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	TrackCount int    `json:"track_count"`
	URL        string `json:"url,omitempty"`
}
