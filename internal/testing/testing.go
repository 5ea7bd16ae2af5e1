// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/dmtroyer/playferry/internal/services"
)

// MockSource is a configurable test double for [services.SourceClient].
//
// Unset function fields fall back to benign defaults.
type MockSource struct {
	AuthenticateFunc     func(ctx context.Context) error
	PlaylistMetadataFunc func(ctx context.Context, ref string) (*services.PlaylistInfo, error)
	PlaylistTracksFunc   func(ctx context.Context, ref string) ([]services.Track, error)
	LikedTracksFunc      func(ctx context.Context, limit int) ([]services.Track, error)
	UserPlaylistsFunc    func(ctx context.Context, userID string) ([]services.PlaylistInfo, error)
}

func (m *MockSource) Authenticate(ctx context.Context) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx)
	}
	return nil
}

func (m *MockSource) PlaylistMetadata(ctx context.Context, ref string) (*services.PlaylistInfo, error) {
	if m.PlaylistMetadataFunc != nil {
		return m.PlaylistMetadataFunc(ctx, ref)
	}
	return &services.PlaylistInfo{ID: ref, Name: "Mock Playlist"}, nil
}

func (m *MockSource) PlaylistTracks(ctx context.Context, ref string) ([]services.Track, error) {
	if m.PlaylistTracksFunc != nil {
		return m.PlaylistTracksFunc(ctx, ref)
	}
	return []services.Track{}, nil
}

func (m *MockSource) LikedTracks(ctx context.Context, limit int) ([]services.Track, error) {
	if m.LikedTracksFunc != nil {
		return m.LikedTracksFunc(ctx, limit)
	}
	return []services.Track{}, nil
}

func (m *MockSource) UserPlaylists(ctx context.Context, userID string) ([]services.PlaylistInfo, error) {
	if m.UserPlaylistsFunc != nil {
		return m.UserPlaylistsFunc(ctx, userID)
	}
	return []services.PlaylistInfo{}, nil
}

func (m *MockSource) Name() string { return "mock source" }

// MockDest is a configurable test double for [services.DestinationClient].
type MockDest struct {
	SearchSongFunc       func(ctx context.Context, artist, title string) (*services.SearchResult, error)
	CreatePlaylistFunc   func(ctx context.Context, title, description string) (string, error)
	AddPlaylistItemsFunc func(ctx context.Context, playlistID string, videoIDs []string) (bool, error)
	AuthenticatedFunc    func() bool
}

func (m *MockDest) SearchSong(ctx context.Context, artist, title string) (*services.SearchResult, error) {
	if m.SearchSongFunc != nil {
		return m.SearchSongFunc(ctx, artist, title)
	}
	return nil, nil
}

func (m *MockDest) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, title, description)
	}
	return "MOCKPLAYLIST", nil
}

func (m *MockDest) AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) (bool, error) {
	if m.AddPlaylistItemsFunc != nil {
		return m.AddPlaylistItemsFunc(ctx, playlistID, videoIDs)
	}
	return true, nil
}

func (m *MockDest) Authenticated() bool {
	if m.AuthenticatedFunc != nil {
		return m.AuthenticatedFunc()
	}
	return true
}

func (m *MockDest) Name() string { return "mock destination" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
