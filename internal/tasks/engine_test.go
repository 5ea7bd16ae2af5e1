package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmtroyer/playferry/internal/services"
	internaltest "github.com/dmtroyer/playferry/internal/testing"
)

func roadTripSource() *internaltest.MockSource {
	tracks := []services.Track{
		{Name: "First Song", Artist: "Artist A", Album: "Album 1", Duration: 200},
		{Name: "Second Song", Artist: "Artist B", Album: "Album 2", Duration: 180},
		{Name: "Obscure Song", Artist: "Unknown Artist", Album: "Demo", Duration: 90},
	}

	return &internaltest.MockSource{
		PlaylistMetadataFunc: func(ctx context.Context, ref string) (*services.PlaylistInfo, error) {
			return &services.PlaylistInfo{ID: ref, Name: "Road Trip", TrackCount: len(tracks)}, nil
		},
		PlaylistTracksFunc: func(ctx context.Context, ref string) ([]services.Track, error) {
			return tracks, nil
		},
	}
}

// matchingDest matches every track except "Obscure Song".
func matchingDest() *internaltest.MockDest {
	return &internaltest.MockDest{
		SearchSongFunc: func(ctx context.Context, artist, title string) (*services.SearchResult, error) {
			if title == "Obscure Song" {
				return nil, nil
			}
			videoID := "v1"
			if title == "Second Song" {
				videoID = "v2"
			}
			return &services.SearchResult{VideoID: videoID, Title: title, Artist: artist}, nil
		},
	}
}

type mapCache struct {
	entries map[string]string
	puts    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}}
}

func (c *mapCache) Get(artist, title string) (string, bool) {
	id, ok := c.entries[artist+"|"+title]
	return id, ok
}

func (c *mapCache) Put(artist, title string, result services.SearchResult) error {
	c.puts++
	c.entries[artist+"|"+title] = result.VideoID
	return nil
}

func TestPlaylistEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Full Transfer", func(t *testing.T) {
		var createdTitle, createdDesc string
		var addedIDs []string

		dest := matchingDest()
		dest.CreatePlaylistFunc = func(ctx context.Context, title, description string) (string, error) {
			createdTitle = title
			createdDesc = description
			return "PL123", nil
		}
		dest.AddPlaylistItemsFunc = func(ctx context.Context, playlistID string, videoIDs []string) (bool, error) {
			addedIDs = videoIDs
			return true, nil
		}

		engine := NewPlaylistEngine(roadTripSource(), dest, nil)

		result, err := engine.Transfer(ctx, "abc123", TransferOptions{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.PlaylistName != "Road Trip" {
			t.Errorf("expected playlist name 'Road Trip', got %s", result.PlaylistName)
		}
		if result.TotalTracks != 3 || result.Matched != 2 || result.NotFound != 1 {
			t.Errorf("unexpected counts: total=%d matched=%d notFound=%d",
				result.TotalTracks, result.Matched, result.NotFound)
		}
		if result.PlaylistID != "PL123" {
			t.Errorf("expected playlist id PL123, got %s", result.PlaylistID)
		}
		if createdTitle != "Road Trip" {
			t.Errorf("expected created title 'Road Trip', got %s", createdTitle)
		}
		if createdDesc != "Imported from Spotify" {
			t.Errorf("expected description 'Imported from Spotify', got %s", createdDesc)
		}
		if len(addedIDs) != 2 || addedIDs[0] != "v1" || addedIDs[1] != "v2" {
			t.Errorf("expected [v1 v2] in order, got %v", addedIDs)
		}
		if result.Err != "" {
			t.Errorf("expected no result error, got %s", result.Err)
		}
	})

	t.Run("Count Invariants", func(t *testing.T) {
		engine := NewPlaylistEngine(roadTripSource(), matchingDest(), nil)

		result, err := engine.Transfer(ctx, "abc123", TransferOptions{DryRun: true})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Matched+result.NotFound != result.TotalTracks {
			t.Errorf("matched(%d) + notFound(%d) != total(%d)",
				result.Matched, result.NotFound, result.TotalTracks)
		}
		if len(result.MatchedIDs) != result.Matched {
			t.Errorf("len(MatchedIDs)=%d != Matched=%d", len(result.MatchedIDs), result.Matched)
		}
		if len(result.NotFoundTracks) != result.NotFound {
			t.Errorf("len(NotFoundTracks)=%d != NotFound=%d", len(result.NotFoundTracks), result.NotFound)
		}
	})

	t.Run("Dry Run Never Mutates", func(t *testing.T) {
		dest := matchingDest()
		dest.CreatePlaylistFunc = func(ctx context.Context, title, description string) (string, error) {
			t.Error("CreatePlaylist called during dry run")
			return "", nil
		}
		dest.AddPlaylistItemsFunc = func(ctx context.Context, playlistID string, videoIDs []string) (bool, error) {
			t.Error("AddPlaylistItems called during dry run")
			return false, nil
		}

		engine := NewPlaylistEngine(roadTripSource(), dest, nil)

		result, err := engine.Transfer(ctx, "abc123", TransferOptions{DryRun: true})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.DryRun {
			t.Error("expected DryRun to be set")
		}
		if result.PlaylistID != "" {
			t.Errorf("expected no playlist id, got %s", result.PlaylistID)
		}
	})

	t.Run("Destination Not Authenticated", func(t *testing.T) {
		dest := matchingDest()
		dest.AuthenticatedFunc = func() bool { return false }
		dest.CreatePlaylistFunc = func(ctx context.Context, title, description string) (string, error) {
			t.Error("CreatePlaylist called without authentication")
			return "", nil
		}

		engine := NewPlaylistEngine(roadTripSource(), dest, nil)

		result, err := engine.Transfer(ctx, "abc123", TransferOptions{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(result.Err, "authentication required") {
			t.Errorf("expected auth error in result, got %q", result.Err)
		}
		if result.Matched != 2 {
			t.Errorf("expected match report to survive, got matched=%d", result.Matched)
		}
	})

	t.Run("Fetch Failure Aborts", func(t *testing.T) {
		source := roadTripSource()
		source.PlaylistTracksFunc = func(ctx context.Context, ref string) ([]services.Track, error) {
			return nil, errors.New("network down")
		}

		engine := NewPlaylistEngine(source, matchingDest(), nil)

		if _, err := engine.Transfer(ctx, "abc123", TransferOptions{}); err == nil {
			t.Error("expected error when fetch fails")
		}
	})

	t.Run("Search Failure Propagates By Default", func(t *testing.T) {
		dest := matchingDest()
		dest.SearchSongFunc = func(ctx context.Context, artist, title string) (*services.SearchResult, error) {
			return nil, errors.New("rate limited")
		}

		engine := NewPlaylistEngine(roadTripSource(), dest, nil)

		if _, err := engine.Transfer(ctx, "abc123", TransferOptions{}); err == nil {
			t.Error("expected search error to propagate")
		}
	})

	t.Run("Search Failure Isolated With Option", func(t *testing.T) {
		dest := matchingDest()
		dest.SearchSongFunc = func(ctx context.Context, artist, title string) (*services.SearchResult, error) {
			if title == "Second Song" {
				return nil, errors.New("rate limited")
			}
			return &services.SearchResult{VideoID: "v1"}, nil
		}

		engine := NewPlaylistEngine(roadTripSource(), dest, nil)

		result, err := engine.Transfer(ctx, "abc123", TransferOptions{
			DryRun:                true,
			IsolateSearchFailures: true,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Matched != 2 || result.NotFound != 1 {
			t.Errorf("expected 2 matched / 1 not found, got %d/%d", result.Matched, result.NotFound)
		}
	})

	t.Run("Mutation Errors Captured In Result", func(t *testing.T) {
		t.Run("CreatePlaylist Fails", func(t *testing.T) {
			dest := matchingDest()
			dest.CreatePlaylistFunc = func(ctx context.Context, title, description string) (string, error) {
				return "", errors.New("quota exceeded")
			}

			engine := NewPlaylistEngine(roadTripSource(), dest, nil)

			result, err := engine.Transfer(ctx, "abc123", TransferOptions{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(result.Err, "quota exceeded") {
				t.Errorf("expected quota error in result, got %q", result.Err)
			}
		})

		t.Run("AddPlaylistItems Fails", func(t *testing.T) {
			dest := matchingDest()
			dest.AddPlaylistItemsFunc = func(ctx context.Context, playlistID string, videoIDs []string) (bool, error) {
				return false, errors.New("server error")
			}

			engine := NewPlaylistEngine(roadTripSource(), dest, nil)

			result, err := engine.Transfer(ctx, "abc123", TransferOptions{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(result.Err, "server error") {
				t.Errorf("expected server error in result, got %q", result.Err)
			}
			if result.PlaylistID == "" {
				t.Error("expected playlist id to survive a failed populate")
			}
		})
	})

	t.Run("Progress Updates", func(t *testing.T) {
		engine := NewPlaylistEngine(roadTripSource(), matchingDest(), nil)

		var updates []ProgressUpdate
		_, err := engine.Transfer(ctx, "abc123", TransferOptions{
			DryRun:   true,
			Progress: func(u ProgressUpdate) { updates = append(updates, u) },
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var searchUpdates []ProgressUpdate
		for _, u := range updates {
			if u.Phase == PhaseSearchTracks {
				searchUpdates = append(searchUpdates, u)
			}
		}

		if len(searchUpdates) != 3 {
			t.Fatalf("expected 3 search updates, got %d", len(searchUpdates))
		}
		for i, u := range searchUpdates {
			if u.Step != i+1 || u.Total != 3 {
				t.Errorf("update %d: expected step %d/3, got %d/%d", i, i+1, u.Step, u.Total)
			}
		}
		if searchUpdates[0].Message != "Artist A - First Song" {
			t.Errorf("expected track label in message, got %q", searchUpdates[0].Message)
		}
	})

	t.Run("Uses Cache", func(t *testing.T) {
		cache := newMapCache()
		cache.entries["Artist A|First Song"] = "cached1"

		searches := 0
		dest := matchingDest()
		base := dest.SearchSongFunc
		dest.SearchSongFunc = func(ctx context.Context, artist, title string) (*services.SearchResult, error) {
			searches++
			return base(ctx, artist, title)
		}

		engine := NewPlaylistEngine(roadTripSource(), dest, nil)
		engine.UseCache(cache)

		result, err := engine.Transfer(ctx, "abc123", TransferOptions{DryRun: true})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if searches != 2 {
			t.Errorf("expected 2 searches (1 cache hit), got %d", searches)
		}
		if result.MatchedIDs[0] != "cached1" {
			t.Errorf("expected cached id first, got %v", result.MatchedIDs)
		}
		// only the successful uncached match gets stored
		if cache.puts != 1 {
			t.Errorf("expected 1 cache put, got %d", cache.puts)
		}
	})

	t.Run("Empty Playlist", func(t *testing.T) {
		source := roadTripSource()
		source.PlaylistTracksFunc = func(ctx context.Context, ref string) ([]services.Track, error) {
			return []services.Track{}, nil
		}

		created := false
		dest := matchingDest()
		dest.CreatePlaylistFunc = func(ctx context.Context, title, description string) (string, error) {
			created = true
			return "PLEMPTY", nil
		}
		dest.AddPlaylistItemsFunc = func(ctx context.Context, playlistID string, videoIDs []string) (bool, error) {
			t.Error("AddPlaylistItems called with no matches")
			return false, nil
		}

		engine := NewPlaylistEngine(source, dest, nil)

		result, err := engine.Transfer(ctx, "abc123", TransferOptions{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !created {
			t.Error("expected empty playlist to still be created")
		}
		if result.TotalTracks != 0 || result.PlaylistID != "PLEMPTY" {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

func TestWriteNotFoundLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noresults.txt")

	tracks := []services.Track{
		{Name: "First Song", Artist: "Artist A"},
		{Name: "Second Song", Artist: "Artist B"},
	}

	if err := WriteNotFoundLog(tracks, path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}

	want := "# Tracks not found on YouTube Music\n\nArtist A - First Song\nArtist B - Second Song\n"
	if string(data) != want {
		t.Errorf("unexpected log contents:\n%q\nwant:\n%q", string(data), want)
	}

	t.Run("Empty List Writes Header", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.txt")
		if err := WriteNotFoundLog(nil, empty); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		data, err := os.ReadFile(empty)
		if err != nil {
			t.Fatalf("failed to read log: %v", err)
		}
		if string(data) != "# Tracks not found on YouTube Music\n\n" {
			t.Errorf("unexpected contents: %q", string(data))
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		err := WriteNotFoundLog(tracks, filepath.Join(dir, "missing", "sub", "log.txt"))
		if err == nil {
			t.Error("expected error for unwritable path")
		}
	})
}
