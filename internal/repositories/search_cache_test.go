package repositories

import (
	"database/sql"
	"testing"

	"github.com/dmtroyer/playferry/internal/services"
	"github.com/dmtroyer/playferry/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

func newTestRepo(t *testing.T) *SearchCacheRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSearchCacheRepository(db)
}

func TestSearchCacheRepository(t *testing.T) {
	result := services.SearchResult{VideoID: "vid1", Title: "Song", Artist: "Artist"}

	t.Run("Put And Get", func(t *testing.T) {
		repo := newTestRepo(t)

		if err := repo.Put("Artist", "Song", result); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		id, ok := repo.Get("Artist", "Song")
		if !ok {
			t.Fatal("expected cache hit")
		}
		if id != "vid1" {
			t.Errorf("expected vid1, got %s", id)
		}
	})

	t.Run("Key Normalization", func(t *testing.T) {
		repo := newTestRepo(t)

		if err := repo.Put("Artist", "Song Title", result); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, ok := repo.Get("ARTIST", "  song   TITLE "); !ok {
			t.Error("expected hit across case and spacing differences")
		}
	})

	t.Run("Miss", func(t *testing.T) {
		repo := newTestRepo(t)

		if _, ok := repo.Get("Nobody", "Nothing"); ok {
			t.Error("expected cache miss")
		}
	})

	t.Run("Duplicate Put Ignored", func(t *testing.T) {
		repo := newTestRepo(t)

		if err := repo.Put("Artist", "Song", result); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		other := services.SearchResult{VideoID: "vid2", Title: "Song", Artist: "Artist"}
		if err := repo.Put("Artist", "Song", other); err != nil {
			t.Fatalf("expected duplicate put to be ignored, got %v", err)
		}

		// first write wins
		if id, _ := repo.Get("Artist", "Song"); id != "vid1" {
			t.Errorf("expected vid1 to survive, got %s", id)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		repo := newTestRepo(t)

		stats, err := repo.Stats()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stats.Entries != 0 {
			t.Errorf("expected empty cache, got %d entries", stats.Entries)
		}

		repo.Put("Artist A", "Song One", result)
		repo.Put("Artist B", "Song Two", result)

		stats, err = repo.Stats()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stats.Entries != 2 {
			t.Errorf("expected 2 entries, got %d", stats.Entries)
		}
		if stats.Oldest == "" || stats.Newest == "" {
			t.Error("expected age range to be set")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := newTestRepo(t)

		repo.Put("Artist A", "Song One", result)
		repo.Put("Artist B", "Song Two", result)

		cleared, err := repo.Clear()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cleared != 2 {
			t.Errorf("expected 2 cleared, got %d", cleared)
		}

		if _, ok := repo.Get("Artist A", "Song One"); ok {
			t.Error("expected miss after clear")
		}

		stats, _ := repo.Stats()
		if stats.Entries != 0 {
			t.Errorf("expected 0 entries after clear, got %d", stats.Entries)
		}
	})
}

func TestNextSequence(t *testing.T) {
	repo := newTestRepo(t)

	first, err := NextSequence(repo.db, "search_cache")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := NextSequence(repo.db, "search_cache")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if second != first+1 {
		t.Errorf("expected monotonic sequence, got %d then %d", first, second)
	}
}
