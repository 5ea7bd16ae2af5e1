// Package tasks orchestrates playlist transfers between a source and
// destination catalog.
//
// The [PlaylistEngine] drives the pipeline: fetch the source tracks, match
// each against the destination catalog, then (unless running dry) create
// and populate the destination playlist. Callers observe progress through
// a [ProgressFunc] and read the outcome from [TransferResult].
package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dmtroyer/playferry/internal/services"
	"github.com/dmtroyer/playferry/internal/shared"
)

// playlistDescription is stamped on every playlist the engine creates.
const playlistDescription = "Imported from Spotify"

// Phase identifies which stage of the transfer a progress update belongs to.
type Phase int

const (
	PhaseFetchSource Phase = iota
	PhaseSearchTracks
	PhaseCreatePlaylist
)

func (p Phase) String() string {
	switch p {
	case PhaseFetchSource:
		return "fetch"
	case PhaseSearchTracks:
		return "search"
	case PhaseCreatePlaylist:
		return "create"
	default:
		return "unknown"
	}
}

// ProgressUpdate reports one unit of transfer progress. During the search
// phase Step counts attempted tracks and Message carries the track label.
type ProgressUpdate struct {
	Phase   Phase
	Step    int
	Total   int
	Message string
}

// ProgressFunc receives progress updates during a transfer. Implementations
// must not block; updates are delivered synchronously.
type ProgressFunc func(ProgressUpdate)

// SearchCacher caches destination search results keyed by artist and title.
//
// Implementations return ok=false on miss; Put failures are logged and
// otherwise ignored so a broken cache never fails a transfer.
type SearchCacher interface {
	Get(artist, title string) (videoID string, ok bool)
	Put(artist, title string, result services.SearchResult) error
}

// TransferOptions adjust a single transfer run.
type TransferOptions struct {
	// DryRun stops after matching; no playlist is created or modified.
	DryRun bool
	// IsolateSearchFailures treats per-track search errors as not-found
	// instead of aborting the whole transfer.
	IsolateSearchFailures bool
	Progress              ProgressFunc
}

// TransferResult is the outcome of one transfer run.
//
// Matched + NotFound always equals TotalTracks, and MatchedIDs holds
// exactly Matched entries in source order.
type TransferResult struct {
	PlaylistName   string           `json:"playlist_name"`
	TotalTracks    int              `json:"total_tracks"`
	Matched        int              `json:"matched"`
	NotFound       int              `json:"not_found"`
	NotFoundTracks []services.Track `json:"not_found_tracks"`
	MatchedIDs     []string         `json:"video_ids"`
	DryRun         bool             `json:"dry_run"`
	PlaylistID     string           `json:"playlist_id,omitempty"`
	Err            string           `json:"error,omitempty"`
}

// PlaylistEngine transfers playlists from a source to a destination catalog.
type PlaylistEngine struct {
	source services.SourceClient
	dest   services.DestinationClient
	cache  SearchCacher
	logger *log.Logger
}

// NewPlaylistEngine wires a transfer engine. A nil logger gets the default.
func NewPlaylistEngine(source services.SourceClient, dest services.DestinationClient, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{source: source, dest: dest, logger: logger}
}

// UseCache attaches a search-result cache. Transfers work without one.
func (e *PlaylistEngine) UseCache(c SearchCacher) {
	e.cache = c
}

// Transfer runs the full pipeline for the playlist at ref.
//
// Fetch failures and (by default) search failures abort with an error.
// Failures while creating or populating the destination playlist are
// recorded in the result's Err field instead, so the match report survives
// a failed mutation.
func (e *PlaylistEngine) Transfer(ctx context.Context, ref string, opts TransferOptions) (*TransferResult, error) {
	notify := opts.Progress
	if notify == nil {
		notify = func(ProgressUpdate) {}
	}

	notify(ProgressUpdate{Phase: PhaseFetchSource, Message: "Fetching playlist from " + e.source.Name()})

	meta, err := e.source.PlaylistMetadata(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist metadata: %w", err)
	}

	tracks, err := e.source.PlaylistTracks(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}

	e.logger.Info("fetched playlist", "name", meta.Name, "tracks", len(tracks))

	result := &TransferResult{
		PlaylistName:   meta.Name,
		TotalTracks:    len(tracks),
		NotFoundTracks: []services.Track{},
		MatchedIDs:     []string{},
		DryRun:         opts.DryRun,
	}

	for i, track := range tracks {
		videoID, err := e.matchTrack(ctx, track)
		if err != nil {
			if !opts.IsolateSearchFailures {
				return nil, err
			}
			e.logger.Warn("search failed, treating as not found", "track", track.Label(), "error", err)
			videoID = ""
		}

		if videoID != "" {
			result.Matched++
			result.MatchedIDs = append(result.MatchedIDs, videoID)
		} else {
			result.NotFound++
			result.NotFoundTracks = append(result.NotFoundTracks, track)
		}

		notify(ProgressUpdate{
			Phase:   PhaseSearchTracks,
			Step:    i + 1,
			Total:   len(tracks),
			Message: track.Label(),
		})
	}

	if opts.DryRun {
		return result, nil
	}

	if !e.dest.Authenticated() {
		result.Err = fmt.Sprintf("%s authentication required to create playlist", e.dest.Name())
		return result, nil
	}

	notify(ProgressUpdate{Phase: PhaseCreatePlaylist, Message: "Creating playlist on " + e.dest.Name()})

	playlistID, err := e.dest.CreatePlaylist(ctx, meta.Name, playlistDescription)
	if err != nil {
		result.Err = err.Error()
		return result, nil
	}
	result.PlaylistID = playlistID

	if len(result.MatchedIDs) > 0 {
		ok, err := e.dest.AddPlaylistItems(ctx, playlistID, result.MatchedIDs)
		if err != nil {
			result.Err = err.Error()
			return result, nil
		}
		if !ok {
			result.Err = "destination rejected one or more playlist items"
			return result, nil
		}
	}

	e.logger.Info("transfer complete", "playlist_id", playlistID, "matched", result.Matched, "not_found", result.NotFound)
	return result, nil
}

// matchTrack resolves a track to a destination video id, consulting the
// cache before searching. An empty id means no match.
func (e *PlaylistEngine) matchTrack(ctx context.Context, track services.Track) (string, error) {
	if e.cache != nil {
		if id, ok := e.cache.Get(track.Artist, track.Name); ok {
			return id, nil
		}
	}

	match, err := e.dest.SearchSong(ctx, track.Artist, track.Name)
	if err != nil {
		return "", err
	}
	if match == nil {
		return "", nil
	}

	if e.cache != nil {
		if err := e.cache.Put(track.Artist, track.Name, *match); err != nil {
			e.logger.Warn("failed to cache search result", "track", track.Label(), "error", err)
		}
	}

	return match.VideoID, nil
}

// WriteNotFoundLog writes the unmatched tracks to path, one "artist - name"
// line per track under a comment header. An empty slice still writes the
// header so the file reflects the latest run.
func WriteNotFoundLog(tracks []services.Track, path string) error {
	var b strings.Builder
	b.WriteString("# Tracks not found on YouTube Music\n\n")
	for _, t := range tracks {
		b.WriteString(t.Label())
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write not-found log: %w", err)
	}
	return nil
}
