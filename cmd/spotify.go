package main

import (
	"context"
	"fmt"

	"github.com/dmtroyer/playferry/internal/shared"
	"github.com/urfave/cli/v3"
)

// testPrintCap bounds the track listing in the connectivity tests.
const testPrintCap = 10

// TestSpotify fetches a playlist and prints its first tracks.
func (r *Runner) TestSpotify(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")
	if ref == "" {
		return fmt.Errorf("%w: playlist URL or ID is required", shared.ErrMissingArgument)
	}

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client not initialized, check credentials", shared.ErrServiceUnavailable)
	}

	if err := r.spotify.Authenticate(ctx); err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}

	meta, err := r.spotify.PlaylistMetadata(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	tracks, err := r.spotify.PlaylistTracks(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to fetch tracks: %w", err)
	}

	r.writePlain("✓ Connected to Spotify\n")
	r.writePlain("Playlist: %s (%d tracks)\n\n", meta.Name, len(tracks))

	shown := tracks
	if len(shown) > testPrintCap {
		shown = shown[:testPrintCap]
	}
	for i, t := range shown {
		r.writePlain("  %d. %s\n", i+1, t.Label())
	}
	if extra := len(tracks) - testPrintCap; extra > 0 {
		r.writePlain("  ... and %d more\n", extra)
	}

	return nil
}

// SpotifyPlaylists lists the user's playlists.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client not initialized, check credentials", shared.ErrServiceUnavailable)
	}

	if err := r.spotify.Authenticate(ctx); err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}

	playlists, err := r.spotify.UserPlaylists(ctx, cmd.String("user"))
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Spotify Playlists (%d)", len(playlists)))
	for _, pl := range playlists {
		r.writePlain("%s (%d tracks)", pl.Name, pl.TrackCount)
		if pl.Owner != "" {
			r.writePlain(" — %s", pl.Owner)
		}
		r.writePlain("\n    %s\n", pl.ID)
	}

	return nil
}

// SpotifyLiked lists the user's liked songs. Requires the authorized session.
func (r *Runner) SpotifyLiked(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client not initialized, check credentials", shared.ErrServiceUnavailable)
	}

	if err := r.spotify.Authenticate(ctx); err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}

	tracks, err := r.spotify.LikedTracks(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list liked songs: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Liked Songs (%d)", len(tracks)))
	for i, t := range tracks {
		r.writePlain("  %d. %s\n", i+1, t.Label())
	}

	return nil
}
