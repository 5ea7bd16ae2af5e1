package main

import (
	"context"
	"fmt"

	"github.com/dmtroyer/playferry/internal/shared"
	"github.com/urfave/cli/v3"
)

// TestYTMusic searches YouTube Music for a track and prints the top hit.
func (r *Runner) TestYTMusic(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.StringArg("artist")
	title := cmd.StringArg("title")
	if artist == "" || title == "" {
		return fmt.Errorf("%w: artist and title are required", shared.ErrMissingArgument)
	}

	result, err := r.ytmusic.SearchSong(ctx, artist, title)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	r.writePlain("✓ Connected to YouTube Music\n")

	if result == nil {
		r.writePlain("No match for %s - %s\n", artist, title)
		return nil
	}

	r.writePlain("Top hit: %s - %s", result.Artist, result.Title)
	if result.Album != "" {
		r.writePlain(" (%s)", result.Album)
	}
	if result.Duration != "" {
		r.writePlain(" [%s]", result.Duration)
	}
	r.writePlain("\nhttps://music.youtube.com/watch?v=%s\n", result.VideoID)

	if r.ytmusic.Authenticated() {
		r.writePlain("\nCredentials: oauth.json found, playlist creation available\n")
	} else {
		r.writePlain("\nCredentials: no oauth.json found, transfers limited to --dry-run\n")
	}

	return nil
}
