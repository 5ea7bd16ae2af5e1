// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// createCommand transfers a Spotify playlist to YouTube Music
func createCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Transfer a Spotify playlist to YouTube Music",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Match tracks without creating a playlist",
			},
			&cli.BoolFlag{
				Name:  "no-log",
				Usage: "Skip writing the not-found log file",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Path for the not-found log file",
			},
			&cli.BoolFlag{
				Name:  "isolate-failures",
				Usage: "Treat per-track search errors as not found instead of aborting",
			},
		},
		Action: r.Create,
	}
}

// testCommand verifies connectivity against each service
func testCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "Verify service connectivity",
		Commands: []*cli.Command{
			{
				Name:  "spotify",
				Usage: "Fetch a playlist from Spotify and print the first tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Action: r.TestSpotify,
			},
			{
				Name:  "ytmusic",
				Usage: "Search YouTube Music for a track and print the top hit",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "artist"},
					&cli.StringArg{Name: "title"},
				},
				Action: r.TestYTMusic,
			},
		},
	}
}

// spotifyCommand handles Spotify library operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify library operations",
		Commands: []*cli.Command{
			{
				Name:  "playlists",
				Usage: "List Spotify playlists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "Spotify user ID (defaults to the authenticated user)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyPlaylists,
			},
			{
				Name:  "liked",
				Usage: "List liked songs (requires OAuth credentials)",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return (0 for all)",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyLiked,
			},
		},
	}
}

// cacheCommand handles the local search-result cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local search-result cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count and age range",
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Clear all cached search results",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles first-run initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the cache database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a config.toml from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the cache database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand launches the interactive terminal interface
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive playlist transfer",
		Action: r.TUI,
	}
}
