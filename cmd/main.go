package main

import (
	"context"
	"os"

	"github.com/dmtroyer/playferry/internal/services"
	"github.com/dmtroyer/playferry/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	godotenv.Load()

	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}
	config.Resolve()

	var spotify services.SourceClient
	creds := services.SpotifyCredentials{
		ClientID:     config.Credentials.Spotify.ClientID,
		ClientSecret: config.Credentials.Spotify.ClientSecret,
		UseOAuth:     config.Credentials.Spotify.UseOAuth,
		RefreshToken: config.Credentials.Spotify.RefreshToken,
	}
	if client, err := services.NewSpotifyClient(creds, nil); err == nil {
		spotify = client
	} else {
		logger.Debug("spotify client not configured", "error", err)
	}

	ytmusic := services.NewYTMusicClient(
		config.Credentials.YTMusic.ProxyURL,
		config.Credentials.YTMusic.OAuthJSON,
		nil,
		logger,
	)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotify,
		YTMusic: ytmusic,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "playferry",
		Usage:    "Transfer Spotify playlists to YouTube Music",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
