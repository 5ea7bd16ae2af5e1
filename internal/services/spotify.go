// Spotify API implementation of [SourceClient]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/dmtroyer/playferry/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps playlist-track pages at 100 items and library pages at 50.
	playlistPageSize = 100
	libraryPageSize  = 50
)

// playlistRefPattern matches the id segment of playlist URLs
// (open.spotify.com/playlist/<id>) and URIs (spotify:playlist:<id>).
var playlistRefPattern = regexp.MustCompile(`playlist[/:]([a-zA-Z0-9]+)`)

// SpotifyCredentials holds the credentials resolved from environment
// variables or the config file.
type SpotifyCredentials struct {
	ClientID     string
	ClientSecret string
	// UseOAuth selects the authorized session (liked songs, private
	// playlists) over the app-only client-credentials session.
	UseOAuth     bool
	RefreshToken string
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name string `json:"name"`
}

type spotifyTrack struct {
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyPlaylistMeta struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Owner       spotifyOwner `json:"owner"`
}

// spotifyTracksPage is one page of a playlist's track listing. Items with a
// null track are placeholders for removed or unavailable catalog entries.
type spotifyTracksPage struct {
	Items []struct {
		Track *spotifyTrack `json:"track"`
	} `json:"items"`
	Total int `json:"total"`
}

type spotifySavedTracksPage struct {
	Items []struct {
		Track *spotifyTrack `json:"track"`
	} `json:"items"`
	Total int `json:"total"`
}

type spotifyPlaylistsPage struct {
	Items []struct {
		ID    string       `json:"id"`
		Name  string       `json:"name"`
		Owner spotifyOwner `json:"owner"`
		Tracks struct {
			Total int `json:"total"`
		} `json:"tracks"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	} `json:"items"`
	Total int `json:"total"`
}

// SpotifyClient implements [SourceClient] for the Spotify Web API.
type SpotifyClient struct {
	baseURL    string
	creds      SpotifyCredentials
	httpClient *http.Client
	authed     bool
}

// NewSpotifyClient creates a Spotify client from resolved credentials.
//
// Fails when client id or secret is missing; the session itself is built by
// [SpotifyClient.Authenticate]. A nil httpClient gets a 30s-timeout default.
func NewSpotifyClient(creds SpotifyCredentials, httpClient *http.Client) (*SpotifyClient, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf(
			"%w: set %s and %s environment variables, or configure them in config.toml",
			shared.ErrMissingCredentials, shared.EnvSpotifyClientID, shared.EnvSpotifyClientSecret,
		)
	}

	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}

	return &SpotifyClient{
		baseURL:    spotifyBaseURL,
		creds:      creds,
		httpClient: httpClient,
	}, nil
}

func (s *SpotifyClient) Name() string {
	return "Spotify"
}

// Authenticate builds the authenticated HTTP client.
//
// App-only mode uses the client-credentials grant; authorized mode wraps
// the stored refresh token in a refreshing [oauth2] token source.
func (s *SpotifyClient) Authenticate(ctx context.Context) error {
	if s.authed {
		return nil
	}

	// Route oauth2's token requests through our bounded client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	if s.creds.UseOAuth {
		if s.creds.RefreshToken == "" {
			return fmt.Errorf("%w: use_oauth requires a stored refresh_token", shared.ErrMissingCredentials)
		}

		conf := &oauth2.Config{
			ClientID:     s.creds.ClientID,
			ClientSecret: s.creds.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: spotifyTokenURL},
			Scopes:       []string{"user-library-read", "playlist-read-private"},
		}
		token := &oauth2.Token{RefreshToken: s.creds.RefreshToken}
		s.httpClient = oauth2.NewClient(ctx, conf.TokenSource(ctx, token))
	} else {
		conf := &clientcredentials.Config{
			ClientID:     s.creds.ClientID,
			ClientSecret: s.creds.ClientSecret,
			TokenURL:     spotifyTokenURL,
		}
		s.httpClient = conf.Client(ctx)
	}

	s.authed = true
	return nil
}

// ExtractPlaylistID extracts the playlist id from a URL, URI or bare id.
//
// Inputs that don't match the playlist pattern are assumed to already be ids.
func (s *SpotifyClient) ExtractPlaylistID(ref string) string {
	if m := playlistRefPattern.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	return strings.TrimSpace(ref)
}

// doRequest performs an authenticated GET against the Spotify API.
func (s *SpotifyClient) doRequest(ctx context.Context, endpoint string, result any) error {
	if !s.authed {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify returned status 401", shared.ErrTokenExpired)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: spotify returned status 404", shared.ErrPlaylistNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// PlaylistMetadata resolves a playlist reference to its metadata.
func (s *SpotifyClient) PlaylistMetadata(ctx context.Context, ref string) (*PlaylistInfo, error) {
	id := s.ExtractPlaylistID(ref)

	var meta spotifyPlaylistMeta
	endpoint := fmt.Sprintf("/playlists/%s?fields=id,name,description,owner", id)
	if err := s.doRequest(ctx, endpoint, &meta); err != nil {
		return nil, err
	}

	return &PlaylistInfo{
		ID:    meta.ID,
		Name:  meta.Name,
		Owner: meta.Owner.DisplayName,
	}, nil
}

// PlaylistTracks fetches all tracks of a playlist with pagination.
//
// Placeholder items (removed or regionally unavailable tracks) are skipped;
// the returned sequence length is the ground truth track count.
func (s *SpotifyClient) PlaylistTracks(ctx context.Context, ref string) ([]Track, error) {
	id := s.ExtractPlaylistID(ref)

	tracks := []Track{}
	offset := 0

	for {
		endpoint := fmt.Sprintf(
			"/playlists/%s/tracks?offset=%d&limit=%d&fields=items(track(name,artists,album,duration_ms)),total",
			id, offset, playlistPageSize,
		)

		var page spotifyTracksPage
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			tracks = append(tracks, buildTrack(*item.Track))
		}

		if offset+playlistPageSize >= page.Total {
			break
		}
		offset += playlistPageSize
	}

	return tracks, nil
}

// LikedTracks fetches the user's saved tracks (requires the authorized session).
//
// When limit > 0 pagination stops early once enough tracks are collected and
// the result is truncated to exactly limit entries.
func (s *SpotifyClient) LikedTracks(ctx context.Context, limit int) ([]Track, error) {
	tracks := []Track{}
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/tracks?offset=%d&limit=%d", offset, libraryPageSize)

		var page spotifySavedTracksPage
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			tracks = append(tracks, buildTrack(*item.Track))
		}

		if offset+libraryPageSize >= page.Total {
			break
		}
		if limit > 0 && len(tracks) >= limit {
			break
		}
		offset += libraryPageSize
	}

	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	return tracks, nil
}

// UserPlaylists lists playlists for userID, or the current user when empty.
func (s *SpotifyClient) UserPlaylists(ctx context.Context, userID string) ([]PlaylistInfo, error) {
	playlists := []PlaylistInfo{}
	offset := 0

	for {
		var endpoint string
		if userID != "" {
			endpoint = fmt.Sprintf("/users/%s/playlists?offset=%d&limit=%d", userID, offset, libraryPageSize)
		} else {
			endpoint = fmt.Sprintf("/me/playlists?offset=%d&limit=%d", offset, libraryPageSize)
		}

		var page spotifyPlaylistsPage
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			playlists = append(playlists, PlaylistInfo{
				ID:         item.ID,
				Name:       item.Name,
				Owner:      item.Owner.DisplayName,
				TrackCount: item.Tracks.Total,
				URL:        item.ExternalURLs.Spotify,
			})
		}

		if offset+libraryPageSize >= page.Total {
			break
		}
		offset += libraryPageSize
	}

	return playlists, nil
}

// buildTrack maps a raw catalog record to [Track].
func buildTrack(t spotifyTrack) Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	primary := ""
	if len(artists) > 0 {
		primary = artists[0]
	}

	return Track{
		Name:     t.Name,
		Artist:   primary,
		Artists:  artists,
		Album:    t.Album.Name,
		Duration: t.DurationMS / 1000,
	}
}
