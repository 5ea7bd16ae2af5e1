// Package services defines the catalog client contracts for playlist migration and implements them for Spotify (source) and YouTube Music (destination).
//
// # Client Interfaces
//
// [SourceClient] covers read-side operations: playlist metadata, paginated
// track listings, liked songs, and the user's playlist index.
// [DestinationClient] covers the write side: catalog search, playlist
// creation, and item insertion. The transfer engine depends only on these
// interfaces, so either side can be swapped for another catalog.
//
// # Spotify Implementation
//
// [SpotifyClient] talks to the Spotify Web API over [oauth2]. App-only mode
// uses the client-credentials grant and can read public playlists;
// authorized mode uses a stored refresh token and additionally reaches
// liked songs and private playlists. The [oauth2] client refreshes expired
// access tokens automatically.
//
// # YouTube Music Implementation
//
// [YTMusicClient] communicates with a local ytmusicapi proxy. Search always
// runs unauthenticated (more reliable than an authorized session for plain
// catalog queries). Mutations lazily build an authorized session from the
// oauth.json token bundle on first use; if no bundle can be found the
// mutation fails with [shared.ErrAuthRequired] while search keeps working.
//
// # Error Handling
//
// Clients use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : client construction without credentials
//   - [shared.ErrPlaylistNotFound] : playlist reference rejected by the catalog
//   - [shared.ErrAuthRequired] : destination mutation without a token bundle
//   - [shared.ErrTokenExpired] : source session rejected by the catalog
package services
