// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks the transfer workflow:
//  1. [PlaylistListView] : Browse and select Spotify playlists
//  2. [TrackListView] : Preview tracks before transfer
//  3. [ConfirmView] : Confirm the transfer
//  4. [TransferView] : Monitor real-time progress
//  5. [ResultView] : Display the match report
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through a channel from the transfer engine so the
// render loop never blocks on network calls.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q).
package ui
