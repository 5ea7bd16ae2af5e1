package tasks

import (
	"fmt"
	"strings"
)

const (
	ruleWidth = 60
	// notFoundDisplayCap bounds the not-found listing in the report;
	// the full list goes to the log file.
	notFoundDisplayCap = 10
)

// MatchRate returns the matched percentage of a result, 0 for empty playlists.
func MatchRate(r *TransferResult) float64 {
	if r.TotalTracks == 0 {
		return 0
	}
	return float64(r.Matched) / float64(r.TotalTracks) * 100
}

// FormatResult renders the transfer summary for terminal output.
func FormatResult(r *TransferResult) string {
	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Transfer summary: %s\n", r.PlaylistName)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Total tracks:  %d\n", r.TotalTracks)
	fmt.Fprintf(&b, "Matched:       %d\n", r.Matched)
	fmt.Fprintf(&b, "Not found:     %d\n", r.NotFound)
	fmt.Fprintf(&b, "Match rate:    %.1f%%\n", MatchRate(r))

	switch {
	case r.DryRun:
		fmt.Fprintf(&b, "\nDry run: no playlist was created.\n")
	case r.PlaylistID != "":
		fmt.Fprintf(&b, "\nPlaylist created: https://music.youtube.com/playlist?list=%s\n", r.PlaylistID)
	case r.Err != "":
		fmt.Fprintf(&b, "\nTransfer failed: %s\n", r.Err)
	}

	if len(r.NotFoundTracks) > 0 {
		fmt.Fprintf(&b, "\nNot found:\n")
		shown := r.NotFoundTracks
		if len(shown) > notFoundDisplayCap {
			shown = shown[:notFoundDisplayCap]
		}
		for _, t := range shown {
			fmt.Fprintf(&b, "  - %s\n", t.Label())
		}
		if extra := len(r.NotFoundTracks) - notFoundDisplayCap; extra > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", extra)
		}
	}

	return b.String()
}
