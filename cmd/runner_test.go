package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmtroyer/playferry/internal/services"
	"github.com/dmtroyer/playferry/internal/shared"
	tu "github.com/dmtroyer/playferry/internal/testing"
	"github.com/urfave/cli/v3"
)

func testApp(r *Runner) *cli.Command {
	return &cli.Command{Name: "playferry", Commands: r.register()}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			spotify := &tu.MockSource{}
			ytmusic := &tu.MockDest{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Spotify:    spotify,
				YTMusic:    ytmusic,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
			if runner.ytmusic != ytmusic {
				t.Error("expected ytmusic to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected default output")
			}
		})
	})

	t.Run("register builds all commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		commands := runner.register()

		want := map[string]bool{
			"create": false, "test": false, "spotify": false,
			"cache": false, "setup": false, "tui": false,
		}
		for _, cmd := range commands {
			want[cmd.Name] = true
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected command %q to be registered", name)
			}
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("unexpected output: %q", output.String())
		}

		t.Run("failing writer", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("data"); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"n": 1}, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "{\"n\":1}\n" {
			t.Errorf("unexpected output: %q", output.String())
		}

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"n": 1}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "  \"n\": 1") {
				t.Errorf("expected indented output: %q", output.String())
			}
		})
	})
}

func TestCreateAction(t *testing.T) {
	newRunner := func(t *testing.T, spotify *tu.MockSource, ytmusic *tu.MockDest) (*Runner, *bytes.Buffer) {
		t.Helper()

		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(t.TempDir(), "cache.db")
		config.Transfer.NotFoundLog = filepath.Join(t.TempDir(), "noresults.txt")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  config,
			Spotify: spotify,
			YTMusic: ytmusic,
			Output:  output,
		})
		return runner, output
	}

	source := func() *tu.MockSource {
		return &tu.MockSource{
			PlaylistMetadataFunc: func(ctx context.Context, ref string) (*services.PlaylistInfo, error) {
				return &services.PlaylistInfo{ID: ref, Name: "Road Trip"}, nil
			},
			PlaylistTracksFunc: func(ctx context.Context, ref string) ([]services.Track, error) {
				return []services.Track{
					{Name: "First Song", Artist: "Artist A"},
					{Name: "Obscure Song", Artist: "Unknown Artist"},
				}, nil
			},
		}
	}

	dest := func() *tu.MockDest {
		return &tu.MockDest{
			SearchSongFunc: func(ctx context.Context, artist, title string) (*services.SearchResult, error) {
				if title == "Obscure Song" {
					return nil, nil
				}
				return &services.SearchResult{VideoID: "v1", Title: title, Artist: artist}, nil
			},
		}
	}

	t.Run("dry run prints summary", func(t *testing.T) {
		runner, output := newRunner(t, source(), dest())

		app := testApp(runner)
		err := app.Run(context.Background(), []string{"playferry", "create", "--dry-run", "--no-log", "abc123"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := output.String()
		for _, want := range []string{"Road Trip", "Matched:       1", "Not found:     1", "Dry run"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("writes not-found log", func(t *testing.T) {
		runner, _ := newRunner(t, source(), dest())

		app := testApp(runner)
		err := app.Run(context.Background(), []string{"playferry", "create", "--dry-run", "abc123"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		data, err := os.ReadFile(runner.config.Transfer.NotFoundLog)
		if err != nil {
			t.Fatalf("expected log file, got %v", err)
		}
		if !strings.Contains(string(data), "Unknown Artist - Obscure Song") {
			t.Errorf("unexpected log contents: %q", string(data))
		}
	})

	t.Run("missing playlist argument", func(t *testing.T) {
		runner, _ := newRunner(t, source(), dest())

		app := testApp(runner)
		err := app.Run(context.Background(), []string{"playferry", "create"})
		if err == nil {
			t.Error("expected error for missing argument")
		}
	})

	t.Run("nil spotify client", func(t *testing.T) {
		runner, _ := newRunner(t, nil, dest())
		runner.spotify = nil

		app := testApp(runner)
		err := app.Run(context.Background(), []string{"playferry", "create", "abc123"})
		if err == nil {
			t.Error("expected error without a Spotify client")
		}
	})
}
