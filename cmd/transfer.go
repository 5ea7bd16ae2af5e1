package main

import (
	"context"
	"fmt"

	"github.com/dmtroyer/playferry/internal/repositories"
	"github.com/dmtroyer/playferry/internal/shared"
	"github.com/dmtroyer/playferry/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Create runs a full Spotify → YouTube Music transfer.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
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

	// Cache attachment is best effort: a broken database never blocks a transfer.
	if db, err := shared.NewDatabase(r.config.Database.Path); err == nil {
		defer db.Close()
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err == nil {
			r.engine.UseCache(repositories.NewSearchCacheRepository(db))
		} else {
			r.logger.Warn("skipping search cache", "error", err)
		}
	} else {
		r.logger.Warn("skipping search cache", "error", err)
	}

	r.logger.Info("starting transfer", "playlist", ref, "dry_run", cmd.Bool("dry-run"))
	r.writePlain("Starting playlist transfer...\n\n")

	opts := tasks.TransferOptions{
		DryRun:                cmd.Bool("dry-run"),
		IsolateSearchFailures: cmd.Bool("isolate-failures") || r.config.Transfer.IsolateFailures,
		Progress: func(u tasks.ProgressUpdate) {
			switch u.Phase {
			case tasks.PhaseFetchSource:
				r.writePlain("📥 %s\n", u.Message)
			case tasks.PhaseSearchTracks:
				pct := float64(u.Step) / float64(u.Total) * 100
				r.writePlain("\r[%d/%d] (%.0f%%) %-50.50s", u.Step, u.Total, pct, u.Message)
			case tasks.PhaseCreatePlaylist:
				r.writePlain("\n\n📝 %s\n", u.Message)
			}
		},
	}

	result, err := r.engine.Transfer(ctx, ref, opts)
	if err != nil {
		return err
	}

	r.writePlain("\n\n%s", tasks.FormatResult(result))

	if result.NotFound > 0 && !cmd.Bool("no-log") {
		logPath := cmd.String("log-file")
		if logPath == "" {
			logPath = r.config.Transfer.NotFoundLog
		}
		if err := tasks.WriteNotFoundLog(result.NotFoundTracks, logPath); err != nil {
			r.logger.Warn("failed to write not-found log", "error", err)
		} else {
			r.writePlain("\nNot-found tracks written to %s\n", logPath)
		}
	}

	return nil
}
