package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JCZoom/techpulse-blog/internal/bootstrap"
	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/resilience"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/shards/httpsource"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/shards/localfs"
)

type importResult struct {
	Copied int
	Dates  []string
}

// copyShards moves every shard in keys from src to dst. Missing shards
// are skipped; any other failure aborts the copy.
func copyShards(ctx context.Context, src ports.ShardSource, dst ports.ShardStore, keys []domain.ShardKey, concurrency int) (importResult, error) {
	if concurrency <= 0 {
		concurrency = 8
	}
	copied := make([]bool, len(keys))
	var count atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, key := range keys {
		g.Go(func() error {
			shard, err := src.Fetch(gctx, key)
			if err != nil {
				if domain.IsKind(err, domain.ErrShardNotFound) {
					return nil
				}
				return fmt.Errorf("fetch %s: %w", key.Filename(), err)
			}
			if shard.Date == "" {
				shard.Date = key.Date
			}
			if err := dst.Put(gctx, key, shard); err != nil {
				return fmt.Errorf("store %s: %w", key.Filename(), err)
			}
			copied[i] = true
			count.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return importResult{}, err
	}

	out := importResult{Copied: int(count.Load())}
	seen := make(map[string]struct{})
	for i, key := range keys {
		if !copied[i] {
			continue
		}
		if _, ok := seen[key.Date]; ok {
			continue
		}
		seen[key.Date] = struct{}{}
		out.Dates = append(out.Dates, key.Date)
	}
	return out, nil
}

func newImportCmd() *cobra.Command {
	var (
		fromDir string
		fromURL string
		notify  bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy daily shards into the configured shard store",
		Long:  "import copies the current window of shards from a content directory or site into Postgres (when POSTGRES_DSN is set) or the local content directory.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (fromDir == "") == (fromURL == "") {
				return domain.WrapError(domain.ErrInvalidInput, "import", errors.New("exactly one of --from-dir or --from-url is required"))
			}
			return withApp(cmd, func(app *bootstrap.App) error {
				if app.ShardStore == nil {
					return domain.WrapError(domain.ErrUnavailable, "import", errors.New("no writable shard store configured"))
				}
				var src ports.ShardSource
				if fromDir != "" {
					store, err := localfs.New(fromDir)
					if err != nil {
						return err
					}
					src = store
				} else {
					timeout := time.Duration(app.Config.ShardFetchTimeoutSeconds) * time.Second
					src = httpsource.New(fromURL, timeout, resilience.NewExecutor(resilience.DefaultConfig()))
				}

				res, err := copyShards(cmd.Context(), src, app.ShardStore, app.Loader.Keys(), app.Config.ShardFetchConcurrency)
				if err != nil {
					return err
				}
				slog.Info("shards_imported", "copied", res.Copied, "dates", len(res.Dates))
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d shards across %d days\n", res.Copied, len(res.Dates))

				if notify && len(res.Dates) > 0 {
					return publishShards(cmd.Context(), app, res.Dates)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&fromDir, "from-dir", "", "content directory containing daily/*.json")
	cmd.Flags().StringVar(&fromURL, "from-url", "", "site base URL serving /content/daily/*.json")
	cmd.Flags().BoolVar(&notify, "notify", false, "publish shards.published after importing")
	return cmd
}

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify [date...]",
		Short: "Announce new shards so running API instances reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			dates := args
			if len(dates) == 0 {
				dates = []string{time.Now().UTC().Format(time.DateOnly)}
			}
			for _, d := range dates {
				if _, err := time.Parse(time.DateOnly, d); err != nil {
					return domain.WrapError(domain.ErrInvalidInput, "notify", fmt.Errorf("date %q: %w", d, err))
				}
			}
			return withApp(cmd, func(app *bootstrap.App) error {
				return publishShards(cmd.Context(), app, dates)
			})
		},
	}
}

func publishShards(ctx context.Context, app *bootstrap.App, dates []string) error {
	if app.Queue == nil {
		return domain.WrapError(domain.ErrUnavailable, "notify", errors.New("NATS_URL is not configured"))
	}
	if err := app.Queue.PublishShardsPublished(ctx, dates); err != nil {
		return err
	}
	slog.Info("shards_published", "dates", dates)
	return nil
}
