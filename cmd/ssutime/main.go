package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/yourssu/ssu-time/internal/config"
	"github.com/yourssu/ssu-time/internal/crawler"
	"github.com/yourssu/ssu-time/internal/dateparse"
	"github.com/yourssu/ssu-time/internal/ics"
	appLog "github.com/yourssu/ssu-time/internal/log"
	"github.com/yourssu/ssu-time/internal/merge"
	"github.com/yourssu/ssu-time/internal/model"
	"github.com/yourssu/ssu-time/internal/store"
)

// app holds the wired-up dependencies shared by all subcommands.
type app struct {
	cfg      *config.Config
	loc      *time.Location
	store    *store.Store
	matcher  *dateparse.Matcher
	fetcher  *crawler.Fetcher
	renderer crawler.Renderer
}

func main() {
	appLog.Info("ssutime starting", "version", "0.1.0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		appLog.Error("ssutime failed", err)
		os.Exit(1)
	}
	appLog.Info("ssutime exiting")
}

func newRootCmd() *cobra.Command {
	var configPath string
	var a app

	root := &cobra.Command{
		Use:           "ssutime",
		Short:         "Soongsil announcement crawler and calendar builder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "path to config file")

	root.AddCommand(
		newCrawlCmd(&a),
		newMergeCmd(&a),
		newAllCmd(&a),
		newDaemonCmd(&a),
	)
	return root
}

func (a *app) init(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	a.cfg = cfg
	a.loc = loc
	a.store = store.NewOS(cfg.Storage.Root)
	a.matcher = dateparse.NewMatcher(loc, nil)
	a.fetcher = crawler.NewFetcher(cfg.FetchTimeout())

	appLog.Info("effective config",
		"timezone", cfg.Timezone,
		"schedule", cfg.Schedule,
		"storage_root", cfg.Storage.Root,
		"window_months", cfg.WindowMonths,
		"threshold_days", cfg.DurationThresholdDays,
	)
	return nil
}

func newCrawlCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "crawl [academic|notices|scholarship]",
		Short:     "Run one crawler, or all of them",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"academic", "notices", "scholarship"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.crawlAll(cmd.Context())
			}
			return a.crawlOne(cmd.Context(), args[0])
		},
	}
}

func newMergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Fold raw calendars into the merged category exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMerge()
		},
	}
}

func newAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Crawl every source, then merge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAll(cmd.Context())
		},
	}
}

func newDaemonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run crawl+merge on the configured cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c := cron.New()
			_, err := c.AddFunc(a.cfg.Schedule, func() {
				if err := a.runAll(ctx); err != nil {
					appLog.Error("scheduled run failed", err)
				}
			})
			if err != nil {
				return fmt.Errorf("schedule %q: %w", a.cfg.Schedule, err)
			}

			appLog.Info("daemon started", "schedule", a.cfg.Schedule)
			c.Start()
			<-ctx.Done()
			stopCtx := c.Stop()
			<-stopCtx.Done()
			appLog.Info("daemon stopped")
			return nil
		},
	}
}

func (a *app) runAll(ctx context.Context) error {
	if err := a.crawlAll(ctx); err != nil {
		return err
	}
	return a.runMerge()
}

// crawlAll runs every source. One failing source does not stop the
// others; the errors are joined at the end.
func (a *app) crawlAll(ctx context.Context) error {
	var errs []error
	for _, source := range []string{"academic", "notices", "scholarship"} {
		if err := a.crawlOne(ctx, source); err != nil {
			appLog.Error("crawler failed", err, "source", source)
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
		}
	}
	return errors.Join(errs...)
}

func (a *app) crawlOne(ctx context.Context, source string) error {
	switch source {
	case "academic":
		c := crawler.NewAcademic(a.cfg.Academic, a.fetcher, a.loc, nil, a.cfg.WindowMonths, a.cfg.DurationThresholdDays)
		return a.runSource(ctx, source, a.cfg.Academic.OutputKey, c.Crawl)
	case "notices":
		c := crawler.NewNotices(a.cfg.Notices, a.renderer, a.matcher, a.cfg.FetchTimeout(), a.cfg.DurationThresholdDays, nil)
		return a.runSource(ctx, source, a.cfg.Notices.OutputKey, c.Crawl)
	case "scholarship":
		c := crawler.NewScholarship(a.cfg.Scholarship, a.fetcher, a.matcher, a.loc, nil, a.cfg.WindowMonths, a.cfg.DurationThresholdDays)
		return a.runSource(ctx, source, a.cfg.Scholarship.OutputKey, c.Crawl)
	default:
		return fmt.Errorf("unknown source %q", source)
	}
}

func (a *app) runSource(ctx context.Context, name, outputKey string, crawl func(context.Context) ([]model.Event, []crawler.Miss, error)) error {
	started := time.Now()

	events, misses, err := crawl(ctx)
	if err != nil {
		return err
	}
	for _, m := range misses {
		appLog.Warn("date miss", "source", name, "title", m.Title, "reason", m.Reason, "url", m.URL)
	}

	body := ics.Serialize(events)
	if err := a.store.Put(outputKey, []byte(body)); err != nil {
		return err
	}

	crawler.Report{
		Source:     name,
		EventCount: len(events),
		MissCount:  len(misses),
		Duration:   time.Since(started),
		StorageKey: outputKey,
	}.Log()
	return nil
}

func (a *app) runMerge() error {
	pipeline := merge.NewPipeline(a.store, a.cfg.Storage, a.loc)
	summary, err := pipeline.Run()
	if err != nil {
		return err
	}
	appLog.Info("merge complete",
		"raw_files", summary.RawFiles,
		"total_events", summary.TotalEvents,
		"files_written", summary.FilesOut,
	)
	return nil
}
