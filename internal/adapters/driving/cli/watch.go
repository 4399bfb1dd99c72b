package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/logger"
)

var (
	watchSchedule  string
	watchDebounce  time.Duration
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the knowledge base refreshed",
	Long: `Refreshes the knowledge base whenever a watched folder changes and,
with --schedule, on a cron schedule for remote sources.

Schedules use cron syntax or descriptors such as "@every 1h" and "@daily".
Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchSchedule, "schedule", "s", "", `cron schedule for periodic refreshes (e.g. "@every 1h")`)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before a change triggers a refresh")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip the refresh at startup")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requireKnowledgeBase(); err != nil {
		return err
	}
	if len(watchers) == 0 && watchSchedule == "" {
		return errors.New("nothing to watch: configure a filesystem source or pass --schedule")
	}

	// One pending trigger is enough: a refresh picks up every change made
	// before it starts.
	trigger := make(chan string, 1)
	request := func(reason string) {
		select {
		case trigger <- reason:
		default:
		}
	}

	if watchSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(watchSchedule, func() { request("schedule") }); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", watchSchedule, err)
		}
		c.Start()
		defer c.Stop()
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, w := range watchers {
		name := w.Name()
		g.Go(func() error {
			if err := w.Watch(ctx, watchDebounce, func() { request(name) }); err != nil {
				return fmt.Errorf("watching %s: %w", name, err)
			}
			return nil
		})
		cmd.Printf("Watching %s\n", name)
	}
	if watchSchedule != "" {
		cmd.Printf("Refreshing on schedule %q\n", watchSchedule)
	}

	if !watchNoInitial {
		request("startup")
	}

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case reason := <-trigger:
				refreshOnce(ctx, cmd, reason)
			}
		}
	})

	return g.Wait()
}

func refreshOnce(ctx context.Context, cmd *cobra.Command, reason string) {
	logger.Debug("refresh triggered by %s", reason)
	report, err := knowledgeBase.Refresh(ctx, false)
	switch {
	case errors.Is(err, domain.ErrRefreshInProgress):
		logger.Info("refresh skipped: another refresh is running")
		return
	case ctx.Err() != nil:
		return
	case err != nil:
		logger.Error("refresh failed: %v", err)
		return
	}
	cmd.Printf("%s  %d updated, %d removed, %d failed (%s)\n",
		time.Now().Format("15:04:05"), len(report.Updated), len(report.Removed), len(report.Failed), reason)
	for _, f := range report.Failed {
		cmd.Printf("  failed   %s (%s): %s\n", f.DocumentID, f.Stage, f.Error)
	}
}
