package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"smi-los/internal/config"
	"smi-los/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily pipeline scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}
		discovery, err := newDiscovery(cfg, st, engine)
		if err != nil {
			return err
		}
		publication, err := newPublication(cfg, st, engine)
		if err != nil {
			return err
		}

		locker, closeLocker := newLocker(cfg)
		defer closeLocker()

		jobs := []worker.Job{
			{
				Name: stageSearch,
				At:   cfg.Schedule.Search,
				Run: withLock(locker, stageSearch, func(ctx context.Context) error {
					_, err := discovery.Run(ctx)
					return err
				}),
			},
			{
				Name: stageBlog,
				At:   cfg.Schedule.Blog,
				Run: withLock(locker, stageBlog, func(ctx context.Context) error {
					_, err := publication.PublishBlog(ctx)
					return err
				}),
			},
		}
		for _, ch := range publication.Channels {
			ch := ch
			at := channelClock(cfg, ch.Name())
			jobs = append(jobs, worker.Job{
				Name: ch.Name(),
				At:   at,
				Run: withLock(locker, ch.Name(), func(ctx context.Context) error {
					_, err := publication.PublishChannel(ctx, ch)
					return err
				}),
			})
		}

		sched := &worker.Scheduler{Jobs: jobs}
		mgr := worker.NewManager(sched)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		slog.Info("serve: scheduler starting",
			"search", clockString(cfg.Schedule.Search),
			"blog", clockString(cfg.Schedule.Blog),
			"facebook", clockString(cfg.Schedule.Facebook),
			"instagram", clockString(cfg.Schedule.Instagram),
		)
		return mgr.Start(ctx)
	},
}

func channelClock(cfg config.Config, channel string) config.ClockTime {
	if channel == stageInstagram {
		return cfg.Schedule.Instagram
	}
	return cfg.Schedule.Facebook
}

func clockString(t config.ClockTime) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
