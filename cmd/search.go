package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run article discovery once for all configured keywords",
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

		locker, closeLocker := newLocker(cfg)
		defer closeLocker()

		var found int
		run := withLock(locker, stageSearch, func(ctx context.Context) error {
			n, err := discovery.Run(ctx)
			found = n
			return err
		})
		if err := run(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Discovery completed: %d new articles\n", found)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
