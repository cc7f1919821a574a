package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish eligible articles to the blog once",
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
		publication, err := newPublication(cfg, st, engine)
		if err != nil {
			return err
		}

		locker, closeLocker := newLocker(cfg)
		defer closeLocker()

		var published int
		run := withLock(locker, stageBlog, func(ctx context.Context) error {
			n, err := publication.PublishBlog(ctx)
			published = n
			return err
		})
		if err := run(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Blog publication completed: %d articles published\n", published)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
