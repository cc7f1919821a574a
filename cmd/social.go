package cmd

import (
	"context"
	"fmt"

	"smi-los/internal/model"

	"github.com/spf13/cobra"
)

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Announce the top eligible article on the configured social channels",
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
		if len(publication.Channels) == 0 {
			fmt.Println("No social channels configured")
			return nil
		}

		locker, closeLocker := newLocker(cfg)
		defer closeLocker()

		// Hold every channel's lock for the fan-out so a concurrently
		// scheduled channel job cannot interleave.
		var outcomes map[string]string
		run := func(ctx context.Context) error {
			var runErr error
			outcomes, runErr = publication.PublishSocial(ctx)
			return runErr
		}
		for i := len(publication.Channels) - 1; i >= 0; i-- {
			run = withLock(locker, publication.Channels[i].Name(), run)
		}
		if err := run(cmd.Context()); err != nil {
			return err
		}

		if len(outcomes) == 0 {
			fmt.Println("Nothing eligible for the social channels")
			return nil
		}
		failed := 0
		for _, ch := range publication.Channels {
			outcome, ok := outcomes[ch.Name()]
			if !ok {
				continue
			}
			fmt.Printf("Channel %s: %s\n", ch.Name(), outcome)
			if outcome == model.OutcomeFailure {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d social channel(s) failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(socialCmd)
}
