package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"smi-los/internal/model"
	"smi-los/internal/store"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Approve or reject discovered articles",
}

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Mark an article as approved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setArticleStatus(cmd, args[0], model.StatusApproved)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Mark an article as rejected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setArticleStatus(cmd, args[0], model.StatusRejected)
	},
}

func setArticleStatus(cmd *cobra.Command, rawID, status string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid article id %q", rawID)
	}

	cfg := GetConfig()
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.SetStatus(cmd.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("article %d not found", id)
		}
		return err
	}
	fmt.Printf("Article %d marked %s\n", id, status)
	return nil
}

func init() {
	reviewCmd.AddCommand(approveCmd)
	reviewCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(reviewCmd)
}
