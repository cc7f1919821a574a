package cmd

import (
	"fmt"

	"smi-los/internal/model"

	"github.com/spf13/cobra"
)

var statsListPending bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show article counters and scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		stats, err := st.CollectStats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Articles: %d total, %d pending, %d published\n",
			stats.TotalArticles, stats.PendingArticles, stats.PublishedArticles)
		fmt.Printf("Average AI score: %.2f\n", stats.AvgScore)

		if statsListPending {
			articles, err := st.ListArticles(cmd.Context(), model.StatusPending, 20)
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				fmt.Println("No pending articles")
				return nil
			}
			fmt.Println("\nPending articles:")
			for _, a := range articles {
				fmt.Printf("  [%d] %.1f  %s\n", a.ID, a.AIScore, a.Title)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsListPending, "pending", false, "list pending articles")
	rootCmd.AddCommand(statsCmd)
}
