package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rob637/passcpa-sub012/internal/spacedrep"
	"github.com/rob637/passcpa-sub012/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openApp(0)
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.sessions.History(cmd.Context(), cfg.User, limit)
		if err != nil {
			return err
		}

		out := output(cmd.OutOrStdout())
		if len(events) == 0 {
			fmt.Fprintln(out, "No answers recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-16s  %-24s  %-24s  %s\n", "Seq", "Answered", "Item", "Topic", "Rating")
		fmt.Fprintln(out, theme.HRule(84))
		for _, e := range events {
			rating, err := spacedrep.ParseRating(e.Rating)
			label := e.Rating
			if err == nil {
				label = theme.ForRating(rating).Render(e.Rating)
			}
			fmt.Fprintf(out, "%-6d  %-16s  %-24s  %-24s  %s\n",
				e.Sequence, e.AnsweredAt.Local().Format("2006-01-02 15:04"),
				truncate(e.ItemID, 24), truncate(e.Topic, 24), label)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of answers to show (0 = all)")
}
