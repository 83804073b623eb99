package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rob637/passcpa-sub012/internal/session"
	"github.com/rob637/passcpa-sub012/internal/spacedrep"
	"github.com/rob637/passcpa-sub012/internal/ui/theme"
)

var rateCmd = &cobra.Command{
	Use:   "rate <item-id> <again|hard|good|easy>",
	Short: "Record how well you recalled an item and schedule its next review",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		preview, _ := cmd.Flags().GetBool("preview")
		sessionID, _ := cmd.Flags().GetString("session")

		a, err := openApp(0)
		if err != nil {
			return err
		}
		defer a.Close()

		out := output(cmd.OutOrStdout())
		itemID := args[0]

		if preview || len(args) == 1 {
			outcomes, err := a.sessions.Preview(cmd.Context(), cfg.User, itemID)
			if err != nil {
				return err
			}
			for _, r := range spacedrep.Ratings {
				st := outcomes[r]
				fmt.Fprintf(out, "%s  %4d day(s)  ease %.2f\n",
					theme.ForRating(r).Render(fmt.Sprintf("%-6s", r)), st.Interval, st.EaseFactor)
			}
			return nil
		}

		rating, err := spacedrep.ParseRating(args[1])
		if err != nil {
			return err
		}

		next, err := a.sessions.Rate(cmd.Context(), session.Response{
			UserID:    cfg.User,
			SessionID: sessionID,
			ItemID:    itemID,
			Rating:    rating,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s %s rated %s\n", theme.Correct.Render("✓"), itemID, theme.ForRating(rating).Render(rating.String()))
		fmt.Fprintf(out, "Next review in %d day(s), on %s (ease %.2f, %d in a row)\n",
			next.Interval, next.NextReview.Local().Format("Mon Jan 2"), next.EaseFactor, next.Repetitions)
		return nil
	},
}

func init() {
	rateCmd.Flags().String("session", "", "Session ID the answer belongs to")
	rateCmd.Flags().Bool("preview", false, "Show the interval each rating would give without saving")
}
