package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rob637/passcpa-sub012/internal/ui/theme"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List reviewed items that are due, most overdue first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		filter, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(0)
		if err != nil {
			return err
		}
		defer a.Close()

		due, err := a.sessions.Due(cmd.Context(), cfg.User, filter)
		if err != nil {
			return err
		}

		out := output(cmd.OutOrStdout())
		if len(due) == 0 {
			fmt.Fprintln(out, "Nothing due. Nice work.")
			return nil
		}

		now := time.Now()
		fmt.Fprintf(out, "%-24s  %-24s  %-8s  %8s  %s\n", "Item", "Topic", "Section", "Overdue", "Status")
		fmt.Fprintln(out, theme.HRule(80))
		for i, d := range due {
			if limit > 0 && i >= limit {
				fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("… and %d more", len(due)-limit)))
				break
			}
			status := d.State.Status(now)
			fmt.Fprintf(out, "%-24s  %-24s  %-8s  %7.1fd  %s\n",
				truncate(d.Item.ID, 24), truncate(d.Item.Topic, 24), d.Item.Section,
				d.OverdueDays, theme.ForStatus(status).Render(string(status)))
		}
		fmt.Fprintf(out, "\n%d due\n", len(due))
		return nil
	},
}

func init() {
	addFilterFlags(dueCmd)
	dueCmd.Flags().Int("limit", 50, "Maximum number of items to list (0 = all)")
}
