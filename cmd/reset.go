package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long:  "Deletes every repetition state and answer of the current learner. Imported content is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes all review history for %q; rerun with --yes to confirm", cfg.User)
		}

		a, err := openApp(0)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sessions.Reset(cmd.Context(), cfg.User); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Review history for %q deleted.\n", cfg.User)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
