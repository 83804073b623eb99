package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rob637/passcpa-sub012/internal/ui/components"
	"github.com/rob637/passcpa-sub012/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics and topic accuracy",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		filter, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(0)
		if err != nil {
			return err
		}
		defer a.Close()

		ov, err := a.sessions.Stats(cmd.Context(), cfg.User, filter)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ov)
		}

		out := output(cmd.OutOrStdout())
		s := ov.Study
		fmt.Fprintln(out, theme.Title.Render("Study progress"))
		fmt.Fprintf(out, "  Items      %5d\n", s.Total)
		fmt.Fprintf(out, "  New        %5d\n", s.New)
		fmt.Fprintf(out, "  Learning   %5d\n", s.Learning)
		fmt.Fprintf(out, "  Review     %5d\n", s.Review)
		fmt.Fprintf(out, "  Due today  %5d\n", s.DueToday)
		fmt.Fprintf(out, "  Overdue    %5d\n", s.Overdue)
		fmt.Fprintf(out, "  Missed     %5d\n", ov.Missed)

		if len(ov.Topics) == 0 {
			fmt.Fprintln(out, theme.Hint.Render("\nNo answers yet. Run `passcpa study` to get started."))
			return nil
		}

		labelWidth := 0
		for _, t := range ov.Topics {
			labelWidth = max(labelWidth, len([]rune(t.Topic)))
		}
		labelWidth = min(labelWidth, 28)

		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Title.Render("Topic accuracy"))
		for _, t := range ov.Topics {
			bar := components.ProgressBar{
				Label:       truncate(t.Topic, 28),
				LabelWidth:  labelWidth,
				Percent:     t.Accuracy,
				ShowPercent: true,
				Width:       labelWidth + 40,
			}
			line := "  " + bar.View() + fmt.Sprintf("  %d/%d", t.Correct, t.Attempted)
			if t.Weak {
				line += "  " + theme.Weak.Render("weak area")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	addFilterFlags(statsCmd)
	statsCmd.Flags().Bool("json", false, "Print the overview as JSON")
}
