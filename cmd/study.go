package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/session"
	"github.com/rob637/passcpa-sub012/internal/ui/theme"
)

var studyCmd = &cobra.Command{
	Use:     "study",
	Aliases: []string{"session"},
	Short:   "Build a study session from missed, due, weak-area and fresh items",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		seed, _ := cmd.Flags().GetInt64("seed")

		filter, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(seed)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.sessions.Build(cmd.Context(), session.Request{
			UserID:     cfg.User,
			Filter:     filter,
			Count:      count,
			ExcludeIDs: exclude,
		})
		if err != nil {
			return err
		}

		out := output(cmd.OutOrStdout())
		if sess.Selection.Len() == 0 {
			if sess.PoolSize == 0 {
				fmt.Fprintln(out, "No items match. Import a content pack with `passcpa import`.")
			} else {
				fmt.Fprintln(out, "Nothing left to study with these filters.")
			}
			return nil
		}

		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Session %s", sess.ID)))
		fmt.Fprintf(out, "%-4s  %-24s  %-24s  %-10s  %s\n", "#", "Item", "Topic", "Difficulty", "Why")
		fmt.Fprintln(out, theme.HRule(84))

		for i, it := range sess.Selection.Items {
			b := sess.Selection.Breakdown[i]
			diff := string(it.Difficulty)
			if diff == "" {
				diff = "-"
			}
			fmt.Fprintf(out, "%-4d  %-24s  %-24s  %-10s  %s\n",
				i+1, truncate(it.ID, 24), truncate(it.Topic, 24), diff,
				theme.ForReason(b.Reason).Render(b.Label()))
		}

		counts := sess.Selection.Counts()
		fmt.Fprintf(out, "\n%d of %d requested · %d missed · %d due · %d weak · %d fresh\n",
			sess.Selection.Len(), count,
			counts[selector.ReasonMissed], counts[selector.ReasonDue], counts[selector.ReasonWeakArea], counts[selector.ReasonFresh])
		fmt.Fprintln(out, theme.Hint.Render(
			fmt.Sprintf("Rate each item with: passcpa rate <item> <again|hard|good|easy> --session %s", sess.ID)))
		return nil
	},
}

func init() {
	addFilterFlags(studyCmd)
	studyCmd.Flags().IntP("count", "n", session.DefaultCount, "Number of items to select")
	studyCmd.Flags().StringSlice("exclude", nil, "Item IDs to leave out (comma-separated or repeated)")
	studyCmd.Flags().Int64("seed", 0, "Random seed for a reproducible selection (0 = random)")
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
