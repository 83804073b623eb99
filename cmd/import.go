package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rob637/passcpa-sub012/internal/ui/theme"
)

var importCmd = &cobra.Command{
	Use:   "import <pack.json>...",
	Short: "Import content packs into the item bank",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(0)
		if err != nil {
			return err
		}
		defer a.Close()

		out := output(cmd.OutOrStdout())
		for _, path := range args {
			res, err := a.content.ImportFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			course := res.Course
			if course == "" {
				course = "(no course)"
			}
			fmt.Fprintf(out, "%s %s: %d items (%s, pack %s)\n",
				theme.Correct.Render("✓"), path, res.Items, course, res.Version)
		}

		total, err := a.store.ItemRepo().Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("%d items in bank", total)))
		return nil
	},
}
