package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rob637/passcpa-sub012/internal/content"
	"github.com/rob637/passcpa-sub012/internal/selector"
)

// addFilterFlags registers the pool filter flags on cmd.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("course", "", "Limit to a course (e.g. cpa, ea, cma)")
	cmd.Flags().String("section", "", "Limit to an exam section (e.g. FAR, AUD)")
	cmd.Flags().String("topic", "", "Limit to a topic")
	cmd.Flags().String("difficulty", "", "Limit to a difficulty: easy, medium or hard")
}

// filterFromFlags reads the flags registered by addFilterFlags.
func filterFromFlags(cmd *cobra.Command) (content.Filter, error) {
	course, _ := cmd.Flags().GetString("course")
	section, _ := cmd.Flags().GetString("section")
	topic, _ := cmd.Flags().GetString("topic")
	diff, _ := cmd.Flags().GetString("difficulty")

	f := content.Filter{Course: course, Section: section, Topic: topic}
	if diff != "" {
		f.Difficulty = selector.ParseDifficulty(diff)
		if f.Difficulty == selector.DifficultyUnknown {
			return f, fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", diff)
		}
	}
	return f, nil
}
