package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/store"
)

var mistakesCmd = &cobra.Command{
	Use:   "mistakes",
	Short: "List the questions a learner got wrong",
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, _ := cmd.Flags().GetInt("chapter")
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		name := learnerName(cmd)
		learner, err := s.LearnerRepo().Get(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("No learner named %q yet.\n", name)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load learner: %w", err)
		}

		list, err := s.MistakeRepo().List(ctx, learner.ID, store.MistakeQuery{Chapter: chapter, Limit: limit})
		if err != nil {
			return fmt.Errorf("list mistakes: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No mistakes recorded.")
			return nil
		}

		fmt.Printf("%-19s  %-7s  %-16s  %s\n", "Time", "Lesson", "Kind", "Question")
		fmt.Println(strings.Repeat("─", 100))
		for _, m := range list {
			lesson := fmt.Sprintf("%d.%d", m.Chapter, m.Lesson)
			if m.OriginLesson != m.Lesson {
				lesson = fmt.Sprintf("%s<%d", lesson, m.OriginLesson)
			}
			fmt.Printf("%-19s  %-7s  %-16s  %s\n",
				m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				lesson,
				m.Kind,
				truncate(firstLine(m.Question), 52),
			)
			if verbose {
				fmt.Printf("    Your answer:    %s\n", firstLine(m.LearnerAnswer))
				fmt.Printf("    Correct answer: %s\n", firstLine(m.CorrectAnswer))
				if m.Errors != "" {
					fmt.Printf("    Errors:         %s\n", firstLine(m.Errors))
				}
			}
		}
		fmt.Printf("\n%d mistakes\n", len(list))
		return nil
	},
}

func init() {
	mistakesCmd.Flags().Int("chapter", 0, "Only show mistakes from this chapter")
	mistakesCmd.Flags().IntP("limit", "n", 50, "Number of mistakes to show")
	mistakesCmd.Flags().BoolP("verbose", "v", false, "Show answers and errors")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
