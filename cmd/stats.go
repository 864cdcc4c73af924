package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a learner's progress and lesson scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		cur, err := loadCurriculum(cmd)
		if err != nil {
			return err
		}
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

		next := curriculum.TopicRef{Chapter: learner.Chapter, Lesson: learner.Lesson}
		fmt.Printf("Learner:     %s\n", learner.Name)
		if info, err := cur.Topic(next); err == nil {
			fmt.Printf("Next lesson: %s %s\n", next, info.LessonTitle)
		} else {
			fmt.Printf("Next lesson: %s\n", next)
		}

		scores, err := s.LessonRepo().Scores(ctx, learner.ID)
		if err != nil {
			return fmt.Errorf("load scores: %w", err)
		}
		if len(scores) == 0 {
			fmt.Println("\nNo lessons played yet.")
			return nil
		}

		fmt.Println()
		fmt.Printf("%-6s  %-44s  %7s  %6s  %s\n", "Lesson", "Title", "Score", "%", "Passed")
		fmt.Println(strings.Repeat("─", 80))
		for _, sc := range scores {
			ref := curriculum.TopicRef{Chapter: sc.Chapter, Lesson: sc.Lesson}
			title := ""
			if l, ok := cur.Lesson(ref); ok {
				title = l.Title
			}
			passed := ""
			if sc.Passed {
				passed = "✓"
			}
			fmt.Printf("%-6s  %-44s  %7s  %5.0f%%  %s\n",
				ref, truncate(title, 44), fmt.Sprintf("%d/%d", sc.Correct, sc.Total), sc.Percent(), passed)
		}
		return nil
	},
}
