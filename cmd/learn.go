package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/console"
	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/session"
	"github.com/abhisek/pytutor/internal/store"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Play the next lesson, or a lesson you have already unlocked",
	RunE:  runLearn,
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Take a chapter review test",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("chapter")
		return playAt(cmd, func(cur *curriculum.Curriculum, _ *store.Learner) (curriculum.TopicRef, error) {
			ch, ok := cur.Chapter(n)
			if !ok {
				return curriculum.TopicRef{}, fmt.Errorf("chapter %d is not in the curriculum", n)
			}
			l, ok := ch.Review()
			if !ok {
				return curriculum.TopicRef{}, fmt.Errorf("chapter %d has no review test", n)
			}
			return curriculum.TopicRef{Chapter: n, Lesson: l.Number}, nil
		})
	},
}

var cumulativeCmd = &cobra.Command{
	Use:   "cumulative",
	Short: "Take the cumulative review across every chapter",
	RunE: func(cmd *cobra.Command, args []string) error {
		return playAt(cmd, func(cur *curriculum.Curriculum, _ *store.Learner) (curriculum.TopicRef, error) {
			ch, ok := cur.Cumulative()
			if !ok || len(ch.Lessons) == 0 {
				return curriculum.TopicRef{}, fmt.Errorf("the curriculum has no cumulative review")
			}
			return curriculum.TopicRef{Chapter: ch.Number, Lesson: ch.Lessons[0].Number}, nil
		})
	},
}

func init() {
	learnCmd.Flags().Int("chapter", 0, "Chapter to play (defaults to your next lesson)")
	learnCmd.Flags().Int("lesson", 0, "Lesson to play within --chapter")
	learnCmd.Flags().StringSlice("kind", nil, "Restrict question kinds (multiple_choice, true_false, fill_in_blank, scenario, write_code)")

	reviewCmd.Flags().Int("chapter", 0, "Chapter to review (required)")
	reviewCmd.Flags().StringSlice("kind", nil, "Restrict question kinds")
	_ = reviewCmd.MarkFlagRequired("chapter")

	cumulativeCmd.Flags().StringSlice("kind", nil, "Restrict question kinds")
}

// runLearn plays the lesson named by --chapter/--lesson, or the learner's
// next lesson.
func runLearn(cmd *cobra.Command, args []string) error {
	chapter, _ := cmd.Flags().GetInt("chapter")
	lesson, _ := cmd.Flags().GetInt("lesson")
	if (chapter == 0) != (lesson == 0) {
		return fmt.Errorf("--chapter and --lesson must be given together")
	}

	return playAt(cmd, func(_ *curriculum.Curriculum, l *store.Learner) (curriculum.TopicRef, error) {
		if chapter != 0 {
			return curriculum.TopicRef{Chapter: chapter, Lesson: lesson}, nil
		}
		return curriculum.TopicRef{Chapter: l.Chapter, Lesson: l.Lesson}, nil
	})
}

// playAt opens the tutor, plays the session pick selects and offers to go
// on to the learner's next lesson.
func playAt(cmd *cobra.Command, pick func(*curriculum.Curriculum, *store.Learner) (curriculum.TopicRef, error)) error {
	ctx := cmd.Context()

	kindFlags, _ := cmd.Flags().GetStringSlice("kind")
	kinds, err := parseKinds(kindFlags)
	if err != nil {
		return err
	}

	t, err := openTutor(cmd, kinds)
	if err != nil {
		return err
	}
	defer t.Close()

	learner, err := t.store.LearnerRepo().GetOrCreate(ctx, learnerName(cmd))
	if err != nil {
		return fmt.Errorf("load learner: %w", err)
	}

	ref, err := pick(t.curriculum, learner)
	if err != nil {
		return err
	}

	c := t.console
	c.Heading("pytutor", fmt.Sprintf("Welcome, %s!", learner.Name))

	for {
		summary, err := t.runner.Play(ctx, learner, ref)
		switch {
		case errors.Is(err, console.ErrClosed):
			c.Blank()
			c.Note("Goodbye! Your progress has been saved.")
			return nil
		case err != nil:
			return err
		}

		next := curriculum.TopicRef{Chapter: learner.Chapter, Lesson: learner.Lesson}
		var question string
		switch {
		case summary.Advanced:
			question = fmt.Sprintf("Continue to %s?", summary.Next)
		case summary.Plan.Graded() && !summary.Passed:
			question = "Retake the review now?"
			next = ref
		default:
			if summary.Plan.Kind == session.KindCumulative {
				c.Success("You have completed the course!")
			}
			return nil
		}

		ok, err := confirm(c, question)
		if err != nil || !ok {
			return nil
		}
		ref = next
	}
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(c *console.Console, question string) (bool, error) {
	answer, err := c.Ask(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
