package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/console"
	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/llm"
	"github.com/abhisek/pytutor/internal/questions"
	"github.com/abhisek/pytutor/internal/sandbox"
	"github.com/abhisek/pytutor/internal/session"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview generated questions for a lesson (no database)",
	Long: `Generate and interactively answer questions for a specific lesson.

This is a stateless developer tool: no database, no progress, no events.
Useful for evaluating question quality and trying out prompt changes.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("chapter", 0, "Chapter number (required)")
	previewCmd.Flags().Int("lesson", 0, "Lesson number (required)")
	previewCmd.Flags().StringSlice("kind", nil, "Restrict question kinds")
	previewCmd.Flags().Int("count", 5, "Number of questions to generate")
	_ = previewCmd.MarkFlagRequired("chapter")
	_ = previewCmd.MarkFlagRequired("lesson")
}

func runPreview(cmd *cobra.Command, args []string) error {
	chapter, _ := cmd.Flags().GetInt("chapter")
	lesson, _ := cmd.Flags().GetInt("lesson")
	count, _ := cmd.Flags().GetInt("count")
	kindFlags, _ := cmd.Flags().GetStringSlice("kind")

	kinds, err := parseKinds(kindFlags)
	if err != nil {
		return err
	}
	cur, err := loadCurriculum(cmd)
	if err != nil {
		return err
	}

	// No EventRepo: logging skipped.
	ctx := cmd.Context()
	provider, llmCfg, err := llm.NewProviderFromEnv(ctx, nil)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	gateway := llm.NewGateway(provider, llm.WithTimeout(llmCfg.Timeout))

	cfg := questions.DefaultConfig()
	runner := session.NewRunner(session.Deps{
		Curriculum: cur,
		Generator:  questions.NewGenerator(gateway, cfg),
		Validator:  questions.NewValidator(gateway, cfg),
		Sandbox:    sandbox.NewPythonRunner(),
		Console:    console.New(os.Stdin, os.Stdout),
		Kinds:      kinds,
	})

	_, err = runner.Preview(ctx, curriculum.TopicRef{Chapter: chapter, Lesson: lesson}, count)
	if errors.Is(err, console.ErrClosed) {
		return nil
	}
	return err
}
