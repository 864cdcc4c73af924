package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a learner's progress, mistakes, lessons and scores",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := s.LearnerRepo().Reset(ctx, learner.ID); err != nil {
			return fmt.Errorf("reset learner: %w", err)
		}
		fmt.Printf("Reset %s to chapter 1, lesson 1.\n", learner.Name)
		return nil
	},
}
