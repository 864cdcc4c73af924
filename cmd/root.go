package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pytutor",
	Short: "AI Python tutor",
	Long: `pytutor is a terminal Python tutor. Each lesson is explained by a language
model, then tested with generated questions that are graded as you go.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may already be set.
		_ = godotenv.Load()
		return setupLogging(cmd)
	},
	RunE: runLearn,
}

// Execute runs the root command. An interrupt cancels the running session.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PYTUTOR_DB env var)")
	rootCmd.PersistentFlags().String("curriculum", "", "Path to a curriculum YAML file (overrides PYTUTOR_CURRICULUM env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides PYTUTOR_LOG_LEVEL env var)")
	rootCmd.PersistentFlags().StringP("learner", "u", "", "Learner name (overrides PYTUTOR_LEARNER env var)")

	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(cumulativeCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(mistakesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PYTUTOR_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadCurriculum reads --curriculum, then PYTUTOR_CURRICULUM, falling back
// to the embedded document.
func loadCurriculum(cmd *cobra.Command) (*curriculum.Curriculum, error) {
	path, _ := cmd.Flags().GetString("curriculum")
	if path == "" {
		path = os.Getenv("PYTUTOR_CURRICULUM")
	}
	return curriculum.LoadOrDefault(path)
}

// learnerName resolves --learner, then PYTUTOR_LEARNER, then the login name.
func learnerName(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("learner"); name != "" {
		return name
	}
	for _, key := range []string{"PYTUTOR_LEARNER", "USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "learner"
}

// setupLogging installs a text slog handler on stderr. Warnings and errors
// are shown by default so the session output stays readable.
func setupLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("PYTUTOR_LOG_LEVEL")
	}

	lvl := slog.LevelWarn
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// openStore opens the database named by --db or the environment.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
