package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/pytutor/internal/cache"
	"github.com/abhisek/pytutor/internal/console"
	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/lessons"
	"github.com/abhisek/pytutor/internal/llm"
	"github.com/abhisek/pytutor/internal/questions"
	"github.com/abhisek/pytutor/internal/sandbox"
	"github.com/abhisek/pytutor/internal/session"
	"github.com/abhisek/pytutor/internal/store"
)

// tutor holds everything a learning command needs.
type tutor struct {
	store      *store.Store
	shared     *cache.Cache
	curriculum *curriculum.Curriculum
	console    *console.Console
	runner     *session.Runner
}

// openTutor opens the store, builds the model pipeline and wires a session
// runner. kinds restricts generated question kinds; nil keeps the
// curriculum's choice.
func openTutor(cmd *cobra.Command, kinds []questions.Kind) (*tutor, error) {
	ctx := cmd.Context()

	cur, err := loadCurriculum(cmd)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	provider, llmCfg, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	gateway := llm.NewGateway(provider, llm.WithTimeout(llmCfg.Timeout))
	slog.Debug("model gateway ready", "provider", llmCfg.Provider, "model", gateway.ModelID())

	t := &tutor{
		store:      st,
		curriculum: cur,
		console:    console.New(os.Stdin, os.Stdout),
	}

	lessonOpts := []lessons.Option{lessons.WithStore(st.LessonRepo())}
	if shared := openSharedCache(ctx); shared != nil {
		t.shared = shared
		lessonOpts = append(lessonOpts, lessons.WithSharedCache(shared))
	}

	qcfg := questions.DefaultConfig()
	t.runner = session.NewRunner(session.Deps{
		Curriculum: cur,
		Generator:  questions.NewGenerator(gateway, qcfg),
		Validator:  questions.NewValidator(gateway, qcfg),
		Lessons:    lessons.NewService(gateway, lessons.DefaultConfig(), lessonOpts...),
		Sandbox:    sandbox.NewPythonRunner(),
		Learners:   st.LearnerRepo(),
		Mistakes:   st.MistakeRepo(),
		Scores:     st.LessonRepo(),
		Console:    t.console,
		Kinds:      kinds,
	})
	return t, nil
}

// Close releases the store and the shared cache.
func (t *tutor) Close() {
	if t.shared != nil {
		t.shared.Close()
	}
	t.store.Close()
}

// openSharedCache connects to PYTUTOR_REDIS_URL when set. A cache that
// cannot be reached is skipped; lessons are still stored per learner.
func openSharedCache(ctx context.Context) *cache.Cache {
	url := os.Getenv("PYTUTOR_REDIS_URL")
	if url == "" {
		return nil
	}
	c, err := cache.New(ctx, url)
	if err != nil {
		slog.Warn("shared lesson cache unavailable", "error", err)
		return nil
	}
	return c
}

// parseKinds turns --kind values into question kinds.
func parseKinds(values []string) ([]questions.Kind, error) {
	var kinds []questions.Kind
	for _, v := range values {
		k, err := questions.ParseKind(v)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
