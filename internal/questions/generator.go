package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/llm"
)

// Sender sends one prompt to a model and reports whether text came back.
// *llm.Gateway implements it.
type Sender interface {
	Send(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, bool)
}

var (
	// ErrShortfall matches a *ShortfallError.
	ErrShortfall = errors.New("could not generate enough questions")

	// ErrEmptyKindPool is returned when no kinds are given.
	ErrEmptyKindPool = errors.New("no question kinds to choose from")
)

// ShortfallError is returned with the records that were generated when the
// attempt budget ran out first.
type ShortfallError struct {
	Requested int
	Generated int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("generated %d of %d questions", e.Generated, e.Requested)
}

func (e *ShortfallError) Unwrap() error { return ErrShortfall }

// GenerateInput describes one batch of questions.
type GenerateInput struct {
	// Topic is the lesson the questions are about.
	Topic curriculum.TopicInfo

	// AskedIn is the lesson the questions are asked in, when it differs
	// from Topic (review tests). Zero means Topic.
	AskedIn curriculum.TopicRef

	// Kinds is the pool each question's kind is drawn from.
	Kinds []Kind

	// Count is the number of questions wanted.
	Count int

	// Content is optional lesson text to ground the questions in.
	Content string
}

// Generator produces questions through a Sender.
type Generator struct {
	sender Sender
	cfg    Config
	rng    *rand.Rand
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRand makes kind selection and review shuffling use r.
func WithRand(r *rand.Rand) GeneratorOption {
	return func(g *Generator) { g.rng = r }
}

// NewGenerator creates a Generator.
func NewGenerator(sender Sender, cfg Config, opts ...GeneratorOption) *Generator {
	if cfg.MaxAttemptsPerQuestion < 1 {
		cfg.MaxAttemptsPerQuestion = 1
	}
	g := &Generator{sender: sender, cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSession starts a generation session with an empty registry.
func (g *Generator) NewSession() *Session {
	return &Session{
		id:       uuid.NewString(),
		gen:      g,
		registry: NewRegistry(g.cfg.SimilarityThreshold),
	}
}

// Generate runs in in a fresh session.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) ([]Record, error) {
	return g.NewSession().Generate(ctx, in)
}

func (g *Generator) intn(n int) int {
	if g.rng != nil {
		return g.rng.IntN(n)
	}
	return rand.IntN(n)
}

func (g *Generator) shuffle(n int, swap func(i, j int)) {
	if g.rng != nil {
		g.rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

// Session is one generation session. Questions accepted by any Generate
// call on the session are never repeated by a later call.
type Session struct {
	id       string
	gen      *Generator
	registry *Registry
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Registry exposes the session's accepted question texts.
func (s *Session) Registry() *Registry { return s.registry }

// Reset clears the registry so the session can serve an unrelated lesson.
func (s *Session) Reset() { s.registry.Reset() }

// Generate produces up to in.Count questions. Malformed, missing and
// duplicate model output is skipped. If the attempt budget runs out the
// records generated so far are returned with a *ShortfallError.
func (s *Session) Generate(ctx context.Context, in GenerateInput) ([]Record, error) {
	if in.Count <= 0 {
		return nil, nil
	}
	if len(in.Kinds) == 0 {
		return nil, ErrEmptyKindPool
	}
	for _, k := range in.Kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
	}

	cfg := s.gen.cfg
	budget := cfg.MaxTotalAttempts
	if budget <= 0 {
		budget = in.Count * cfg.MaxAttemptsPerQuestion
	}
	asked := in.AskedIn
	if asked == (curriculum.TopicRef{}) {
		asked = in.Topic.TopicRef
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)
	log := slog.With("session", s.id, "topic", in.Topic.TopicRef.String())

	accepted := make([]Record, 0, in.Count)
	attempts, streak := 0, 0
	for len(accepted) < in.Count && streak < cfg.MaxAttemptsPerQuestion && attempts < budget {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}
		attempts++
		streak++

		kind := in.Kinds[s.gen.intn(len(in.Kinds))]
		prompt, err := BuildContentPrompt(in.Topic, kind, in.Content)
		if err != nil {
			return accepted, err
		}

		raw, ok := s.gen.sender.Send(ctx, prompt, cfg.Temperature, cfg.QuestionTokens)
		if !ok {
			log.Warn("no model response", "kind", kind, "attempt", attempts)
			continue
		}

		rec, err := Parse(kind, raw)
		if err != nil {
			log.Warn("question rejected", "kind", kind, "attempt", attempts, "reason", err)
			continue
		}
		if !s.registry.Admit(rec.Prompt) {
			log.Warn("duplicate question rejected", "kind", kind, "attempt", attempts)
			continue
		}

		rec.Topic = asked
		rec.Origin = in.Topic.TopicRef
		accepted = append(accepted, *rec)
		streak = 0
	}

	if len(accepted) < in.Count {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}
		log.Warn("not enough unique questions generated",
			"requested", in.Count, "generated", len(accepted), "attempts", attempts)
		return accepted, &ShortfallError{Requested: in.Count, Generated: len(accepted)}
	}
	log.Debug("questions generated", "count", len(accepted), "attempts", attempts)
	return accepted, nil
}
