package lessons

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/llm"
	"github.com/abhisek/pytutor/internal/questions"
	"github.com/abhisek/pytutor/internal/store"
)

// ErrNoContent is returned when the model produced no lesson text.
var ErrNoContent = errors.New("no lesson content")

// SharedCache stores lesson text shared by every learner.
type SharedCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Service looks lesson text up in the learner's store, then the shared
// cache, and generates it only when both miss.
type Service struct {
	sender questions.Sender
	cfg    Config
	repo   store.LessonRepo
	shared SharedCache
}

// Option configures a Service.
type Option func(*Service)

// WithStore caches lessons per learner.
func WithStore(repo store.LessonRepo) Option {
	return func(s *Service) { s.repo = repo }
}

// WithSharedCache shares generated lessons across learners.
func WithSharedCache(c SharedCache) Option {
	return func(s *Service) { s.shared = c }
}

// NewService creates a lesson content service.
func NewService(sender questions.Sender, cfg Config, opts ...Option) *Service {
	s := &Service{sender: sender, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lesson returns the lesson text for topic. learnerID selects the
// per-learner copy; zero skips the store.
func (s *Service) Lesson(ctx context.Context, learnerID int, topic curriculum.TopicInfo) (*Lesson, error) {
	lesson := &Lesson{Topic: topic.TopicRef, Title: topic.LessonTitle}
	useStore := s.repo != nil && learnerID > 0

	if useStore {
		content, ok, err := s.repo.Content(ctx, learnerID, topic.Chapter, topic.Lesson)
		if err != nil {
			return nil, fmt.Errorf("lesson %s: %w", topic.TopicRef, err)
		}
		if ok {
			lesson.Content = content
			lesson.Source = SourceStore
			return lesson, nil
		}
	}

	key := CacheKey(topic)
	if content, ok := s.fromShared(ctx, key); ok {
		lesson.Content = content
		lesson.Source = SourceShared
	} else {
		content, err := s.generate(ctx, topic)
		if err != nil {
			return nil, err
		}
		lesson.Content = content
		lesson.Source = SourceModel
		s.toShared(ctx, key, content)
	}

	if useStore {
		if err := s.repo.SaveContent(ctx, learnerID, topic.Chapter, topic.Lesson, lesson.Content); err != nil {
			return nil, fmt.Errorf("lesson %s: %w", topic.TopicRef, err)
		}
	}
	return lesson, nil
}

// ContentFunc adapts the service for review generation. Lookups that fail
// yield no content, which leaves the question prompts unanchored.
func (s *Service) ContentFunc(learnerID int) questions.ContentFunc {
	return func(ctx context.Context, topic curriculum.TopicInfo) string {
		lesson, err := s.Lesson(ctx, learnerID, topic)
		if err != nil {
			slog.Warn("lesson content unavailable", "topic", topic.TopicRef.String(), "error", err)
			return ""
		}
		return lesson.Content
	}
}

func (s *Service) generate(ctx context.Context, topic curriculum.TopicInfo) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLesson)
	reply, ok := s.sender.Send(ctx, questions.BuildLessonPrompt(topic), s.cfg.Temperature, s.cfg.MaxTokens)
	content := strings.TrimSpace(reply)
	if !ok || content == "" {
		return "", fmt.Errorf("lesson %s: %w", topic.TopicRef, ErrNoContent)
	}
	return content, nil
}

func (s *Service) fromShared(ctx context.Context, key string) (string, bool) {
	if s.shared == nil {
		return "", false
	}
	content, ok, err := s.shared.Get(ctx, key)
	if err != nil {
		slog.Warn("shared lesson cache read failed", "key", key, "error", err)
		return "", false
	}
	return content, ok && content != ""
}

func (s *Service) toShared(ctx context.Context, key, content string) {
	if s.shared == nil {
		return
	}
	if err := s.shared.Set(ctx, key, content, s.cfg.CacheTTL); err != nil {
		slog.Warn("shared lesson cache write failed", "key", key, "error", err)
	}
}

// CacheKey names a lesson in the shared cache. The titles are part of the
// key so a different curriculum never reads another's lessons.
func CacheKey(topic curriculum.TopicInfo) string {
	return fmt.Sprintf("lesson:%s:%s/%s", topic.TopicRef, slug(topic.ChapterTitle), slug(topic.LessonTitle))
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
