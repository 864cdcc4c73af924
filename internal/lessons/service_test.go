package lessons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/llm"
	"github.com/abhisek/pytutor/internal/store"
)

const loopsLesson = "A for loop walks over any iterable.\n\nUse range() to count."

func loopsTopic() curriculum.TopicInfo {
	return curriculum.TopicInfo{
		TopicRef:     curriculum.TopicRef{Chapter: 5, Lesson: 2},
		ChapterTitle: "Control Flow",
		LessonTitle:  "For Loops",
	}
}

// mapCache is an in-memory SharedCache.
type mapCache struct {
	data    map[string]string
	ttl     time.Duration
	failGet bool
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (m *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	if m.failGet {
		return "", false, errors.New("connection refused")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func openStore(t *testing.T) (*store.Store, int) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	l, err := s.LearnerRepo().GetOrCreate(context.Background(), "ada")
	if err != nil {
		t.Fatalf("create learner: %v", err)
	}
	return s, l.ID
}

func TestService_GeneratesAndStores(t *testing.T) {
	s, learnerID := openStore(t)
	mock := llm.NewMockProvider(llm.MockText("  " + loopsLesson + "\n")...)
	svc := NewService(llm.NewGateway(mock), DefaultConfig(), WithStore(s.LessonRepo()))

	lesson, err := svc.Lesson(context.Background(), learnerID, loopsTopic())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.Content != loopsLesson || lesson.Source != SourceModel {
		t.Errorf("unexpected lesson %+v", lesson)
	}
	if lesson.Title != "For Loops" || lesson.Topic != loopsTopic().TopicRef {
		t.Errorf("unexpected lesson identity %+v", lesson)
	}

	req := mock.Calls[0]
	if req.MaxTokens != 1000 || req.Temperature != 0.7 {
		t.Errorf("request params = (%.1f, %d), want (0.7, 1000)", req.Temperature, req.MaxTokens)
	}
	if !strings.Contains(req.Messages[0].Content, "Lesson: For Loops") {
		t.Errorf("prompt should name the lesson:\n%s", req.Messages[0].Content)
	}

	// Second lookup is served from the store without another model call.
	lesson, err = svc.Lesson(context.Background(), learnerID, loopsTopic())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.Source != SourceStore || lesson.Content != loopsLesson {
		t.Errorf("expected stored lesson, got %+v", lesson)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 model call, got %d", mock.CallCount())
	}
}

func TestService_SharedCacheAcrossLearners(t *testing.T) {
	s, learnerID := openStore(t)
	shared := newMapCache()
	mock := llm.NewMockProvider(llm.MockText(loopsLesson)...)
	svc := NewService(llm.NewGateway(mock), DefaultConfig(),
		WithStore(s.LessonRepo()), WithSharedCache(shared))

	if _, err := svc.Lesson(context.Background(), learnerID, loopsTopic()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shared.data[CacheKey(loopsTopic())] != loopsLesson {
		t.Fatalf("generated lesson should be shared, cache = %v", shared.data)
	}
	if shared.ttl != DefaultConfig().CacheTTL {
		t.Errorf("ttl = %v, want %v", shared.ttl, DefaultConfig().CacheTTL)
	}

	other, err := s.LearnerRepo().GetOrCreate(context.Background(), "grace")
	if err != nil {
		t.Fatalf("create learner: %v", err)
	}
	lesson, err := svc.Lesson(context.Background(), other.ID, loopsTopic())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.Source != SourceShared {
		t.Errorf("expected shared lesson, got %s", lesson.Source)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 model call, got %d", mock.CallCount())
	}

	content, ok, err := s.LessonRepo().Content(context.Background(), other.ID, 5, 2)
	if err != nil || !ok || content != loopsLesson {
		t.Errorf("shared lesson should be stored for the learner: %q, %v, %v", content, ok, err)
	}
}

func TestService_SharedCacheFailureFallsBack(t *testing.T) {
	shared := newMapCache()
	shared.failGet = true
	mock := llm.NewMockProvider(llm.MockText(loopsLesson)...)
	svc := NewService(llm.NewGateway(mock), DefaultConfig(), WithSharedCache(shared))

	lesson, err := svc.Lesson(context.Background(), 0, loopsTopic())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.Source != SourceModel {
		t.Errorf("expected generated lesson, got %s", lesson.Source)
	}
}

func TestService_NoContent(t *testing.T) {
	tests := map[string]*llm.MockProvider{
		"gateway failure": llm.NewMockProvider(),
		"blank reply":     llm.NewMockProvider(llm.MockText("   \n")...),
	}
	for name, mock := range tests {
		t.Run(name, func(t *testing.T) {
			svc := NewService(llm.NewGateway(mock), DefaultConfig())
			lesson, err := svc.Lesson(context.Background(), 0, loopsTopic())
			if !errors.Is(err, ErrNoContent) {
				t.Fatalf("expected ErrNoContent, got %v", err)
			}
			if lesson != nil {
				t.Errorf("expected no lesson, got %+v", lesson)
			}
		})
	}
}

func TestService_ContentFunc(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(loopsLesson)...)
	svc := NewService(llm.NewGateway(mock), DefaultConfig())
	content := svc.ContentFunc(0)

	if got := content(context.Background(), loopsTopic()); got != loopsLesson {
		t.Errorf("content = %q", got)
	}
	// The mock is drained, so the next lookup fails quietly.
	if got := content(context.Background(), loopsTopic()); got != "" {
		t.Errorf("expected empty content after failure, got %q", got)
	}
}

func TestCacheKey(t *testing.T) {
	got := CacheKey(loopsTopic())
	if got != "lesson:5.2:control-flow/for-loops" {
		t.Errorf("CacheKey() = %q", got)
	}
}
