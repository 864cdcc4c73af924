package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/pytutor/internal/store"
)

func TestGateway_Send(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: "Question: What is a tuple?"})
	g := NewGateway(mock)

	text, ok := g.Send(context.Background(), "Create a question", DefaultTemperature, 300)
	if !ok {
		t.Fatal("expected a result")
	}
	if text != "Question: What is a tuple?" {
		t.Fatalf("unexpected text %q", text)
	}

	req := mock.Calls[0]
	if req.System != DefaultSystemPrompt {
		t.Errorf("system = %q, want %q", req.System, DefaultSystemPrompt)
	}
	if req.MaxTokens != 300 || req.Temperature != 0.7 {
		t.Errorf("params = (%d, %.1f), want (300, 0.7)", req.MaxTokens, req.Temperature)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser || req.Messages[0].Content != "Create a question" {
		t.Errorf("unexpected messages %+v", req.Messages)
	}
}

func TestGateway_NoResultAfterRetries(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	g := NewGateway(WithRetry(mock, RetryConfig{MaxAttempts: 3}))

	text, ok := g.Send(context.Background(), "prompt", DefaultTemperature, 300)
	if ok || text != "" {
		t.Fatalf("expected no result, got (%q, %v)", text, ok)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestGateway_RecoversFromEmptyCompletion(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: ""},
		MockResponse{Content: "Correct Answer: True"},
	)
	g := NewGateway(WithRetry(mock, RetryConfig{MaxAttempts: 2}))

	text, ok := g.Send(context.Background(), "prompt", DefaultTemperature, 300)
	if !ok || text != "Correct Answer: True" {
		t.Fatalf("got (%q, %v)", text, ok)
	}
}

func TestGateway_Options(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: "ok"})
	g := NewGateway(mock, WithSystemPrompt("You are a strict grader."), WithTimeout(time.Second))

	if _, ok := g.Send(context.Background(), "grade", 0, 50); !ok {
		t.Fatal("expected a result")
	}
	if mock.Calls[0].System != "You are a strict grader." {
		t.Fatalf("system prompt not applied: %q", mock.Calls[0].System)
	}
	if g.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", g.ModelID())
	}
}

type recordingEventRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
}

func (r *recordingEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	repo := &recordingEventRepo{}
	mock := NewMockProvider(
		MockResponse{Content: "Scenario: ...", Usage: Usage{InputTokens: 12, OutputTokens: 8}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p := WithLogging(mock, "openai", repo)

	ctx := WithPurpose(context.Background(), PurposeJudge)
	if _, err := p.Generate(ctx, UserPrompt("sys", "first", 0.7, 400)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, UserPrompt("sys", "second", 0.7, 400)); err == nil {
		t.Fatal("expected error")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok, failed := repo.events[0], repo.events[1]
	if !ok.Success || ok.Purpose != "judge" || ok.Provider != "openai" || ok.Model != "mock" {
		t.Errorf("unexpected success event %+v", ok)
	}
	if ok.InputTokens != 12 || ok.OutputTokens != 8 {
		t.Errorf("tokens = %d/%d, want 12/8", ok.InputTokens, ok.OutputTokens)
	}
	if !strings.Contains(ok.RequestBody, "[user]\nfirst") || ok.ResponseBody != "Scenario: ..." {
		t.Errorf("bodies not captured: %q / %q", ok.RequestBody, ok.ResponseBody)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("expected failed event with message, got %+v", failed)
	}
}
