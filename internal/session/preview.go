package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/questions"
)

// Preview generates count questions for ref and asks them without
// touching learner progress. Only Curriculum, Generator, Validator,
// Sandbox and Console are needed; lesson text is used when Lessons is set.
func (r *Runner) Preview(ctx context.Context, ref curriculum.TopicRef, count int) (*SessionSummary, error) {
	if count <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", count)
	}
	topic, err := r.d.Curriculum.Topic(ref)
	if err != nil {
		return nil, err
	}

	c := r.d.Console
	c.Heading(topic.ChapterTitle, fmt.Sprintf("Lesson %d: %s", topic.Lesson, topic.LessonTitle))

	var content string
	if r.d.Lessons != nil {
		if lesson, err := r.d.Lessons.Lesson(ctx, 0, topic); err == nil {
			content = lesson.Content
		}
	}

	kinds := r.d.Kinds
	if len(kinds) == 0 {
		kinds = questions.KindPool(topic)
	}
	c.Note(fmt.Sprintf("Generating %d questions...", count))
	qs, err := r.d.Generator.Generate(ctx, questions.GenerateInput{
		Topic:   topic,
		Kinds:   kinds,
		Count:   count,
		Content: content,
	})
	var short *questions.ShortfallError
	if err != nil && !errors.As(err, &short) {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%s: %w", ref, ErrNoQuestions)
	}

	plan := Plan{Kind: KindLesson, Topic: topic, Count: count}
	state := NewSessionState(uuid.NewString(), plan, qs, r.d.Now())
	if err := r.ask(ctx, nil, state); err != nil {
		return nil, err
	}

	summary := BuildSummary(state, r.d.Curriculum.Passed(state.TotalCorrect, len(state.Answers)), r.d.Now())
	r.report(summary)
	return summary, nil
}
