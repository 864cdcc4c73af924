package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/pytutor/internal/questions"
	"github.com/abhisek/pytutor/internal/store"
)

// prepare builds the question set for plan. Lessons are taught first.
func (r *Runner) prepare(ctx context.Context, learner *store.Learner, plan Plan) ([]questions.Record, error) {
	switch plan.Kind {
	case KindLesson:
		return r.prepareLesson(ctx, learner, plan)

	case KindChapterReview:
		counts, err := r.d.Mistakes.CountByOriginLesson(ctx, learner.ID, plan.Topic.Chapter)
		if err != nil {
			return nil, err
		}
		r.d.Console.Heading("Review Test: "+plan.Topic.ChapterTitle, "Generating review questions...")
		return r.d.Generator.ChapterReview(ctx, questions.ReviewInput{
			Curriculum: r.d.Curriculum,
			Chapter:    plan.Topic.Chapter,
			Mistakes:   counts,
			Content:    r.content(learner),
			Kinds:      r.d.Kinds,
		})

	case KindCumulative:
		counts, err := r.reviewMistakes(ctx, learner.ID)
		if err != nil {
			return nil, err
		}
		r.d.Console.Heading("Final Cumulative Review: All Chapters", "Generating review questions...")
		return r.d.Generator.CumulativeReview(ctx, questions.ReviewInput{
			Curriculum: r.d.Curriculum,
			Mistakes:   counts,
			Content:    r.content(learner),
			Kinds:      r.d.Kinds,
		})
	}
	return nil, fmt.Errorf("unknown plan kind %q", plan.Kind)
}

func (r *Runner) prepareLesson(ctx context.Context, learner *store.Learner, plan Plan) ([]questions.Record, error) {
	c := r.d.Console
	topic := plan.Topic
	c.Heading(topic.ChapterTitle, fmt.Sprintf("Lesson %d: %s", topic.Lesson, topic.LessonTitle))

	var content string
	if r.d.Lessons != nil {
		c.Note("Retrieving lesson content...")
		lesson, err := r.d.Lessons.Lesson(ctx, learner.ID, topic)
		if err != nil {
			slog.Warn("lesson content unavailable", "topic", topic.TopicRef.String(), "error", err)
			c.Warn("Lesson content is unavailable right now, so the questions follow the lesson title only.")
		} else {
			content = lesson.Content
			c.Blank()
			c.Text(content)
		}
	}

	kinds := r.d.Kinds
	if len(kinds) == 0 {
		kinds = questions.KindPool(topic)
	}
	c.Blank()
	c.Note("Generating questions...")
	return r.d.Generator.Generate(ctx, questions.GenerateInput{
		Topic:   topic,
		Kinds:   kinds,
		Count:   plan.Count,
		Content: content,
	})
}

func (r *Runner) content(learner *store.Learner) questions.ContentFunc {
	if r.d.Lessons == nil {
		return nil
	}
	return r.d.Lessons.ContentFunc(learner.ID)
}

// reviewMistakes counts, per teaching chapter, the mistakes made in that
// chapter's review test.
func (r *Runner) reviewMistakes(ctx context.Context, learnerID int) (map[int]int, error) {
	byReview := make(map[int]map[int]int)
	counts := make(map[int]int)
	for _, ch := range r.d.Curriculum.Teaching() {
		review, ok := ch.Review()
		if !ok {
			continue
		}
		perChapter, seen := byReview[review.Number]
		if !seen {
			var err error
			perChapter, err = r.d.Mistakes.CountByChapter(ctx, learnerID, review.Number)
			if err != nil {
				return nil, err
			}
			byReview[review.Number] = perChapter
		}
		if n := perChapter[ch.Number]; n > 0 {
			counts[ch.Number] = n
		}
	}
	return counts, nil
}
