package questions

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/pytutor/internal/curriculum"
)

// ContentFunc returns lesson text for topic, or "" when none is available.
type ContentFunc func(ctx context.Context, topic curriculum.TopicInfo) string

// ReviewInput describes a review test.
type ReviewInput struct {
	Curriculum *curriculum.Curriculum

	// Chapter is the chapter under review. Ignored for the cumulative review.
	Chapter int

	// Mistakes weights the review toward weak spots. Chapter reviews key it
	// by lesson, the cumulative review by chapter.
	Mistakes map[int]int

	// Content grounds questions in lesson text. Optional.
	Content ContentFunc

	// Kinds restricts the question kinds. Empty means the non-code kinds.
	Kinds []Kind
}

// fillRounds bounds the random top-up per missing question.
const fillRounds = 2

// ChapterReview builds a chapter's review test. Lessons with recorded
// mistakes contribute that many questions; the rest are drawn from random
// lessons of the chapter.
func (g *Generator) ChapterReview(ctx context.Context, in ReviewInput) ([]Record, error) {
	ch, ok := in.Curriculum.Chapter(in.Chapter)
	if !ok {
		return nil, fmt.Errorf("chapter %d is not in the curriculum", in.Chapter)
	}
	review, ok := ch.Review()
	if !ok {
		return nil, fmt.Errorf("chapter %d has no review lesson", ch.Number)
	}
	regular := ch.Regular()
	if len(regular) == 0 {
		return nil, fmt.Errorf("chapter %d has no lessons to review", ch.Number)
	}

	b := &reviewBatch{
		sess:  g.NewSession(),
		in:    in,
		asked: curriculum.TopicRef{Chapter: ch.Number, Lesson: review.Number},
		total: review.QuestionCount,
	}
	for _, l := range regular {
		if n := in.Mistakes[l.Number]; n > 0 {
			if err := b.add(ctx, curriculum.TopicRef{Chapter: ch.Number, Lesson: l.Number}, n); err != nil {
				return nil, err
			}
		}
	}
	err := b.fill(ctx, func() curriculum.TopicRef {
		l := regular[g.intn(len(regular))]
		return curriculum.TopicRef{Chapter: ch.Number, Lesson: l.Number}
	})
	if err != nil {
		return nil, err
	}
	return b.finish()
}

// CumulativeReview builds the final review across every teaching chapter.
// Chapters with review-test mistakes contribute that many questions from
// their review lesson; the rest are drawn from random lessons.
func (g *Generator) CumulativeReview(ctx context.Context, in ReviewInput) ([]Record, error) {
	cum, ok := in.Curriculum.Cumulative()
	if !ok {
		return nil, errors.New("curriculum has no cumulative review")
	}
	final, ok := cum.Review()
	if !ok {
		final = &cum.Lessons[0]
	}
	teaching := in.Curriculum.Teaching()
	if len(teaching) == 0 {
		return nil, errors.New("curriculum has no chapters to review")
	}

	b := &reviewBatch{
		sess:  g.NewSession(),
		in:    in,
		asked: curriculum.TopicRef{Chapter: cum.Number, Lesson: final.Number},
		total: final.QuestionCount,
	}
	for _, ch := range teaching {
		n := in.Mistakes[ch.Number]
		if n <= 0 {
			continue
		}
		origin := curriculum.TopicRef{Chapter: ch.Number, Lesson: ch.Lessons[0].Number}
		if review, ok := ch.Review(); ok {
			origin.Lesson = review.Number
		}
		if err := b.add(ctx, origin, n); err != nil {
			return nil, err
		}
	}
	err := b.fill(ctx, func() curriculum.TopicRef {
		ch := teaching[g.intn(len(teaching))]
		lessons := ch.Regular()
		if len(lessons) == 0 {
			lessons = ch.Lessons
		}
		l := lessons[g.intn(len(lessons))]
		return curriculum.TopicRef{Chapter: ch.Number, Lesson: l.Number}
	})
	if err != nil {
		return nil, err
	}
	return b.finish()
}

// reviewBatch accumulates a review test inside one session.
type reviewBatch struct {
	sess  *Session
	in    ReviewInput
	asked curriculum.TopicRef
	total int
	out   []Record
}

func (b *reviewBatch) add(ctx context.Context, origin curriculum.TopicRef, n int) error {
	if remaining := b.total - len(b.out); n > remaining {
		n = remaining
	}
	if n <= 0 {
		return nil
	}
	info, err := b.in.Curriculum.Topic(origin)
	if err != nil {
		return err
	}
	var content string
	if b.in.Content != nil {
		content = b.in.Content(ctx, info)
	}

	kinds := b.in.Kinds
	if len(kinds) == 0 {
		kinds = nonCodeKinds
	}
	recs, err := b.sess.Generate(ctx, GenerateInput{
		Topic:   info,
		AskedIn: b.asked,
		Kinds:   kinds,
		Count:   n,
		Content: content,
	})
	b.out = append(b.out, recs...)
	if err != nil && !errors.Is(err, ErrShortfall) {
		return err
	}
	return nil
}

func (b *reviewBatch) fill(ctx context.Context, pick func() curriculum.TopicRef) error {
	rounds := fillRounds * b.total
	for i := 0; i < rounds && len(b.out) < b.total; i++ {
		if err := b.add(ctx, pick(), 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *reviewBatch) finish() ([]Record, error) {
	b.sess.gen.shuffle(len(b.out), func(i, j int) { b.out[i], b.out[j] = b.out[j], b.out[i] })
	if len(b.out) > b.total {
		b.out = b.out[:b.total]
	}
	if len(b.out) < b.total {
		return b.out, &ShortfallError{Requested: b.total, Generated: len(b.out)}
	}
	return b.out, nil
}
