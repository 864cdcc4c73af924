package session

import (
	"fmt"

	"github.com/abhisek/pytutor/internal/curriculum"
)

// PlanKind says how a session's questions are chosen.
type PlanKind string

const (
	// KindLesson teaches one lesson and quizzes on it.
	KindLesson PlanKind = "lesson"
	// KindChapterReview tests a whole chapter, weighted by past mistakes.
	KindChapterReview PlanKind = "chapter_review"
	// KindCumulative is the final review across every chapter.
	KindCumulative PlanKind = "cumulative"
)

// Plan is what a session will play.
type Plan struct {
	Kind  PlanKind
	Topic curriculum.TopicInfo

	// Count is the number of questions requested.
	Count int
}

// Graded reports whether the session must reach the pass mark to advance.
func (p Plan) Graded() bool {
	return p.Kind != KindLesson
}

// PlanFor resolves ref into a plan.
func PlanFor(cur *curriculum.Curriculum, ref curriculum.TopicRef) (Plan, error) {
	topic, err := cur.Topic(ref)
	if err != nil {
		return Plan{}, err
	}
	ch, _ := cur.Chapter(ref.Chapter)
	l, _ := ch.Lesson(ref.Lesson)

	p := Plan{Kind: KindLesson, Topic: topic, Count: l.QuestionCount}
	switch {
	case ch.Cumulative:
		p.Kind = KindCumulative
	case l.Review:
		p.Kind = KindChapterReview
	}
	if p.Count <= 0 {
		return Plan{}, fmt.Errorf("lesson %s has no questions", ref)
	}
	return p, nil
}
