package session

import (
	"testing"
	"time"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/questions"
)

func ref(ch, l int) curriculum.TopicRef {
	return curriculum.TopicRef{Chapter: ch, Lesson: l}
}

func testCurriculum(t *testing.T) *curriculum.Curriculum {
	t.Helper()
	cur, err := curriculum.Parse([]byte(testDoc))
	if err != nil {
		t.Fatalf("parse curriculum: %v", err)
	}
	return cur
}

func TestUnlocked(t *testing.T) {
	tests := []struct {
		pointer, ref curriculum.TopicRef
		want         bool
	}{
		{ref(1, 1), ref(1, 1), true},
		{ref(1, 2), ref(1, 1), true},
		{ref(1, 2), ref(1, 3), false},
		{ref(2, 1), ref(1, 3), true},
		{ref(1, 3), ref(2, 1), false},
		{ref(9, 1), ref(2, 2), true},
	}
	for _, tc := range tests {
		if got := Unlocked(tc.pointer, tc.ref); got != tc.want {
			t.Errorf("Unlocked(%s, %s) = %v, want %v", tc.pointer, tc.ref, got, tc.want)
		}
	}
}

func TestNextPointer(t *testing.T) {
	cur := testCurriculum(t)
	plan := func(r curriculum.TopicRef) Plan {
		p, err := PlanFor(cur, r)
		if err != nil {
			t.Fatalf("PlanFor(%s): %v", r, err)
		}
		return p
	}

	tests := []struct {
		name    string
		pointer curriculum.TopicRef
		plan    Plan
		passed  bool
		want    curriculum.TopicRef
		moved   bool
	}{
		{"lesson advances even when failed", ref(1, 1), plan(ref(1, 1)), false, ref(1, 2), true},
		{"last lesson opens the review", ref(1, 2), plan(ref(1, 2)), true, ref(1, 3), true},
		{"replay does not move back", ref(2, 1), plan(ref(1, 1)), true, ref(2, 1), false},
		{"failed review stays", ref(1, 3), plan(ref(1, 3)), false, ref(1, 3), false},
		{"passed review opens next chapter", ref(1, 3), plan(ref(1, 3)), true, ref(2, 1), true},
		{"last chapter review opens the final", ref(2, 2), plan(ref(2, 2)), true, ref(9, 1), true},
		{"nothing after the final", ref(9, 1), plan(ref(9, 1)), true, ref(9, 1), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, moved := NextPointer(cur, tc.pointer, tc.plan, tc.passed)
			if got != tc.want || moved != tc.moved {
				t.Errorf("NextPointer() = %s, %v; want %s, %v", got, moved, tc.want, tc.moved)
			}
		})
	}
}

func TestPlanFor(t *testing.T) {
	cur := testCurriculum(t)
	tests := []struct {
		ref   curriculum.TopicRef
		kind  PlanKind
		count int
	}{
		{ref(1, 1), KindLesson, 2},
		{ref(1, 3), KindChapterReview, 2},
		{ref(2, 1), KindLesson, 1},
		{ref(9, 1), KindCumulative, 3},
	}
	for _, tc := range tests {
		p, err := PlanFor(cur, tc.ref)
		if err != nil {
			t.Fatalf("PlanFor(%s): %v", tc.ref, err)
		}
		if p.Kind != tc.kind || p.Count != tc.count {
			t.Errorf("PlanFor(%s) = %s/%d, want %s/%d", tc.ref, p.Kind, p.Count, tc.kind, tc.count)
		}
		if p.Graded() != (tc.kind != KindLesson) {
			t.Errorf("PlanFor(%s).Graded() = %v", tc.ref, p.Graded())
		}
	}

	if _, err := PlanFor(cur, ref(3, 1)); err == nil {
		t.Error("expected an error for a chapter outside the curriculum")
	}
}

func TestBuildSummary(t *testing.T) {
	cur := testCurriculum(t)
	p, _ := PlanFor(cur, ref(1, 3))
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	qs := []questions.Record{
		{Kind: questions.KindTrueFalse, AnswerKey: "true"},
		{Kind: questions.KindMultipleChoice, AnswerKey: "A"},
		{Kind: questions.KindTrueFalse, AnswerKey: "false"},
	}
	state := NewSessionState("s1", p, qs, start)

	verdicts := []bool{true, false, true}
	for _, ok := range verdicts {
		state.HandleAnswer(questions.Submission{}, questions.Verdict{Correct: ok})
	}
	state.HandleAnswer(questions.Submission{}, questions.Verdict{Correct: true})
	if state.Current() != nil || len(state.Answers) != 3 {
		t.Fatalf("answers past the last question should be ignored, got %d", len(state.Answers))
	}

	s := BuildSummary(state, cur.Passed(state.TotalCorrect, len(state.Answers)), start.Add(90*time.Second))
	if s.TotalQuestions != 3 || s.TotalCorrect != 2 || s.Requested != 2 {
		t.Errorf("unexpected totals %+v", s)
	}
	if s.Passed {
		t.Error("2/3 is below the 70% pass mark")
	}
	if s.Duration != 90*time.Second {
		t.Errorf("duration = %v", s.Duration)
	}
	want := []KindResult{
		{Kind: questions.KindTrueFalse, Asked: 2, Correct: 2},
		{Kind: questions.KindMultipleChoice, Asked: 1, Correct: 0},
	}
	if len(s.KindResults) != len(want) {
		t.Fatalf("kind results = %+v", s.KindResults)
	}
	for i := range want {
		if s.KindResults[i] != want[i] {
			t.Errorf("kind result %d = %+v, want %+v", i, s.KindResults[i], want[i])
		}
	}
}
