package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/pytutor/internal/console"
	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/lessons"
	"github.com/abhisek/pytutor/internal/questions"
	"github.com/abhisek/pytutor/internal/sandbox"
	"github.com/abhisek/pytutor/internal/store"
)

const testDoc = `
version: v1.0.0
pass_mark: 70
chapters:
  - number: 1
    title: "Basics"
    lessons:
      - {number: 1, title: "Variables", question_count: 2}
      - {number: 2, title: "Loops", question_count: 2}
      - {number: 3, title: "Review Test: Basics", question_count: 2, review: true}
  - number: 2
    title: "Functions"
    lessons:
      - {number: 1, title: "Defining Functions", question_count: 1}
      - {number: 2, title: "Review Test: Functions", question_count: 1, review: true}
  - number: 9
    title: "Cumulative Review"
    cumulative: true
    lessons:
      - {number: 1, title: "Final Cumulative Review", question_count: 3, review: true}
`

const lessonText = "Variables name values so you can use them later."

var stems = []string{
	"Python lists can hold values of different types.",
	"A while loop checks its condition before every pass.",
	"Indentation marks where a block of code ends.",
	"The range function stops before its end value.",
	"Strings are immutable once created.",
	"Dictionaries map hashable keys to values.",
}

// tutorSender answers lesson, question and judge prompts.
type tutorSender struct {
	mu          sync.Mutex
	n           int
	judge       string
	noQuestions bool
	prompts     []string
}

func (s *tutorSender) Send(_ context.Context, prompt string, _ float64, _ int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)

	switch {
	case strings.Contains(prompt, "2-3 paragraphs"):
		return lessonText, true
	case strings.Contains(prompt, "You are grading"):
		return s.judge, true
	case s.noQuestions:
		return "", false
	}

	stem := stems[s.n%len(stems)]
	s.n++
	switch {
	case strings.Contains(prompt, "true/false question"):
		return fmt.Sprintf("True or False: %s\nCorrect Answer: True", stem), true
	case strings.Contains(prompt, "multiple-choice question"):
		return fmt.Sprintf("Question: %s\nA) yes\nB) no\nCorrect Answer: A", stem), true
	case strings.Contains(prompt, "coding challenge"):
		return "Task: Write a function that returns 42.\n```python\ndef f():\n    return 42\n```", true
	}
	return "", false
}

func (s *tutorSender) judgePrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.prompts {
		if strings.HasPrefix(p, "You are grading") {
			return p
		}
	}
	return ""
}

// fakeSandbox returns a fixed result.
type fakeSandbox struct {
	res   sandbox.Result
	calls int
}

func (f *fakeSandbox) Run(_ context.Context, _ string) (sandbox.Result, error) {
	f.calls++
	return f.res, nil
}

type fixture struct {
	store   *store.Store
	cur     *curriculum.Curriculum
	sender  *tutorSender
	sandbox *fakeSandbox
	out     *bytes.Buffer
	learner *store.Learner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cur, err := curriculum.Parse([]byte(testDoc))
	if err != nil {
		t.Fatalf("parse curriculum: %v", err)
	}
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
	return &fixture{
		store:   s,
		cur:     cur,
		sender:  &tutorSender{judge: "Correct. Nice work."},
		sandbox: &fakeSandbox{},
		out:     &bytes.Buffer{},
		learner: l,
	}
}

func (f *fixture) runner(input string, kinds ...questions.Kind) *Runner {
	cfg := questions.DefaultConfig()
	return NewRunner(Deps{
		Curriculum: f.cur,
		Generator:  questions.NewGenerator(f.sender, cfg),
		Validator:  questions.NewValidator(f.sender, cfg),
		Lessons:    lessons.NewService(f.sender, lessons.DefaultConfig(), lessons.WithStore(f.store.LessonRepo())),
		Sandbox:    f.sandbox,
		Learners:   f.store.LearnerRepo(),
		Mistakes:   f.store.MistakeRepo(),
		Scores:     f.store.LessonRepo(),
		Console:    console.New(strings.NewReader(input), f.out),
		Kinds:      kinds,
	})
}

func (f *fixture) setPointer(t *testing.T, ref curriculum.TopicRef) {
	t.Helper()
	if err := f.store.LearnerRepo().SetProgress(context.Background(), f.learner.ID, ref.Chapter, ref.Lesson); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	f.learner.Chapter, f.learner.Lesson = ref.Chapter, ref.Lesson
}

func (f *fixture) mistakes(t *testing.T) []store.Mistake {
	t.Helper()
	list, err := f.store.MistakeRepo().List(context.Background(), f.learner.ID, store.MistakeQuery{})
	if err != nil {
		t.Fatalf("list mistakes: %v", err)
	}
	return list
}

func (f *fixture) score(t *testing.T, ref curriculum.TopicRef) *store.LessonScore {
	t.Helper()
	scores, err := f.store.LessonRepo().Scores(context.Background(), f.learner.ID)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	for i := range scores {
		if scores[i].Chapter == ref.Chapter && scores[i].Lesson == ref.Lesson {
			return &scores[i]
		}
	}
	return nil
}

func TestPlay_Lesson(t *testing.T) {
	f := newFixture(t)
	ref := curriculum.TopicRef{Chapter: 1, Lesson: 1}

	summary, err := f.runner("true\nfalse\n", questions.KindTrueFalse).Play(context.Background(), f.learner, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalQuestions != 2 || summary.TotalCorrect != 1 || summary.Passed {
		t.Errorf("unexpected summary %+v", summary)
	}
	if !summary.Advanced || summary.Next != "1.2: Loops" {
		t.Errorf("lesson should advance to 1.2, got advanced=%v next=%q", summary.Advanced, summary.Next)
	}
	if f.learner.Chapter != 1 || f.learner.Lesson != 2 {
		t.Errorf("learner pointer = %d.%d, want 1.2", f.learner.Chapter, f.learner.Lesson)
	}
	stored, err := f.store.LearnerRepo().Get(context.Background(), "ada")
	if err != nil || stored.Lesson != 2 {
		t.Errorf("stored progress = %+v, %v", stored, err)
	}

	if s := f.score(t, ref); s == nil || s.Correct != 1 || s.Total != 2 {
		t.Errorf("unexpected score %+v", s)
	}

	mistakes := f.mistakes(t)
	if len(mistakes) != 1 {
		t.Fatalf("expected 1 mistake, got %d", len(mistakes))
	}
	m := mistakes[0]
	if m.Chapter != 1 || m.Lesson != 1 || m.OriginLesson != 1 || m.Kind != "true_false" {
		t.Errorf("unexpected mistake placement %+v", m)
	}
	if m.LearnerAnswer != "false" || m.CorrectAnswer != "true" || m.SessionID != summary.ID {
		t.Errorf("unexpected mistake %+v", m)
	}

	content, ok, err := f.store.LessonRepo().Content(context.Background(), f.learner.ID, 1, 1)
	if err != nil || !ok || content != lessonText {
		t.Errorf("lesson content should be stored: %q, %v, %v", content, ok, err)
	}
	if !strings.Contains(f.out.String(), lessonText) {
		t.Error("lesson content should be shown")
	}
}

func TestPlay_ReplayKeepsPointerAndClearsMistakes(t *testing.T) {
	f := newFixture(t)
	ref := curriculum.TopicRef{Chapter: 1, Lesson: 1}

	if _, err := f.runner("false\nfalse\n", questions.KindTrueFalse).Play(context.Background(), f.learner, ref); err != nil {
		t.Fatalf("first play: %v", err)
	}
	if n := len(f.mistakes(t)); n != 2 {
		t.Fatalf("expected 2 mistakes after first play, got %d", n)
	}

	f.setPointer(t, curriculum.TopicRef{Chapter: 2, Lesson: 1})
	summary, err := f.runner("true\ntrue\n", questions.KindTrueFalse).Play(context.Background(), f.learner, ref)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if summary.Advanced {
		t.Error("replaying an earlier lesson must not move the pointer")
	}
	if f.learner.Chapter != 2 || f.learner.Lesson != 1 {
		t.Errorf("learner pointer = %d.%d, want 2.1", f.learner.Chapter, f.learner.Lesson)
	}
	if n := len(f.mistakes(t)); n != 0 {
		t.Errorf("replay should clear the lesson's old mistakes, %d remain", n)
	}
}

func TestPlay_Locked(t *testing.T) {
	f := newFixture(t)
	_, err := f.runner("", questions.KindTrueFalse).Play(context.Background(), f.learner, curriculum.TopicRef{Chapter: 1, Lesson: 3})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if len(f.sender.prompts) != 0 {
		t.Error("a locked lesson should not reach the model")
	}
}

func TestPlay_ChapterReview(t *testing.T) {
	f := newFixture(t)
	review := curriculum.TopicRef{Chapter: 1, Lesson: 3}
	f.setPointer(t, review)

	err := f.store.MistakeRepo().Record(context.Background(), &store.Mistake{
		LearnerID: f.learner.ID, SessionID: "earlier", Chapter: 1, Lesson: 2,
		Kind: "true_false", Question: "Loops end.",
	})
	if err != nil {
		t.Fatalf("record mistake: %v", err)
	}

	summary, err := f.runner("false\nfalse\n", questions.KindTrueFalse).Play(context.Background(), f.learner, review)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Plan.Kind != KindChapterReview || summary.Passed || summary.Advanced {
		t.Errorf("failed review should not advance: %+v", summary)
	}
	if f.learner.Lesson != 3 {
		t.Errorf("learner pointer moved to %d.%d", f.learner.Chapter, f.learner.Lesson)
	}

	var inReview int
	for _, m := range f.mistakes(t) {
		if m.Lesson != 3 {
			continue
		}
		inReview++
		if m.Chapter != 1 || (m.OriginLesson != 1 && m.OriginLesson != 2) {
			t.Errorf("review mistake should keep its origin lesson: %+v", m)
		}
	}
	if inReview != 2 {
		t.Errorf("expected 2 review mistakes, got %d", inReview)
	}
	if !strings.Contains(f.out.String(), "You need 2 correct answers to pass.") {
		t.Errorf("pass requirement not shown:\n%s", f.out.String())
	}

	// Passing the retake opens the next chapter.
	summary, err = f.runner("true\ntrue\n", questions.KindTrueFalse).Play(context.Background(), f.learner, review)
	if err != nil {
		t.Fatalf("retake: %v", err)
	}
	if !summary.Passed || !summary.Advanced {
		t.Errorf("passed review should advance: %+v", summary)
	}
	if f.learner.Chapter != 2 || f.learner.Lesson != 1 {
		t.Errorf("learner pointer = %d.%d, want 2.1", f.learner.Chapter, f.learner.Lesson)
	}
	if s := f.score(t, review); s == nil || !s.Passed || s.Correct != 2 {
		t.Errorf("unexpected review score %+v", s)
	}
}

func TestPlay_Cumulative(t *testing.T) {
	f := newFixture(t)
	final := curriculum.TopicRef{Chapter: 9, Lesson: 1}
	f.setPointer(t, final)

	summary, err := f.runner("true\ntrue\nfalse\n", questions.KindTrueFalse).Play(context.Background(), f.learner, final)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Plan.Kind != KindCumulative || summary.TotalQuestions != 3 {
		t.Errorf("unexpected summary %+v", summary)
	}
	// 2 of 3 is below a 70% pass mark.
	if summary.Passed || summary.Advanced {
		t.Errorf("2/3 should not pass: %+v", summary)
	}
	mistakes := f.mistakes(t)
	if len(mistakes) != 1 || mistakes[0].Chapter != 9 || mistakes[0].OriginLesson != 1 {
		t.Errorf("unexpected cumulative mistakes %+v", mistakes)
	}
}

func TestPlay_WriteCode(t *testing.T) {
	f := newFixture(t)
	ref := curriculum.TopicRef{Chapter: 2, Lesson: 1}
	f.setPointer(t, ref)
	f.sender.judge = "Incorrect. The function prints 42 but never returns it."
	f.sandbox.res = sandbox.Result{Stdout: "42\n"}

	input := "def f():\n    print(42)\nf()\nEND\n"
	summary, err := f.runner(input, questions.KindWriteCode).Play(context.Background(), f.learner, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalCorrect != 0 || f.sandbox.calls != 1 {
		t.Errorf("unexpected summary %+v (sandbox calls %d)", summary, f.sandbox.calls)
	}

	judge := f.sender.judgePrompt()
	if !strings.Contains(judge, "print(42)") || !strings.Contains(judge, "42") {
		t.Errorf("judge prompt should carry the code and its output:\n%s", judge)
	}

	mistakes := f.mistakes(t)
	if len(mistakes) != 1 {
		t.Fatalf("expected 1 mistake, got %d", len(mistakes))
	}
	m := mistakes[0]
	if m.Kind != "write_code" || !strings.Contains(m.Code, "print(42)") || m.Output != "42\n" {
		t.Errorf("unexpected code mistake %+v", m)
	}
	if !strings.Contains(m.Feedback, "never returns") {
		t.Errorf("feedback = %q", m.Feedback)
	}
}

func TestPlay_MultipleChoiceReprompts(t *testing.T) {
	f := newFixture(t)
	ref := curriculum.TopicRef{Chapter: 2, Lesson: 1}
	f.setPointer(t, ref)

	summary, err := f.runner("Z\na\n", questions.KindMultipleChoice).Play(context.Background(), f.learner, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalCorrect != 1 {
		t.Errorf("expected the re-prompted answer to count, got %+v", summary)
	}
	if !strings.Contains(f.out.String(), "Invalid input") {
		t.Error("invalid letter should be reported")
	}
}

func TestPlay_NoQuestions(t *testing.T) {
	f := newFixture(t)
	f.sender.noQuestions = true
	ref := curriculum.TopicRef{Chapter: 1, Lesson: 1}

	_, err := f.runner("", questions.KindTrueFalse).Play(context.Background(), f.learner, ref)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if s := f.score(t, ref); s != nil {
		t.Errorf("no score should be saved, got %+v", s)
	}
}

func TestPlay_InputClosed(t *testing.T) {
	f := newFixture(t)
	_, err := f.runner("true\n", questions.KindTrueFalse).Play(context.Background(), f.learner, curriculum.TopicRef{Chapter: 1, Lesson: 1})
	if !errors.Is(err, console.ErrClosed) {
		t.Fatalf("expected console.ErrClosed, got %v", err)
	}
	if f.learner.Lesson != 1 {
		t.Error("an abandoned lesson must not advance")
	}
}

func TestPreview_LeavesProgressAlone(t *testing.T) {
	f := newFixture(t)
	cfg := questions.DefaultConfig()
	r := NewRunner(Deps{
		Curriculum: f.cur,
		Generator:  questions.NewGenerator(f.sender, cfg),
		Validator:  questions.NewValidator(f.sender, cfg),
		Sandbox:    f.sandbox,
		Console:    console.New(strings.NewReader("true\nfalse\n"), f.out),
		Kinds:      []questions.Kind{questions.KindTrueFalse},
	})

	summary, err := r.Preview(context.Background(), curriculum.TopicRef{Chapter: 2, Lesson: 1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalQuestions != 2 || summary.TotalCorrect != 1 {
		t.Errorf("expected 1/2, got %d/%d", summary.TotalCorrect, summary.TotalQuestions)
	}
	if summary.Advanced {
		t.Error("preview should not advance the learner")
	}
	if got := f.mistakes(t); len(got) != 0 {
		t.Errorf("preview should not record mistakes, got %d", len(got))
	}
	if s := f.score(t, curriculum.TopicRef{Chapter: 2, Lesson: 1}); s != nil {
		t.Errorf("preview should not save a score, got %+v", s)
	}
	if !strings.Contains(f.out.String(), "Defining Functions") {
		t.Error("preview should show the lesson title")
	}
}

func TestPreview_BadInput(t *testing.T) {
	f := newFixture(t)
	r := f.runner("")

	if _, err := r.Preview(context.Background(), curriculum.TopicRef{Chapter: 1, Lesson: 1}, 0); err == nil {
		t.Error("expected an error for a zero count")
	}
	if _, err := r.Preview(context.Background(), curriculum.TopicRef{Chapter: 7, Lesson: 1}, 2); err == nil {
		t.Error("expected an error for an unknown chapter")
	}
}
