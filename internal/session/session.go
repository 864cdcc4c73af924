package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/pytutor/internal/console"
	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/lessons"
	"github.com/abhisek/pytutor/internal/questions"
	"github.com/abhisek/pytutor/internal/sandbox"
	"github.com/abhisek/pytutor/internal/store"
)

// ErrLocked is returned when a learner asks for a lesson beyond their
// progress.
var ErrLocked = errors.New("lesson is locked")

// ErrNoQuestions is returned when generation produced nothing to ask.
var ErrNoQuestions = errors.New("no questions could be generated")

// Deps holds the collaborators a Runner drives.
type Deps struct {
	Curriculum *curriculum.Curriculum
	Generator  *questions.Generator
	Validator  *questions.Validator
	Lessons    *lessons.Service
	Sandbox    sandbox.Runner
	Learners   store.LearnerRepo
	Mistakes   store.MistakeRepo
	Scores     store.LessonRepo
	Console    *console.Console

	// Kinds restricts question kinds. Empty uses the curriculum policy.
	Kinds []questions.Kind

	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// Runner plays lessons and reviews for one learner at a time.
type Runner struct {
	d Deps
}

// NewRunner creates a Runner.
func NewRunner(d Deps) *Runner {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Runner{d: d}
}

// Play runs the lesson, chapter review or cumulative review at ref. The
// learner must have unlocked ref.
func (r *Runner) Play(ctx context.Context, learner *store.Learner, ref curriculum.TopicRef) (*SessionSummary, error) {
	pointer := curriculum.TopicRef{Chapter: learner.Chapter, Lesson: learner.Lesson}
	if !Unlocked(pointer, ref) {
		return nil, fmt.Errorf("%s (next lesson is %s): %w", ref, pointer, ErrLocked)
	}
	plan, err := PlanFor(r.d.Curriculum, ref)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := slog.With("session", id, "plan", string(plan.Kind), "topic", ref.String())

	if err := r.d.Mistakes.Clear(ctx, learner.ID, ref.Chapter, ref.Lesson); err != nil {
		return nil, err
	}

	qs, err := r.prepare(ctx, learner, plan)
	var short *questions.ShortfallError
	switch {
	case errors.As(err, &short):
		log.Warn("playing a shortened quiz", "requested", short.Requested, "generated", short.Generated)
	case err != nil:
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%s: %w", ref, ErrNoQuestions)
	}
	if short != nil {
		r.d.Console.Warn(fmt.Sprintf("Only %d of %d questions could be generated.", short.Generated, short.Requested))
	}

	state := NewSessionState(id, plan, qs, r.d.Now())
	if plan.Graded() {
		need := r.d.Curriculum.PassThreshold(len(qs))
		r.d.Console.Note(fmt.Sprintf("You need %d correct answers to pass.", need))
	}
	if err := r.ask(ctx, learner, state); err != nil {
		return nil, err
	}

	passed := r.d.Curriculum.Passed(state.TotalCorrect, len(state.Answers))
	summary := BuildSummary(state, passed, r.d.Now())
	if err := r.finish(ctx, learner, pointer, summary); err != nil {
		return nil, err
	}
	log.Info("session finished", "correct", summary.TotalCorrect, "asked", summary.TotalQuestions, "passed", passed)
	r.report(summary)
	return summary, nil
}

// ask puts every question to the learner. Wrong answers are recorded
// when a mistake repo is configured.
func (r *Runner) ask(ctx context.Context, learner *store.Learner, state *SessionState) error {
	for q := state.Current(); q != nil; q = state.Current() {
		r.d.Console.Heading(fmt.Sprintf("Question %d/%d", len(state.Answers)+1, len(state.Questions)), q.Kind.Label())

		sub, err := r.collect(ctx, q)
		if err != nil {
			return err
		}
		verdict := r.d.Validator.Validate(ctx, q, sub)
		r.show(q, verdict)
		state.HandleAnswer(sub, verdict)

		if !verdict.Correct && r.d.Mistakes != nil {
			if err := r.d.Mistakes.Record(ctx, mistakeFor(learner.ID, state.ID, q, sub, verdict)); err != nil {
				return err
			}
		}
	}
	return nil
}

// collect shows q and reads the learner's answer.
func (r *Runner) collect(ctx context.Context, q *questions.Record) (questions.Submission, error) {
	c := r.d.Console
	var sub questions.Submission
	var err error

	switch q.Kind {
	case questions.KindMultipleChoice:
		c.Text(q.Prompt)
		for _, o := range q.Options {
			c.Option(o.Label, o.Text)
		}
		sub.Answer, err = r.askChoice(q)
	case questions.KindTrueFalse:
		c.Text(q.Prompt)
		sub.Answer, err = c.Ask("True or False?")
	case questions.KindFillInBlank:
		c.Text(q.Prompt)
		sub.Answer, err = c.Ask("Fill in the blank:")
	case questions.KindScenario:
		c.Text(q.Prompt)
		sub.Answer, err = c.Ask("Describe your response to the scenario:")
	case questions.KindWriteCode:
		c.Text(q.Prompt)
		sub.Answer, err = c.AskBlock(fmt.Sprintf("Write your code solution below. Type '%s' on a new line when finished:", console.CodeTerminator))
		if err == nil {
			sub.Stdout, sub.Stderr = r.run(ctx, sub.Answer)
		}
	default:
		return sub, fmt.Errorf("%w: %q", questions.ErrUnknownKind, q.Kind)
	}
	return sub, err
}

// askChoice asks until the learner names one of the options.
func (r *Runner) askChoice(q *questions.Record) (string, error) {
	labels := make([]string, len(q.Options))
	for i, o := range q.Options {
		labels[i] = o.Label
	}
	prompt := fmt.Sprintf("Enter the letter of your answer (%s):", strings.Join(labels, ", "))
	for {
		answer, err := r.d.Console.Ask(prompt)
		if err != nil {
			return "", err
		}
		if _, ok := q.OptionText(strings.ToUpper(answer)); ok {
			return answer, nil
		}
		r.d.Console.Failure("Invalid input. Please enter one of the option letters.")
	}
}

// run executes submitted code and shows what it printed.
func (r *Runner) run(ctx context.Context, code string) (stdout, stderr string) {
	res, err := r.d.Sandbox.Run(ctx, code)
	if err != nil {
		slog.Warn("code run failed", "error", err)
		r.d.Console.Failure("Your code could not be run: " + err.Error())
		return "", err.Error()
	}
	if res.Stderr != "" {
		r.d.Console.Failure("Your code produced the following error:")
		r.d.Console.Code(res.Stderr)
	} else {
		r.d.Console.Note("Your code produced the following output:")
		r.d.Console.Code(res.Stdout)
	}
	return res.Stdout, res.Stderr
}

func (r *Runner) show(q *questions.Record, v questions.Verdict) {
	c := r.d.Console
	switch {
	case v.Correct && q.Kind.Judged():
		c.Success("Correct! Well done.")
		c.Note(v.Feedback)
	case v.Correct:
		c.Success(v.Feedback)
	case v.Outcome == questions.OutcomeUnavailable || !q.Kind.Judged():
		c.Failure(v.Feedback)
	default:
		c.Failure("Incorrect. Review the feedback below:")
		c.Warn(v.Feedback)
		c.Note("Reference answer:")
		c.Code(q.AnswerKey)
	}
}

// finish stores the score and moves the learner on.
func (r *Runner) finish(ctx context.Context, learner *store.Learner, pointer curriculum.TopicRef, s *SessionSummary) error {
	ref := s.Plan.Topic.TopicRef
	err := r.d.Scores.SaveScore(ctx, store.LessonScore{
		LearnerID: learner.ID,
		Chapter:   ref.Chapter,
		Lesson:    ref.Lesson,
		Correct:   s.TotalCorrect,
		Total:     s.TotalQuestions,
		Passed:    s.Passed,
	})
	if err != nil {
		return err
	}

	next, moved := NextPointer(r.d.Curriculum, pointer, s.Plan, s.Passed)
	if !moved {
		return nil
	}
	if err := r.d.Learners.SetProgress(ctx, learner.ID, next.Chapter, next.Lesson); err != nil {
		return err
	}
	learner.Chapter, learner.Lesson = next.Chapter, next.Lesson
	s.Advanced = true
	if info, err := r.d.Curriculum.Topic(next); err == nil {
		s.Next = fmt.Sprintf("%s: %s", next, info.LessonTitle)
	}
	return nil
}

func (r *Runner) report(s *SessionSummary) {
	c := r.d.Console
	c.Heading("Results", s.Plan.Topic.LessonTitle)
	passMark := 0
	if s.Plan.Graded() {
		passMark = r.d.Curriculum.PassMark
	}
	c.Score("Score", s.TotalCorrect, s.TotalQuestions, passMark)
	for _, k := range s.KindResults {
		c.Textf("  %-18s %d/%d", k.Kind.Label(), k.Correct, k.Asked)
	}
	switch {
	case s.Plan.Graded() && s.Passed:
		c.Success("Congratulations! You passed the review.")
	case s.Plan.Graded():
		c.Failure("You did not pass the review. Please review the lessons and try again.")
	default:
		c.Textf("You answered %d out of %d correctly.", s.TotalCorrect, s.TotalQuestions)
	}
	if s.Advanced {
		c.Note("Next up: " + s.Next)
	}
}

// mistakeFor builds the mistake row for a wrong answer. Review questions
// keep the lesson they were drawn from when it lies in the same chapter.
func mistakeFor(learnerID int, sessionID string, q *questions.Record, sub questions.Submission, v questions.Verdict) *store.Mistake {
	m := &store.Mistake{
		LearnerID:     learnerID,
		SessionID:     sessionID,
		Chapter:       q.Topic.Chapter,
		Lesson:        q.Topic.Lesson,
		OriginLesson:  q.Topic.Lesson,
		Kind:          string(q.Kind),
		Question:      q.Prompt,
		LearnerAnswer: sub.Answer,
		CorrectAnswer: q.AnswerText(),
		Feedback:      v.Feedback,
	}
	if q.Origin.Chapter == q.Topic.Chapter && q.Origin.Lesson > 0 {
		m.OriginLesson = q.Origin.Lesson
	}
	if q.Kind == questions.KindWriteCode {
		m.Code = sub.Answer
		m.Output = sub.Stdout
		m.Errors = sub.Stderr
	}
	return m
}
