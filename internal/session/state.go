package session

import (
	"time"

	"github.com/abhisek/pytutor/internal/questions"
)

// Answer is the outcome of one asked question.
type Answer struct {
	Record     questions.Record
	Submission questions.Submission
	Verdict    questions.Verdict
}

// SessionState tracks the runtime state of a session being played.
type SessionState struct {
	// ID identifies the session in mistakes and logs.
	ID string

	Plan Plan

	// Questions is the generated question set, in asking order.
	Questions []questions.Record

	// Answers holds one entry per question asked so far.
	Answers []Answer

	// TotalCorrect is the count of correct answers so far.
	TotalCorrect int

	// StartTime is when the session began.
	StartTime time.Time
}

// NewSessionState creates a state for plan.
func NewSessionState(id string, plan Plan, qs []questions.Record, now time.Time) *SessionState {
	return &SessionState{
		ID:        id,
		Plan:      plan,
		Questions: qs,
		StartTime: now,
	}
}

// Current returns the next question to ask, or nil when all are answered.
func (s *SessionState) Current() *questions.Record {
	if len(s.Answers) >= len(s.Questions) {
		return nil
	}
	return &s.Questions[len(s.Answers)]
}

// HandleAnswer records the verdict for the current question.
func (s *SessionState) HandleAnswer(sub questions.Submission, v questions.Verdict) {
	q := s.Current()
	if q == nil {
		return
	}
	s.Answers = append(s.Answers, Answer{Record: *q, Submission: sub, Verdict: v})
	if v.Correct {
		s.TotalCorrect++
	}
}
